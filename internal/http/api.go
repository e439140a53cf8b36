package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"blogserver/internal/auth"
	"blogserver/internal/obs"
	"blogserver/internal/service"
	"blogserver/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users      service.UserService
	posts      service.PostService
	comments   service.CommentService
	categories service.CategoryService
	tokens     *auth.TokenService
	storage    storage.Service
	bucket     string
	keyPrefix  string
	logger     *logrus.Logger
}

func NewHandler(
	users service.UserService,
	posts service.PostService,
	comments service.CommentService,
	categories service.CategoryService,
	tokens *auth.TokenService,
	store storage.Service,
	bucket, keyPrefix string,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		users:      users,
		posts:      posts,
		comments:   comments,
		categories: categories,
		tokens:     tokens,
		storage:    store,
		bucket:     bucket,
		keyPrefix:  keyPrefix,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(obs.Instrument())
	router.Use(h.authenticationGate())
	router.Use(h.authorize(DefaultPolicy()))

	router.GET("/metrics", gin.WrapH(obs.Handler()))

	api := router.Group("/api")
	{
		api.POST("/auth/login", h.login)
		api.POST("/auth/register", h.register)

		api.POST("/users/create-user", h.createUser)
		api.GET("/users/all-users", h.listUsers)
		api.GET("/users/one-user", h.getUser)
		api.PUT("/users/update-user", h.updateUser)
		api.DELETE("/users/delete-user/:id", h.deleteUser)

		api.POST("/categories/add-category", h.createCategory)
		api.GET("/categories/all-categories", h.listCategories)
		api.GET("/categories/one-category", h.getCategory)
		api.PUT("/categories/update-category", h.updateCategory)
		api.DELETE("/categories/delete-category/:id", h.deleteCategory)

		api.POST("/user/:userId/category/:categoryId/posts", h.createPost)
		api.GET("/posts", h.listPosts)
		api.GET("/posts/:postId", h.getPost)
		api.GET("/category/:categoryId/posts", h.listPostsByCategory)
		api.GET("/user/:userId/posts", h.listPostsByUser)
		api.PUT("/posts/update-post", h.updatePost)
		api.DELETE("/posts/delete-post/:postId", h.deletePost)
		api.GET("/posts/search/:keywords", h.searchPosts)
		api.POST("/posts/image/upload/:postId", h.uploadPostImage)
		api.GET("/post/image/:imageName", h.downloadPostImage)

		api.POST("/user/:userId/post/:postId/comments", h.createComment)
		api.DELETE("/comments/:commentId", h.deleteComment)

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
