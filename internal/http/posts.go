package http

import (
	"io"
	"net/http"
	"path"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"blogserver/internal/domain"
	"blogserver/internal/service"
)

type postRequest struct {
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content" binding:"required"`
	ImageName string `json:"imageName"`
}

type updatePostRequest struct {
	ID int64 `json:"id" binding:"required"`
	postRequest
}

// pageRequest extracts paging and sorting query parameters, falling back to
// the documented defaults.
func pageRequest(c *gin.Context) domain.PageRequest {
	number, err := strconv.Atoi(c.DefaultQuery("pageNumber", "0"))
	if err != nil || number < 0 {
		number = 0
	}
	size, err := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	if err != nil || size <= 0 {
		size = 10
	}
	return domain.PageRequest{
		Number:  number,
		Size:    size,
		SortBy:  c.DefaultQuery("sortBy", "addedDate"),
		SortDir: c.DefaultQuery("sortDir", domain.SortAsc),
	}
}

func (h *Handler) createPost(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		respondError(c, http.StatusBadRequest, "invalid user id")
		return
	}
	categoryID, err := strconv.ParseInt(c.Param("categoryId"), 10, 64)
	if err != nil || categoryID <= 0 {
		respondError(c, http.StatusBadRequest, "invalid category id")
		return
	}

	var req postRequest
	if !bindJSON(c, &req) {
		return
	}

	post, err := h.posts.Create(c.Request.Context(), userID, categoryID, service.PostInput{
		Title:     req.Title,
		Content:   req.Content,
		ImageName: req.ImageName,
	})
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, postToResponse(post))
}

func (h *Handler) listPosts(c *gin.Context) {
	page, err := h.posts.List(c.Request.Context(), pageRequest(c))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageToResponse(page))
}

func (h *Handler) getPost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("postId"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := h.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, postToResponse(post))
}

func (h *Handler) listPostsByCategory(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Param("categoryId"), 10, 64)
	if err != nil || categoryID <= 0 {
		respondError(c, http.StatusBadRequest, "invalid category id")
		return
	}

	page, err := h.posts.ListByCategory(c.Request.Context(), categoryID, pageRequest(c))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageToResponse(page))
}

func (h *Handler) listPostsByUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		respondError(c, http.StatusBadRequest, "invalid user id")
		return
	}

	page, err := h.posts.ListByUser(c.Request.Context(), userID, pageRequest(c))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageToResponse(page))
}

func (h *Handler) updatePost(c *gin.Context) {
	var req updatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	requester, _ := currentUser(c)
	post, err := h.posts.Update(c.Request.Context(), requester, req.ID, service.PostInput{
		Title:     req.Title,
		Content:   req.Content,
		ImageName: req.ImageName,
	})
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, postToResponse(post))
}

func (h *Handler) deletePost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("postId"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := h.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	requester, _ := currentUser(c)
	if err := h.posts.Delete(c.Request.Context(), requester, id); err != nil {
		h.serviceError(c, err)
		return
	}

	if h.storage != nil && post.ImageName != domain.DefaultPostImage {
		key := h.imageKey(post.ImageName)
		if err := h.storage.DeleteObject(c.Request.Context(), h.bucket, key); err != nil {
			h.logger.Warnf("delete post image %s: %v", key, err)
		}
	}

	c.JSON(http.StatusOK, apiResponse{Message: "Post deleted successfully", Success: true})
}

func (h *Handler) searchPosts(c *gin.Context) {
	posts, err := h.posts.Search(c.Request.Context(), c.Param("keywords"))
	if err != nil {
		h.serviceError(c, err)
		return
	}

	resp := make([]PostResponse, len(posts))
	for i := range posts {
		resp[i] = postToResponse(&posts[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) uploadPostImage(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		respondError(c, http.StatusBadRequest, "storage service not configured")
		return
	}

	id, err := strconv.ParseInt(c.Param("postId"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "image file is required")
		return
	}

	post, err := h.posts.GetByID(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "open uploaded image")
		return
	}
	defer file.Close()

	imageName := uuid.NewString() + path.Ext(fileHeader.Filename)
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if err := h.storage.PutObject(c.Request.Context(), h.bucket, h.imageKey(imageName), file, contentType); err != nil {
		h.serviceError(c, err)
		return
	}

	// The ownership check rides on the update: a non-owner non-admin cannot
	// attach an image to someone else's post.
	requester, _ := currentUser(c)
	updated, err := h.posts.Update(c.Request.Context(), requester, id, service.PostInput{
		Title:     post.Title,
		Content:   post.Content,
		ImageName: imageName,
	})
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, postToResponse(updated))
}

func (h *Handler) downloadPostImage(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		respondError(c, http.StatusBadRequest, "storage service not configured")
		return
	}

	imageName := c.Param("imageName")
	body, err := h.storage.GetObject(c.Request.Context(), h.bucket, h.imageKey(imageName))
	if err != nil {
		respondError(c, http.StatusNotFound, "image not found")
		return
	}
	defer body.Close()

	c.Header("Content-Type", "image/jpeg")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		h.logger.Warnf("stream image %s: %v", imageName, err)
	}
}

func (h *Handler) imageKey(imageName string) string {
	if h.keyPrefix == "" {
		return imageName
	}
	return h.keyPrefix + "/" + imageName
}
