package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"blogserver/internal/auth"
	"blogserver/internal/domain"
	"blogserver/internal/repository/sqlite"
	"blogserver/internal/service"
)

const testSecret = "api-test-secret-key"

type testServer struct {
	router *gin.Engine
	users  service.UserService
	tokens *auth.TokenService
}

// newTestServer stands up the whole stack on a throwaway sqlite file, the
// same wiring main uses minus S3.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "blog.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	userRepo := sqlite.NewUserRepository(db)
	categoryRepo := sqlite.NewCategoryRepository(db)
	postRepo := sqlite.NewPostRepository(db)
	commentRepo := sqlite.NewCommentRepository(db)

	ctx := context.Background()
	for _, repo := range []interface {
		Init(context.Context) error
	}{userRepo, categoryRepo, postRepo, commentRepo} {
		if err := repo.Init(ctx); err != nil {
			t.Fatalf("init schema: %v", err)
		}
	}

	users := service.NewUserService(userRepo)
	posts := service.NewPostService(postRepo, commentRepo, userRepo, categoryRepo)
	comments := service.NewCommentService(commentRepo, postRepo, userRepo)
	categories := service.NewCategoryService(categoryRepo)

	tokens, err := auth.NewTokenService(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	router := gin.New()
	handler := NewHandler(users, posts, comments, categories, tokens, nil, "", "", logger)
	handler.RegisterRoutes(router)

	return &testServer{router: router, users: users, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) registerAndLogin(t *testing.T, name, email string) string {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": "secret", "about": "test account",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", email, w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": email, "password": "secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", email, w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login returned an empty token")
	}
	return resp.Token
}

// seedAdmin creates an admin straight through the service layer, the way
// bootstrap does at startup.
func (s *testServer) seedAdmin(t *testing.T) string {
	t.Helper()

	_, err := s.users.Create(context.Background(), service.UserInput{
		Name: "admin", Email: "admin@example.com", Password: "secret", About: "root",
	}, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "admin@example.com", "password": "secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("admin login: status %d body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode admin login: %v", err)
	}
	return resp.Token
}

func (s *testServer) createCategory(t *testing.T, adminToken string) int64 {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/categories/add-category", adminToken, gin.H{
		"categoryTitle": "golang", "categoryDescription": "articles about go",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create category: status %d body %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode category: %v", err)
	}
	return resp.ID
}

func (s *testServer) createPost(t *testing.T, token string, userID, categoryID int64) int64 {
	t.Helper()

	path := fmt.Sprintf("/api/user/%d/category/%d/posts", userID, categoryID)
	w := s.do(t, http.MethodPost, path, token, gin.H{
		"title": "hello world", "content": "first post body",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create post: status %d body %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode post: %v", err)
	}
	return resp.ID
}

func (s *testServer) userID(t *testing.T, email string) int64 {
	t.Helper()
	user, err := s.users.GetByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("lookup %s: %v", email, err)
	}
	return user.ID
}

func TestRegisterLoginAndListPosts(t *testing.T) {
	srv := newTestServer(t)
	token := srv.registerAndLogin(t, "alice", "alice@example.com")

	w := srv.do(t, http.MethodGet, "/api/posts", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list posts: status %d body %s", w.Code, w.Body.String())
	}

	var page struct {
		Content       []json.RawMessage `json:"content"`
		PageNumber    int               `json:"pageNumber"`
		PageSize      int               `json:"pageSize"`
		TotalElements int64             `json:"totalElements"`
		LastPage      bool              `json:"lastPage"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.PageSize != 10 || page.TotalElements != 0 || !page.LastPage {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestProtectedRouteWithoutCredential(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/posts", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if !strings.Contains(w.Body.String(), "authentication required") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestPublicRoutesNeedNoCredential(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodGet, "/api/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health: status %d", w.Code)
	}

	// bad credentials are a 401 from the login handler, not the gate
	w = srv.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "ghost@example.com", "password": "nope",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("login: status %d, want 401", w.Code)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	srv := newTestServer(t)
	srv.registerAndLogin(t, "alice", "alice@example.com")

	past := time.Now().UTC().Add(-2 * time.Hour)
	claims := jwt.RegisteredClaims{
		Issuer:    "blogserver",
		Subject:   "alice@example.com",
		IssuedAt:  jwt.NewNumericDate(past),
		ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}

	w := srv.do(t, http.MethodGet, "/api/posts", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAdminRouteForbiddenForUser(t *testing.T) {
	srv := newTestServer(t)
	token := srv.registerAndLogin(t, "alice", "alice@example.com")

	w := srv.do(t, http.MethodGet, "/api/users/all-users", token, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if !strings.Contains(w.Body.String(), "insufficient role") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestAdminRouteAllowedForAdmin(t *testing.T) {
	srv := newTestServer(t)
	adminToken := srv.seedAdmin(t)

	w := srv.do(t, http.MethodGet, "/api/users/all-users", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body.String())
	}

	var users []UserResponse
	if err := json.Unmarshal(w.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 1 || users[0].Email != "admin@example.com" {
		t.Fatalf("users = %+v", users)
	}
}

func TestCategoryManagementRequiresAdmin(t *testing.T) {
	srv := newTestServer(t)
	userToken := srv.registerAndLogin(t, "alice", "alice@example.com")

	w := srv.do(t, http.MethodPost, "/api/categories/add-category", userToken, gin.H{
		"categoryTitle": "golang", "categoryDescription": "articles about go",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}

	// reading categories only needs authentication
	w = srv.do(t, http.MethodGet, "/api/categories/all-categories", userToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list categories: status %d", w.Code)
	}
}

func TestPostOwnershipOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	adminToken := srv.seedAdmin(t)
	aliceToken := srv.registerAndLogin(t, "alice", "alice@example.com")
	bobToken := srv.registerAndLogin(t, "bob", "bob@example.com")

	categoryID := srv.createCategory(t, adminToken)
	aliceID := srv.userID(t, "alice@example.com")
	postID := srv.createPost(t, aliceToken, aliceID, categoryID)

	update := gin.H{"id": postID, "title": "edited", "content": "edited body"}

	// bob does not own the post
	w := srv.do(t, http.MethodPut, "/api/posts/update-post", bobToken, update)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bob update: status %d body %s", w.Code, w.Body.String())
	}

	// the owner may edit
	w = srv.do(t, http.MethodPut, "/api/posts/update-post", aliceToken, update)
	if w.Code != http.StatusOK {
		t.Fatalf("alice update: status %d body %s", w.Code, w.Body.String())
	}

	// and so may an admin
	w = srv.do(t, http.MethodPut, "/api/posts/update-post", adminToken, gin.H{
		"id": postID, "title": "admin edit", "content": "admin body",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("admin update: status %d body %s", w.Code, w.Body.String())
	}

	// deletion follows the same rule
	deletePath := fmt.Sprintf("/api/posts/delete-post/%d", postID)
	w = srv.do(t, http.MethodDelete, deletePath, bobToken, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bob delete: status %d", w.Code)
	}
	w = srv.do(t, http.MethodDelete, deletePath, aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("alice delete: status %d body %s", w.Code, w.Body.String())
	}
}

func TestCommentLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	adminToken := srv.seedAdmin(t)
	aliceToken := srv.registerAndLogin(t, "alice", "alice@example.com")
	bobToken := srv.registerAndLogin(t, "bob", "bob@example.com")

	categoryID := srv.createCategory(t, adminToken)
	aliceID := srv.userID(t, "alice@example.com")
	bobID := srv.userID(t, "bob@example.com")
	postID := srv.createPost(t, aliceToken, aliceID, categoryID)

	// bob comments on alice's post
	path := fmt.Sprintf("/api/user/%d/post/%d/comments", bobID, postID)
	w := srv.do(t, http.MethodPost, path, bobToken, gin.H{"content": "great read"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create comment: status %d body %s", w.Code, w.Body.String())
	}
	var comment struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &comment); err != nil {
		t.Fatalf("decode comment: %v", err)
	}

	// alice does not own the comment even though she owns the post
	deletePath := fmt.Sprintf("/api/comments/%d", comment.ID)
	w = srv.do(t, http.MethodDelete, deletePath, aliceToken, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("alice delete: status %d body %s", w.Code, w.Body.String())
	}

	w = srv.do(t, http.MethodDelete, deletePath, bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("bob delete: status %d body %s", w.Code, w.Body.String())
	}
}

func TestValidationErrorsAsFieldMap(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "al", "email": "not-an-email", "password": "x", "about": "",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var fields map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &fields); err != nil {
		t.Fatalf("decode validation map: %v", err)
	}
	for _, field := range []string{"name", "email", "password", "about"} {
		if _, ok := fields[field]; !ok {
			t.Fatalf("missing %q in %v", field, fields)
		}
	}
}

func TestDuplicateRegistration(t *testing.T) {
	srv := newTestServer(t)
	srv.registerAndLogin(t, "alice", "alice@example.com")

	w := srv.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "clone", "email": "Alice@Example.com", "password": "secret", "about": "imposter",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (email matching is case-insensitive)", w.Code)
	}
}

func TestImageUploadWithoutStorage(t *testing.T) {
	srv := newTestServer(t)
	adminToken := srv.seedAdmin(t)
	aliceToken := srv.registerAndLogin(t, "alice", "alice@example.com")

	categoryID := srv.createCategory(t, adminToken)
	aliceID := srv.userID(t, "alice@example.com")
	postID := srv.createPost(t, aliceToken, aliceID, categoryID)

	path := fmt.Sprintf("/api/posts/image/upload/%d", postID)
	w := srv.do(t, http.MethodPost, path, aliceToken, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 when no storage backend is configured", w.Code)
	}
}
