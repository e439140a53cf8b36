package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"blogserver/internal/domain"
	"blogserver/internal/repository"
	"blogserver/internal/service"
)

// apiResponse is the business-error and acknowledgement payload shape.
type apiResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	About string `json:"about"`
	Role  string `json:"role"`
}

type CategoryResponse struct {
	ID                  int64  `json:"id"`
	CategoryTitle       string `json:"categoryTitle"`
	CategoryDescription string `json:"categoryDescription"`
}

type CommentResponse struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
	UserID  int64  `json:"userId"`
	PostID  int64  `json:"postId"`
}

type PostResponse struct {
	ID         int64             `json:"id"`
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	ImageName  string            `json:"imageName"`
	AddedDate  string            `json:"addedDate"`
	UserID     int64             `json:"userId"`
	CategoryID int64             `json:"categoryId"`
	Comments   []CommentResponse `json:"comments"`
}

type PostPageResponse struct {
	Content       []PostResponse `json:"content"`
	PageNumber    int            `json:"pageNumber"`
	PageSize      int            `json:"pageSize"`
	TotalElements int64          `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
	LastPage      bool           `json:"lastPage"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		About: user.About,
		Role:  string(user.Role),
	}
}

func categoryToResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:                  category.ID,
		CategoryTitle:       category.Title,
		CategoryDescription: category.Description,
	}
}

func commentToResponse(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:      comment.ID,
		Content: comment.Content,
		UserID:  comment.UserID,
		PostID:  comment.PostID,
	}
}

func postToResponse(post *domain.Post) PostResponse {
	resp := PostResponse{
		ID:         post.ID,
		Title:      post.Title,
		Content:    post.Content,
		ImageName:  post.ImageName,
		AddedDate:  post.AddedDate.Format(time.RFC3339),
		UserID:     post.UserID,
		CategoryID: post.CategoryID,
		Comments:   make([]CommentResponse, len(post.Comments)),
	}
	for i := range post.Comments {
		resp.Comments[i] = commentToResponse(&post.Comments[i])
	}
	return resp
}

func pageToResponse(page *domain.PostPage) PostPageResponse {
	resp := PostPageResponse{
		Content:       make([]PostResponse, len(page.Content)),
		PageNumber:    page.PageNumber,
		PageSize:      page.PageSize,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		LastPage:      page.LastPage,
	}
	for i := range page.Content {
		resp.Content[i] = postToResponse(&page.Content[i])
	}
	return resp
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, apiResponse{Message: message, Success: false})
}

// serviceError maps domain sentinels onto HTTP statuses. Ownership
// violations surface as 401; role mismatches were already rejected with 403
// by the policy layer.
func (h *Handler) serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrDuplicate):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthorizedOwner):
		respondError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, err.Error())
	default:
		h.logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}

// bindJSON decodes and validates the request body. Validation failures come
// back as a field-name to message map, everything else as apiResponse.
func bindJSON(c *gin.Context, target any) bool {
	err := c.ShouldBindJSON(target)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fieldName(fe.Field())] = fieldMessage(fe)
		}
		c.JSON(http.StatusBadRequest, fields)
		return false
	}

	respondError(c, http.StatusBadRequest, err.Error())
	return false
}

func fieldName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s can't be empty", fieldName(fe.Field()))
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
