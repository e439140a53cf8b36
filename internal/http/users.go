package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"blogserver/internal/domain"
	"blogserver/internal/service"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,min=3,max=10"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=3,max=10"`
	About    string `json:"about" binding:"required"`
}

type createUserRequest struct {
	registerRequest
	Role string `json:"role" binding:"required,oneof=USER ADMIN"`
}

type updateUserRequest struct {
	ID int64 `json:"id" binding:"required"`
	registerRequest
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	token, err := h.tokens.Issue(user.Email)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.UserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		About:    req.About,
	})
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, userToResponse(user))
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Create(c.Request.Context(), service.UserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		About:    req.About,
	}, domain.Role(req.Role))
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, userToResponse(user))
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.serviceError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) updateUser(c *gin.Context) {
	var req updateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	requester, _ := currentUser(c)
	user, err := h.users.Update(c.Request.Context(), requester, req.ID, service.UserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		About:    req.About,
	})
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, apiResponse{Message: "User deleted successfully", Success: true})
}
