package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type categoryRequest struct {
	CategoryTitle       string `json:"categoryTitle" binding:"required,min=5"`
	CategoryDescription string `json:"categoryDescription" binding:"required,min=10"`
}

type updateCategoryRequest struct {
	ID int64 `json:"id" binding:"required"`
	categoryRequest
}

func (h *Handler) createCategory(c *gin.Context) {
	var req categoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categories.Create(c.Request.Context(), req.CategoryTitle, req.CategoryDescription)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, categoryToResponse(category))
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		h.serviceError(c, err)
		return
	}

	resp := make([]CategoryResponse, len(categories))
	for i := range categories {
		resp[i] = categoryToResponse(&categories[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid category id")
		return
	}

	category, err := h.categories.GetByID(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, categoryToResponse(category))
}

func (h *Handler) updateCategory(c *gin.Context) {
	var req updateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categories.Update(c.Request.Context(), req.ID, req.CategoryTitle, req.CategoryDescription)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, categoryToResponse(category))
}

func (h *Handler) deleteCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, apiResponse{Message: "Category deleted successfully", Success: true})
}
