package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

func (h *Handler) createComment(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		respondError(c, http.StatusBadRequest, "invalid user id")
		return
	}
	postID, err := strconv.ParseInt(c.Param("postId"), 10, 64)
	if err != nil || postID <= 0 {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), userID, postID, req.Content)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, commentToResponse(comment))
}

func (h *Handler) deleteComment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("commentId"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid comment id")
		return
	}

	requester, _ := currentUser(c)
	if err := h.comments.Delete(c.Request.Context(), requester, id); err != nil {
		h.serviceError(c, err)
		return
	}

	c.JSON(http.StatusOK, apiResponse{Message: "Comment deleted successfully", Success: true})
}
