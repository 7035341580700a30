package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type tutoringRequest struct {
	DocumentID string `json:"document_id"`
	Topic      string `json:"topic"`
}

// HandleGetTutoring writes a lesson on a topic grounded in the document.
func (h *Handler) HandleGetTutoring(c *gin.Context) {
	var req tutoringRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.DocumentID) == "" || strings.TrimSpace(req.Topic) == "" {
		badRequest(c, "Missing document_id or topic")
		return
	}
	documentID, err := parseID(req.DocumentID, "Document")
	if err != nil {
		h.respondError(c, err)
		return
	}

	lesson, err := h.tutor.Lesson(c.Request.Context(), documentID, req.Topic)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"topic":   req.Topic,
		"lesson":  lesson,
	})
}
