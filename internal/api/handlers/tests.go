package handlers

import (
	"net/http"
	"strings"

	"studyquiz/internal/apperr"
	"studyquiz/internal/models"
	"studyquiz/internal/quiz"

	"github.com/gin-gonic/gin"
)

type generateMCQRequest struct {
	DocumentID   string `json:"document_id"`
	NumQuestions *int   `json:"num_questions"`
}

type submitTestRequest struct {
	TestID  string          `json:"test_id"`
	Answers []models.Answer `json:"answers"`
}

// HandleGenerateMCQ generates a quiz for a document and opens a test session for it.
func (h *Handler) HandleGenerateMCQ(c *gin.Context) {
	var req generateMCQRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.DocumentID) == "" {
		badRequest(c, "No document ID provided")
		return
	}
	n := quiz.DefaultNumQuestions
	if req.NumQuestions != nil {
		n = *req.NumQuestions
	}
	if n > quiz.MaxNumQuestions {
		h.respondError(c, apperr.Invalid("num_questions must be at most %d", quiz.MaxNumQuestions))
		return
	}

	id, err := parseID(req.DocumentID, "Document")
	if err != nil {
		h.respondError(c, err)
		return
	}
	doc, err := h.documents.Get(id)
	if err != nil {
		h.respondError(c, apperr.NotFound("Document not found"))
		return
	}

	questions := h.quiz.Generate(c.Request.Context(), doc, n)
	testID, err := h.tests.Create(doc.ID, questions)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"test_id":   testID,
		"questions": questions,
	})
}

// HandleSubmitTest grades the submitted answers of a test session.
func (h *Handler) HandleSubmitTest(c *gin.Context) {
	var req submitTestRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.TestID) == "" || len(req.Answers) == 0 {
		badRequest(c, "Missing test ID or answers")
		return
	}
	testID, err := parseID(req.TestID, "Test session")
	if err != nil {
		h.respondError(c, err)
		return
	}

	results, err := h.tests.Grade(testID, req.Answers)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "results": results})
}

// HandleGetAnalysis returns the stored analysis of a submitted test.
func (h *Handler) HandleGetAnalysis(c *gin.Context) {
	testID, err := parseID(c.Param("test_id"), "Test")
	if err != nil {
		h.respondError(c, err)
		return
	}
	analysis, err := h.tests.Analysis(testID)
	if err != nil {
		h.respondError(c, apperr.NotFound("Test not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "analysis": analysis})
}

// HandleGetTrends summarises every graded test so far.
func (h *Handler) HandleGetTrends(c *gin.Context) {
	trends, ok := h.tests.Trends()
	if !ok {
		h.respondError(c, apperr.NotFound("No performance data available"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "trends": trends})
}
