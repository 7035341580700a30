package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"studyquiz/internal/apperr"
	"studyquiz/internal/assessment"
	"studyquiz/internal/extract"
	"studyquiz/internal/ingest"
	"studyquiz/internal/logger"
	"studyquiz/internal/quiz"
	"studyquiz/internal/store"
	"studyquiz/internal/tutor"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DefaultMaxUploadBytes caps PDF uploads when the handler is built without a limit.
const DefaultMaxUploadBytes = 50 << 20

// TranscriptSource fetches the transcript text of a video URL.
type TranscriptSource interface {
	Transcript(ctx context.Context, url string) (string, error)
}

// Archiver keeps a copy of an uploaded file and returns where it lives.
type Archiver interface {
	UploadFile(ctx context.Context, documentID uuid.UUID, filename string, content io.Reader) (string, error)
}

// Deps are the services the handlers delegate to. Archive may be nil.
type Deps struct {
	Ingest         *ingest.Service
	Documents      *store.Documents
	Quiz           *quiz.Generator
	Tests          *assessment.Engine
	Tutor          *tutor.Tutor
	PDF            *extract.PDF
	Transcripts    TranscriptSource
	Archive        Archiver
	MaxUploadBytes int64
}

// Handler contains the API handlers dependencies
type Handler struct {
	ingest         *ingest.Service
	documents      *store.Documents
	quiz           *quiz.Generator
	tests          *assessment.Engine
	tutor          *tutor.Tutor
	pdf            *extract.PDF
	transcripts    TranscriptSource
	archive        Archiver
	maxUploadBytes int64
	log            *logger.Logger
}

// NewHandler creates a new Handler
func NewHandler(d Deps, log *logger.Logger) *Handler {
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		ingest:         d.Ingest,
		documents:      d.Documents,
		quiz:           d.Quiz,
		tests:          d.Tests,
		tutor:          d.Tutor,
		pdf:            d.PDF,
		transcripts:    d.Transcripts,
		archive:        d.Archive,
		maxUploadBytes: d.MaxUploadBytes,
		log:            logger.OrNop(log).With("component", "api.Handler"),
	}
}

// HandleHealth reports that the server is up.
func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "message": "Server is running"})
}

// statusFor maps an error kind onto an HTTP status code.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidInput:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError aborts the request with {"error": ...}.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// badRequest aborts with a fixed 400 message.
func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// parseID treats an unparsable id as an unknown one.
func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.NotFound("%s not found", what)
	}
	return id, nil
}
