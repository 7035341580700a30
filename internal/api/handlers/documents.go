package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type processYouTubeRequest struct {
	URL string `json:"url"`
}

// HandleUploadPDF ingests an uploaded PDF, then extracts its topics and
// archives the raw file concurrently.
func (h *Handler) HandleUploadPDF(c *gin.Context) {
	ctx := c.Request.Context()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if statusFor(err) == http.StatusRequestEntityTooLarge {
			h.respondError(c, err)
			return
		}
		badRequest(c, "No file provided")
		return
	}
	if fileHeader.Filename == "" {
		badRequest(c, "No file selected")
		return
	}
	filename := filepath.Base(strings.ReplaceAll(fileHeader.Filename, "\\", "/"))
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		badRequest(c, "Invalid file type")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.log.Info("processing upload", "filename", filename, "bytes", len(data))

	text := h.pdf.Text(ctx, data)
	doc, err := h.ingest.Ingest(ctx, text, filename)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var (
		topics  []string
		fileURL string
	)
	// A failed archive does not cancel topic extraction.
	var g errgroup.Group
	g.Go(func() error {
		topics = h.topics(ctx, text)
		return nil
	})
	if h.archive != nil {
		g.Go(func() error {
			url, err := h.archive.UploadFile(ctx, doc.ID, filename, bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("archive %s: %w", filename, err)
			}
			fileURL = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.log.Warn("upload post-processing incomplete", "document_id", doc.ID, "error", err)
	}

	resp := gin.H{
		"success":     true,
		"document_id": doc.ID,
		"filename":    filename,
		"topics":      topics,
		"text_length": utf8.RuneCountInString(text),
	}
	if fileURL != "" {
		resp["file_url"] = fileURL
	}
	c.JSON(http.StatusOK, resp)
}

// HandleProcessYouTube ingests the transcript of a video.
func (h *Handler) HandleProcessYouTube(c *gin.Context) {
	ctx := c.Request.Context()

	var req processYouTubeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		badRequest(c, "No YouTube URL provided")
		return
	}
	url := strings.TrimSpace(req.URL)

	transcript, err := h.transcripts.Transcript(ctx, url)
	if err != nil || transcript == "" {
		h.log.Warn("transcript unavailable", "url", url, "error", err)
		badRequest(c, "Could not extract transcript")
		return
	}

	doc, err := h.ingest.Ingest(ctx, transcript, "youtube_"+url)
	if err != nil {
		h.respondError(c, err)
		return
	}
	topics := h.topics(ctx, transcript)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"document_id": doc.ID,
		"url":         url,
		"topics":      topics,
		"text_length": utf8.RuneCountInString(transcript),
	})
}

func (h *Handler) topics(ctx context.Context, text string) []string {
	topics := h.quiz.ExtractTopics(ctx, text)
	if topics == nil {
		return []string{}
	}
	return topics
}
