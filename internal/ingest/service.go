// Package ingest registers raw content with the document store and indexes
// its chunks for retrieval.
package ingest

import (
	"context"
	"strings"

	"studyquiz/internal/apperr"
	"studyquiz/internal/logger"
	"studyquiz/internal/models"

	"github.com/google/uuid"
)

type DocumentStore interface {
	Put(text, filename string) models.Document
}

type Indexer interface {
	Ingest(documentID uuid.UUID, chunks []string)
}

type Service struct {
	docs  DocumentStore
	index Indexer
	log   *logger.Logger
}

func NewService(docs DocumentStore, index Indexer, log *logger.Logger) *Service {
	return &Service{
		docs:  docs,
		index: index,
		log:   logger.OrNop(log).With("component", "ingest.Service"),
	}
}

// Ingest stores text under a fresh document id and indexes its chunks. Blank
// text is rejected.
func (s *Service) Ingest(ctx context.Context, text, filename string) (models.Document, error) {
	if err := ctx.Err(); err != nil {
		return models.Document{}, err
	}
	if strings.TrimSpace(text) == "" {
		return models.Document{}, apperr.Invalid("no text content to ingest for %q", filename)
	}

	doc := s.docs.Put(text, filename)
	s.index.Ingest(doc.ID, doc.Chunks)
	s.log.Info("document ingested",
		"document_id", doc.ID,
		"filename", filename,
		"chars", len(text),
		"chunks", doc.ChunkCount,
		"policy", doc.ChunkPolicy,
	)
	return doc, nil
}
