// Package store holds the in-memory registries owned by the services:
// ingested documents, test sessions and the performance log.
package store

import (
	"sync"
	"time"

	"studyquiz/internal/apperr"
	"studyquiz/internal/chunker"
	"studyquiz/internal/models"

	"github.com/google/uuid"
)

// Documents maps document identifiers to ingested documents. Entries are never
// updated or evicted.
type Documents struct {
	mu     sync.RWMutex
	docs   map[uuid.UUID]models.Document
	split  chunker.Func
	policy chunker.Policy
	now    func() time.Time
}

// NewDocuments creates an empty store that chunks text with split. policy is
// recorded on every document so it can be re-chunked the same way.
func NewDocuments(policy chunker.Policy, split chunker.Func) *Documents {
	if split == nil {
		split = chunker.New(policy, 0, -1)
	}
	return &Documents{
		docs:   make(map[uuid.UUID]models.Document),
		split:  split,
		policy: policy,
		now:    time.Now,
	}
}

// Put chunks text and stores it under a fresh identifier.
func (s *Documents) Put(text, filename string) models.Document {
	chunks := s.split(text)
	if chunks == nil {
		chunks = []string{}
	}
	doc := models.Document{
		ID:          uuid.New(),
		Filename:    filename,
		FullText:    text,
		Chunks:      chunks,
		ChunkCount:  len(chunks),
		ChunkPolicy: string(s.policy),
		CreatedAt:   s.now().UTC(),
	}

	s.mu.Lock()
	s.docs[doc.ID] = doc
	s.mu.Unlock()
	return doc
}

func (s *Documents) Get(id uuid.UUID) (models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return models.Document{}, apperr.NotFound("document %s not found", id)
	}
	return doc, nil
}

func (s *Documents) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
