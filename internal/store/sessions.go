package store

import (
	"sync"

	"studyquiz/internal/apperr"
	"studyquiz/internal/models"

	"github.com/google/uuid"
)

// Sessions is the lock-guarded registry of test sessions.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]models.TestSession
}

func NewSessions() *Sessions {
	return &Sessions{sessions: make(map[uuid.UUID]models.TestSession)}
}

// Create stores a new session. An existing id is a conflict.
func (s *Sessions) Create(session models.TestSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.TestID]; ok {
		return apperr.Conflict("test %s already exists", session.TestID)
	}
	s.sessions[session.TestID] = session
	return nil
}

func (s *Sessions) Get(id uuid.UUID) (models.TestSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return models.TestSession{}, apperr.NotFound("test %s not found", id)
	}
	return session, nil
}

// Update replaces a stored session.
func (s *Sessions) Update(session models.TestSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.TestID]; !ok {
		return apperr.NotFound("test %s not found", session.TestID)
	}
	s.sessions[session.TestID] = session
	return nil
}
