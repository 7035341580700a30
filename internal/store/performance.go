package store

import (
	"sync"

	"studyquiz/internal/models"
)

// PerformanceLog is the append-only log of grading events.
type PerformanceLog struct {
	mu      sync.RWMutex
	records []models.PerformanceRecord
}

func NewPerformanceLog() *PerformanceLog {
	return &PerformanceLog{}
}

func (l *PerformanceLog) Append(rec models.PerformanceRecord) {
	rec.Topics = append([]string(nil), rec.Topics...)
	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()
}

// All returns a snapshot of the log in append order.
func (l *PerformanceLog) All() []models.PerformanceRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.PerformanceRecord, len(l.records))
	copy(out, l.records)
	return out
}

func (l *PerformanceLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
