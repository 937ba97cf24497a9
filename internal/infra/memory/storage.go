package memory

import (
	"context"
	"sync"

	"wellness-quiz/internal/domain"
)

// Storage is an in-memory implementation of app.Storage. Nothing survives the process.
type Storage struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewStorage() *Storage {
	return &Storage{
		records: make(map[string][]byte),
	}
}

func (s *Storage) Load(_ context.Context, record string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.records[record]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *Storage) Save(_ context.Context, record string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record] = append([]byte(nil), data...)
	return nil
}

func (s *Storage) Delete(_ context.Context, record string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, record)
	return nil
}
