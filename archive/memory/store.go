package memory

import (
	"context"
	"sync"

	"github.com/purechat/purechat-server/archive"
)

type store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewInMemory() archive.Store {
	return &store{
		data: make(map[string][]byte),
	}
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)
}

func (s *store) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy of the data to prevent external modifications
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	s.data[key] = dataCopy
	return nil
}

func (s *store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.data[key]
	if !exists {
		return nil, archive.ErrNotFound
	}

	// Return a copy of the data to prevent external modifications
	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	return dataCopy, nil
}
