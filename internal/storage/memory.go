package storage

import (
	"sync"

	"github.com/san-kum/confetti/internal/config"
)

type MemoryStore struct {
	mu     sync.Mutex
	data   map[string]config.Snapshot
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]config.Snapshot)}
}

func (s *MemoryStore) Get(key string) (config.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false, ErrClosed
	}
	snap, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return snap.Clone(), true, nil
}

func (s *MemoryStore) Set(key string, snap config.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.data[key] = snap.Clone()
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
