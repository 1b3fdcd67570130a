package kv

import (
	"context"
	"sync"
)

// MemStore keeps values in a process-local map. It backs tests and the
// default dev configuration; nothing survives a restart.
type MemStore struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{m: map[string]string{}}
}

func (s *MemStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MemStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }
