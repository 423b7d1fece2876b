package inmemkv

import (
	"sync"

	"github.com/trezcool/darasa/core/session"
)

// Store is a map-backed session.Repository. State dies with the process;
// meant for tests and ephemeral runs.
type Store struct {
	mu    sync.RWMutex
	table map[string]string
}

var _ session.Repository = (*Store)(nil) // interface compliance check

func Open() *Store {
	return &Store{table: make(map[string]string)}
}

func (s *Store) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.table[key]
	if !ok {
		return "", session.ErrKeyNotFound
	}
	return val, nil
}

func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table[key] = value
	return nil
}

func (s *Store) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.table, key)
	}
	return nil
}

// Len reports the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.table)
}
