package storage

import (
	"fmt"
	"sync"
)

// InMemoryStore is a Store implementation powered by a map, to be used for
// testing or development.
type InMemoryStore struct {
	sync.Mutex
	m map[string][]byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		m: make(map[string][]byte),
	}
}

func (s *InMemoryStore) Put(key string, value []byte) (err error) {
	s.Lock()
	s.m[key] = dup(value)
	s.Unlock()
	return nil
}

func (s *InMemoryStore) Get(key string) (value []byte, err error) {
	s.Lock()
	value, ok := s.m[key]
	s.Unlock()
	if !ok {
		return nil, fmt.Errorf("%.40q: %w", key, ErrNotFound)
	}
	return dup(value), nil
}

// Len returns the number of keys stored.
func (s *InMemoryStore) Len() int {
	s.Lock()
	defer s.Unlock()
	return len(s.m)
}
