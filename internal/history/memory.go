package history

import (
	"context"
	"sync"
)

// MemoryStore keeps the log in process memory. Used with driver "memory" and
// in tests.
type MemoryStore struct {
	mu       sync.Mutex
	entries  []Entry
	settings map[string]string
	closed   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{settings: make(map[string]string)}
}

func (s *MemoryStore) Append(ctx context.Context, cmd string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Entry{}, ErrClosed
	}
	entry := newEntry(cmd)
	s.entries = append(s.entries, entry)
	return entry, nil
}

func (s *MemoryStore) Entries(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return append([]Entry(nil), s.entries...), nil
}

func (s *MemoryStore) Setting(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, ErrClosed
	}
	v, ok := s.settings[key]
	return v, ok, nil
}

func (s *MemoryStore) SetSetting(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.settings[key] = value
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
