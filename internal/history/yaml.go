package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// yamlDocument is the on-disk layout of a YAML history file:
//
//	entries:
//	  - id: 5f0c...
//	    command: '``kxy = x'
//	    time: 2024-05-01T10:00:00Z
//	settings:
//	  display_style: ecmascript
type yamlDocument struct {
	Entries  []Entry           `yaml:"entries"`
	Settings map[string]string `yaml:"settings,omitempty"`
}

// YAMLStore keeps the whole log in one YAML file, rewritten on every change.
type YAMLStore struct {
	mu     sync.Mutex
	path   string
	doc    yamlDocument
	closed bool
}

// OpenYAML loads path if it exists. The file and its directory are created on
// the first write.
func OpenYAML(path string) (*YAMLStore, error) {
	s := &YAMLStore{path: path}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading history %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &s.doc); err != nil {
			return nil, fmt.Errorf("parsing history %s: %w", path, err)
		}
	}
	if s.doc.Settings == nil {
		s.doc.Settings = make(map[string]string)
	}
	return s, nil
}

// save writes to a temporary file and renames it over the old one.
func (s *YAMLStore) save() error {
	data, err := yaml.Marshal(&s.doc)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing history %s: %w", s.path, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("writing history %s: %w", s.path, err)
	}
	return nil
}

func (s *YAMLStore) Append(ctx context.Context, cmd string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Entry{}, ErrClosed
	}
	entry := newEntry(cmd)
	s.doc.Entries = append(s.doc.Entries, entry)
	if err := s.save(); err != nil {
		s.doc.Entries = s.doc.Entries[:len(s.doc.Entries)-1]
		return Entry{}, fmt.Errorf("append: %w", err)
	}
	return entry, nil
}

func (s *YAMLStore) Entries(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	return append([]Entry(nil), s.doc.Entries...), nil
}

func (s *YAMLStore) Setting(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, ErrClosed
	}
	v, ok := s.doc.Settings[key]
	return v, ok, nil
}

func (s *YAMLStore) SetSetting(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	old, had := s.doc.Settings[key]
	s.doc.Settings[key] = value
	if err := s.save(); err != nil {
		if had {
			s.doc.Settings[key] = old
		} else {
			delete(s.doc.Settings, key)
		}
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

func (s *YAMLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
