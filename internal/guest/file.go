package guest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore persists guest state as one JSON file per key under a state
// directory. It is the localStorage analogue: survives restarts, scoped
// to the machine, and a corrupt or missing file reads as absent.
type FileStore struct {
	broadcaster
	mu  sync.Mutex
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	return value, true
}

// Set writes via a temp file plus rename so a crash mid-write leaves the
// previous snapshot intact.
func (s *FileStore) Set(key string, value []byte) error {
	s.mu.Lock()
	target := s.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("replace %s: %w", key, err)
	}
	s.mu.Unlock()
	s.publish(Event{Key: key, Value: value})
	return nil
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	err := os.Remove(s.path(key))
	s.mu.Unlock()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	s.publish(Event{Key: key, Value: nil})
	return nil
}

func (s *FileStore) path(key string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(s.dir, cleaned+".json")
}
