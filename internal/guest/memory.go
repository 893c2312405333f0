package guest

import "sync"

// MemoryStore keeps guest state in process memory. Used by tests and
// ephemeral sessions that should not outlive the program.
type MemoryStore struct {
	broadcaster
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	if !ok {
		return nil, false
	}
	copied := make([]byte, len(value))
	copy(copied, value)
	return copied, true
}

func (s *MemoryStore) Set(key string, value []byte) error {
	copied := make([]byte, len(value))
	copy(copied, value)
	s.mu.Lock()
	s.data[key] = copied
	s.mu.Unlock()
	s.publish(Event{Key: key, Value: copied})
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	s.publish(Event{Key: key, Value: nil})
	return nil
}
