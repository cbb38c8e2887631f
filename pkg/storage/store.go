package storage

import (
	"sync"

	"github.com/cuemby/skyconsole/pkg/types"
)

// SessionKey is the well-known key the session record lives under
const SessionKey = "skytask-auth"

// Store defines durable storage for the console session record
type Store interface {
	// LoadSession returns the stored session merged over defaults. A missing
	// or unreadable record yields the default session and a nil error; only
	// storage I/O failures are returned.
	LoadSession() (types.Session, error)
	SaveSession(session types.Session) error
	DeleteSession() error

	Close() error
}

// MemoryStore is a Store kept in process memory
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) LoadSession() (types.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return DecodeSession(s.data), nil
}

func (s *MemoryStore) SaveSession(session types.Session) error {
	data, err := EncodeSession(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	return nil
}

func (s *MemoryStore) DeleteSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}

// Raw returns the stored bytes, nil when nothing is stored
func (s *MemoryStore) Raw() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// SetRaw replaces the stored bytes
func (s *MemoryStore) SetRaw(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
}

func (s *MemoryStore) Close() error {
	return nil
}
