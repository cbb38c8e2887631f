package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cuemby/skyconsole/pkg/log"
	"github.com/cuemby/skyconsole/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketSession = []byte("session")
)

// DatabaseFile is the bbolt file name inside the data dir
const DatabaseFile = "skyconsole.db"

// Sealer encrypts records before they are written
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// BoltStore implements Store using BoltDB
type BoltStore struct {
	db     *bolt.DB
	sealer Sealer
}

// BoltOption configures a BoltStore
type BoltOption func(*BoltStore)

// WithSealer encrypts the stored record with sealer. Unsealed records written
// before sealing was enabled are still read.
func WithSealer(sealer Sealer) BoltOption {
	return func(s *BoltStore) {
		s.sealer = sealer
	}
}

// NewBoltStore creates a new BoltDB-backed store under dataDir
func NewBoltStore(dataDir string, opts ...BoltOption) (*BoltStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Timeout keeps a second console process from blocking forever on the file lock
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketSession); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketSession, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BoltStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) LoadSession() (types.Session, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if v := b.Get([]byte(SessionKey)); v != nil {
			// bbolt values are only valid inside the transaction
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return types.DefaultSession(), fmt.Errorf("failed to read session: %w", err)
	}
	return DecodeSession(s.open(data)), nil
}

// open unseals data. A record that fails to unseal and is not a plaintext
// JSON record is discarded.
func (s *BoltStore) open(data []byte) []byte {
	if s.sealer == nil || len(data) == 0 {
		return data
	}
	plaintext, err := s.sealer.Open(data)
	if err == nil {
		return plaintext
	}
	if json.Valid(data) {
		return data
	}
	logger := log.WithComponent("storage")
	logger.Warn().Err(err).Msg("Discarding session record that cannot be unsealed")
	return nil
}

func (s *BoltStore) SaveSession(session types.Session) error {
	data, err := EncodeSession(session)
	if err != nil {
		return err
	}
	if s.sealer != nil {
		if data, err = s.sealer.Seal(data); err != nil {
			return fmt.Errorf("failed to seal session: %w", err)
		}
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		return b.Put([]byte(SessionKey), data)
	})
}

func (s *BoltStore) DeleteSession() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		return b.Delete([]byte(SessionKey))
	})
}
