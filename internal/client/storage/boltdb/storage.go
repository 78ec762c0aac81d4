package boltdb

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var (
	// BoltDB bucket names
	bucketQueue      = []byte("queue")       // seq (big-endian uint64) -> Action JSON
	bucketQueueIndex = []byte("queue_index") // action id -> seq
	bucketMetadata   = []byte("metadata")
	bucketEntities   = []byte("entities") // "kind/id" -> Snapshot JSON
)

// openTimeout ограничивает ожидание file lock, пока базу держит другой процесс (например, daemon)
var openTimeout = 2 * time.Second

// buckets все buckets клиентской базы
var buckets = [][]byte{bucketQueue, bucketQueueIndex, bucketMetadata, bucketEntities}

// Storage represents BoltDB storage implementation for client.
// It implements storage.QueueStorage, storage.MetadataStorage and storage.EntityStorage.
type Storage struct {
	db *bbolt.DB
}

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	storage := &Storage{db: db}

	// Инициализируем buckets
	if err := storage.initBuckets(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}
