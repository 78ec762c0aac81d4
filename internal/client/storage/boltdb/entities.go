package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.etcd.io/bbolt"

	"github.com/iudanet/cashbook/internal/client/storage"
	"github.com/iudanet/cashbook/internal/models"
)

// GetEntity retrieves an entity snapshot
func (s *Storage) GetEntity(ctx context.Context, kind models.EntityKind, id string) (*models.Snapshot, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var snapshot *models.Snapshot

	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketEntities).Get([]byte(models.EntityKey(kind, id)))
		if data == nil {
			return storage.ErrEntityNotFound
		}

		snapshot = &models.Snapshot{}
		if err := json.Unmarshal(data, snapshot); err != nil {
			return fmt.Errorf("failed to unmarshal entity: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// ApplyEntity stores or replaces an entity snapshot
func (s *Storage) ApplyEntity(ctx context.Context, snapshot *models.Snapshot) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEntities).Put([]byte(snapshot.Key()), data)
	})
	if err != nil {
		return fmt.Errorf("apply transaction failed: %w", err)
	}

	return nil
}

// DeleteEntity removes an entity; absent entity is a no-op
func (s *Storage) DeleteEntity(ctx context.Context, kind models.EntityKind, id string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEntities).Delete([]byte(models.EntityKey(kind, id)))
	})
	if err != nil {
		return fmt.Errorf("delete transaction failed: %w", err)
	}

	return nil
}

// ListEntities returns all entities of a kind
func (s *Storage) ListEntities(ctx context.Context, kind models.EntityKind) ([]*models.Snapshot, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var snapshots []*models.Snapshot
	prefix := []byte(string(kind) + "/")

	err := s.db.View(func(tx *bbolt.Tx) error {
		// Ключи отсортированы, поэтому достаточно seek по префиксу
		c := tx.Bucket(bucketEntities).Cursor()
		for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, v = c.Next() {
			var snapshot models.Snapshot
			if err := json.Unmarshal(v, &snapshot); err != nil {
				return fmt.Errorf("failed to unmarshal entity: %w", err)
			}
			snapshots = append(snapshots, &snapshot)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}

	return snapshots, nil
}
