package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/cashbook/internal/client/storage"
	"github.com/iudanet/cashbook/internal/models"
)

// seqKey кодирует позицию в очереди; big-endian сохраняет порядок курсора
func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// AppendAction stores action at the tail of the queue and assigns action.Seq
func (s *Storage) AppendAction(ctx context.Context, action *models.Action) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		queue := tx.Bucket(bucketQueue)
		index := tx.Bucket(bucketQueueIndex)
		if queue == nil || index == nil {
			return fmt.Errorf("queue bucket not found")
		}

		if index.Get([]byte(action.ID)) != nil {
			return fmt.Errorf("action %s already queued", action.ID)
		}

		// NextSequence монотонен и переживает рестарт
		seq, err := queue.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate sequence: %w", err)
		}
		action.Seq = seq

		data, err := json.Marshal(action)
		if err != nil {
			return fmt.Errorf("failed to marshal action: %w", err)
		}

		key := seqKey(seq)
		if err := queue.Put(key, data); err != nil {
			return fmt.Errorf("failed to save action: %w", err)
		}
		if err := index.Put([]byte(action.ID), key); err != nil {
			return fmt.Errorf("failed to index action: %w", err)
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("append transaction failed: %w", err)
	}

	return nil
}

// GetAction retrieves a queued action by ID
func (s *Storage) GetAction(ctx context.Context, id string) (*models.Action, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var action *models.Action

	err := s.db.View(func(tx *bbolt.Tx) error {
		key := tx.Bucket(bucketQueueIndex).Get([]byte(id))
		if key == nil {
			return storage.ErrActionNotFound
		}

		data := tx.Bucket(bucketQueue).Get(key)
		if data == nil {
			return storage.ErrActionNotFound
		}

		action = &models.Action{}
		if err := json.Unmarshal(data, action); err != nil {
			return fmt.Errorf("failed to unmarshal action: %w", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return action, nil
}

// UpdateAction rewrites a queued action in place, keeping its position
func (s *Storage) UpdateAction(ctx context.Context, action *models.Action) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		indexed := tx.Bucket(bucketQueueIndex).Get([]byte(action.ID))
		if indexed == nil {
			return storage.ErrActionNotFound
		}
		key := append([]byte(nil), indexed...)

		// Позиция определяется ключом, а не полем из аргумента
		action.Seq = binary.BigEndian.Uint64(key)

		data, err := json.Marshal(action)
		if err != nil {
			return fmt.Errorf("failed to marshal action: %w", err)
		}

		return tx.Bucket(bucketQueue).Put(key, data)
	})

	if err != nil {
		return fmt.Errorf("update transaction failed: %w", err)
	}

	return nil
}

// DeleteAction removes action by ID; removing an absent ID is a no-op
func (s *Storage) DeleteAction(ctx context.Context, id string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		index := tx.Bucket(bucketQueueIndex)
		key := index.Get([]byte(id))
		if key == nil {
			return nil
		}

		// key указывает в память mmap, копируем до изменения bucket
		seq := append([]byte(nil), key...)

		if err := tx.Bucket(bucketQueue).Delete(seq); err != nil {
			return fmt.Errorf("failed to delete action: %w", err)
		}
		return index.Delete([]byte(id))
	})

	if err != nil {
		return fmt.Errorf("delete transaction failed: %w", err)
	}

	return nil
}

// ListActions returns all queued actions in FIFO order
func (s *Storage) ListActions(ctx context.Context) ([]*models.Action, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	actions := []*models.Action{}

	err := s.db.View(func(tx *bbolt.Tx) error {
		// ForEach обходит ключи в порядке сортировки байтов
		return tx.Bucket(bucketQueue).ForEach(func(k, v []byte) error {
			var action models.Action
			if err := json.Unmarshal(v, &action); err != nil {
				return fmt.Errorf("failed to unmarshal action: %w", err)
			}
			actions = append(actions, &action)
			return nil
		})
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}

	return actions, nil
}

// CountActions returns the queue length
func (s *Storage) CountActions(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, storage.ErrStorageClosed
	}

	var count int
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketQueueIndex).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count actions: %w", err)
	}

	return count, nil
}

// ClearActions removes every queued action.
// The queue bucket sequence is kept so that new actions never reuse old positions.
func (s *Storage) ClearActions(ctx context.Context) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		queue := tx.Bucket(bucketQueue)
		seq := queue.Sequence()

		for _, name := range [][]byte{bucketQueue, bucketQueueIndex} {
			if err := tx.DeleteBucket(name); err != nil && err != bbolt.ErrBucketNotFound {
				return fmt.Errorf("failed to delete %s bucket: %w", name, err)
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}

		return tx.Bucket(bucketQueue).SetSequence(seq)
	})

	if err != nil {
		return fmt.Errorf("clear transaction failed: %w", err)
	}

	return nil
}
