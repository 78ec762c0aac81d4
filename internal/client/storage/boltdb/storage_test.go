package boltdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/cashbook/internal/models"
)

// missingBuckets возвращает имена отсутствующих buckets
func missingBuckets(t *testing.T, db *bbolt.DB) []string {
	t.Helper()
	var missing []string
	err := db.View(func(tx *bbolt.Tx) error {
		for _, b := range buckets {
			if tx.Bucket(b) == nil {
				missing = append(missing, string(b))
			}
		}
		return nil
	})
	require.NoError(t, err)
	return missing
}

func TestNew_CreatesClientBuckets(t *testing.T) {
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, store.Close())
	}()

	assert.Empty(t, missingBuckets(t, store.db))
}

func TestNew_InvalidPath(t *testing.T) {
	store, err := New(context.Background(), string([]byte{0}))
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNew_LockedByDaemon(t *testing.T) {
	prev := openTimeout
	openTimeout = 50 * time.Millisecond
	t.Cleanup(func() { openTimeout = prev })

	path := filepath.Join(t.TempDir(), "client.db")
	ctx := context.Background()

	// Первый handle держит file lock, как запущенный daemon
	daemon, err := New(ctx, path)
	require.NoError(t, err)

	started := time.Now()
	second, err := New(ctx, path)
	require.Error(t, err)
	assert.Nil(t, second)
	assert.ErrorIs(t, err, bbolt.ErrTimeout)
	assert.Less(t, time.Since(started), time.Second)

	// После остановки daemon база снова доступна
	require.NoError(t, daemon.Close())
	second, err = New(ctx, path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestNew_ReopenKeepsClientState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.db")
	ctx := context.Background()

	store, err := New(ctx, path)
	require.NoError(t, err)

	rent, err := models.EntrySnapshot(&models.Entry{ID: "L1", Description: "Rent", Amount: 10000})
	require.NoError(t, err)
	require.NoError(t, store.ApplyEntity(ctx, &rent))
	require.NoError(t, store.SaveSyncState(ctx, &models.SyncState{
		Status: models.StatusConflict,
		Conflict: &models.Conflict{
			EntityKind:      models.EntityEntry,
			EntityID:        "L1",
			RelatedActionID: "a1",
			ActionKind:      models.ActionUpdate,
			LocalSnapshot:   rent,
			Fields:          []string{"amount"},
		},
	}))
	require.NoError(t, store.Close())

	store, err = New(ctx, path)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, store.Close())
	}()

	got, err := store.GetEntity(ctx, models.EntityEntry, "L1")
	require.NoError(t, err)
	assert.JSONEq(t, string(rent.Data), string(got.Data))

	state, err := store.GetSyncState(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConflict, state.Status)
	require.NotNil(t, state.Conflict)
	assert.Equal(t, "a1", state.Conflict.RelatedActionID)
	assert.Nil(t, state.Conflict.RemoteSnapshot)
}

func TestClose_Twice(t *testing.T) {
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)

	require.NoError(t, store.Close())
	assert.Nil(t, store.db)
	assert.NoError(t, store.Close())
}

func TestInitBuckets_RecreatesDropped(t *testing.T) {
	db, err := bbolt.Open(filepath.Join(t.TempDir(), "client.db"), 0600, nil)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Update(func(tx *bbolt.Tx) error {
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return tx.DeleteBucket(bucketQueueIndex)
	}))
	assert.Equal(t, []string{"queue_index"}, missingBuckets(t, db))

	store := &Storage{db: db}
	require.NoError(t, store.initBuckets())
	assert.Empty(t, missingBuckets(t, db))
}
