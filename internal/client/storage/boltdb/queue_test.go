package boltdb

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cashbook/internal/client/storage"
	"github.com/iudanet/cashbook/internal/models"
)

// createTestQueueStorage создает временное хранилище для тестов очереди
func createTestQueueStorage(t *testing.T) (*Storage, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "queue_test.db")
	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store, dbPath
}

// createTestAction создает тестовую action для entry с заданной суммой
func createTestAction(t *testing.T, id, entityID string, amount int64) *models.Action {
	t.Helper()

	payload, err := models.EntrySnapshot(&models.Entry{ID: entityID, Amount: amount})
	require.NoError(t, err)

	return &models.Action{
		ID:         id,
		Kind:       models.ActionUpdate,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	}
}

func TestStorage_AppendAction_FIFO(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestQueueStorage(t)

	// Больше 255 элементов, чтобы проверить порядок за пределами одного байта
	const n = 300
	for i := 0; i < n; i++ {
		action := createTestAction(t, fmt.Sprintf("action-%d", i), fmt.Sprintf("entry-%d", i), int64(i))
		require.NoError(t, store.AppendAction(ctx, action))
		assert.Equal(t, uint64(i+1), action.Seq)
	}

	actions, err := store.ListActions(ctx)
	require.NoError(t, err)
	require.Len(t, actions, n)
	for i, action := range actions {
		assert.Equal(t, fmt.Sprintf("action-%d", i), action.ID)
	}

	count, err := store.CountActions(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, count)
}

func TestStorage_AppendAction_DuplicateID(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestQueueStorage(t)

	require.NoError(t, store.AppendAction(ctx, createTestAction(t, "dup", "entry-1", 1)))
	err := store.AppendAction(ctx, createTestAction(t, "dup", "entry-1", 2))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already queued")

	count, err := store.CountActions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStorage_GetAction(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestQueueStorage(t)

	require.NoError(t, store.AppendAction(ctx, createTestAction(t, "a1", "entry-1", 100)))

	got, err := store.GetAction(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)
	assert.Equal(t, models.ActionUpdate, got.Kind)

	entry, err := got.Payload.Entry()
	require.NoError(t, err)
	assert.Equal(t, int64(100), entry.Amount)

	_, err = store.GetAction(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrActionNotFound)
}

func TestStorage_DeleteAction_Idempotent(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestQueueStorage(t)

	for _, id := range []string{"a1", "a2", "a3"} {
		require.NoError(t, store.AppendAction(ctx, createTestAction(t, id, "entry-"+id, 1)))
	}

	require.NoError(t, store.DeleteAction(ctx, "a2"))
	require.NoError(t, store.DeleteAction(ctx, "a2"))
	require.NoError(t, store.DeleteAction(ctx, "never-existed"))

	actions, err := store.ListActions(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "a1", actions[0].ID)
	assert.Equal(t, "a3", actions[1].ID)
}

func TestStorage_UpdateAction_KeepsPosition(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestQueueStorage(t)

	for _, id := range []string{"a1", "a2", "a3"} {
		require.NoError(t, store.AppendAction(ctx, createTestAction(t, id, "entry-"+id, 1)))
	}

	updated := createTestAction(t, "a2", "entry-a2", 999)
	base, err := models.EntrySnapshot(&models.Entry{ID: "entry-a2", Amount: 5})
	require.NoError(t, err)
	updated.Base = &base
	updated.Seq = 77 // должно быть проигнорировано

	require.NoError(t, store.UpdateAction(ctx, updated))
	assert.Equal(t, uint64(2), updated.Seq)

	actions, err := store.ListActions(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 3)
	assert.Equal(t, "a2", actions[1].ID)
	require.NotNil(t, actions[1].Base)

	entry, err := actions[1].Payload.Entry()
	require.NoError(t, err)
	assert.Equal(t, int64(999), entry.Amount)

	err = store.UpdateAction(ctx, createTestAction(t, "missing", "entry-x", 1))
	assert.ErrorIs(t, err, storage.ErrActionNotFound)
}

func TestStorage_ClearActions_KeepsSequence(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestQueueStorage(t)

	require.NoError(t, store.AppendAction(ctx, createTestAction(t, "a1", "entry-1", 1)))
	require.NoError(t, store.AppendAction(ctx, createTestAction(t, "a2", "entry-2", 1)))

	require.NoError(t, store.ClearActions(ctx))

	actions, err := store.ListActions(ctx)
	require.NoError(t, err)
	assert.Empty(t, actions)

	count, err := store.CountActions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	next := createTestAction(t, "a3", "entry-3", 1)
	require.NoError(t, store.AppendAction(ctx, next))
	assert.Equal(t, uint64(3), next.Seq)
}

func TestStorage_Queue_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "reopen.db")

	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	for _, id := range []string{"a1", "a2", "a3"} {
		require.NoError(t, store.AppendAction(ctx, createTestAction(t, id, "entry-"+id, 1)))
	}
	require.NoError(t, store.DeleteAction(ctx, "a1"))
	require.NoError(t, store.Close())

	// Повторно открываем БД - порядок и содержимое должны сохраниться
	reopened, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, reopened.Close())
	}()

	actions, err := reopened.ListActions(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "a2", actions[0].ID)
	assert.Equal(t, "a3", actions[1].ID)

	next := createTestAction(t, "a4", "entry-a4", 1)
	require.NoError(t, reopened.AppendAction(ctx, next))
	assert.Equal(t, uint64(4), next.Seq)
}

func TestStorage_Queue_Closed(t *testing.T) {
	ctx := context.Background()
	store, err := New(ctx, filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.AppendAction(ctx, createTestAction(t, "a1", "e", 1)), storage.ErrStorageClosed)
	_, err = store.ListActions(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, store.DeleteAction(ctx, "a1"), storage.ErrStorageClosed)
}
