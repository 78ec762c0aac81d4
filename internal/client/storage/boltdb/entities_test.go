package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cashbook/internal/client/storage"
	"github.com/iudanet/cashbook/internal/models"
)

func TestStorage_ApplyAndGetEntity(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestQueueStorage(t)

	snapshot, err := models.EntrySnapshot(&models.Entry{
		ID:          "L1",
		Description: "Aluguel",
		DueDate:     "2026-10-10",
		Amount:      150000,
	})
	require.NoError(t, err)

	require.NoError(t, store.ApplyEntity(ctx, &snapshot))

	got, err := store.GetEntity(ctx, models.EntityEntry, "L1")
	require.NoError(t, err)
	entry, err := got.Entry()
	require.NoError(t, err)
	assert.Equal(t, "Aluguel", entry.Description)
	assert.Equal(t, int64(150000), entry.Amount)

	// Перезапись
	snapshot, err = models.EntrySnapshot(&models.Entry{ID: "L1", Amount: 1})
	require.NoError(t, err)
	require.NoError(t, store.ApplyEntity(ctx, &snapshot))

	got, err = store.GetEntity(ctx, models.EntityEntry, "L1")
	require.NoError(t, err)
	entry, err = got.Entry()
	require.NoError(t, err)
	assert.Equal(t, int64(1), entry.Amount)
}

func TestStorage_GetEntity_NotFound(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestQueueStorage(t)

	_, err := store.GetEntity(ctx, models.EntityGoal, "missing")
	assert.ErrorIs(t, err, storage.ErrEntityNotFound)
}

func TestStorage_DeleteEntity(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestQueueStorage(t)

	snapshot, err := models.NamedSnapshot(models.EntityCategory, &models.Named{ID: "c1", Name: "Rent"})
	require.NoError(t, err)
	require.NoError(t, store.ApplyEntity(ctx, &snapshot))

	require.NoError(t, store.DeleteEntity(ctx, models.EntityCategory, "c1"))
	require.NoError(t, store.DeleteEntity(ctx, models.EntityCategory, "c1"))

	_, err = store.GetEntity(ctx, models.EntityCategory, "c1")
	assert.ErrorIs(t, err, storage.ErrEntityNotFound)
}

func TestStorage_ListEntities_ByKind(t *testing.T) {
	ctx := context.Background()
	store, _ := createTestQueueStorage(t)

	for _, id := range []string{"e1", "e2"} {
		s, err := models.EntrySnapshot(&models.Entry{ID: id})
		require.NoError(t, err)
		require.NoError(t, store.ApplyEntity(ctx, &s))
	}
	goal, err := models.GoalSnapshot(&models.Goal{ID: "g1", Name: "Trip"})
	require.NoError(t, err)
	require.NoError(t, store.ApplyEntity(ctx, &goal))

	entries, err := store.ListEntities(ctx, models.EntityEntry)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "e1", entries[0].ID)
	assert.Equal(t, "e2", entries[1].ID)

	goals, err := store.ListEntities(ctx, models.EntityGoal)
	require.NoError(t, err)
	require.Len(t, goals, 1)

	suppliers, err := store.ListEntities(ctx, models.EntitySupplier)
	require.NoError(t, err)
	assert.Empty(t, suppliers)
}
