package data

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cashbook/internal/client/storage"
	"github.com/iudanet/cashbook/internal/client/storage/boltdb"
	"github.com/iudanet/cashbook/internal/models"
)

func newTestService(t *testing.T) (Service, *boltdb.Storage, *RecorderMock) {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	recorder := &RecorderMock{
		EnqueueChangeFunc: func(ctx context.Context, kind models.ActionKind, base *models.Snapshot, payload models.Snapshot) (*models.Action, error) {
			return &models.Action{ID: "a", Kind: kind, Base: base, Payload: payload}, nil
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, recorder, logger), store, recorder
}

func TestService_SaveEntry_CreateThenUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _, recorder := newTestService(t)

	entry := &models.Entry{Description: "Rent", DueDate: "2026-10-10", Amount: 150000}
	require.NoError(t, svc.SaveEntry(ctx, entry))
	assert.NotEmpty(t, entry.ID)

	entry.Amount = 160000
	require.NoError(t, svc.SaveEntry(ctx, entry))

	calls := recorder.EnqueueChangeCalls()
	require.Len(t, calls, 2)

	assert.Equal(t, models.ActionCreate, calls[0].Kind)
	assert.Nil(t, calls[0].Base)

	assert.Equal(t, models.ActionUpdate, calls[1].Kind)
	require.NotNil(t, calls[1].Base)
	base, err := calls[1].Base.Entry()
	require.NoError(t, err)
	assert.Equal(t, int64(150000), base.Amount)

	got, err := svc.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(160000), got.Amount)
}

func TestService_SaveEntry_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _, recorder := newTestService(t)

	err := svc.SaveEntry(ctx, &models.Entry{Amount: -1})
	assert.ErrorIs(t, err, ErrInvalidEntity)

	err = svc.SaveEntry(ctx, &models.Entry{Amount: 1, DueDate: "10/10/2026"})
	assert.ErrorIs(t, err, ErrInvalidEntity)

	assert.Empty(t, recorder.EnqueueChangeCalls())
}

func TestService_SaveEntry_RecorderFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	svc, store, recorder := newTestService(t)

	entry := &models.Entry{ID: "L1", Amount: 100}
	require.NoError(t, svc.SaveEntry(ctx, entry))

	queueErr := errors.New("queue: rejected")
	recorder.EnqueueChangeFunc = func(ctx context.Context, kind models.ActionKind, base *models.Snapshot, payload models.Snapshot) (*models.Action, error) {
		return nil, queueErr
	}

	entry.Amount = 999
	err := svc.SaveEntry(ctx, entry)
	require.ErrorIs(t, err, queueErr)

	got, err := store.GetEntity(ctx, models.EntityEntry, "L1")
	require.NoError(t, err)
	e, err := got.Entry()
	require.NoError(t, err)
	assert.Equal(t, int64(100), e.Amount)

	// Новая запись при ошибке удаляется
	err = svc.SaveEntry(ctx, &models.Entry{ID: "L2", Amount: 1})
	require.ErrorIs(t, err, queueErr)
	_, err = store.GetEntity(ctx, models.EntityEntry, "L2")
	assert.ErrorIs(t, err, storage.ErrEntityNotFound)
}

func TestService_PayEntry(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	require.NoError(t, svc.SaveEntry(ctx, &models.Entry{ID: "L1", Amount: 10000}))

	paidAt := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	entry, err := svc.PayEntry(ctx, "L1", 10500, paidAt)
	require.NoError(t, err)
	assert.Equal(t, int64(10500), entry.PaidAmount)
	assert.Equal(t, int64(500), entry.Interest)
	require.NotNil(t, entry.PaidAt)
	assert.True(t, paidAt.Equal(*entry.PaidAt))

	_, err = svc.PayEntry(ctx, "L1", 0, paidAt)
	assert.ErrorIs(t, err, ErrInvalidEntity)

	_, err = svc.PayEntry(ctx, "missing", 1, paidAt)
	assert.ErrorIs(t, err, storage.ErrEntityNotFound)
}

func TestService_DeleteEntry(t *testing.T) {
	ctx := context.Background()
	svc, _, recorder := newTestService(t)

	require.NoError(t, svc.SaveEntry(ctx, &models.Entry{ID: "L1", Amount: 100}))
	require.NoError(t, svc.DeleteEntry(ctx, "L1"))

	calls := recorder.EnqueueChangeCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, models.ActionDelete, calls[1].Kind)
	assert.Equal(t, "L1", calls[1].Payload.ID)

	_, err := svc.GetEntry(ctx, "L1")
	assert.ErrorIs(t, err, storage.ErrEntityNotFound)

	assert.ErrorIs(t, svc.DeleteEntry(ctx, "L1"), storage.ErrEntityNotFound)
}

func TestService_Goals(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	goal := &models.Goal{Name: "Trip", TargetAmount: 500000, TargetDate: "2027-01-01"}
	require.NoError(t, svc.SaveGoal(ctx, goal))

	updated, err := svc.AddContribution(ctx, goal.ID, 2500, "2026-10-15")
	require.NoError(t, err)
	require.Len(t, updated.Contributions, 1)

	// Изменение цели без взносов сохраняет существующие взносы
	require.NoError(t, svc.SaveGoal(ctx, &models.Goal{ID: goal.ID, Name: "Trip", TargetAmount: 600000}))
	got, err := svc.GetGoal(ctx, goal.ID)
	require.NoError(t, err)
	assert.Len(t, got.Contributions, 1)
	assert.Equal(t, int64(600000), got.TargetAmount)

	goals, err := svc.ListGoals(ctx)
	require.NoError(t, err)
	assert.Len(t, goals, 1)

	assert.ErrorIs(t, svc.SaveGoal(ctx, &models.Goal{TargetAmount: 1}), ErrInvalidEntity)
	_, err = svc.AddContribution(ctx, goal.ID, -5, "2026-10-15")
	assert.ErrorIs(t, err, ErrInvalidEntity)

	require.NoError(t, svc.DeleteGoal(ctx, goal.ID))
	goals, err = svc.ListGoals(ctx)
	require.NoError(t, err)
	assert.Empty(t, goals)
}

func TestService_Named(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	require.NoError(t, svc.SaveNamed(ctx, models.EntitySupplier, &models.Named{Name: "ACME"}))
	require.NoError(t, svc.SaveNamed(ctx, models.EntityCategory, &models.Named{ID: "c1", Name: "Rent"}))

	suppliers, err := svc.ListNamed(ctx, models.EntitySupplier)
	require.NoError(t, err)
	require.Len(t, suppliers, 1)
	assert.Equal(t, "ACME", suppliers[0].Name)

	assert.ErrorIs(t, svc.SaveNamed(ctx, models.EntityEntry, &models.Named{Name: "x"}), ErrInvalidEntity)
	assert.ErrorIs(t, svc.SaveNamed(ctx, models.EntityCategory, &models.Named{}), ErrInvalidEntity)

	require.NoError(t, svc.DeleteNamed(ctx, models.EntityCategory, "c1"))
	categories, err := svc.ListNamed(ctx, models.EntityCategory)
	require.NoError(t, err)
	assert.Empty(t, categories)
}
