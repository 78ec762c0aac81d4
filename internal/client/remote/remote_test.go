package remote

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cashbook/internal/models"
	"github.com/iudanet/cashbook/pkg/api"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err       error
		name      string
		want      Class
		retryable bool
	}{
		{name: "nil", err: nil, want: ClassNone},
		{name: "not found", err: api.ErrNotFound, want: ClassNotFound},
		{name: "wrapped not found", err: fmt.Errorf("fetch: %w", api.ErrNotFound), want: ClassNotFound},
		{name: "rejected", err: api.Reject("a1", "negative amount"), want: ClassRejected},
		{name: "wrapped rejected", err: fmt.Errorf("commit: %w", api.Reject("a1", "closed period")), want: ClassRejected},
		{name: "deadline", err: context.DeadlineExceeded, want: ClassUnavailable, retryable: true},
		{name: "network", err: errors.New("connection refused"), want: ClassUnavailable, retryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.retryable, got.Retryable())
		})
	}
}

func TestWithTimeout_BoundsEachCall(t *testing.T) {
	mock := &StoreMock{
		FetchSnapshotFunc: func(ctx context.Context, kind models.EntityKind, id string) (*models.Snapshot, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
		CommitActionFunc: func(ctx context.Context, action *models.Action) error {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			return nil
		},
		ConfirmBatchFunc: func(ctx context.Context) (*api.BatchReceipt, error) {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			return &api.BatchReceipt{}, nil
		},
	}

	store := WithTimeout(mock, 20*time.Millisecond)

	start := time.Now()
	_, err := store.FetchSnapshot(context.Background(), models.EntityEntry, "L1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, ClassUnavailable, Classify(err))
	assert.Less(t, time.Since(start), 2*time.Second)

	require.NoError(t, store.CommitAction(context.Background(), &models.Action{ID: "a1"}))
	_, err = store.ConfirmBatch(context.Background())
	require.NoError(t, err)

	assert.Len(t, mock.FetchSnapshotCalls(), 1)
	assert.Len(t, mock.CommitActionCalls(), 1)
	assert.Len(t, mock.ConfirmBatchCalls(), 1)
}

func TestWithTimeout_Disabled(t *testing.T) {
	mock := &StoreMock{}
	assert.Same(t, Store(mock), WithTimeout(mock, 0))
}
