package storage

import (
	"context"

	"github.com/iudanet/cashbook/internal/models"
)

//go:generate moq -out metadata_mock.go . MetadataStorage

// MetadataStorage defines interface for storing client sync metadata
type MetadataStorage interface {
	// SaveLastSyncTimestamp saves the timestamp of the last successful sync
	SaveLastSyncTimestamp(ctx context.Context, timestamp int64) error

	// GetLastSyncTimestamp retrieves the timestamp of the last successful sync
	// Returns 0 if no sync has been performed yet
	GetLastSyncTimestamp(ctx context.Context) (int64, error)

	// SaveSyncState persists engine status and the open conflict (if any)
	SaveSyncState(ctx context.Context, state *models.SyncState) error

	// GetSyncState returns the persisted sync state
	// Returns an Idle state if nothing was saved yet
	GetSyncState(ctx context.Context) (*models.SyncState, error)
}
