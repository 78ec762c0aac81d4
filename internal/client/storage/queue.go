package storage

import (
	"context"

	"github.com/iudanet/cashbook/internal/models"
)

//go:generate moq -out queue_mock.go . QueueStorage

// QueueStorage defines interface for the persisted offline action queue.
// Implementations must return actions in insertion order and keep that order across restarts.
type QueueStorage interface {
	// AppendAction stores action at the tail of the queue and assigns action.Seq
	AppendAction(ctx context.Context, action *models.Action) error

	// GetAction retrieves a queued action by ID
	// Returns ErrActionNotFound if action doesn't exist
	GetAction(ctx context.Context, id string) (*models.Action, error)

	// UpdateAction rewrites a queued action in place, keeping its position
	// Returns ErrActionNotFound if action doesn't exist
	UpdateAction(ctx context.Context, action *models.Action) error

	// DeleteAction removes action by ID; removing an absent ID is not an error
	DeleteAction(ctx context.Context, id string) error

	// ListActions returns all queued actions in FIFO order
	ListActions(ctx context.Context) ([]*models.Action, error)

	// CountActions returns the queue length
	CountActions(ctx context.Context) (int, error)

	// ClearActions removes every queued action
	ClearActions(ctx context.Context) error
}
