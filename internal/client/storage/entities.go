package storage

import (
	"context"

	"github.com/iudanet/cashbook/internal/models"
)

//go:generate moq -out entities_mock.go . EntityStorage

// EntityStorage defines interface for the local copy of domain entities
type EntityStorage interface {
	// GetEntity retrieves an entity snapshot
	// Returns ErrEntityNotFound if entity doesn't exist
	GetEntity(ctx context.Context, kind models.EntityKind, id string) (*models.Snapshot, error)

	// ApplyEntity stores or replaces an entity snapshot
	ApplyEntity(ctx context.Context, snapshot *models.Snapshot) error

	// DeleteEntity removes an entity; removing an absent entity is not an error
	DeleteEntity(ctx context.Context, kind models.EntityKind, id string) error

	// ListEntities returns all entities of a kind
	ListEntities(ctx context.Context, kind models.EntityKind) ([]*models.Snapshot, error)
}
