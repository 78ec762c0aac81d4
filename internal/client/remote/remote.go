package remote

import (
	"context"
	"errors"
	"time"

	"github.com/iudanet/cashbook/internal/models"
	"github.com/iudanet/cashbook/pkg/api"
)

//go:generate moq -out store_mock.go . Store

// Store is the authoritative backend the sync engine drains into.
type Store interface {
	// FetchSnapshot returns the current remote snapshot of an entity
	// Returns api.ErrNotFound if the remote has no such entity
	FetchSnapshot(ctx context.Context, kind models.EntityKind, id string) (*models.Snapshot, error)

	// CommitAction applies a queued action remotely
	// Returns an error matching api.ErrRejected on business refusal
	CommitAction(ctx context.Context, action *models.Action) error

	// ConfirmBatch ends a successful drain
	ConfirmBatch(ctx context.Context) (*api.BatchReceipt, error)
}

// Class классифицирует ошибку удалённого хранилища
type Class int

const (
	ClassNone        Class = iota // ClassNone нет ошибки
	ClassNotFound                 // ClassNotFound сущности нет на сервере
	ClassRejected                 // ClassRejected бизнес-отказ, повтор бесполезен
	ClassUnavailable              // ClassUnavailable сеть/таймаут, повтор возможен
)

func (c Class) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassNotFound:
		return "not_found"
	case ClassRejected:
		return "rejected"
	default:
		return "unavailable"
	}
}

// Retryable reports whether a later trigger may succeed without user action.
func (c Class) Retryable() bool {
	return c == ClassUnavailable
}

// Classify maps a remote error onto the sync error taxonomy.
// Anything that is not an explicit not-found or rejection is treated as
// transient, including deadline and cancellation errors.
func Classify(err error) Class {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, api.ErrNotFound):
		return ClassNotFound
	case errors.Is(err, api.ErrRejected):
		return ClassRejected
	default:
		return ClassUnavailable
	}
}

// timeoutStore bounds every remote call with its own deadline
type timeoutStore struct {
	next    Store
	timeout time.Duration
}

// WithTimeout wraps store so that each call carries a bounded timeout.
// A non-positive timeout returns store unchanged.
func WithTimeout(store Store, timeout time.Duration) Store {
	if timeout <= 0 {
		return store
	}
	return &timeoutStore{next: store, timeout: timeout}
}

func (s *timeoutStore) FetchSnapshot(ctx context.Context, kind models.EntityKind, id string) (*models.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.FetchSnapshot(ctx, kind, id)
}

func (s *timeoutStore) CommitAction(ctx context.Context, action *models.Action) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.CommitAction(ctx, action)
}

func (s *timeoutStore) ConfirmBatch(ctx context.Context) (*api.BatchReceipt, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.ConfirmBatch(ctx)
}
