package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/cashbook/internal/client/storage"
	"github.com/iudanet/cashbook/internal/models"
)

// Queue is the offline action queue: an ordered, persisted list of pending mutations.
// It has no remote side effects.
type Queue struct {
	storage storage.QueueStorage
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a queue on top of persistent storage
func New(storage storage.QueueStorage, logger *slog.Logger) *Queue {
	return &Queue{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// Enqueue validates and appends a mutation whose pre-image is the payload itself.
func (q *Queue) Enqueue(ctx context.Context, kind models.ActionKind, payload models.Snapshot) (*models.Action, error) {
	return q.EnqueueChange(ctx, kind, nil, payload)
}

// EnqueueChange validates and appends a mutation with an explicit pre-image.
// base may be nil.
func (q *Queue) EnqueueChange(ctx context.Context, kind models.ActionKind, base *models.Snapshot, payload models.Snapshot) (*models.Action, error) {
	if err := validate(kind, base, &payload); err != nil {
		q.logger.Warn("Rejected malformed action", "kind", kind, "entity_id", payload.ID, "error", err)
		return nil, err
	}

	action := &models.Action{
		ID:         uuid.New().String(),
		Kind:       kind,
		Payload:    *payload.Clone(),
		Base:       base.Clone(),
		EnqueuedAt: q.now().UTC(),
	}

	if err := q.storage.AppendAction(ctx, action); err != nil {
		return nil, fmt.Errorf("failed to persist action: %w", err)
	}

	q.logger.Debug("Action enqueued",
		"action_id", action.ID,
		"kind", action.Kind,
		"entity_kind", action.Payload.Kind,
		"entity_id", action.Payload.ID,
		"seq", action.Seq)

	return action.Clone(), nil
}

// Remove removes an action; removing an absent id is a no-op.
func (q *Queue) Remove(ctx context.Context, id string) error {
	if err := q.storage.DeleteAction(ctx, id); err != nil {
		return fmt.Errorf("failed to remove action %s: %w", id, err)
	}
	return nil
}

// List returns the current contents in FIFO order.
func (q *Queue) List(ctx context.Context) ([]*models.Action, error) {
	actions, err := q.storage.ListActions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	return actions, nil
}

// Get returns a queued action, storage.ErrActionNotFound if absent.
func (q *Queue) Get(ctx context.Context, id string) (*models.Action, error) {
	return q.storage.GetAction(ctx, id)
}

// Len returns the number of queued actions.
func (q *Queue) Len(ctx context.Context) (int, error) {
	n, err := q.storage.CountActions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count queue: %w", err)
	}
	return n, nil
}

// Rebase replaces the pre-image of a queued action, keeping its position.
// A nil base on an update means the entity no longer exists remotely,
// so the action is turned into a create.
func (q *Queue) Rebase(ctx context.Context, id string, base *models.Snapshot) (*models.Action, error) {
	action, err := q.storage.GetAction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load action %s: %w", id, err)
	}

	if base != nil {
		action.Base = base.Clone()
	} else {
		// Payload становится pre-image; для create сравнение с NotFound проходит
		action.Base = nil
		if action.Kind == models.ActionUpdate {
			action.Kind = models.ActionCreate
		}
	}

	if err := q.storage.UpdateAction(ctx, action); err != nil {
		return nil, fmt.Errorf("failed to rebase action %s: %w", id, err)
	}

	q.logger.Debug("Action rebased", "action_id", id, "kind", action.Kind)
	return action, nil
}

// Clear drops every queued action.
func (q *Queue) Clear(ctx context.Context) error {
	if err := q.storage.ClearActions(ctx); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}
	q.logger.Info("Offline queue cleared")
	return nil
}

func validate(kind models.ActionKind, base, payload *models.Snapshot) error {
	if !kind.Valid() {
		return invalid(string(kind), "unknown mutation type %q", kind)
	}
	if err := validateSnapshot(payload); err != nil {
		return invalid(string(kind), "payload: %v", err)
	}
	if base != nil {
		if err := validateSnapshot(base); err != nil {
			return invalid(string(kind), "base: %v", err)
		}
		if base.Kind != payload.Kind || base.ID != payload.ID {
			return invalid(string(kind), "base %s does not match payload %s", base.Key(), payload.Key())
		}
	}
	return nil
}

func validateSnapshot(s *models.Snapshot) error {
	if !s.Kind.Valid() {
		return fmt.Errorf("unknown entity kind %q", s.Kind)
	}
	if s.ID == "" {
		return errors.New("missing target entity id")
	}
	if len(s.Data) == 0 || !json.Valid(s.Data) {
		return errors.New("entity data is not valid JSON")
	}
	return nil
}
