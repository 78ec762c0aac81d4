package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/cashbook/internal/client/storage"
	"github.com/iudanet/cashbook/internal/models"
)

// Choice is the user's decision on an open conflict
type Choice string

const (
	// ChoiceLocal keeps the local payload and re-commits it over the remote version
	ChoiceLocal Choice = "local"
	// ChoiceRemote accepts the remote version and discards the local action
	ChoiceRemote Choice = "remote"
)

// ParseChoice converts user input into a Choice.
func ParseChoice(s string) (Choice, error) {
	switch c := Choice(s); c {
	case ChoiceLocal, ChoiceRemote:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidChoice, s)
}

// Resolver applies the user's choice to the open conflict and resumes the drain.
type Resolver struct {
	engine *Engine
	logger *slog.Logger
}

// NewResolver creates a resolver bound to engine
func NewResolver(engine *Engine, logger *slog.Logger) *Resolver {
	return &Resolver{engine: engine, logger: logger}
}

// Resolve applies choice to the open conflict. The domain store write and the
// queue mutation succeed together or the domain write is rolled back; on
// failure ErrInconsistent is returned and the conflict stays open. On success
// the conflict is cleared and the drain resumes in the caller's goroutine from
// the halted action.
func (r *Resolver) Resolve(ctx context.Context, choice Choice) (*Result, error) {
	e := r.engine

	e.mu.Lock()
	if e.status != models.StatusConflict || e.conflict == nil {
		e.mu.Unlock()
		return nil, ErrNoConflict
	}
	if choice != ChoiceLocal && choice != ChoiceRemote {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrInvalidChoice, choice)
	}
	if e.resolving {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: conflict is already being resolved", ErrInvalidState)
	}
	e.resolving = true
	conflict := e.conflict.Clone()
	e.mu.Unlock()

	if err := r.apply(ctx, conflict, choice); err != nil {
		e.mu.Lock()
		e.resolving = false
		e.mu.Unlock()

		r.logger.Error("Conflict resolution failed",
			"entity", models.EntityKey(conflict.EntityKind, conflict.EntityID),
			"choice", choice,
			"error", err)
		e.emit(ctx, models.StatusConflict, Detail{
			Message:  "Conflict resolution failed",
			Err:      err,
			Conflict: conflict,
		})
		return nil, err
	}

	e.mu.Lock()
	e.conflict = nil
	e.resolving = false
	e.status = models.StatusSyncing
	e.mu.Unlock()

	r.logger.Info("Conflict resolved",
		"entity", models.EntityKey(conflict.EntityKind, conflict.EntityID),
		"action_id", conflict.RelatedActionID,
		"choice", choice)

	e.persist(ctx)
	e.emit(ctx, models.StatusSyncing, Detail{Message: "Conflict resolved, resuming synchronization"})

	return e.drain(ctx)
}

// apply выполняет запись в DomainStore и изменение очереди как один шаг
func (r *Resolver) apply(ctx context.Context, conflict *models.Conflict, choice Choice) error {
	e := r.engine

	previous, err := e.domain.GetEntity(ctx, conflict.EntityKind, conflict.EntityID)
	if err != nil {
		if !errors.Is(err, storage.ErrEntityNotFound) {
			return fmt.Errorf("%w: failed to read local entity: %w", ErrInconsistent, err)
		}
		previous = nil
	}

	var target *models.Snapshot
	switch choice {
	case ChoiceRemote:
		target = conflict.RemoteSnapshot
	case ChoiceLocal:
		if conflict.ActionKind != models.ActionDelete {
			target = &conflict.LocalSnapshot
		}
	}

	if err := e.writeLocal(ctx, conflict.EntityKind, conflict.EntityID, target); err != nil {
		return fmt.Errorf("%w: failed to write local entity: %w", ErrInconsistent, err)
	}

	var qerr error
	if choice == ChoiceRemote {
		qerr = e.queue.Remove(ctx, conflict.RelatedActionID)
	} else {
		// Action остаётся в голове очереди с pre-image = версия сервера
		_, qerr = e.queue.Rebase(ctx, conflict.RelatedActionID, conflict.RemoteSnapshot)
	}
	if qerr == nil {
		return nil
	}

	// Компенсация: возвращаем прежнее локальное значение
	if err := e.writeLocal(ctx, conflict.EntityKind, conflict.EntityID, previous); err != nil {
		r.logger.Error("Failed to roll back local entity after queue failure",
			"entity", models.EntityKey(conflict.EntityKind, conflict.EntityID),
			"queue_error", qerr,
			"error", err)
		return fmt.Errorf("%w: queue update failed (%w) and rollback failed: %w", ErrInconsistent, qerr, err)
	}
	return fmt.Errorf("%w: queue update failed: %w", ErrInconsistent, qerr)
}
