// Package sync drains the offline action queue into the authoritative remote store.
//
// The Engine owns the status machine Idle -> Syncing -> Success|Error|Conflict.
// Only one drain runs at a time; the Idle -> Syncing check-and-set under the
// engine mutex is the single admission point. A divergent entity halts the
// drain in Conflict until the Resolver applies the user's choice.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/iudanet/cashbook/internal/client/queue"
	"github.com/iudanet/cashbook/internal/client/remote"
	"github.com/iudanet/cashbook/internal/client/storage"
	"github.com/iudanet/cashbook/internal/models"
	"github.com/iudanet/cashbook/pkg/api"
)

//go:generate moq -out sink_mock.go . NotificationSink

// DomainStore is the local copy of domain entities the resolver writes into.
type DomainStore interface {
	// GetEntity returns storage.ErrEntityNotFound if the entity doesn't exist
	GetEntity(ctx context.Context, kind models.EntityKind, id string) (*models.Snapshot, error)
	ApplyEntity(ctx context.Context, snapshot *models.Snapshot) error
	DeleteEntity(ctx context.Context, kind models.EntityKind, id string) error
}

// Connectivity is the read side of the connectivity monitor.
type Connectivity interface {
	Online() bool
	Subscribe(fn func(online bool)) func()
}

// NotificationSink receives every status transition.
type NotificationSink interface {
	OnStatusChange(status models.SyncStatus, detail Detail)
}

// Detail carries what a sink needs to render a message or a conflict prompt.
type Detail struct {
	LastSync time.Time
	Err      error
	Conflict *models.Conflict
	Message  string
	Class    remote.Class
	Pending  int
}

// Result описывает итог одного прохода по очереди
type Result struct {
	Receipt   *api.BatchReceipt
	Status    models.SyncStatus
	Committed int // количество подтверждённых действий
	Remaining int // количество действий, оставшихся в очереди
}

// Config holds engine dependencies and tuning.
type Config struct {
	Queue        *queue.Queue
	Remote       remote.Store
	Domain       DomainStore
	Metadata     storage.MetadataStorage
	Connectivity Connectivity
	Sink         NotificationSink // Sink может быть nil
	Logger       *slog.Logger

	RemoteTimeout time.Duration // RemoteTimeout ограничивает каждый вызов remote
	RetryBase     time.Duration
	RetryCap      time.Duration
}

// Engine is the offline-first synchronization engine.
type Engine struct {
	queue    *queue.Queue
	remote   remote.Store
	domain   DomainStore
	metadata storage.MetadataStorage
	conn     Connectivity
	sink     NotificationSink
	logger   *slog.Logger
	now      func() time.Time

	kick    chan struct{}
	retryCh chan struct{}

	conflict  *models.Conflict
	retryBase time.Duration
	retryCap  time.Duration

	mu        stdsync.Mutex
	status    models.SyncStatus
	lastSync  int64
	failures  int
	resolving bool
}

// NewEngine creates an engine and restores persisted sync state.
// A persisted Syncing, Success or Error status is normalised to Idle;
// an open conflict is restored.
func NewEngine(ctx context.Context, cfg Config) (*Engine, error) {
	e := &Engine{
		queue:     cfg.Queue,
		remote:    remote.WithTimeout(cfg.Remote, cfg.RemoteTimeout),
		domain:    cfg.Domain,
		metadata:  cfg.Metadata,
		conn:      cfg.Connectivity,
		sink:      cfg.Sink,
		logger:    cfg.Logger,
		now:       time.Now,
		kick:      make(chan struct{}, 1),
		retryCh:   make(chan struct{}, 1),
		retryBase: cfg.RetryBase,
		retryCap:  cfg.RetryCap,
		status:    models.StatusIdle,
	}
	if e.retryBase <= 0 {
		e.retryBase = time.Second
	}
	if e.retryCap <= 0 {
		e.retryCap = 5 * time.Minute
	}

	state, err := e.metadata.GetSyncState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync state: %w", err)
	}

	e.lastSync = state.LastSyncTimestamp
	if state.Status == models.StatusConflict && state.Conflict != nil {
		e.status = models.StatusConflict
		e.conflict = state.Conflict.Clone()
		e.logger.Info("Restored open conflict",
			"entity_kind", e.conflict.EntityKind,
			"entity_id", e.conflict.EntityID,
			"action_id", e.conflict.RelatedActionID)
	} else if state.Status != models.StatusIdle {
		e.logger.Info("Normalised interrupted sync state", "persisted_status", state.Status)
	}

	return e, nil
}

// Status returns the current status
func (e *Engine) Status() models.SyncStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Conflict returns a copy of the open conflict, nil if none
func (e *Engine) Conflict() *models.Conflict {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conflict.Clone()
}

// LastSync returns the time of the last successful drain, zero if never
func (e *Engine) LastSync() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return unixOrZero(e.lastSync)
}

// Pending returns the number of queued actions
func (e *Engine) Pending(ctx context.Context) (int, error) {
	return e.queue.Len(ctx)
}

// Actions returns the queued actions in drain order
func (e *Engine) Actions(ctx context.Context) ([]*models.Action, error) {
	return e.queue.List(ctx)
}

// Enqueue records a local mutation whose pre-image is the payload itself.
func (e *Engine) Enqueue(ctx context.Context, kind models.ActionKind, payload models.Snapshot) (*models.Action, error) {
	return e.EnqueueChange(ctx, kind, nil, payload)
}

// EnqueueChange records a local mutation and kicks the worker.
// A malformed action is reported to the sink with the current status.
func (e *Engine) EnqueueChange(ctx context.Context, kind models.ActionKind, base *models.Snapshot, payload models.Snapshot) (*models.Action, error) {
	action, err := e.queue.EnqueueChange(ctx, kind, base, payload)
	if err != nil {
		var qerr *queue.Error
		if errors.As(err, &qerr) {
			e.emit(ctx, e.Status(), Detail{Message: "Change rejected", Err: err})
		}
		return nil, err
	}

	e.Notify()
	return action, nil
}

// Notify requests an automatic drain. Requests coalesce; it never blocks.
func (e *Engine) Notify() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

// Trigger is the automatic trigger: it drains only when online, the queue
// is non-empty and the engine is Idle. It reports whether a drain ran.
func (e *Engine) Trigger(ctx context.Context) bool {
	if !e.conn.Online() {
		return false
	}
	n, err := e.queue.Len(ctx)
	if err != nil {
		e.logger.Warn("Failed to read queue length", "error", err)
		return false
	}
	if n == 0 {
		return false
	}
	if !e.admit(ctx) {
		e.logger.Debug("Trigger dropped", "status", e.Status())
		return false
	}

	_, _ = e.drain(ctx)
	return true
}

// Sync is the manual trigger. It runs a drain even with an empty queue
// (the final confirmation still runs). It fails with ErrSyncInProgress when
// the engine is not Idle. A drain that halts returns ErrConflict with its result.
func (e *Engine) Sync(ctx context.Context) (*Result, error) {
	if !e.admit(ctx) {
		if e.Status() == models.StatusConflict {
			return nil, fmt.Errorf("%w: resolve the open conflict first", ErrInvalidState)
		}
		return nil, ErrSyncInProgress
	}
	return e.drain(ctx)
}

// ClearQueue drops every queued action. An open conflict is abandoned and the
// engine returns to Idle. Not allowed while a drain or a resolution runs.
func (e *Engine) ClearQueue(ctx context.Context) error {
	e.mu.Lock()
	if (e.status != models.StatusIdle && e.status != models.StatusConflict) || e.resolving {
		e.mu.Unlock()
		return fmt.Errorf("%w: cannot clear queue while syncing", ErrInvalidState)
	}

	if err := e.queue.Clear(ctx); err != nil {
		e.mu.Unlock()
		return err
	}

	abandoned := e.conflict != nil
	e.conflict = nil
	e.status = models.StatusIdle
	e.mu.Unlock()

	if abandoned {
		e.logger.Info("Open conflict abandoned by queue clear")
		e.persist(ctx)
		e.emit(ctx, models.StatusIdle, Detail{Message: "Offline queue cleared"})
	}
	return nil
}

// Discard drops a single queued action, typically one the remote store
// rejected, so the rest of the queue can drain. When no other queued action
// touches the same entity, the local copy is reverted to the action's
// pre-image (a discarded create removes the entity). Allowed only while Idle.
func (e *Engine) Discard(ctx context.Context, actionID string) (*models.Action, error) {
	e.mu.Lock()
	if e.status != models.StatusIdle || e.resolving {
		status := e.status
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot discard a change while %s", ErrInvalidState, status)
	}
	action, err := e.discard(ctx, actionID)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	e.logger.Info("Queued action discarded",
		"action_id", action.ID,
		"kind", action.Kind,
		"entity", action.Payload.Key())
	e.emit(ctx, models.StatusIdle, Detail{Message: "Queued change discarded", Pending: e.pending(ctx)})
	return action, nil
}

// discard runs under e.mu, so no drain can be admitted meanwhile
func (e *Engine) discard(ctx context.Context, actionID string) (*models.Action, error) {
	action, err := e.queue.Get(ctx, actionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load action %s: %w", actionID, err)
	}

	actions, err := e.queue.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range actions {
		if a.ID != action.ID && a.Payload.Key() == action.Payload.Key() {
			// Более поздние изменения опираются на локальную копию, её не трогаем
			return action, e.queue.Remove(ctx, action.ID)
		}
	}

	kind, id := action.Payload.Kind, action.Payload.ID
	previous, err := e.domain.GetEntity(ctx, kind, id)
	if err != nil {
		if !errors.Is(err, storage.ErrEntityNotFound) {
			return nil, fmt.Errorf("failed to read local entity: %w", err)
		}
		previous = nil
	}

	var target *models.Snapshot
	if action.Kind != models.ActionCreate {
		target = action.PreImage().Clone()
	}
	if err := e.writeLocal(ctx, kind, id, target); err != nil {
		return nil, fmt.Errorf("failed to revert local entity: %w", err)
	}

	if qerr := e.queue.Remove(ctx, action.ID); qerr != nil {
		if err := e.writeLocal(ctx, kind, id, previous); err != nil {
			return nil, fmt.Errorf("%w: queue update failed (%w) and rollback failed: %w", ErrInconsistent, qerr, err)
		}
		return nil, qerr
	}
	return action, nil
}

// writeLocal сохраняет snapshot в DomainStore, nil означает удаление
func (e *Engine) writeLocal(ctx context.Context, kind models.EntityKind, id string, snapshot *models.Snapshot) error {
	if snapshot == nil {
		return e.domain.DeleteEntity(ctx, kind, id)
	}
	return e.domain.ApplyEntity(ctx, snapshot)
}

// Run is the owning worker loop. It drains on enqueue and reconnect kicks,
// and retries after transient failures with capped exponential backoff.
// It returns when ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	unsubscribe := e.conn.Subscribe(func(online bool) {
		if online {
			e.Notify()
		}
	})
	defer unsubscribe()

	// Очередь могла остаться с прошлого запуска
	e.Notify()

	backoff := e.newBackoff()
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-e.kick:
			e.Trigger(ctx)

		case <-e.retryCh:
			e.mu.Lock()
			first := e.failures <= 1
			e.mu.Unlock()
			if first {
				backoff = e.newBackoff()
			}

			delay, stop := backoff.Next()
			if stop {
				continue
			}
			e.logger.Info("Scheduling sync retry", "delay", delay)

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(delay)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			e.Trigger(ctx)
		}
	}
}

func (e *Engine) newBackoff() retry.Backoff {
	return retry.WithCappedDuration(e.retryCap, retry.NewExponential(e.retryBase))
}

// admit is the single Idle -> Syncing admission point
func (e *Engine) admit(ctx context.Context) bool {
	e.mu.Lock()
	if e.status != models.StatusIdle {
		e.mu.Unlock()
		return false
	}
	e.status = models.StatusSyncing
	e.mu.Unlock()

	e.emit(ctx, models.StatusSyncing, Detail{Message: "Synchronizing"})
	return true
}

// drain runs with status Syncing held by the caller
func (e *Engine) drain(ctx context.Context) (*Result, error) {
	result := &Result{}

	actions, err := e.queue.List(ctx)
	if err != nil {
		return e.finishError(ctx, result, nil, fmt.Errorf("failed to read queue: %w", err), remote.ClassNone)
	}

	e.logger.Info("Starting drain", "pending", len(actions))

	for _, action := range actions {
		snapshot, err := e.remote.FetchSnapshot(ctx, action.Payload.Kind, action.Payload.ID)
		switch class := remote.Classify(err); class {
		case remote.ClassNone:
		case remote.ClassNotFound:
			snapshot = nil
		default:
			return e.finishError(ctx, result, action, err, class)
		}

		fields, err := Compare(action, snapshot)
		if err != nil {
			return e.finishError(ctx, result, action, fmt.Errorf("failed to compare %s: %w", action.Payload.Key(), err), remote.ClassNone)
		}
		if len(fields) > 0 {
			return e.halt(ctx, result, action, snapshot, fields)
		}

		if err := e.remote.CommitAction(ctx, action); err != nil {
			return e.finishError(ctx, result, action, err, remote.Classify(err))
		}
		// Повторный commit того же action идемпотентен на стороне сервера
		if err := e.queue.Remove(ctx, action.ID); err != nil {
			return e.finishError(ctx, result, action, err, remote.ClassNone)
		}
		result.Committed++

		e.logger.Debug("Action committed",
			"action_id", action.ID,
			"kind", action.Kind,
			"entity", action.Payload.Key())
	}

	receipt, err := e.remote.ConfirmBatch(ctx)
	if err != nil {
		return e.finishError(ctx, result, nil, err, remote.Classify(err))
	}
	result.Receipt = receipt

	return e.finishSuccess(ctx, result)
}

func (e *Engine) finishSuccess(ctx context.Context, result *Result) (*Result, error) {
	now := e.now()

	e.mu.Lock()
	e.lastSync = now.Unix()
	e.failures = 0
	e.status = models.StatusSuccess
	e.mu.Unlock()

	if err := e.metadata.SaveLastSyncTimestamp(ctx, now.Unix()); err != nil {
		e.logger.Warn("Failed to save last sync timestamp", "error", err)
	}

	result.Status = models.StatusSuccess
	result.Remaining = e.pending(ctx)

	e.logger.Info("Drain completed", "committed", result.Committed, "remaining", result.Remaining)

	message := "Synchronized"
	if result.Committed > 0 {
		message = "Offline changes synchronized"
	}
	e.emit(ctx, models.StatusSuccess, Detail{Message: message})
	e.toIdle(ctx)

	// Действия, добавленные во время прохода
	if result.Remaining > 0 && e.conn.Online() {
		e.Notify()
	}
	return result, nil
}

// finishError ends a drain in Error. class is ClassNone for local failures,
// which are neither wrapped as remote errors nor retried.
func (e *Engine) finishError(ctx context.Context, result *Result, action *models.Action, cause error, class remote.Class) (*Result, error) {
	var err error
	switch class {
	case remote.ClassRejected:
		err = fmt.Errorf("%w: %w", ErrRemoteRejected, cause)
	case remote.ClassUnavailable:
		err = fmt.Errorf("%w: %w", ErrRemoteUnavailable, cause)
	default:
		err = cause
	}

	e.mu.Lock()
	e.status = models.StatusError
	if class.Retryable() {
		e.failures++
	}
	e.mu.Unlock()

	result.Status = models.StatusError
	result.Remaining = e.pending(ctx)

	attrs := []any{"error", err, "class", class, "committed", result.Committed, "remaining", result.Remaining}
	if action != nil {
		attrs = append(attrs, "action_id", action.ID, "entity", action.Payload.Key())
	}
	e.logger.Warn("Drain failed", attrs...)

	e.emit(ctx, models.StatusError, Detail{Message: "Synchronization failed", Err: err, Class: class})
	e.toIdle(ctx)

	if class.Retryable() {
		select {
		case e.retryCh <- struct{}{}:
		default:
		}
	}
	return result, err
}

func (e *Engine) halt(ctx context.Context, result *Result, action *models.Action, snapshot *models.Snapshot, fields []string) (*Result, error) {
	conflict := &models.Conflict{
		EntityKind:      action.Payload.Kind,
		EntityID:        action.Payload.ID,
		LocalSnapshot:   *action.Payload.Clone(),
		RemoteSnapshot:  snapshot.Clone(),
		RelatedActionID: action.ID,
		ActionKind:      action.Kind,
		Fields:          fields,
		DetectedAt:      e.now().UTC(),
	}

	e.mu.Lock()
	e.conflict = conflict
	e.status = models.StatusConflict
	e.mu.Unlock()

	result.Status = models.StatusConflict
	result.Remaining = e.pending(ctx)

	e.logger.Info("Drain halted on conflict",
		"action_id", action.ID,
		"entity", action.Payload.Key(),
		"fields", fields,
		"committed", result.Committed)

	e.persist(ctx)
	e.emit(ctx, models.StatusConflict, Detail{Message: "Conflict detected", Conflict: conflict.Clone()})

	return result, fmt.Errorf("%w on %s", ErrConflict, action.Payload.Key())
}

func (e *Engine) toIdle(ctx context.Context) {
	e.mu.Lock()
	e.status = models.StatusIdle
	e.mu.Unlock()

	e.persist(ctx)
	e.emit(ctx, models.StatusIdle, Detail{})
}

// persist сохраняет статус и конфликт; ошибка не прерывает работу
func (e *Engine) persist(ctx context.Context) {
	e.mu.Lock()
	state := &models.SyncState{
		Status:            e.status,
		Conflict:          e.conflict.Clone(),
		LastSyncTimestamp: e.lastSync,
	}
	e.mu.Unlock()

	if err := e.metadata.SaveSyncState(ctx, state); err != nil {
		e.logger.Warn("Failed to save sync state", "status", state.Status, "error", err)
	}
}

// emit вызывает sink вне блокировки
func (e *Engine) emit(ctx context.Context, status models.SyncStatus, detail Detail) {
	if e.sink == nil {
		return
	}
	detail.Pending = e.pending(ctx)
	detail.LastSync = e.LastSync()
	e.sink.OnStatusChange(status, detail)
}

func (e *Engine) pending(ctx context.Context) int {
	n, err := e.queue.Len(ctx)
	if err != nil {
		e.logger.Warn("Failed to read queue length", "error", err)
		return 0
	}
	return n
}

func unixOrZero(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}
