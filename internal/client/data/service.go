package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/cashbook/internal/client/storage"
	"github.com/iudanet/cashbook/internal/models"
	"github.com/iudanet/cashbook/internal/validation"
)

//go:generate moq -out recorder_mock.go . Recorder

// ErrInvalidEntity indicates that an entity failed local validation
var ErrInvalidEntity = errors.New("invalid entity")

// Recorder queues a local mutation for synchronization.
// Implemented by sync.Engine.
type Recorder interface {
	EnqueueChange(ctx context.Context, kind models.ActionKind, base *models.Snapshot, payload models.Snapshot) (*models.Action, error)
}

// Service определяет интерфейс для локальных изменений бухгалтерских данных
type Service interface {
	SaveEntry(ctx context.Context, entry *models.Entry) error
	PayEntry(ctx context.Context, id string, amount int64, paidAt time.Time) (*models.Entry, error)
	GetEntry(ctx context.Context, id string) (*models.Entry, error)
	ListEntries(ctx context.Context) ([]*models.Entry, error)
	DeleteEntry(ctx context.Context, id string) error

	SaveGoal(ctx context.Context, goal *models.Goal) error
	AddContribution(ctx context.Context, goalID string, amount int64, date string) (*models.Goal, error)
	GetGoal(ctx context.Context, id string) (*models.Goal, error)
	ListGoals(ctx context.Context) ([]*models.Goal, error)
	DeleteGoal(ctx context.Context, id string) error

	SaveNamed(ctx context.Context, kind models.EntityKind, named *models.Named) error
	ListNamed(ctx context.Context, kind models.EntityKind) ([]*models.Named, error)
	DeleteNamed(ctx context.Context, kind models.EntityKind, id string) error
}

// service applies changes to the local entity store and records them in the offline queue
type service struct {
	entities storage.EntityStorage
	recorder Recorder
	logger   *slog.Logger
}

// NewService creates a new data service
func NewService(entities storage.EntityStorage, recorder Recorder, logger *slog.Logger) Service {
	return &service{
		entities: entities,
		recorder: recorder,
		logger:   logger,
	}
}

// SaveEntry creates or updates an entry
func (s *service) SaveEntry(ctx context.Context, entry *models.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if err := validation.ValidateEntry(entry); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, err)
	}

	snapshot, err := models.EntrySnapshot(entry)
	if err != nil {
		return err
	}
	return s.save(ctx, snapshot)
}

// PayEntry records a payment of an entry
func (s *service) PayEntry(ctx context.Context, id string, amount int64, paidAt time.Time) (*models.Entry, error) {
	entry, err := s.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: payment must be positive", ErrInvalidEntity)
	}

	paid := paidAt.UTC()
	entry.PaidAmount = amount
	entry.PaidAt = &paid
	if amount > entry.Amount {
		// Переплата учитывается как проценты
		entry.Interest = amount - entry.Amount
	}

	if err := s.SaveEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// GetEntry returns an entry by ID
func (s *service) GetEntry(ctx context.Context, id string) (*models.Entry, error) {
	snapshot, err := s.entities.GetEntity(ctx, models.EntityEntry, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get entry %s: %w", id, err)
	}
	return snapshot.Entry()
}

// ListEntries returns all entries
func (s *service) ListEntries(ctx context.Context) ([]*models.Entry, error) {
	snapshots, err := s.entities.ListEntities(ctx, models.EntityEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	entries := make([]*models.Entry, 0, len(snapshots))
	for _, snapshot := range snapshots {
		entry, err := snapshot.Entry()
		if err != nil {
			s.logger.Warn("Skipping unreadable entry", "id", snapshot.ID, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// DeleteEntry removes an entry
func (s *service) DeleteEntry(ctx context.Context, id string) error {
	return s.remove(ctx, models.EntityEntry, id)
}

// SaveGoal creates or updates a goal; contributions are kept from the stored goal
func (s *service) SaveGoal(ctx context.Context, goal *models.Goal) error {
	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}
	if existing, err := s.GetGoal(ctx, goal.ID); err == nil && goal.Contributions == nil {
		goal.Contributions = existing.Contributions
	}
	if goal.Contributions == nil {
		goal.Contributions = []models.GoalContribution{}
	}
	if err := validation.ValidateGoal(goal); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, err)
	}

	snapshot, err := models.GoalSnapshot(goal)
	if err != nil {
		return err
	}
	return s.save(ctx, snapshot)
}

// AddContribution appends a contribution to a goal
func (s *service) AddContribution(ctx context.Context, goalID string, amount int64, date string) (*models.Goal, error) {
	goal, err := s.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: contribution must be positive", ErrInvalidEntity)
	}

	goal.Contributions = append(goal.Contributions, models.GoalContribution{
		ID:     uuid.New().String(),
		Amount: amount,
		Date:   date,
	})

	snapshot, err := models.GoalSnapshot(goal)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, snapshot); err != nil {
		return nil, err
	}
	return goal, nil
}

// GetGoal returns a goal by ID
func (s *service) GetGoal(ctx context.Context, id string) (*models.Goal, error) {
	snapshot, err := s.entities.GetEntity(ctx, models.EntityGoal, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get goal %s: %w", id, err)
	}
	return snapshot.Goal()
}

// ListGoals returns all goals
func (s *service) ListGoals(ctx context.Context) ([]*models.Goal, error) {
	snapshots, err := s.entities.ListEntities(ctx, models.EntityGoal)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	goals := make([]*models.Goal, 0, len(snapshots))
	for _, snapshot := range snapshots {
		goal, err := snapshot.Goal()
		if err != nil {
			s.logger.Warn("Skipping unreadable goal", "id", snapshot.ID, "error", err)
			continue
		}
		goals = append(goals, goal)
	}
	return goals, nil
}

// DeleteGoal removes a goal
func (s *service) DeleteGoal(ctx context.Context, id string) error {
	return s.remove(ctx, models.EntityGoal, id)
}

// SaveNamed creates or updates a category, supplier or payment method
func (s *service) SaveNamed(ctx context.Context, kind models.EntityKind, named *models.Named) error {
	if !isNamedKind(kind) {
		return fmt.Errorf("%w: %s is not named reference data", ErrInvalidEntity, kind)
	}
	if err := validation.ValidateNamed(kind, named); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntity, err)
	}
	if named.ID == "" {
		named.ID = uuid.New().String()
	}

	snapshot, err := models.NamedSnapshot(kind, named)
	if err != nil {
		return err
	}
	return s.save(ctx, snapshot)
}

// ListNamed returns all reference data of a kind
func (s *service) ListNamed(ctx context.Context, kind models.EntityKind) ([]*models.Named, error) {
	if !isNamedKind(kind) {
		return nil, fmt.Errorf("%w: %s is not named reference data", ErrInvalidEntity, kind)
	}

	snapshots, err := s.entities.ListEntities(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}

	result := make([]*models.Named, 0, len(snapshots))
	for _, snapshot := range snapshots {
		named, err := snapshot.Named()
		if err != nil {
			s.logger.Warn("Skipping unreadable reference data", "kind", kind, "id", snapshot.ID, "error", err)
			continue
		}
		result = append(result, named)
	}
	return result, nil
}

// DeleteNamed removes reference data
func (s *service) DeleteNamed(ctx context.Context, kind models.EntityKind, id string) error {
	if !isNamedKind(kind) {
		return fmt.Errorf("%w: %s is not named reference data", ErrInvalidEntity, kind)
	}
	return s.remove(ctx, kind, id)
}

// save пишет snapshot локально и ставит изменение в очередь.
// Pre-image - локальная копия до изменения; при ошибке очереди локальная запись откатывается.
func (s *service) save(ctx context.Context, snapshot models.Snapshot) error {
	previous, err := s.entities.GetEntity(ctx, snapshot.Kind, snapshot.ID)
	if err != nil && !errors.Is(err, storage.ErrEntityNotFound) {
		return fmt.Errorf("failed to read %s: %w", snapshot.Key(), err)
	}

	kind := models.ActionCreate
	if previous != nil {
		kind = models.ActionUpdate
	}

	if err := s.entities.ApplyEntity(ctx, &snapshot); err != nil {
		return fmt.Errorf("failed to save %s: %w", snapshot.Key(), err)
	}

	if _, err := s.recorder.EnqueueChange(ctx, kind, previous, snapshot); err != nil {
		s.rollback(ctx, snapshot.Kind, snapshot.ID, previous)
		return fmt.Errorf("failed to record %s: %w", snapshot.Key(), err)
	}

	s.logger.Debug("Local change recorded", "entity", snapshot.Key(), "kind", kind)
	return nil
}

// remove удаляет сущность локально и ставит удаление в очередь
func (s *service) remove(ctx context.Context, kind models.EntityKind, id string) error {
	previous, err := s.entities.GetEntity(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", models.EntityKey(kind, id), err)
	}

	if err := s.entities.DeleteEntity(ctx, kind, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", previous.Key(), err)
	}

	if _, err := s.recorder.EnqueueChange(ctx, models.ActionDelete, nil, *previous); err != nil {
		s.rollback(ctx, kind, id, previous)
		return fmt.Errorf("failed to record deletion of %s: %w", previous.Key(), err)
	}

	s.logger.Debug("Local deletion recorded", "entity", previous.Key())
	return nil
}

func (s *service) rollback(ctx context.Context, kind models.EntityKind, id string, previous *models.Snapshot) {
	var err error
	if previous == nil {
		err = s.entities.DeleteEntity(ctx, kind, id)
	} else {
		err = s.entities.ApplyEntity(ctx, previous)
	}
	if err != nil {
		s.logger.Error("Failed to roll back local change", "entity", models.EntityKey(kind, id), "error", err)
	}
}

func isNamedKind(kind models.EntityKind) bool {
	switch kind {
	case models.EntityCategory, models.EntitySupplier, models.EntityPaymentMethod:
		return true
	}
	return false
}
