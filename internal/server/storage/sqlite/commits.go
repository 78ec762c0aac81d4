package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iudanet/cashbook/internal/models"
	"github.com/iudanet/cashbook/internal/validation"
	"github.com/iudanet/cashbook/pkg/api"
)

// CommitAction applies a queued action. Committing the same action ID twice
// is a no-op, so a client that lost the acknowledgement can safely retry.
// Business rule violations are returned as *api.RejectedError.
func (s *Storage) CommitAction(ctx context.Context, action *models.Action) error {
	if err := checkRules(action); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT action_id FROM commits WHERE action_id = ?`, action.ID).Scan(&existing)
	switch {
	case err == nil:
		// Уже применено
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("failed to check commit log: %w", err)
	}

	now := s.now().Unix()
	payload := &action.Payload

	switch action.Kind {
	case models.ActionCreate, models.ActionUpdate:
		err = upsertEntity(ctx, tx, payload, now)
	case models.ActionDelete:
		err = markDeleted(ctx, tx, payload.Kind, payload.ID, now)
	default:
		return api.Reject(action.ID, fmt.Sprintf("unknown action kind %q", action.Kind))
	}
	if err != nil {
		return err
	}

	query := `
		INSERT INTO commits (action_id, action_kind, entity_kind, entity_id, committed_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, query, action.ID, string(action.Kind), string(payload.Kind), payload.ID, now); err != nil {
		return fmt.Errorf("failed to record commit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ConfirmBatch closes every commit not yet confirmed into a new batch.
func (s *Storage) ConfirmBatch(ctx context.Context) (*api.BatchReceipt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var pending int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM commits WHERE batch_id IS NULL`).Scan(&pending); err != nil {
		return nil, fmt.Errorf("failed to count pending commits: %w", err)
	}

	receipt := &api.BatchReceipt{BatchID: uuid.New().String(), Confirmed: pending}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO batches (id, confirmed, created_at) VALUES (?, ?, ?)`,
		receipt.BatchID, pending, s.now().Unix()); err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE commits SET batch_id = ? WHERE batch_id IS NULL`, receipt.BatchID); err != nil {
		return nil, fmt.Errorf("failed to confirm commits: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return receipt, nil
}

// checkRules проверяет бизнес-правила хранилища
func checkRules(action *models.Action) error {
	if action.Kind == models.ActionDelete {
		return nil
	}
	if err := validation.ValidateSnapshot(&action.Payload); err != nil {
		return api.Reject(action.ID, err.Error())
	}
	return nil
}
