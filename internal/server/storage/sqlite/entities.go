package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/cashbook/internal/models"
	"github.com/iudanet/cashbook/pkg/api"
)

// FetchSnapshot returns the current snapshot of an entity.
// Returns api.ErrNotFound if the entity doesn't exist or is deleted.
func (s *Storage) FetchSnapshot(ctx context.Context, kind models.EntityKind, id string) (*models.Snapshot, error) {
	return fetchSnapshot(ctx, s.db, kind, id)
}

// PutSnapshot writes an entity directly, bypassing the commit log.
// It stands for edits made by other clients of the authoritative store.
func (s *Storage) PutSnapshot(ctx context.Context, snapshot *models.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := upsertEntity(ctx, tx, snapshot, s.now().Unix()); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteSnapshot removes an entity directly, bypassing the commit log.
func (s *Storage) DeleteSnapshot(ctx context.Context, kind models.EntityKind, id string) error {
	if _, err := fetchSnapshot(ctx, s.db, kind, id); err != nil {
		return err
	}
	return markDeleted(ctx, s.db, kind, id, s.now().Unix())
}

// ListSnapshots returns all live entities of a kind
func (s *Storage) ListSnapshots(ctx context.Context, kind models.EntityKind) (result []*models.Snapshot, err error) {
	query := `
		SELECT id, data, version
		FROM entities
		WHERE kind = ? AND deleted = 0
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for rows.Next() {
		var (
			id      string
			data    []byte
			version int64
		)
		if err := rows.Scan(&id, &data, &version); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		result = append(result, &models.Snapshot{Kind: kind, ID: id, Data: data, Version: version})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return result, nil
}

// querier общий интерфейс *sql.DB и *sql.Tx
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func fetchSnapshot(ctx context.Context, q querier, kind models.EntityKind, id string) (*models.Snapshot, error) {
	query := `
		SELECT data, version
		FROM entities
		WHERE kind = ? AND id = ? AND deleted = 0
	`

	var (
		data    []byte
		version int64
	)
	err := q.QueryRowContext(ctx, query, string(kind), id).Scan(&data, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, api.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}

	return &models.Snapshot{Kind: kind, ID: id, Data: data, Version: version}, nil
}

// upsertEntity создаёт сущность или увеличивает её версию
func upsertEntity(ctx context.Context, q querier, snapshot *models.Snapshot, now int64) error {
	query := `
		INSERT INTO entities (kind, id, data, version, deleted, updated_at)
		VALUES (?, ?, ?, 1, 0, ?)
		ON CONFLICT (kind, id) DO UPDATE SET
			data = excluded.data,
			version = entities.version + 1,
			deleted = 0,
			updated_at = excluded.updated_at
	`

	if _, err := q.ExecContext(ctx, query, string(snapshot.Kind), snapshot.ID, string(snapshot.Data), now); err != nil {
		return fmt.Errorf("failed to upsert %s: %w", snapshot.Key(), err)
	}
	return nil
}

// markDeleted мягко удаляет сущность; отсутствие сущности не ошибка
func markDeleted(ctx context.Context, q querier, kind models.EntityKind, id string, now int64) error {
	query := `
		UPDATE entities
		SET deleted = 1, version = version + 1, updated_at = ?
		WHERE kind = ? AND id = ? AND deleted = 0
	`

	if _, err := q.ExecContext(ctx, query, now, string(kind), id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", models.EntityKey(kind, id), err)
	}
	return nil
}
