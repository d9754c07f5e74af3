package repository

import (
	"context"
	"database/sql"
	"time"

	"labelflow/internal/domain"
	"labelflow/internal/errors"
)

// MySQLDeletionRepository is the outbox of stored objects waiting to be removed.
type MySQLDeletionRepository struct {
	db *sql.DB
}

func NewMySQLDeletionRepository(db *sql.DB) *MySQLDeletionRepository {
	return &MySQLDeletionRepository{db: db}
}

// Enqueue records urls for deletion inside tx, so they are only scheduled if
// the record update that dropped them commits.
func (r *MySQLDeletionRepository) Enqueue(ctx context.Context, tx *sql.Tx, urls []string, at time.Time) ([]domain.PendingDeletion, error) {
	pending := make([]domain.PendingDeletion, 0, len(urls))

	for _, url := range urls {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO attachment_deletions (url, created_at) VALUES (?, ?)`, url, at)
		if err != nil {
			return nil, errors.NewStorageError("scheduling attachment deletion", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, errors.NewStorageError("getting last insert id", err)
		}

		pending = append(pending, domain.PendingDeletion{ID: id, URL: url, CreatedAt: at})
	}

	return pending, nil
}

// Pending returns unconfirmed deletions, oldest first.
func (r *MySQLDeletionRepository) Pending(ctx context.Context, limit int) ([]domain.PendingDeletion, error) {
	query := `
		SELECT id, url, attempts, COALESCE(last_error, ''), created_at
		FROM attachment_deletions
		WHERE deleted_at IS NULL
		ORDER BY created_at ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.NewStorageError("listing pending deletions", err)
	}
	defer rows.Close()

	var pending []domain.PendingDeletion
	for rows.Next() {
		var p domain.PendingDeletion
		if err := rows.Scan(&p.ID, &p.URL, &p.Attempts, &p.LastError, &p.CreatedAt); err != nil {
			return nil, errors.NewStorageError("scanning pending deletion", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("iterating pending deletions", err)
	}

	return pending, nil
}

func (r *MySQLDeletionRepository) MarkDeleted(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE attachment_deletions SET deleted_at = ?, attempts = attempts + 1, last_error = NULL WHERE id = ?`, at, id)
	if err != nil {
		return errors.NewStorageError("confirming attachment deletion", err)
	}
	return nil
}

func (r *MySQLDeletionRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE attachment_deletions SET attempts = attempts + 1, last_error = ? WHERE id = ?`, reason, id)
	if err != nil {
		return errors.NewStorageError("recording attachment deletion failure", err)
	}
	return nil
}
