package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"labelflow/internal/domain"
	"labelflow/internal/errors"
)

// MySQLQueueRepository stores outbound emails waiting for the background
// sender. A row is claimed by setting claimed_at, which happens at most once.
type MySQLQueueRepository struct {
	db *sql.DB
}

func NewMySQLQueueRepository(db *sql.DB) *MySQLQueueRepository {
	return &MySQLQueueRepository{db: db}
}

func (r *MySQLQueueRepository) Enqueue(ctx context.Context, email *domain.QueuedEmail) error {
	data, err := json.Marshal(email.Draft)
	if err != nil {
		return fmt.Errorf("encoding queued email: %w", err)
	}

	var orderID sql.NullString
	if email.OrderID != "" {
		orderID = sql.NullString{String: email.OrderID, Valid: true}
	}

	query := `
		INSERT INTO email_queue (id, order_id, stage, data, is_forwarded, is_resend, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		email.ID, orderID, string(email.Stage), data, email.IsForwarded, email.IsResend, email.CreatedBy, email.CreatedAt,
	)
	if err != nil {
		return errors.NewStorageError("queueing email", err)
	}

	return nil
}

// Claim marks up to limit unclaimed rows as taken and returns them, oldest
// first. A row another worker claimed in between is skipped. A claimed row
// that cannot be read back is marked failed instead of returned.
func (r *MySQLQueueRepository) Claim(ctx context.Context, limit int, at time.Time) ([]domain.QueuedEmail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM email_queue WHERE claimed_at IS NULL ORDER BY created_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.NewStorageError("listing queued emails", err)
	}

	var candidates []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, errors.NewStorageError("scanning queued email id", err)
		}
		candidates = append(candidates, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("iterating queued emails", err)
	}

	claimed := make([]domain.QueuedEmail, 0, len(candidates))
	for _, id := range candidates {
		result, err := r.db.ExecContext(ctx,
			`UPDATE email_queue SET claimed_at = ? WHERE id = ? AND claimed_at IS NULL`, at, id)
		if err != nil {
			return claimed, errors.NewStorageError("claiming queued email", err)
		}

		n, err := result.RowsAffected()
		if err != nil {
			return claimed, errors.NewStorageError("getting rows affected", err)
		}
		if n == 0 {
			continue
		}

		email, err := r.FindByID(ctx, id)
		if err != nil {
			if markErr := r.MarkFailed(ctx, id, "reading claimed email: "+err.Error()); markErr != nil {
				return claimed, markErr
			}
			continue
		}
		claimed = append(claimed, *email)
	}

	return claimed, nil
}

func (r *MySQLQueueRepository) FindByID(ctx context.Context, id string) (*domain.QueuedEmail, error) {
	query := `
		SELECT id, COALESCE(order_id, ''), stage, data, is_forwarded, is_resend, created_by, created_at,
		       claimed_at, sent, sent_at, COALESCE(message_id, ''), COALESCE(error, '')
		FROM email_queue
		WHERE id = ?
	`

	var email domain.QueuedEmail
	var stage string
	var data []byte
	var claimedAt, sentAt sql.NullTime
	var sent sql.NullBool

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&email.ID, &email.OrderID, &stage, &data, &email.IsForwarded, &email.IsResend, &email.CreatedBy, &email.CreatedAt,
		&claimedAt, &sent, &sentAt, &email.MessageID, &email.Error,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("queued email %s not found", id))
	}
	if err != nil {
		return nil, errors.NewStorageError("querying queued email", err)
	}

	email.Stage = domain.Stage(stage)
	if err := json.Unmarshal(data, &email.Draft); err != nil {
		return nil, fmt.Errorf("decoding queued email: %w", err)
	}
	if claimedAt.Valid {
		email.ClaimedAt = &claimedAt.Time
	}
	if sent.Valid {
		email.Sent = &sent.Bool
	}
	if sentAt.Valid {
		email.SentAt = &sentAt.Time
	}

	return &email, nil
}

// MarkSent records a delivered email. A non-empty note is stored in the
// error column for problems that happened after delivery.
func (r *MySQLQueueRepository) MarkSent(ctx context.Context, id, messageID string, at time.Time, note string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE email_queue SET sent = 1, sent_at = ?, message_id = ?, error = NULLIF(?, '') WHERE id = ?`, at, messageID, note, id)
	if err != nil {
		return errors.NewStorageError("marking queued email sent", err)
	}
	return nil
}

func (r *MySQLQueueRepository) MarkFailed(ctx context.Context, id, reason string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE email_queue SET sent = 0, error = ? WHERE id = ?`, reason, id)
	if err != nil {
		return errors.NewStorageError("marking queued email failed", err)
	}
	return nil
}
