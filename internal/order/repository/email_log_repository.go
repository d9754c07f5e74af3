package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"labelflow/internal/domain"
	"labelflow/internal/errors"
)

// MySQLEmailLogRepository is the append-only email log of each order.
type MySQLEmailLogRepository struct {
	db *sql.DB
}

func NewMySQLEmailLogRepository(db *sql.DB) *MySQLEmailLogRepository {
	return &MySQLEmailLogRepository{db: db}
}

func (r *MySQLEmailLogRepository) Append(ctx context.Context, event domain.EmailEvent) error {
	attachments, err := marshalJSON(event.Attachments, "[]")
	if err != nil {
		return fmt.Errorf("encoding email attachments: %w", err)
	}

	query := `
		INSERT INTO email_log (id, order_id, type, stage, recipient, sender, subject, body,
		                       attachments, message_id, sent_at, is_forwarded, is_resend)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.OrderID, string(event.Type), string(event.Stage), event.Recipient, event.From,
		event.Subject, event.Body, attachments, event.MessageID, event.SentAt, event.IsForwarded, event.IsResend,
	)
	if err != nil {
		return errors.NewStorageError("appending email event", err)
	}

	return nil
}

// ListByOrder returns the order's email events, most recent first.
func (r *MySQLEmailLogRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.EmailEvent, error) {
	query := `
		SELECT id, order_id, type, stage, recipient, sender, subject, body,
		       attachments, message_id, sent_at, is_forwarded, is_resend
		FROM email_log
		WHERE order_id = ?
		ORDER BY sent_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, errors.NewStorageError("listing email events", err)
	}
	defer rows.Close()

	events := []domain.EmailEvent{}
	for rows.Next() {
		var event domain.EmailEvent
		var eventType, stage string
		var attachments []byte

		err := rows.Scan(
			&event.ID, &event.OrderID, &eventType, &stage, &event.Recipient, &event.From,
			&event.Subject, &event.Body, &attachments, &event.MessageID, &event.SentAt,
			&event.IsForwarded, &event.IsResend,
		)
		if err != nil {
			return nil, errors.NewStorageError("scanning email event", err)
		}

		event.Type = domain.EmailType(eventType)
		event.Stage = domain.Stage(stage)
		if err := json.Unmarshal(attachments, &event.Attachments); err != nil {
			return nil, fmt.Errorf("decoding email attachments: %w", err)
		}

		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("iterating email events", err)
	}

	return events, nil
}
