package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"labelflow/internal/domain"
	"labelflow/internal/errors"
)

const mysqlDuplicateEntry = 1062

// MySQLStageRepository stores sampling, production and shipment records.
// There is at most one record per (order, kind).
type MySQLStageRepository struct {
	db *sql.DB
}

func NewMySQLStageRepository(db *sql.DB) *MySQLStageRepository {
	return &MySQLStageRepository{db: db}
}

const stageColumns = `id, order_id, kind, fields, files, version, created_at, updated_at`

func (r *MySQLStageRepository) FindByOrder(ctx context.Context, orderID string) ([]domain.StageRecord, error) {
	query := `SELECT ` + stageColumns + ` FROM stage_records WHERE order_id = ? ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, errors.NewStorageError("listing stage records", err)
	}
	defer rows.Close()

	var records []domain.StageRecord
	for rows.Next() {
		rec, err := scanStage(rows)
		if err != nil {
			return nil, errors.NewStorageError("scanning stage record", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("iterating stage records", err)
	}

	return records, nil
}

// FindForUpdate returns the record of kind for the order, locking it until tx
// ends, or nil when none exists yet.
func (r *MySQLStageRepository) FindForUpdate(ctx context.Context, tx *sql.Tx, orderID string, kind domain.Stage) (*domain.StageRecord, error) {
	query := `SELECT ` + stageColumns + ` FROM stage_records WHERE order_id = ? AND kind = ? FOR UPDATE`

	rec, err := scanStage(tx.QueryRowContext(ctx, query, orderID, string(kind)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStorageError("querying stage record", err)
	}

	return rec, nil
}

func (r *MySQLStageRepository) Insert(ctx context.Context, tx *sql.Tx, rec *domain.StageRecord) error {
	fields, files, err := encodeStage(rec)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO stage_records (id, order_id, kind, fields, files, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		rec.ID, rec.OrderID, string(rec.Kind), fields, files, rec.Version, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if stderrors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return errors.NewConflictError(fmt.Sprintf("%s record for order %s was created concurrently", rec.Kind, rec.OrderID))
		}
		return errors.NewStorageError("inserting stage record", err)
	}

	return nil
}

// Update writes rec if the stored version still equals expectedVersion.
func (r *MySQLStageRepository) Update(ctx context.Context, tx *sql.Tx, rec *domain.StageRecord, expectedVersion int) error {
	fields, files, err := encodeStage(rec)
	if err != nil {
		return err
	}

	query := `
		UPDATE stage_records
		SET fields = ?, files = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := tx.ExecContext(ctx, query, fields, files, rec.Version, rec.UpdatedAt, rec.ID, expectedVersion)
	if err != nil {
		return errors.NewStorageError("updating stage record", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewStorageError("getting rows affected", err)
	}

	if rowsAffected == 0 {
		return errors.NewConflictError(fmt.Sprintf("%s record for order %s was modified by another writer", rec.Kind, rec.OrderID))
	}

	return nil
}

func encodeStage(rec *domain.StageRecord) (string, string, error) {
	fields, err := marshalJSON(rec.Fields, "{}")
	if err != nil {
		return "", "", fmt.Errorf("encoding stage fields: %w", err)
	}

	files, err := marshalJSON(rec.Files, "[]")
	if err != nil {
		return "", "", fmt.Errorf("encoding stage files: %w", err)
	}

	return fields, files, nil
}

func scanStage(row rowScanner) (*domain.StageRecord, error) {
	var rec domain.StageRecord
	var kind string
	var fields, files []byte

	err := row.Scan(&rec.ID, &rec.OrderID, &kind, &fields, &files, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rec.Kind = domain.Stage(kind)
	if err := json.Unmarshal(fields, &rec.Fields); err != nil {
		return nil, fmt.Errorf("decoding stage fields: %w", err)
	}
	if err := json.Unmarshal(files, &rec.Files); err != nil {
		return nil, fmt.Errorf("decoding stage files: %w", err)
	}

	return &rec, nil
}
