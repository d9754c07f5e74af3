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

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

const orderColumns = `id, reference_number, order_name, label_type, customer_email, order_details,
		       status, files, created_by, created_at, updated_at`

func (r *MySQLOrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	files, err := marshalJSON(order.Files, "[]")
	if err != nil {
		return fmt.Errorf("encoding order files: %w", err)
	}

	query := `
		INSERT INTO orders (id, reference_number, order_name, label_type, customer_email, order_details,
		                    status, files, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		order.ID, order.ReferenceNumber, order.OrderName, order.LabelType, order.CustomerEmail,
		order.OrderDetails, string(order.Status), files, order.CreatedBy, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return errors.NewStorageError("inserting order", err)
	}

	return nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	return r.findOne(ctx, r.db.QueryRowContext(ctx, query, id), id)
}

// FindByIDForUpdate locks the order row until tx ends.
func (r *MySQLOrderRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ? FOR UPDATE`
	return r.findOne(ctx, tx.QueryRowContext(ctx, query, id), id)
}

func (r *MySQLOrderRepository) findOne(_ context.Context, row *sql.Row, id string) (*domain.Order, error) {
	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	if err != nil {
		return nil, errors.NewStorageError("querying order by id", err)
	}
	return order, nil
}

// List returns all orders, newest first.
func (r *MySQLOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewStorageError("listing orders", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, errors.NewStorageError("scanning order", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("iterating orders", err)
	}

	return orders, nil
}

// UpdateDetails overwrites the order-details fields and root file list.
func (r *MySQLOrderRepository) UpdateDetails(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	files, err := marshalJSON(order.Files, "[]")
	if err != nil {
		return fmt.Errorf("encoding order files: %w", err)
	}

	query := `
		UPDATE orders
		SET reference_number = ?, order_name = ?, label_type = ?, customer_email = ?,
		    order_details = ?, files = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := tx.ExecContext(ctx, query,
		order.ReferenceNumber, order.OrderName, order.LabelType, order.CustomerEmail,
		order.OrderDetails, files, order.UpdatedAt, order.ID,
	)
	if err != nil {
		return errors.NewStorageError("updating order details", err)
	}

	return requireAffected(result, order.ID)
}

func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id string, status domain.Stage, at time.Time) error {
	query := `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, string(status), at, id)
	if err != nil {
		return errors.NewStorageError("updating order status", err)
	}

	return requireAffected(result, id)
}

func (r *MySQLOrderRepository) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return errors.NewStorageError("deleting order", err)
	}

	return requireAffected(result, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var status string
	var files []byte

	err := row.Scan(
		&order.ID, &order.ReferenceNumber, &order.OrderName, &order.LabelType, &order.CustomerEmail,
		&order.OrderDetails, &status, &files, &order.CreatedBy, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Status = domain.Stage(status)
	if err := json.Unmarshal(files, &order.Files); err != nil {
		return nil, fmt.Errorf("decoding order files: %w", err)
	}

	return &order, nil
}

func requireAffected(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewStorageError("getting rows affected", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}

	return nil
}

func marshalJSON(v any, empty string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return empty, nil
	}
	return string(b), nil
}
