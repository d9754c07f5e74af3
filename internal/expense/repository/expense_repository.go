package repository

import (
	"context"
	"database/sql"
	"fmt"

	"labelflow/internal/domain"
	"labelflow/internal/errors"
)

type MySQLExpenseRepository struct {
	db *sql.DB
}

func NewMySQLExpenseRepository(db *sql.DB) *MySQLExpenseRepository {
	return &MySQLExpenseRepository{db: db}
}

const expenseColumns = `id, date, vendor, category, description, amount, payment, hst,
	receipt_url, receipt_path, created_by, created_at, updated_at`

func (r *MySQLExpenseRepository) Insert(ctx context.Context, e *domain.Expense) error {
	query := `INSERT INTO expenses (` + expenseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Date, e.Vendor, e.Category, e.Description, e.Amount, e.Payment, e.HST,
		e.ReceiptURL, e.ReceiptPath, e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return errors.NewStorageError("inserting expense", err)
	}

	return nil
}

func (r *MySQLExpenseRepository) FindByID(ctx context.Context, id string) (*domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

	e, err := scanExpense(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("expense %s not found", id))
	}
	if err != nil {
		return nil, errors.NewStorageError("querying expense", err)
	}

	return e, nil
}

// List returns every expense, latest date first.
func (r *MySQLExpenseRepository) List(ctx context.Context) ([]domain.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses ORDER BY date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewStorageError("listing expenses", err)
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, errors.NewStorageError("scanning expense", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("iterating expenses", err)
	}

	return expenses, nil
}

func (r *MySQLExpenseRepository) Update(ctx context.Context, e *domain.Expense) error {
	query := `
		UPDATE expenses
		SET date = ?, vendor = ?, category = ?, description = ?, amount = ?, payment = ?, hst = ?,
		    receipt_url = ?, receipt_path = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		e.Date, e.Vendor, e.Category, e.Description, e.Amount, e.Payment, e.HST,
		e.ReceiptURL, e.ReceiptPath, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return errors.NewStorageError("updating expense", err)
	}

	return requireAffected(result, e.ID)
}

func (r *MySQLExpenseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return errors.NewStorageError("deleting expense", err)
	}

	return requireAffected(result, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*domain.Expense, error) {
	var e domain.Expense
	err := row.Scan(
		&e.ID, &e.Date, &e.Vendor, &e.Category, &e.Description, &e.Amount, &e.Payment, &e.HST,
		&e.ReceiptURL, &e.ReceiptPath, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func requireAffected(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewStorageError("getting rows affected", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("expense %s not found", id))
	}
	return nil
}
