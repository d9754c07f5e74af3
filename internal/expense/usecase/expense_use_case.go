package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"labelflow/internal/domain"
	"labelflow/internal/dto"
	apperrors "labelflow/internal/errors"
	"labelflow/internal/expense/service"
)

type ExpenseRepository interface {
	Insert(ctx context.Context, e *domain.Expense) error
	FindByID(ctx context.Context, id string) (*domain.Expense, error)
	List(ctx context.Context) ([]domain.Expense, error)
	Update(ctx context.Context, e *domain.Expense) error
	Delete(ctx context.Context, id string) error
}

type ReceiptService interface {
	Upload(ctx context.Context, file dto.FileUpload) (*service.Receipt, error)
	Remove(ctx context.Context, url string)
}

type ExpenseUseCase struct {
	expenses ExpenseRepository
	receipts ReceiptService
	logger   *zap.Logger
	now      func() time.Time
}

func NewExpenseUseCase(expenses ExpenseRepository, receipts ReceiptService, logger *zap.Logger) *ExpenseUseCase {
	return &ExpenseUseCase{
		expenses: expenses,
		receipts: receipts,
		logger:   logger,
		now:      time.Now,
	}
}

func (uc *ExpenseUseCase) Create(ctx context.Context, userID string, req dto.ExpenseRequest) (*domain.Expense, error) {
	date, err := validateExpense(req)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	e := &domain.Expense{ID: uuid.NewString(), CreatedBy: userID, CreatedAt: now, UpdatedAt: now}
	apply(e, req, date)

	if err := uc.expenses.Insert(ctx, e); err != nil {
		return nil, err
	}

	uc.logger.Info("expense created", zap.String("expenseId", e.ID), zap.String("vendor", e.Vendor))
	return e, nil
}

func (uc *ExpenseUseCase) Get(ctx context.Context, id string) (*domain.Expense, error) {
	return uc.expenses.FindByID(ctx, id)
}

func (uc *ExpenseUseCase) List(ctx context.Context) ([]domain.Expense, error) {
	return uc.expenses.List(ctx)
}

// Update replaces every field of the expense. A receipt that is no longer
// referenced is removed once the row is written.
func (uc *ExpenseUseCase) Update(ctx context.Context, id string, req dto.ExpenseRequest) (*domain.Expense, error) {
	date, err := validateExpense(req)
	if err != nil {
		return nil, err
	}

	e, err := uc.expenses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := e.ReceiptURL
	apply(e, req, date)
	e.UpdatedAt = uc.now().UTC()

	if err := uc.expenses.Update(ctx, e); err != nil {
		return nil, err
	}

	if previous != "" && previous != e.ReceiptURL {
		uc.receipts.Remove(ctx, previous)
	}

	uc.logger.Info("expense updated", zap.String("expenseId", id))
	return e, nil
}

func (uc *ExpenseUseCase) Delete(ctx context.Context, id string) error {
	e, err := uc.expenses.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.expenses.Delete(ctx, id); err != nil {
		return err
	}

	uc.receipts.Remove(ctx, e.ReceiptURL)

	uc.logger.Info("expense deleted", zap.String("expenseId", id))
	return nil
}

// UploadReceipt stores a receipt image and returns the draft expense read
// from it. The draft is not persisted.
func (uc *ExpenseUseCase) UploadReceipt(ctx context.Context, file dto.FileUpload) (*service.Receipt, error) {
	if len(file.Data) == 0 {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "file",
			Message: "a non-empty receipt file is required",
		})
	}
	return uc.receipts.Upload(ctx, file)
}

func validateExpense(req dto.ExpenseRequest) (time.Time, error) {
	var details []apperrors.ValidationDetail

	date, err := time.Parse(dto.DateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		details = append(details, apperrors.ValidationDetail{Field: "date", Message: "date must be YYYY-MM-DD"})
	}
	if strings.TrimSpace(req.Vendor) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "vendor", Message: "vendor is required"})
	}
	if req.Amount.IsNegative() {
		details = append(details, apperrors.ValidationDetail{Field: "amount", Message: "amount must not be negative"})
	}
	if req.HST.IsNegative() {
		details = append(details, apperrors.ValidationDetail{Field: "hst", Message: "hst must not be negative"})
	}

	if len(details) > 0 {
		return time.Time{}, apperrors.NewValidationError("validation failed", details...)
	}
	return date, nil
}

func apply(e *domain.Expense, req dto.ExpenseRequest, date time.Time) {
	e.Date = date
	e.Vendor = strings.TrimSpace(req.Vendor)
	e.Category = domain.NormalizeCategory(req.Category)
	e.Description = strings.TrimSpace(req.Description)
	e.Amount = req.Amount
	e.Payment = strings.TrimSpace(req.Payment)
	e.HST = req.HST
	e.ReceiptURL = req.ReceiptURL
	e.ReceiptPath = req.ReceiptPath
}
