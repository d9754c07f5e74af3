package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"labelflow/internal/auth"
	"labelflow/internal/commons"
	"labelflow/internal/domain"
	"labelflow/internal/dto"
	apperrors "labelflow/internal/errors"
	"labelflow/internal/expense/service"
)

const maxReceiptMemory = 16 << 20

type ExpenseUseCase interface {
	Create(ctx context.Context, userID string, req dto.ExpenseRequest) (*domain.Expense, error)
	Get(ctx context.Context, id string) (*domain.Expense, error)
	List(ctx context.Context) ([]domain.Expense, error)
	Update(ctx context.Context, id string, req dto.ExpenseRequest) (*domain.Expense, error)
	Delete(ctx context.Context, id string) error
	UploadReceipt(ctx context.Context, file dto.FileUpload) (*service.Receipt, error)
}

type ExpenseController struct {
	useCase ExpenseUseCase
	logger  *zap.Logger
}

func NewExpenseController(useCase ExpenseUseCase, logger *zap.Logger) *ExpenseController {
	return &ExpenseController{
		useCase: useCase,
		logger:  logger,
	}
}

// Mount registers the expense routes on r, mounted under /api/expenses.
func (c *ExpenseController) Mount(r chi.Router) {
	r.Get("/", c.List)
	r.Post("/", c.Create)
	r.Post("/receipts", c.UploadReceipt)
	r.Get("/{expenseId}", c.Get)
	r.Put("/{expenseId}", c.Update)
	r.Delete("/{expenseId}", c.Delete)
}

func (c *ExpenseController) Create(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.Trace(c.logger)

	var req dto.ExpenseRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	e, err := c.useCase.Create(r.Context(), auth.UserIDFromContext(r.Context()), req)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusCreated, dto.NewExpenseResponse(*e), logger)
}

func (c *ExpenseController) List(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.Trace(c.logger)

	expenses, err := c.useCase.List(r.Context())
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	resp := make([]dto.ExpenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = dto.NewExpenseResponse(e)
	}

	commons.WriteJSON(w, http.StatusOK, resp, logger)
}

func (c *ExpenseController) Get(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.Trace(c.logger)

	e, err := c.useCase.Get(r.Context(), chi.URLParam(r, "expenseId"))
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, dto.NewExpenseResponse(*e), logger)
}

func (c *ExpenseController) Update(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.Trace(c.logger)

	var req dto.ExpenseRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	e, err := c.useCase.Update(r.Context(), chi.URLParam(r, "expenseId"), req)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, dto.NewExpenseResponse(*e), logger)
}

func (c *ExpenseController) Delete(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.Trace(c.logger)

	if err := c.useCase.Delete(r.Context(), chi.URLParam(r, "expenseId")); err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadReceipt accepts a multipart form with a single "file" part.
func (c *ExpenseController) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.Trace(c.logger)

	files, err := commons.ReadMultipartFiles(r, "file", maxReceiptMemory)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}
	if len(files) != 1 {
		commons.WriteValidationError(w, traceID, "validation failed", logger, apperrors.ValidationDetail{
			Field:   "file",
			Message: "exactly one receipt file is required",
		})
		return
	}

	receipt, err := c.useCase.UploadReceipt(r.Context(), files[0])
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusCreated, dto.ReceiptUploadResponse{
		ReceiptURL:  receipt.URL,
		ReceiptPath: receipt.Path,
		Classified:  receipt.Classified,
		Draft:       dto.NewExpenseResponse(receipt.Draft),
	}, logger)
}
