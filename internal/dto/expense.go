package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"labelflow/internal/domain"
)

// DateLayout is the wire format of expense dates.
const DateLayout = "2006-01-02"

type ExpenseRequest struct {
	Date        string          `json:"date"`
	Vendor      string          `json:"vendor"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Payment     string          `json:"payment"`
	HST         decimal.Decimal `json:"hst"`
	ReceiptURL  string          `json:"receiptUrl"`
	ReceiptPath string          `json:"receiptPath"`
}

type ExpenseResponse struct {
	ID          string          `json:"id,omitempty"`
	Date        string          `json:"date"`
	Vendor      string          `json:"vendor"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Payment     string          `json:"payment"`
	HST         decimal.Decimal `json:"hst"`
	ReceiptURL  string          `json:"receiptUrl"`
	ReceiptPath string          `json:"receiptPath"`
	CreatedAt   *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time      `json:"updatedAt,omitempty"`
}

type ReceiptUploadResponse struct {
	ReceiptURL  string          `json:"receiptUrl"`
	ReceiptPath string          `json:"receiptPath"`
	Classified  bool            `json:"classified"`
	Draft       ExpenseResponse `json:"draft"`
}

func NewExpenseResponse(e domain.Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ID:          e.ID,
		Date:        e.Date.Format(DateLayout),
		Vendor:      e.Vendor,
		Category:    e.Category,
		Description: e.Description,
		Amount:      e.Amount,
		Payment:     e.Payment,
		HST:         e.HST,
		ReceiptURL:  e.ReceiptURL,
		ReceiptPath: e.ReceiptPath,
	}
	if !e.CreatedAt.IsZero() {
		resp.CreatedAt = &e.CreatedAt
		resp.UpdatedAt = &e.UpdatedAt
	}
	return resp
}
