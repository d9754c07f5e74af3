package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          string
	Date        time.Time
	Vendor      string
	Category    string
	Description string
	Amount      decimal.Decimal
	Payment     string
	HST         decimal.Decimal
	ReceiptURL  string
	ReceiptPath string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const (
	ExpenseCategoryOther = "Other"
	ExpenseVendorUnknown = "Unknown"
)

// PlaceholderExpense is the draft returned when a receipt could not be read.
func PlaceholderExpense(now time.Time) Expense {
	return Expense{
		Date:     time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Vendor:   ExpenseVendorUnknown,
		Category: ExpenseCategoryOther,
		Amount:   decimal.Zero,
		HST:      decimal.Zero,
	}
}

// ExpenseCategories are the categories a classified receipt may be filed under.
var ExpenseCategories = []string{
	"Materials", "Printing", "Shipping", "Software", "Office", "Travel", "Meals", "Equipment", ExpenseCategoryOther,
}

// NormalizeCategory maps category to its canonical spelling, or Other.
func NormalizeCategory(category string) string {
	for _, c := range ExpenseCategories {
		if strings.EqualFold(c, strings.TrimSpace(category)) {
			return c
		}
	}
	return ExpenseCategoryOther
}
