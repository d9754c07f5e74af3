package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"labelflow/internal/domain"
	"labelflow/internal/dto"
	apperrors "labelflow/internal/errors"
)

type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
	IsManaged(url string) bool
}

// Classifier reads a receipt image and returns the expense fields as JSON.
type Classifier interface {
	Classify(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Receipt is a stored receipt and the expense drafted from it. Classified is
// false when the draft is the placeholder.
type Receipt struct {
	URL        string
	Path       string
	Classified bool
	Draft      domain.Expense
}

type ReceiptService struct {
	store      ObjectStore
	classifier Classifier
	logger     *zap.Logger
	now        func() time.Time
}

// NewReceiptService builds the service. classifier may be nil, in which case
// every receipt gets the placeholder draft.
func NewReceiptService(store ObjectStore, classifier Classifier, logger *zap.Logger) *ReceiptService {
	return &ReceiptService{
		store:      store,
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}
}

func ReceiptKey(filename string, at time.Time) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "receipt"
	}
	return fmt.Sprintf("receipts/%d_%s", at.UnixMilli(), name)
}

// Upload stores the receipt and drafts an expense from it. Classification
// problems never fail the upload.
func (s *ReceiptService) Upload(ctx context.Context, file dto.FileUpload) (*Receipt, error) {
	key := ReceiptKey(file.Name, s.now())

	url, err := s.store.Put(ctx, key, file.Data, file.ContentType)
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{URL: url, Path: key}
	receipt.Draft, receipt.Classified = s.classify(ctx, file)
	receipt.Draft.ReceiptURL = url
	receipt.Draft.ReceiptPath = key

	s.logger.Info("receipt uploaded", zap.String("key", key), zap.Bool("classified", receipt.Classified))
	return receipt, nil
}

// Remove deletes a stored receipt. Failures are logged only.
func (s *ReceiptService) Remove(ctx context.Context, url string) {
	if url == "" || !s.store.IsManaged(url) {
		return
	}
	if err := s.store.Delete(ctx, url); err != nil {
		s.logger.Warn("receipt deletion failed", zap.String("url", url), zap.Error(err))
	}
}

func (s *ReceiptService) classify(ctx context.Context, file dto.FileUpload) (domain.Expense, bool) {
	now := s.now().UTC()

	if s.classifier == nil {
		return domain.PlaceholderExpense(now), false
	}

	raw, err := s.classifier.Classify(ctx, file.Data, file.ContentType)
	if err != nil {
		s.logger.Warn("receipt classification failed", zap.String("file", file.Name), zap.Error(err))
		return domain.PlaceholderExpense(now), false
	}

	expense, err := ParseReceipt(raw, now)
	if err != nil {
		s.logger.Warn("receipt classification unreadable", zap.String("file", file.Name), zap.Error(err))
		return domain.PlaceholderExpense(now), false
	}

	return expense, true
}

type classifiedReceipt struct {
	Date        string           `json:"date"`
	Vendor      string           `json:"vendor"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Payment     string           `json:"payment"`
	HST         *decimal.Decimal `json:"hst"`
}

// ParseReceipt decodes a classifier answer. Code fences around the JSON are
// tolerated; a missing or unreadable date falls back to today. Anything that
// is not a JSON object is a ParseError.
func ParseReceipt(raw string, now time.Time) (domain.Expense, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var c classifiedReceipt
	if err := json.Unmarshal([]byte(text), &c); err != nil {
		return domain.Expense{}, apperrors.NewParseError("malformed receipt classification", err)
	}

	expense := domain.PlaceholderExpense(now)

	if d, err := time.Parse(dto.DateLayout, strings.TrimSpace(c.Date)); err == nil {
		expense.Date = d
	}
	if v := strings.TrimSpace(c.Vendor); v != "" {
		expense.Vendor = v
	}
	expense.Category = domain.NormalizeCategory(c.Category)
	expense.Description = strings.TrimSpace(c.Description)
	expense.Payment = strings.TrimSpace(c.Payment)
	if c.Amount != nil {
		expense.Amount = c.Amount.Round(2)
	}
	if c.HST != nil {
		expense.HST = c.HST.Round(2)
	}

	return expense, nil
}
