package dto

import (
	"time"

	"labelflow/internal/domain"
)

type CreateOrderRequest struct {
	ReferenceNumber string              `json:"referenceNumber"`
	OrderName       string              `json:"orderName"`
	LabelType       string              `json:"labelType"`
	CustomerEmail   string              `json:"customerEmail"`
	OrderDetails    string              `json:"orderDetails"`
	Files           []domain.Attachment `json:"files"`
}

// UpdateOrderRequest carries a partial update; nil fields are left untouched.
type UpdateOrderRequest struct {
	ReferenceNumber *string              `json:"referenceNumber"`
	OrderName       *string              `json:"orderName"`
	LabelType       *string              `json:"labelType"`
	CustomerEmail   *string              `json:"customerEmail"`
	OrderDetails    *string              `json:"orderDetails"`
	Files           *[]domain.Attachment `json:"files"`
}

type MoveStatusRequest struct {
	Status string `json:"status"`
}

// SaveStageRequest merges Fields into the stored record. Files replaces the
// stored list when present. Version, when set, must match the stored version.
type SaveStageRequest struct {
	Fields  map[string]string    `json:"fields"`
	Files   *[]domain.Attachment `json:"files"`
	Version *int                 `json:"version"`
}

type SendStageEmailRequest struct {
	Queue       bool    `json:"queue"`
	IsResend    bool    `json:"isResend"`
	IsForwarded bool    `json:"isForwarded"`
	Recipient   string  `json:"recipient"`
	Subject     *string `json:"subject"`
	Body        *string `json:"body"`
}

type SendStageEmailResult struct {
	MessageID string       `json:"messageId,omitempty"`
	QueueID   string       `json:"queueId,omitempty"`
	Queued    bool         `json:"queued"`
	Status    domain.Stage `json:"status"`
}

type StageRecordDTO struct {
	ID        string              `json:"id"`
	Kind      domain.Stage        `json:"kind"`
	Fields    map[string]string   `json:"fields"`
	Files     []domain.Attachment `json:"files"`
	Version   int                 `json:"version"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

type EmailEventDTO struct {
	ID          string                   `json:"id"`
	Type        domain.EmailType         `json:"type"`
	Stage       domain.Stage             `json:"stage"`
	Recipient   string                   `json:"recipient"`
	From        string                   `json:"from"`
	Subject     string                   `json:"subject"`
	Body        string                   `json:"body"`
	Attachments []domain.EmailAttachment `json:"attachments"`
	MessageID   string                   `json:"messageId"`
	SentAt      time.Time                `json:"sentAt"`
	IsForwarded bool                     `json:"isForwarded"`
	IsResend    bool                     `json:"isResend"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	ReferenceNumber string              `json:"referenceNumber"`
	OrderName       string              `json:"orderName"`
	LabelType       string              `json:"labelType"`
	CustomerEmail   string              `json:"customerEmail"`
	OrderDetails    string              `json:"orderDetails"`
	Status          domain.Stage        `json:"status"`
	Progress        map[string]bool     `json:"progress"`
	Files           []domain.Attachment `json:"files"`
	CreatedBy       string              `json:"createdBy"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
	Sampling        *StageRecordDTO     `json:"sampling,omitempty"`
	Production      *StageRecordDTO     `json:"production,omitempty"`
	Shipment        *StageRecordDTO     `json:"shipment,omitempty"`
	EmailLog        []EmailEventDTO     `json:"emailLog,omitempty"`
}

func NewStageRecordDTO(rec *domain.StageRecord) *StageRecordDTO {
	if rec == nil {
		return nil
	}
	files := rec.Files
	if files == nil {
		files = []domain.Attachment{}
	}
	return &StageRecordDTO{
		ID:        rec.ID,
		Kind:      rec.Kind,
		Fields:    rec.Fields,
		Files:     files,
		Version:   rec.Version,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func NewEmailEventDTO(e domain.EmailEvent) EmailEventDTO {
	return EmailEventDTO{
		ID:          e.ID,
		Type:        e.Type,
		Stage:       e.Stage,
		Recipient:   e.Recipient,
		From:        e.From,
		Subject:     e.Subject,
		Body:        e.Body,
		Attachments: e.Attachments,
		MessageID:   e.MessageID,
		SentAt:      e.SentAt,
		IsForwarded: e.IsForwarded,
		IsResend:    e.IsResend,
	}
}

type EmailLogResponse struct {
	TraceID   string          `json:"traceId"`
	Events    []EmailEventDTO `json:"events"`
	Timestamp time.Time       `json:"timestamp"`
}
