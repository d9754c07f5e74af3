package domain

import "time"

type EmailType string

const EmailTypeStage EmailType = "stage"

const (
	AttachmentTypePDF      = "pdf"
	AttachmentTypeImage    = "image"
	AttachmentTypeDocument = "document"

	// DefaultAttachmentSize is reported when the size of a stored file is unknown.
	DefaultAttachmentSize = 1.0
)

type EmailAttachment struct {
	Name string  `json:"name"`
	URL  string  `json:"url"`
	Type string  `json:"type"`
	Size float64 `json:"size"`
}

// EmailDraft is a composed but unsent email.
type EmailDraft struct {
	Subject     string            `json:"subject"`
	From        string            `json:"from"`
	To          string            `json:"to"`
	Body        string            `json:"body"`
	Attachments []EmailAttachment `json:"attachments"`
}

// EmailEvent is one immutable entry of an order's email log.
type EmailEvent struct {
	ID          string
	OrderID     string
	Type        EmailType
	Stage       Stage
	Recipient   string
	From        string
	Subject     string
	Body        string
	Attachments []EmailAttachment
	MessageID   string
	SentAt      time.Time
	IsForwarded bool
	IsResend    bool
}

// QueuedEmail is a pending outbound email picked up by the queue worker.
// Sent is nil until the worker has reached a terminal state for the row.
type QueuedEmail struct {
	ID          string
	OrderID     string
	Stage       Stage
	Draft       EmailDraft
	IsForwarded bool
	IsResend    bool
	CreatedBy   string
	CreatedAt   time.Time
	ClaimedAt   *time.Time
	Sent        *bool
	SentAt      *time.Time
	MessageID   string
	Error       string
}

// NewEmailEvent records a successful delivery of draft.
func NewEmailEvent(id, orderID string, stage Stage, draft EmailDraft, messageID string, sentAt time.Time, forwarded, resend bool) EmailEvent {
	return EmailEvent{
		ID:          id,
		OrderID:     orderID,
		Type:        EmailTypeStage,
		Stage:       stage,
		Recipient:   draft.To,
		From:        draft.From,
		Subject:     draft.Subject,
		Body:        draft.Body,
		Attachments: draft.Attachments,
		MessageID:   messageID,
		SentAt:      sentAt,
		IsForwarded: forwarded,
		IsResend:    resend,
	}
}
