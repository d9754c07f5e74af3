package service

import (
	"context"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"labelflow/internal/domain"
	"labelflow/internal/dto"
	apperrors "labelflow/internal/errors"
	"labelflow/internal/workflow"
)

// ObjectReader reads managed objects back from storage.
type ObjectReader interface {
	Get(ctx context.Context, url string) ([]byte, error)
	IsManaged(url string) bool
}

type Transport interface {
	Send(ctx context.Context, msg dto.MailMessage) error
}

// Dispatcher hands drafts to the mail transport. Managed attachments are read
// from storage and inlined; any other URL is left for the transport to fetch.
type Dispatcher struct {
	objects   ObjectReader
	transport Transport
	logger    *zap.Logger
	newID     func() string
}

func NewDispatcher(objects ObjectReader, transport Transport, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		objects:   objects,
		transport: transport,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// Send delivers draft and returns the message id it was sent with.
func (d *Dispatcher) Send(ctx context.Context, draft domain.EmailDraft) (string, error) {
	if strings.TrimSpace(draft.To) == "" {
		return "", apperrors.NewValidationError("recipient is required", apperrors.ValidationDetail{
			Field:   "to",
			Message: "to must not be empty",
		})
	}

	msg := dto.MailMessage{
		ID:      d.newID(),
		From:    draft.From,
		To:      draft.To,
		Subject: draft.Subject,
		Body:    draft.Body,
	}

	for _, a := range draft.Attachments {
		att := dto.MailAttachment{Name: attachmentName(a)}

		if d.objects.IsManaged(a.URL) {
			data, err := d.objects.Get(ctx, a.URL)
			if err != nil {
				d.logger.Error("reading attachment for email", zap.String("url", a.URL), zap.Error(err))
				return "", err
			}
			att.Content = data
		} else {
			att.URL = a.URL
		}

		msg.Attachments = append(msg.Attachments, att)
	}

	if err := d.transport.Send(ctx, msg); err != nil {
		d.logger.Warn("mail transport failed", zap.String("to", msg.To), zap.Error(err))
		if _, ok := apperrors.IsSendError(err); ok {
			return "", err
		}
		return "", apperrors.NewSendError("sending email", err)
	}

	d.logger.Info("email sent",
		zap.String("messageId", msg.ID),
		zap.String("to", msg.To),
		zap.Int("attachments", len(msg.Attachments)),
	)
	return msg.ID, nil
}

// DraftFromRequest converts a mail-send request into a draft. Attachments
// without a name are named after the last segment of their URL.
func DraftFromRequest(req dto.SendEmailRequest) domain.EmailDraft {
	draft := domain.EmailDraft{
		Subject: req.Subject,
		From:    req.From,
		To:      strings.TrimSpace(req.To),
		Body:    req.Body,
	}

	for _, a := range req.Attachments {
		att := domain.EmailAttachment{Name: a.Name, URL: a.URL, Size: domain.DefaultAttachmentSize}
		att.Type = workflow.InferAttachmentType(attachmentName(att))
		draft.Attachments = append(draft.Attachments, att)
	}

	return draft
}

func attachmentName(a domain.EmailAttachment) string {
	if a.Name != "" {
		return a.Name
	}

	p := a.URL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if name := path.Base(p); name != "." && name != "/" && name != "" {
		return name
	}
	return "attachment"
}
