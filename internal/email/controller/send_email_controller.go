package controller

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"labelflow/internal/commons"
	"labelflow/internal/domain"
	"labelflow/internal/dto"
	apperrors "labelflow/internal/errors"
	"labelflow/internal/email/service"
)

type Sender interface {
	Send(ctx context.Context, draft domain.EmailDraft) (string, error)
}

// SendEmailController serves the shared-secret mail endpoint. The secret is
// checked by middleware before requests reach it.
type SendEmailController struct {
	sender      Sender
	defaultFrom string
	logger      *zap.Logger
}

func NewSendEmailController(sender Sender, defaultFrom string, logger *zap.Logger) *SendEmailController {
	return &SendEmailController{
		sender:      sender,
		defaultFrom: defaultFrom,
		logger:      logger,
	}
}

func (c *SendEmailController) SendEmail(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.Trace(c.logger)

	var req dto.SendEmailRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	if err := validateSendEmailRequest(req); err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	draft := service.DraftFromRequest(req)
	if draft.From == "" {
		draft.From = c.defaultFrom
	}

	messageID, err := c.sender.Send(r.Context(), draft)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, dto.SendEmailResponse{MessageID: messageID}, logger)
}

func validateSendEmailRequest(req dto.SendEmailRequest) error {
	var details []apperrors.ValidationDetail

	if strings.TrimSpace(req.To) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "to", Message: "to is required"})
	}
	if strings.TrimSpace(req.Subject) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "subject", Message: "subject is required"})
	}
	for i, a := range req.Attachments {
		if strings.TrimSpace(a.URL) == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   "attachments[" + strconv.Itoa(i) + "].url",
				Message: "url is required",
			})
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}
