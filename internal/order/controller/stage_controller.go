package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"labelflow/internal/auth"
	"labelflow/internal/commons"
	"labelflow/internal/domain"
	"labelflow/internal/dto"
)

type StageUseCase interface {
	SaveStage(ctx context.Context, orderID string, kind domain.Stage, req dto.SaveStageRequest) (*domain.StageRecord, error)
	Preview(ctx context.Context, orderID string, kind domain.Stage) (domain.EmailDraft, error)
	SendEmail(ctx context.Context, userID, orderID string, kind domain.Stage, req dto.SendStageEmailRequest) (*dto.SendStageEmailResult, error)
	ListEmails(ctx context.Context, orderID string) ([]domain.EmailEvent, error)
}

type StageController struct {
	useCase StageUseCase
	logger  *zap.Logger
}

func NewStageController(useCase StageUseCase, logger *zap.Logger) *StageController {
	return &StageController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *StageController) Save(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.Trace(c.logger)

	var req dto.SaveStageRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	rec, err := c.useCase.SaveStage(r.Context(), chi.URLParam(r, "orderId"), stageParam(r), req)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, dto.NewStageRecordDTO(rec), logger)
}

func (c *StageController) Preview(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.Trace(c.logger)

	draft, err := c.useCase.Preview(r.Context(), chi.URLParam(r, "orderId"), stageParam(r))
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	if draft.Attachments == nil {
		draft.Attachments = []domain.EmailAttachment{}
	}
	commons.WriteJSON(w, http.StatusOK, draft, logger)
}

// Send dispatches the stage email. An empty body sends the composed draft
// as is; queued sends answer 202.
func (c *StageController) Send(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.Trace(c.logger)

	var req dto.SendStageEmailRequest
	if r.ContentLength != 0 {
		if err := commons.DecodeJSON(r, &req); err != nil {
			commons.WriteError(w, traceID, err, logger)
			return
		}
	}

	userID := auth.UserIDFromContext(r.Context())
	result, err := c.useCase.SendEmail(r.Context(), userID, chi.URLParam(r, "orderId"), stageParam(r), req)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	status := http.StatusOK
	if result.Queued {
		status = http.StatusAccepted
	}
	commons.WriteJSON(w, status, result, logger)
}

func (c *StageController) ListEmails(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.Trace(c.logger)

	events, err := c.useCase.ListEmails(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	resp := dto.EmailLogResponse{
		TraceID:   traceID,
		Events:    make([]dto.EmailEventDTO, len(events)),
		Timestamp: time.Now().UTC(),
	}
	for i, e := range events {
		resp.Events[i] = dto.NewEmailEventDTO(e)
	}

	commons.WriteJSON(w, http.StatusOK, resp, logger)
}

func stageParam(r *http.Request) domain.Stage {
	return domain.Stage(chi.URLParam(r, "kind"))
}
