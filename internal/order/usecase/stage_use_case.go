package usecase

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"labelflow/internal/domain"
	"labelflow/internal/dto"
	apperrors "labelflow/internal/errors"
	"labelflow/internal/workflow"
)

type StageUseCase struct {
	orders   OrderRepository
	stages   StageRepository
	emails   EmailLogRepository
	tx       TxRunner
	cleaner  AttachmentCleaner
	composer EmailComposer
	sender   EmailSender
	queue    EmailQueue
	logger   *zap.Logger
	now      func() time.Time
}

func NewStageUseCase(
	orders OrderRepository,
	stages StageRepository,
	emails EmailLogRepository,
	tx TxRunner,
	cleaner AttachmentCleaner,
	composer EmailComposer,
	sender EmailSender,
	queue EmailQueue,
	logger *zap.Logger,
) *StageUseCase {
	return &StageUseCase{
		orders:   orders,
		stages:   stages,
		emails:   emails,
		tx:       tx,
		cleaner:  cleaner,
		composer: composer,
		sender:   sender,
		queue:    queue,
		logger:   logger,
		now:      time.Now,
	}
}

// SaveStage creates the record of kind or merges req into the existing one.
// A supplied version must equal the stored version (zero when none exists).
func (uc *StageUseCase) SaveStage(ctx context.Context, orderID string, kind domain.Stage, req dto.SaveStageRequest) (*domain.StageRecord, error) {
	if err := validateRecordKind(kind); err != nil {
		return nil, err
	}

	var saved *domain.StageRecord
	var pending []domain.PendingDeletion

	err := uc.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		if _, err := uc.orders.FindByIDForUpdate(ctx, tx, orderID); err != nil {
			return err
		}

		rec, err := uc.stages.FindForUpdate(ctx, tx, orderID, kind)
		if err != nil {
			return err
		}

		now := uc.now().UTC()

		if rec == nil {
			if req.Version != nil && *req.Version != 0 {
				return apperrors.NewConflictError(fmt.Sprintf("%s record does not exist yet", kind))
			}

			rec = &domain.StageRecord{
				ID:        uuid.NewString(),
				OrderID:   orderID,
				Kind:      kind,
				Fields:    map[string]string{},
				Files:     []domain.Attachment{},
				Version:   1,
				CreatedAt: now,
				UpdatedAt: now,
			}
			rec.Merge(req.Fields, filesOf(req), req.Files != nil)

			if err := uc.stages.Insert(ctx, tx, rec); err != nil {
				return err
			}
			saved = rec
			return nil
		}

		if req.Version != nil && *req.Version != rec.Version {
			return apperrors.NewConflictError(fmt.Sprintf("%s record is at version %d, not %d", kind, rec.Version, *req.Version))
		}

		expected := rec.Version
		dropped := rec.Merge(req.Fields, filesOf(req), req.Files != nil)
		rec.Version++
		rec.UpdatedAt = now

		if err := uc.stages.Update(ctx, tx, rec, expected); err != nil {
			return err
		}

		pending, err = uc.cleaner.Schedule(ctx, tx, dropped)
		if err != nil {
			return err
		}

		saved = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.cleaner.Execute(ctx, pending)

	uc.logger.Info("stage record saved",
		zap.String("orderId", orderID),
		zap.String("kind", string(kind)),
		zap.Int("version", saved.Version),
	)
	return saved, nil
}

// Preview composes the stage email without sending it.
func (uc *StageUseCase) Preview(ctx context.Context, orderID string, kind domain.Stage) (domain.EmailDraft, error) {
	if !kind.Valid() {
		return domain.EmailDraft{}, invalidStage()
	}

	order, err := loadAggregate(ctx, uc.orders, uc.stages, orderID)
	if err != nil {
		return domain.EmailDraft{}, err
	}

	rec := order.Stage(kind)
	if rec == nil {
		rec = &domain.StageRecord{OrderID: orderID, Kind: kind}
	}

	return uc.composer.Compose(kind, rec, order)
}

// SendEmail composes and dispatches the stage email. Interactive sends log the
// event and advance the order once the transport accepts the message; queued
// sends are handed to the background worker, which does the same.
func (uc *StageUseCase) SendEmail(ctx context.Context, userID, orderID string, kind domain.Stage, req dto.SendStageEmailRequest) (*dto.SendStageEmailResult, error) {
	if !kind.Valid() {
		return nil, invalidStage()
	}

	order, err := loadAggregate(ctx, uc.orders, uc.stages, orderID)
	if err != nil {
		return nil, err
	}

	rec := order.Stage(kind)
	if strings.TrimSpace(req.Recipient) == "" {
		err = workflow.ValidateForSend(kind, rec, order)
	} else {
		err = workflow.ValidateRequired(kind, order)
	}
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &domain.StageRecord{OrderID: orderID, Kind: kind}
	}

	draft, err := uc.composer.Compose(kind, rec, order)
	if err != nil {
		return nil, err
	}
	applyOverrides(&draft, req)

	logger := uc.logger.With(zap.String("orderId", orderID), zap.String("stage", string(kind)))

	if req.Queue {
		queued := &domain.QueuedEmail{
			ID:          uuid.NewString(),
			OrderID:     orderID,
			Stage:       kind,
			Draft:       draft,
			IsForwarded: req.IsForwarded,
			IsResend:    req.IsResend,
			CreatedBy:   userID,
			CreatedAt:   uc.now().UTC(),
		}
		if err := uc.queue.Enqueue(ctx, queued); err != nil {
			return nil, err
		}

		logger.Info("stage email queued", zap.String("queueId", queued.ID))
		return &dto.SendStageEmailResult{QueueID: queued.ID, Queued: true, Status: order.Status}, nil
	}

	messageID, err := uc.sender.Send(ctx, draft)
	if err != nil {
		logger.Warn("stage email send failed", zap.Error(err))
		return nil, err
	}

	status, err := uc.RecordDelivery(ctx, domain.QueuedEmail{
		OrderID:     orderID,
		Stage:       kind,
		Draft:       draft,
		IsForwarded: req.IsForwarded,
		IsResend:    req.IsResend,
	}, messageID, uc.now().UTC())
	if err != nil {
		return nil, err
	}

	logger.Info("stage email sent", zap.String("messageId", messageID), zap.String("status", string(status)))
	return &dto.SendStageEmailResult{MessageID: messageID, Status: status}, nil
}

// RecordDelivery appends the email event of a delivered stage email and
// advances the order past that stage. Forwarded copies are logged only.
func (uc *StageUseCase) RecordDelivery(ctx context.Context, email domain.QueuedEmail, messageID string, sentAt time.Time) (domain.Stage, error) {
	event := domain.NewEmailEvent(uuid.NewString(), email.OrderID, email.Stage, email.Draft, messageID, sentAt, email.IsForwarded, email.IsResend)
	if err := uc.emails.Append(ctx, event); err != nil {
		return "", err
	}

	var status domain.Stage
	err := uc.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		order, err := uc.orders.FindByIDForUpdate(ctx, tx, email.OrderID)
		if err != nil {
			return err
		}

		status = order.Status
		if email.IsForwarded {
			return nil
		}

		next := workflow.Advance(order.Status, email.Stage)
		if next == order.Status {
			return nil
		}

		status = next
		return uc.orders.UpdateStatus(ctx, tx, email.OrderID, next, sentAt)
	})
	if err != nil {
		return "", err
	}

	return status, nil
}

// ListEmails returns the order's email log, newest first.
func (uc *StageUseCase) ListEmails(ctx context.Context, orderID string) ([]domain.EmailEvent, error) {
	if _, err := uc.orders.FindByID(ctx, orderID); err != nil {
		return nil, err
	}
	return uc.emails.ListByOrder(ctx, orderID)
}

func applyOverrides(draft *domain.EmailDraft, req dto.SendStageEmailRequest) {
	if to := strings.TrimSpace(req.Recipient); to != "" {
		draft.To = to
	}
	if req.Subject != nil {
		draft.Subject = *req.Subject
	}
	if req.Body != nil {
		draft.Body = *req.Body
	}
}

func filesOf(req dto.SaveStageRequest) []domain.Attachment {
	if req.Files == nil {
		return nil
	}
	if *req.Files == nil {
		return []domain.Attachment{}
	}
	return *req.Files
}

func validateRecordKind(kind domain.Stage) error {
	if !kind.Valid() {
		return invalidStage()
	}
	if kind == domain.StageOrderDetails {
		return apperrors.NewValidationError("order details are stored on the order", apperrors.ValidationDetail{
			Field:   "kind",
			Message: "use the order update to change order details",
		})
	}
	return nil
}

func invalidStage() error {
	return apperrors.NewValidationError("invalid stage", apperrors.ValidationDetail{
		Field:   "kind",
		Message: "kind must be one of order-details, sampling, production, shipment",
	})
}
