package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"labelflow/internal/domain"
)

type QueueStore interface {
	Claim(ctx context.Context, limit int, at time.Time) ([]domain.QueuedEmail, error)
	MarkSent(ctx context.Context, id, messageID string, at time.Time, note string) error
	MarkFailed(ctx context.Context, id, reason string) error
}

type Sender interface {
	Send(ctx context.Context, draft domain.EmailDraft) (string, error)
}

// DeliveryRecorder logs a delivered stage email on its order.
type DeliveryRecorder interface {
	RecordDelivery(ctx context.Context, email domain.QueuedEmail, messageID string, sentAt time.Time) (domain.Stage, error)
}

// QueueProcessor sends queued emails. Each row is attempted once; a failed
// send is recorded on the row and never retried.
type QueueProcessor struct {
	queue     QueueStore
	sender    Sender
	recorder  DeliveryRecorder
	logger    *zap.Logger
	batchSize int
	now       func() time.Time
}

func NewQueueProcessor(queue QueueStore, sender Sender, recorder DeliveryRecorder, logger *zap.Logger, batchSize int) *QueueProcessor {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &QueueProcessor{
		queue:     queue,
		sender:    sender,
		recorder:  recorder,
		logger:    logger.With(zap.String("component", "email_queue")),
		batchSize: batchSize,
		now:       time.Now,
	}
}

// ProcessPending claims one batch and processes it. It returns the number of
// emails sent and failed; errors are logged, never returned.
func (p *QueueProcessor) ProcessPending(ctx context.Context) (sent, failed int) {
	emails, err := p.queue.Claim(ctx, p.batchSize, p.now().UTC())
	if err != nil {
		p.logger.Error("claiming queued emails", zap.Error(err))
	}

	for _, email := range emails {
		if p.process(ctx, email) {
			sent++
		} else {
			failed++
		}
	}

	if len(emails) > 0 {
		p.logger.Info("email queue batch processed", zap.Int("sent", sent), zap.Int("failed", failed))
	}
	return sent, failed
}

func (p *QueueProcessor) process(ctx context.Context, email domain.QueuedEmail) (ok bool) {
	logger := p.logger.With(zap.String("queueId", email.ID), zap.String("orderId", email.OrderID))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while sending queued email", zap.Any("panic", r))
			p.markFailed(ctx, email.ID, fmt.Sprintf("panic: %v", r), logger)
			ok = false
		}
	}()

	messageID, err := p.sender.Send(ctx, email.Draft)
	if err != nil {
		logger.Warn("queued email send failed", zap.Error(err))
		p.markFailed(ctx, email.ID, err.Error(), logger)
		return false
	}

	sentAt := p.now().UTC()

	var note string
	if email.OrderID != "" {
		if _, err := p.recorder.RecordDelivery(ctx, email, messageID, sentAt); err != nil {
			logger.Error("recording queued email delivery", zap.String("messageId", messageID), zap.Error(err))
			note = "recording delivery: " + err.Error()
		}
	}

	if err := p.queue.MarkSent(ctx, email.ID, messageID, sentAt, note); err != nil {
		logger.Error("marking queued email sent", zap.String("messageId", messageID), zap.Error(err))
	}

	logger.Info("queued email sent", zap.String("messageId", messageID))
	return true
}

func (p *QueueProcessor) markFailed(ctx context.Context, id, reason string, logger *zap.Logger) {
	if err := p.queue.MarkFailed(ctx, id, reason); err != nil {
		logger.Error("marking queued email failed", zap.Error(err))
	}
}
