package jobs

import (
	"context"

	"go.uber.org/zap"
)

type QueueProcessor interface {
	ProcessPending(ctx context.Context) (sent, failed int)
}

// EmailQueueJob drains queued stage emails.
type EmailQueueJob struct {
	processor QueueProcessor
	logger    *zap.Logger
}

func NewEmailQueueJob(processor QueueProcessor, logger *zap.Logger) *EmailQueueJob {
	return &EmailQueueJob{
		processor: processor,
		logger:    logger.With(zap.String("component", "email_queue_job")),
	}
}

func (j *EmailQueueJob) Name() string { return "email_queue" }

func (j *EmailQueueJob) Run(ctx context.Context) {
	sent, failed := j.processor.ProcessPending(ctx)
	if sent > 0 || failed > 0 {
		j.logger.Info("email queue processed", zap.Int("sent", sent), zap.Int("failed", failed))
	}
}
