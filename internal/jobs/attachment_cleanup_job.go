package jobs

import (
	"context"

	"go.uber.org/zap"
)

const cleanupBatchSize = 100

type AttachmentSweeper interface {
	Sweep(ctx context.Context, limit int) (int, error)
}

// AttachmentCleanupJob retries attachment deletions that did not complete
// right after their transaction committed.
type AttachmentCleanupJob struct {
	sweeper AttachmentSweeper
	logger  *zap.Logger
}

func NewAttachmentCleanupJob(sweeper AttachmentSweeper, logger *zap.Logger) *AttachmentCleanupJob {
	return &AttachmentCleanupJob{
		sweeper: sweeper,
		logger:  logger.With(zap.String("component", "attachment_cleanup_job")),
	}
}

func (j *AttachmentCleanupJob) Name() string { return "attachment_cleanup" }

func (j *AttachmentCleanupJob) Run(ctx context.Context) {
	removed, err := j.sweeper.Sweep(ctx, cleanupBatchSize)
	if err != nil {
		j.logger.Error("attachment cleanup failed", zap.Error(err))
		return
	}
	if removed > 0 {
		j.logger.Info("attachments removed", zap.Int("count", removed))
	}
}
