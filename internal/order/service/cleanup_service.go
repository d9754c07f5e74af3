package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"labelflow/internal/domain"
)

type DeletionRepository interface {
	Enqueue(ctx context.Context, tx *sql.Tx, urls []string, at time.Time) ([]domain.PendingDeletion, error)
	Pending(ctx context.Context, limit int) ([]domain.PendingDeletion, error)
	MarkDeleted(ctx context.Context, id int64, at time.Time) error
	MarkFailed(ctx context.Context, id int64, reason string) error
}

type AttachmentRemover interface {
	Remove(ctx context.Context, urls []string) map[string]error
}

type ManagedChecker interface {
	IsManaged(url string) bool
}

// CleanupService removes stored objects that records stopped referencing.
// Deletions are scheduled in the same transaction as the record change, run
// after commit and confirmed one by one; unconfirmed ones are retried by Sweep.
type CleanupService struct {
	repo    DeletionRepository
	remover AttachmentRemover
	managed ManagedChecker
	logger  *zap.Logger
	now     func() time.Time
}

func NewCleanupService(repo DeletionRepository, remover AttachmentRemover, managed ManagedChecker, logger *zap.Logger) *CleanupService {
	return &CleanupService{
		repo:    repo,
		remover: remover,
		managed: managed,
		logger:  logger.With(zap.String("component", "attachment_cleanup")),
		now:     time.Now,
	}
}

// Schedule records the managed URLs among attachments for deletion inside tx.
func (s *CleanupService) Schedule(ctx context.Context, tx *sql.Tx, attachments []domain.Attachment) ([]domain.PendingDeletion, error) {
	seen := make(map[string]struct{}, len(attachments))
	var urls []string
	for _, a := range attachments {
		if _, ok := seen[a.URL]; ok || !s.managed.IsManaged(a.URL) {
			continue
		}
		seen[a.URL] = struct{}{}
		urls = append(urls, a.URL)
	}

	if len(urls) == 0 {
		return nil, nil
	}

	return s.repo.Enqueue(ctx, tx, urls, s.now().UTC())
}

// Execute deletes the objects and confirms each success. Failures are logged
// and left pending; it returns how many deletions failed.
func (s *CleanupService) Execute(ctx context.Context, pending []domain.PendingDeletion) int {
	if len(pending) == 0 {
		return 0
	}

	urls := make([]string, len(pending))
	for i, p := range pending {
		urls[i] = p.URL
	}

	failures := s.remover.Remove(ctx, urls)

	for _, p := range pending {
		if err, failed := failures[p.URL]; failed {
			s.logger.Warn("attachment deletion failed, will retry", zap.Int64("deletionId", p.ID), zap.String("url", p.URL), zap.Error(err))
			if markErr := s.repo.MarkFailed(ctx, p.ID, err.Error()); markErr != nil {
				s.logger.Error("recording deletion failure", zap.Int64("deletionId", p.ID), zap.Error(markErr))
			}
			continue
		}

		if err := s.repo.MarkDeleted(ctx, p.ID, s.now().UTC()); err != nil {
			// The object is gone; the next sweep deletes it again and confirms.
			s.logger.Error("confirming deletion", zap.Int64("deletionId", p.ID), zap.Error(err))
		}
	}

	return len(failures)
}

// Sweep retries up to limit unconfirmed deletions.
func (s *CleanupService) Sweep(ctx context.Context, limit int) (int, error) {
	pending, err := s.repo.Pending(ctx, limit)
	if err != nil {
		return 0, err
	}

	failed := s.Execute(ctx, pending)
	if len(pending) > 0 {
		s.logger.Info("attachment cleanup sweep finished", zap.Int("attempted", len(pending)), zap.Int("failed", failed))
	}

	return len(pending) - failed, nil
}
