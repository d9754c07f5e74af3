package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"labelflow/internal/domain"
	"labelflow/internal/dto"
	apperrors "labelflow/internal/errors"
)

const maxParallelObjectOps = 8

type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
	IsManaged(url string) bool
}

// AttachmentService moves file bytes in and out of object storage. It never
// tracks which records reference a URL.
type AttachmentService struct {
	store  ObjectStore
	logger *zap.Logger
	now    func() time.Time
}

func NewAttachmentService(store ObjectStore, logger *zap.Logger) *AttachmentService {
	return &AttachmentService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// ObjectKey is the storage path of a file uploaded to an order section.
func ObjectKey(referenceNumber, section, filename string, at time.Time) string {
	return fmt.Sprintf("orders/%s/%s/%d_%s", referenceNumber, section, at.UnixMilli(), sanitizeFilename(filename))
}

// Upload stores files under the order's reference number and section, in order.
// The first failure aborts the remaining uploads.
func (s *AttachmentService) Upload(ctx context.Context, referenceNumber, section string, files []dto.FileUpload) ([]domain.Attachment, error) {
	attachments := make([]domain.Attachment, 0, len(files))

	for _, f := range files {
		key := ObjectKey(referenceNumber, section, f.Name, s.now())

		url, err := s.store.Put(ctx, key, f.Data, f.ContentType)
		if err != nil {
			s.logger.Error("attachment upload failed", zap.String("key", key), zap.Error(err))
			return nil, err
		}

		s.logger.Info("attachment uploaded", zap.String("key", key), zap.Int("bytes", len(f.Data)))
		attachments = append(attachments, domain.Attachment{Name: f.Name, URL: url})
	}

	return attachments, nil
}

// Remove deletes every managed URL independently and waits for all of them.
// The returned map holds the failures by URL; unmanaged URLs are skipped.
func (s *AttachmentService) Remove(ctx context.Context, urls []string) map[string]error {
	var mu sync.Mutex
	failures := make(map[string]error)

	g := new(errgroup.Group)
	g.SetLimit(maxParallelObjectOps)

	for _, url := range urls {
		if !s.store.IsManaged(url) {
			s.logger.Debug("skipping unmanaged attachment", zap.String("url", url))
			continue
		}

		g.Go(func() error {
			if err := s.store.Delete(ctx, url); err != nil {
				mu.Lock()
				failures[url] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return failures
}

// ValidateSection accepts the stage names as upload sections.
func ValidateSection(section string) error {
	if _, ok := domain.ParseStage(section); !ok {
		return apperrors.NewValidationError("invalid section", apperrors.ValidationDetail{
			Field:   "section",
			Message: "section must be a stage name",
		})
	}
	return nil
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}
