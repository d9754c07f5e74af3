package usecase

import (
	"context"
	"database/sql"
	"time"

	"labelflow/internal/domain"
	"labelflow/internal/dto"
)

type OrderRepository interface {
	Insert(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	UpdateDetails(ctx context.Context, tx *sql.Tx, order *domain.Order) error
	UpdateStatus(ctx context.Context, tx *sql.Tx, id string, status domain.Stage, at time.Time) error
	Delete(ctx context.Context, tx *sql.Tx, id string) error
}

type StageRepository interface {
	FindByOrder(ctx context.Context, orderID string) ([]domain.StageRecord, error)
	FindForUpdate(ctx context.Context, tx *sql.Tx, orderID string, kind domain.Stage) (*domain.StageRecord, error)
	Insert(ctx context.Context, tx *sql.Tx, rec *domain.StageRecord) error
	Update(ctx context.Context, tx *sql.Tx, rec *domain.StageRecord, expectedVersion int) error
}

type EmailLogRepository interface {
	Append(ctx context.Context, event domain.EmailEvent) error
	ListByOrder(ctx context.Context, orderID string) ([]domain.EmailEvent, error)
}

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type AttachmentUploader interface {
	Upload(ctx context.Context, referenceNumber, section string, files []dto.FileUpload) ([]domain.Attachment, error)
}

// AttachmentCleaner schedules deletions inside a transaction and runs them
// once it has committed.
type AttachmentCleaner interface {
	Schedule(ctx context.Context, tx *sql.Tx, attachments []domain.Attachment) ([]domain.PendingDeletion, error)
	Execute(ctx context.Context, pending []domain.PendingDeletion) int
}

type EmailComposer interface {
	Compose(kind domain.Stage, rec *domain.StageRecord, order *domain.Order) (domain.EmailDraft, error)
}

type EmailSender interface {
	Send(ctx context.Context, draft domain.EmailDraft) (string, error)
}

type EmailQueue interface {
	Enqueue(ctx context.Context, email *domain.QueuedEmail) error
}
