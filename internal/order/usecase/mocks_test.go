package usecase

import (
	"context"
	"database/sql"
	"time"

	"labelflow/internal/domain"
	"labelflow/internal/dto"
	apperrors "labelflow/internal/errors"
)

type mockOrderRepository struct {
	InsertFunc            func(ctx context.Context, order *domain.Order) error
	FindByIDFunc          func(ctx context.Context, id string) (*domain.Order, error)
	FindByIDForUpdateFunc func(ctx context.Context, tx *sql.Tx, id string) (*domain.Order, error)
	ListFunc              func(ctx context.Context) ([]domain.Order, error)
	UpdateDetailsFunc     func(ctx context.Context, tx *sql.Tx, order *domain.Order) error
	UpdateStatusFunc      func(ctx context.Context, tx *sql.Tx, id string, status domain.Stage, at time.Time) error
	DeleteFunc            func(ctx context.Context, tx *sql.Tx, id string) error
}

func (m *mockOrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	return m.InsertFunc(ctx, order)
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockOrderRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id string) (*domain.Order, error) {
	return m.FindByIDForUpdateFunc(ctx, tx, id)
}

func (m *mockOrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	return m.ListFunc(ctx)
}

func (m *mockOrderRepository) UpdateDetails(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	return m.UpdateDetailsFunc(ctx, tx, order)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id string, status domain.Stage, at time.Time) error {
	return m.UpdateStatusFunc(ctx, tx, id, status, at)
}

func (m *mockOrderRepository) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	return m.DeleteFunc(ctx, tx, id)
}

type mockStageRepository struct {
	FindByOrderFunc   func(ctx context.Context, orderID string) ([]domain.StageRecord, error)
	FindForUpdateFunc func(ctx context.Context, tx *sql.Tx, orderID string, kind domain.Stage) (*domain.StageRecord, error)
	InsertFunc        func(ctx context.Context, tx *sql.Tx, rec *domain.StageRecord) error
	UpdateFunc        func(ctx context.Context, tx *sql.Tx, rec *domain.StageRecord, expectedVersion int) error
}

func (m *mockStageRepository) FindByOrder(ctx context.Context, orderID string) ([]domain.StageRecord, error) {
	if m.FindByOrderFunc == nil {
		return nil, nil
	}
	return m.FindByOrderFunc(ctx, orderID)
}

func (m *mockStageRepository) FindForUpdate(ctx context.Context, tx *sql.Tx, orderID string, kind domain.Stage) (*domain.StageRecord, error) {
	return m.FindForUpdateFunc(ctx, tx, orderID, kind)
}

func (m *mockStageRepository) Insert(ctx context.Context, tx *sql.Tx, rec *domain.StageRecord) error {
	return m.InsertFunc(ctx, tx, rec)
}

func (m *mockStageRepository) Update(ctx context.Context, tx *sql.Tx, rec *domain.StageRecord, expectedVersion int) error {
	return m.UpdateFunc(ctx, tx, rec, expectedVersion)
}

type mockEmailLogRepository struct {
	ListByOrderFunc func(ctx context.Context, orderID string) ([]domain.EmailEvent, error)

	appended []domain.EmailEvent
	err      error
}

func (m *mockEmailLogRepository) Append(ctx context.Context, event domain.EmailEvent) error {
	if m.err != nil {
		return m.err
	}
	m.appended = append(m.appended, event)
	return nil
}

func (m *mockEmailLogRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.EmailEvent, error) {
	if m.ListByOrderFunc == nil {
		return []domain.EmailEvent{}, nil
	}
	return m.ListByOrderFunc(ctx, orderID)
}

// inlineTx runs fn without a real transaction.
type inlineTx struct{}

func (inlineTx) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

type mockUploader struct {
	UploadFunc func(ctx context.Context, referenceNumber, section string, files []dto.FileUpload) ([]domain.Attachment, error)
}

func (m *mockUploader) Upload(ctx context.Context, referenceNumber, section string, files []dto.FileUpload) ([]domain.Attachment, error) {
	return m.UploadFunc(ctx, referenceNumber, section, files)
}

// recordingCleaner schedules every attachment it is given and records what
// was executed.
type recordingCleaner struct {
	scheduled []domain.Attachment
	executed  []domain.PendingDeletion
}

func (c *recordingCleaner) Schedule(ctx context.Context, tx *sql.Tx, attachments []domain.Attachment) ([]domain.PendingDeletion, error) {
	c.scheduled = append(c.scheduled, attachments...)
	pending := make([]domain.PendingDeletion, len(attachments))
	for i, a := range attachments {
		pending[i] = domain.PendingDeletion{ID: int64(i + 1), URL: a.URL}
	}
	return pending, nil
}

func (c *recordingCleaner) Execute(ctx context.Context, pending []domain.PendingDeletion) int {
	c.executed = append(c.executed, pending...)
	return 0
}

type mockComposer struct {
	ComposeFunc func(kind domain.Stage, rec *domain.StageRecord, order *domain.Order) (domain.EmailDraft, error)
}

func (m *mockComposer) Compose(kind domain.Stage, rec *domain.StageRecord, order *domain.Order) (domain.EmailDraft, error) {
	return m.ComposeFunc(kind, rec, order)
}

type mockSender struct {
	SendFunc func(ctx context.Context, draft domain.EmailDraft) (string, error)

	sent []domain.EmailDraft
}

func (m *mockSender) Send(ctx context.Context, draft domain.EmailDraft) (string, error) {
	m.sent = append(m.sent, draft)
	return m.SendFunc(ctx, draft)
}

type mockQueue struct {
	queued []*domain.QueuedEmail
}

func (m *mockQueue) Enqueue(ctx context.Context, email *domain.QueuedEmail) error {
	m.queued = append(m.queued, email)
	return nil
}

func notFound(ctx context.Context, id string) (*domain.Order, error) {
	return nil, apperrors.NewNotFoundError("order " + id + " not found")
}
