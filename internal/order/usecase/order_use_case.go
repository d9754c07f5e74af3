package usecase

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"labelflow/internal/domain"
	"labelflow/internal/dto"
	apperrors "labelflow/internal/errors"
	"labelflow/internal/order/service"
	"labelflow/internal/workflow"
)

type OrderUseCase struct {
	orders   OrderRepository
	stages   StageRepository
	emails   EmailLogRepository
	tx       TxRunner
	uploader AttachmentUploader
	cleaner  AttachmentCleaner
	logger   *zap.Logger
	now      func() time.Time
}

func NewOrderUseCase(
	orders OrderRepository,
	stages StageRepository,
	emails EmailLogRepository,
	tx TxRunner,
	uploader AttachmentUploader,
	cleaner AttachmentCleaner,
	logger *zap.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		orders:   orders,
		stages:   stages,
		emails:   emails,
		tx:       tx,
		uploader: uploader,
		cleaner:  cleaner,
		logger:   logger,
		now:      time.Now,
	}
}

func (uc *OrderUseCase) Create(ctx context.Context, userID string, req dto.CreateOrderRequest) (*domain.Order, error) {
	if strings.TrimSpace(req.ReferenceNumber) == "" {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   domain.FieldReferenceNumber,
			Message: "referenceNumber is required",
		})
	}

	now := uc.now().UTC()
	files := req.Files
	if files == nil {
		files = []domain.Attachment{}
	}

	order := &domain.Order{
		ID:              uuid.NewString(),
		ReferenceNumber: strings.TrimSpace(req.ReferenceNumber),
		OrderName:       req.OrderName,
		LabelType:       req.LabelType,
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		OrderDetails:    req.OrderDetails,
		Status:          domain.StageOrderDetails,
		Files:           files,
		CreatedBy:       userID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := uc.orders.Insert(ctx, order); err != nil {
		return nil, err
	}

	uc.logger.Info("order created", zap.String("orderId", order.ID), zap.String("referenceNumber", order.ReferenceNumber))
	return order, nil
}

// Get loads the full aggregate: root, stage records and email log.
func (uc *OrderUseCase) Get(ctx context.Context, id string) (*domain.Order, error) {
	order, err := loadAggregate(ctx, uc.orders, uc.stages, id)
	if err != nil {
		return nil, err
	}

	events, err := uc.emails.ListByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.EmailLog = events

	return order, nil
}

func (uc *OrderUseCase) List(ctx context.Context) ([]domain.Order, error) {
	return uc.orders.List(ctx)
}

// UpdateDetails applies a partial update to the order-details fields. Files
// dropped from the list are deleted from storage after the update commits.
func (uc *OrderUseCase) UpdateDetails(ctx context.Context, id string, req dto.UpdateOrderRequest) (*domain.Order, error) {
	if req.ReferenceNumber != nil && strings.TrimSpace(*req.ReferenceNumber) == "" {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   domain.FieldReferenceNumber,
			Message: "referenceNumber must not be empty",
		})
	}

	var updated *domain.Order
	var pending []domain.PendingDeletion

	err := uc.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		order, err := uc.orders.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		var dropped []domain.Attachment
		applyDetails(order, req)
		if req.Files != nil {
			dropped = domain.DroppedAttachments(order.Files, *req.Files)
			order.Files = *req.Files
		}
		order.UpdatedAt = uc.now().UTC()

		if err := uc.orders.UpdateDetails(ctx, tx, order); err != nil {
			return err
		}

		pending, err = uc.cleaner.Schedule(ctx, tx, dropped)
		if err != nil {
			return err
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.cleaner.Execute(ctx, pending)

	uc.logger.Info("order details updated", zap.String("orderId", id), zap.Int("droppedFiles", len(pending)))
	return updated, nil
}

// Delete removes the order with its stage records and email log, then deletes
// every managed object the order referenced. Object deletion failures are
// left to the cleanup sweep and do not fail the delete.
func (uc *OrderUseCase) Delete(ctx context.Context, id string) error {
	var pending []domain.PendingDeletion

	err := uc.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		order, err := uc.orders.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		records, err := uc.stages.FindByOrder(ctx, id)
		if err != nil {
			return err
		}

		attachments := append([]domain.Attachment{}, order.Files...)
		for _, rec := range records {
			attachments = append(attachments, rec.Files...)
		}

		if err := uc.orders.Delete(ctx, tx, id); err != nil {
			return err
		}

		pending, err = uc.cleaner.Schedule(ctx, tx, attachments)
		return err
	})
	if err != nil {
		return err
	}

	failed := uc.cleaner.Execute(ctx, pending)

	uc.logger.Info("order deleted", zap.String("orderId", id), zap.Int("objects", len(pending)), zap.Int("objectFailures", failed))
	return nil
}

// MoveStatus sets the status explicitly. Only forward moves are accepted;
// moving to the current status is a no-op.
func (uc *OrderUseCase) MoveStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	target := domain.Stage(status)

	var updated *domain.Order
	err := uc.tx.WithinTx(ctx, func(tx *sql.Tx) error {
		order, err := uc.orders.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := workflow.CheckMove(order.Status, target); err != nil {
			return err
		}

		if target != order.Status {
			order.Status = target
			order.UpdatedAt = uc.now().UTC()
			if err := uc.orders.UpdateStatus(ctx, tx, id, target, order.UpdatedAt); err != nil {
				return err
			}
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order status moved", zap.String("orderId", id), zap.String("status", string(updated.Status)))
	return updated, nil
}

// UploadAttachments stores files under the order's reference number. The
// returned references are not attached to any record until a save lists them.
func (uc *OrderUseCase) UploadAttachments(ctx context.Context, id, section string, files []dto.FileUpload) ([]domain.Attachment, error) {
	if err := service.ValidateSection(section); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, apperrors.NewValidationError("no files uploaded", apperrors.ValidationDetail{
			Field:   "files",
			Message: "at least one file is required",
		})
	}

	order, err := uc.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return uc.uploader.Upload(ctx, order.ReferenceNumber, section, files)
}

func applyDetails(order *domain.Order, req dto.UpdateOrderRequest) {
	if req.ReferenceNumber != nil {
		order.ReferenceNumber = strings.TrimSpace(*req.ReferenceNumber)
	}
	if req.OrderName != nil {
		order.OrderName = *req.OrderName
	}
	if req.LabelType != nil {
		order.LabelType = *req.LabelType
	}
	if req.CustomerEmail != nil {
		order.CustomerEmail = strings.TrimSpace(*req.CustomerEmail)
	}
	if req.OrderDetails != nil {
		order.OrderDetails = *req.OrderDetails
	}
}

// loadAggregate reads the order root and attaches its stage records.
func loadAggregate(ctx context.Context, orders OrderRepository, stages StageRepository, id string) (*domain.Order, error) {
	order, err := orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	records, err := stages.FindByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range records {
		order.SetStage(&records[i])
	}

	return order, nil
}
