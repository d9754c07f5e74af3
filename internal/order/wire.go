package order

import (
	"database/sql"

	"go.uber.org/zap"

	"labelflow/internal/config"
	"labelflow/internal/infrastructure/mysql"
	"labelflow/internal/order/controller"
	"labelflow/internal/order/repository"
	"labelflow/internal/order/service"
	"labelflow/internal/order/usecase"
	"labelflow/internal/workflow"
)

type Module struct {
	Orders          *usecase.OrderUseCase
	Stages          *usecase.StageUseCase
	Cleanup         *service.CleanupService
	OrderController *controller.OrderController
	StageController *controller.StageController
}

func NewModule(
	db *sql.DB,
	cfg *config.Config,
	store service.ObjectStore,
	sender usecase.EmailSender,
	queue usecase.EmailQueue,
	logger *zap.Logger,
) *Module {
	orderRepo := repository.NewMySQLOrderRepository(db)
	stageRepo := repository.NewMySQLStageRepository(db)
	emailLogRepo := repository.NewMySQLEmailLogRepository(db)
	deletionRepo := repository.NewMySQLDeletionRepository(db)
	txManager := mysql.NewTxManager(db)

	attachments := service.NewAttachmentService(store, logger)
	cleanup := service.NewCleanupService(deletionRepo, attachments, store, logger)
	composer := workflow.NewComposer(cfg.Mail.From)

	orders := usecase.NewOrderUseCase(orderRepo, stageRepo, emailLogRepo, txManager, attachments, cleanup, logger)
	stages := usecase.NewStageUseCase(orderRepo, stageRepo, emailLogRepo, txManager, cleanup, composer, sender, queue, logger)

	return &Module{
		Orders:          orders,
		Stages:          stages,
		Cleanup:         cleanup,
		OrderController: controller.NewOrderController(orders, logger),
		StageController: controller.NewStageController(stages, logger),
	}
}
