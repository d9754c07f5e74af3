package email

import (
	"database/sql"

	"go.uber.org/zap"

	"labelflow/internal/config"
	"labelflow/internal/email/controller"
	"labelflow/internal/email/repository"
	"labelflow/internal/email/service"
	"labelflow/internal/email/usecase"
)

type Module struct {
	Dispatcher *service.Dispatcher
	Queue      *repository.MySQLQueueRepository
	Controller *controller.SendEmailController
}

func NewModule(db *sql.DB, cfg *config.Config, objects service.ObjectReader, transport service.Transport, logger *zap.Logger) *Module {
	dispatcher := service.NewDispatcher(objects, transport, logger)

	return &Module{
		Dispatcher: dispatcher,
		Queue:      repository.NewMySQLQueueRepository(db),
		Controller: controller.NewSendEmailController(dispatcher, cfg.Mail.From, logger),
	}
}

// NewQueueProcessor builds the background sender. recorder is supplied by the
// order module, which owns the email log.
func (m *Module) NewQueueProcessor(recorder usecase.DeliveryRecorder, cfg *config.Config, logger *zap.Logger) *usecase.QueueProcessor {
	return usecase.NewQueueProcessor(m.Queue, m.Dispatcher, recorder, logger, cfg.Jobs.QueueBatchSize)
}
