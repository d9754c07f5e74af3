package expense

import (
	"database/sql"

	"go.uber.org/zap"

	"labelflow/internal/expense/controller"
	"labelflow/internal/expense/repository"
	"labelflow/internal/expense/service"
	"labelflow/internal/expense/usecase"
)

type Module struct {
	Controller *controller.ExpenseController
}

// NewModule wires the expense ledger. classifier may be nil when no model
// credentials are configured.
func NewModule(db *sql.DB, store service.ObjectStore, classifier service.Classifier, logger *zap.Logger) *Module {
	repo := repository.NewMySQLExpenseRepository(db)
	receipts := service.NewReceiptService(store, classifier, logger)
	useCase := usecase.NewExpenseUseCase(repo, receipts, logger)

	return &Module{
		Controller: controller.NewExpenseController(useCase, logger),
	}
}
