package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"labelflow/internal/auth"
	"labelflow/internal/commons"
	"labelflow/internal/domain"
	"labelflow/internal/dto"
	"labelflow/internal/workflow"
)

const maxUploadMemory = 32 << 20

type OrderUseCase interface {
	Create(ctx context.Context, userID string, req dto.CreateOrderRequest) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	UpdateDetails(ctx context.Context, id string, req dto.UpdateOrderRequest) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
	MoveStatus(ctx context.Context, id, status string) (*domain.Order, error)
	UploadAttachments(ctx context.Context, id, section string, files []dto.FileUpload) ([]domain.Attachment, error)
}

type OrderController struct {
	useCase OrderUseCase
	logger  *zap.Logger
}

func NewOrderController(useCase OrderUseCase, logger *zap.Logger) *OrderController {
	return &OrderController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.Trace(c.logger)

	var req dto.CreateOrderRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	order, err := c.useCase.Create(r.Context(), auth.UserIDFromContext(r.Context()), req)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusCreated, NewOrderResponse(order), logger)
}

func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.Trace(c.logger)

	orders, err := c.useCase.List(r.Context())
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	resp := make([]dto.OrderResponse, len(orders))
	for i := range orders {
		resp[i] = NewOrderResponse(&orders[i])
	}

	commons.WriteJSON(w, http.StatusOK, resp, logger)
}

func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.Trace(c.logger)

	order, err := c.useCase.Get(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, NewOrderResponse(order), logger)
}

func (c *OrderController) Update(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.Trace(c.logger)

	var req dto.UpdateOrderRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	order, err := c.useCase.UpdateDetails(r.Context(), chi.URLParam(r, "orderId"), req)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, NewOrderResponse(order), logger)
}

func (c *OrderController) Delete(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.Trace(c.logger)

	if err := c.useCase.Delete(r.Context(), chi.URLParam(r, "orderId")); err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *OrderController) MoveStatus(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.Trace(c.logger)

	var req dto.MoveStatusRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	order, err := c.useCase.MoveStatus(r.Context(), chi.URLParam(r, "orderId"), req.Status)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, NewOrderResponse(order), logger)
}

// UploadAttachments accepts a multipart form with one or more "files" parts.
func (c *OrderController) UploadAttachments(w http.ResponseWriter, r *http.Request) {
	traceID, logger := commons.Trace(c.logger)

	files, err := commons.ReadMultipartFiles(r, "files", maxUploadMemory)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	refs, err := c.useCase.UploadAttachments(r.Context(), chi.URLParam(r, "orderId"), r.URL.Query().Get("section"), files)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusCreated, dto.UploadResponse{Files: refs}, logger)
}

// NewOrderResponse maps the aggregate to its response body. Progress reports,
// per stage, whether the order has reached it.
func NewOrderResponse(order *domain.Order) dto.OrderResponse {
	progress := make(map[string]bool, 4)
	for _, s := range domain.Stages() {
		progress[string(s)] = workflow.IsStageComplete(order.Status, s)
	}

	files := order.Files
	if files == nil {
		files = []domain.Attachment{}
	}

	resp := dto.OrderResponse{
		ID:              order.ID,
		ReferenceNumber: order.ReferenceNumber,
		OrderName:       order.OrderName,
		LabelType:       order.LabelType,
		CustomerEmail:   order.CustomerEmail,
		OrderDetails:    order.OrderDetails,
		Status:          order.Status,
		Progress:        progress,
		Files:           files,
		CreatedBy:       order.CreatedBy,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		Sampling:        dto.NewStageRecordDTO(order.Sampling),
		Production:      dto.NewStageRecordDTO(order.Production),
		Shipment:        dto.NewStageRecordDTO(order.Shipment),
	}

	if order.EmailLog != nil {
		resp.EmailLog = make([]dto.EmailEventDTO, len(order.EmailLog))
		for i, e := range order.EmailLog {
			resp.EmailLog[i] = dto.NewEmailEventDTO(e)
		}
	}

	return resp
}
