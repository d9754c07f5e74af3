package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"labelflow/internal/auth"
	"labelflow/internal/domain"
	"labelflow/internal/dto"
	apperrors "labelflow/internal/errors"
)

type mockOrderUseCase struct {
	CreateFunc            func(ctx context.Context, userID string, req dto.CreateOrderRequest) (*domain.Order, error)
	GetFunc               func(ctx context.Context, id string) (*domain.Order, error)
	ListFunc              func(ctx context.Context) ([]domain.Order, error)
	UpdateDetailsFunc     func(ctx context.Context, id string, req dto.UpdateOrderRequest) (*domain.Order, error)
	DeleteFunc            func(ctx context.Context, id string) error
	MoveStatusFunc        func(ctx context.Context, id, status string) (*domain.Order, error)
	UploadAttachmentsFunc func(ctx context.Context, id, section string, files []dto.FileUpload) ([]domain.Attachment, error)
}

func (m *mockOrderUseCase) Create(ctx context.Context, userID string, req dto.CreateOrderRequest) (*domain.Order, error) {
	return m.CreateFunc(ctx, userID, req)
}

func (m *mockOrderUseCase) Get(ctx context.Context, id string) (*domain.Order, error) {
	return m.GetFunc(ctx, id)
}

func (m *mockOrderUseCase) List(ctx context.Context) ([]domain.Order, error) {
	return m.ListFunc(ctx)
}

func (m *mockOrderUseCase) UpdateDetails(ctx context.Context, id string, req dto.UpdateOrderRequest) (*domain.Order, error) {
	return m.UpdateDetailsFunc(ctx, id, req)
}

func (m *mockOrderUseCase) Delete(ctx context.Context, id string) error {
	return m.DeleteFunc(ctx, id)
}

func (m *mockOrderUseCase) MoveStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	return m.MoveStatusFunc(ctx, id, status)
}

func (m *mockOrderUseCase) UploadAttachments(ctx context.Context, id, section string, files []dto.FileUpload) ([]domain.Attachment, error) {
	return m.UploadAttachmentsFunc(ctx, id, section, files)
}

type mockStageUseCase struct {
	SaveStageFunc  func(ctx context.Context, orderID string, kind domain.Stage, req dto.SaveStageRequest) (*domain.StageRecord, error)
	PreviewFunc    func(ctx context.Context, orderID string, kind domain.Stage) (domain.EmailDraft, error)
	SendEmailFunc  func(ctx context.Context, userID, orderID string, kind domain.Stage, req dto.SendStageEmailRequest) (*dto.SendStageEmailResult, error)
	ListEmailsFunc func(ctx context.Context, orderID string) ([]domain.EmailEvent, error)
}

func (m *mockStageUseCase) SaveStage(ctx context.Context, orderID string, kind domain.Stage, req dto.SaveStageRequest) (*domain.StageRecord, error) {
	return m.SaveStageFunc(ctx, orderID, kind, req)
}

func (m *mockStageUseCase) Preview(ctx context.Context, orderID string, kind domain.Stage) (domain.EmailDraft, error) {
	return m.PreviewFunc(ctx, orderID, kind)
}

func (m *mockStageUseCase) SendEmail(ctx context.Context, userID, orderID string, kind domain.Stage, req dto.SendStageEmailRequest) (*dto.SendStageEmailResult, error) {
	return m.SendEmailFunc(ctx, userID, orderID, kind, req)
}

func (m *mockStageUseCase) ListEmails(ctx context.Context, orderID string) ([]domain.EmailEvent, error) {
	return m.ListEmailsFunc(ctx, orderID)
}

// newTestRouter mounts the order routes with a fixed authenticated user.
func newTestRouter(orders *mockOrderUseCase, stages *mockStageUseCase) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), "u-1")))
		})
	})
	r.Route("/api/orders", func(r chi.Router) {
		Mount(r, NewOrderController(orders, zap.NewNop()), NewStageController(stages, zap.NewNop()))
	})
	return r
}

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrder_Created(t *testing.T) {
	orders := &mockOrderUseCase{
		CreateFunc: func(ctx context.Context, userID string, req dto.CreateOrderRequest) (*domain.Order, error) {
			assert.Equal(t, "u-1", userID)
			assert.Equal(t, "R1", req.ReferenceNumber)
			return &domain.Order{ID: "o-1", ReferenceNumber: "R1", Status: domain.StageOrderDetails}, nil
		},
	}

	rec := serve(t, newTestRouter(orders, &mockStageUseCase{}), http.MethodPost, "/api/orders", `{"referenceNumber":"R1"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "o-1", resp.ID)
	assert.Equal(t, []domain.Attachment{}, resp.Files)
	assert.True(t, resp.Progress["order-details"])
	assert.False(t, resp.Progress["sampling"])
}

func TestCreateOrder_InvalidJSON(t *testing.T) {
	rec := serve(t, newTestRouter(&mockOrderUseCase{}, &mockStageUseCase{}), http.MethodPost, "/api/orders", `{`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
}

func TestGetOrder_NotFound(t *testing.T) {
	orders := &mockOrderUseCase{
		GetFunc: func(ctx context.Context, id string) (*domain.Order, error) {
			assert.Equal(t, "missing", id)
			return nil, apperrors.NewNotFoundError("order missing not found")
		},
	}

	rec := serve(t, newTestRouter(orders, &mockStageUseCase{}), http.MethodGet, "/api/orders/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Code)
	assert.NotEmpty(t, resp.TraceID)
}

func TestGetOrder_IncludesStagesAndLog(t *testing.T) {
	orders := &mockOrderUseCase{
		GetFunc: func(ctx context.Context, id string) (*domain.Order, error) {
			return &domain.Order{
				ID:       id,
				Status:   domain.StageProduction,
				Sampling: &domain.StageRecord{ID: "s-1", Kind: domain.StageSampling, Version: 2},
				EmailLog: []domain.EmailEvent{{ID: "e-1", Subject: "Sampling Request: Winter"}},
			}, nil
		},
	}

	rec := serve(t, newTestRouter(orders, &mockStageUseCase{}), http.MethodGet, "/api/orders/o-1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Sampling)
	assert.Equal(t, 2, resp.Sampling.Version)
	assert.Nil(t, resp.Shipment)
	require.Len(t, resp.EmailLog, 1)
	assert.True(t, resp.Progress["production"])
	assert.False(t, resp.Progress["shipment"])
}

func TestDeleteOrder(t *testing.T) {
	orders := &mockOrderUseCase{
		DeleteFunc: func(ctx context.Context, id string) error { return nil },
	}

	rec := serve(t, newTestRouter(orders, &mockStageUseCase{}), http.MethodDelete, "/api/orders/o-1", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMoveStatus_BackwardIsConflict(t *testing.T) {
	orders := &mockOrderUseCase{
		MoveStatusFunc: func(ctx context.Context, id, status string) (*domain.Order, error) {
			assert.Equal(t, "sampling", status)
			return nil, apperrors.NewConflictError("order status cannot move back from shipment to sampling")
		},
	}

	rec := serve(t, newTestRouter(orders, &mockStageUseCase{}), http.MethodPost, "/api/orders/o-1/status", `{"status":"sampling"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUploadAttachments(t *testing.T) {
	orders := &mockOrderUseCase{
		UploadAttachmentsFunc: func(ctx context.Context, id, section string, files []dto.FileUpload) ([]domain.Attachment, error) {
			assert.Equal(t, "o-1", id)
			assert.Equal(t, "sampling", section)
			require.Len(t, files, 1)
			assert.Equal(t, "proof.pdf", files[0].Name)
			return []domain.Attachment{{Name: "proof.pdf", URL: "https://files.test/proof.pdf"}}, nil
		},
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("files", "proof.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/orders/o-1/attachments?section=sampling", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	newTestRouter(orders, &mockStageUseCase{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://files.test/proof.pdf")
}

func TestSaveStage_PassesKindAndVersion(t *testing.T) {
	stages := &mockStageUseCase{
		SaveStageFunc: func(ctx context.Context, orderID string, kind domain.Stage, req dto.SaveStageRequest) (*domain.StageRecord, error) {
			assert.Equal(t, domain.StageShipment, kind)
			require.NotNil(t, req.Version)
			assert.Equal(t, 4, *req.Version)
			return &domain.StageRecord{ID: "sh-1", Kind: kind, Fields: req.Fields, Version: 5}, nil
		},
	}

	rec := serve(t, newTestRouter(&mockOrderUseCase{}, stages), http.MethodPut, "/api/orders/o-1/stages/shipment",
		`{"fields":{"carrier":"UPS"},"version":4}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.StageRecordDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Version)
	assert.Equal(t, "UPS", resp.Fields["carrier"])
}

func TestSendStageEmail(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		result *dto.SendStageEmailResult
		err    error
		status int
	}{
		{name: "sent", body: "", result: &dto.SendStageEmailResult{MessageID: "m-1", Status: domain.StageProduction}, status: http.StatusOK},
		{name: "queued", body: `{"queue":true}`, result: &dto.SendStageEmailResult{QueueID: "q-1", Queued: true}, status: http.StatusAccepted},
		{name: "transport failure", body: "", err: apperrors.NewSendError("smtp rejected", nil), status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stages := &mockStageUseCase{
				SendEmailFunc: func(ctx context.Context, userID, orderID string, kind domain.Stage, req dto.SendStageEmailRequest) (*dto.SendStageEmailResult, error) {
					assert.Equal(t, "u-1", userID)
					assert.Equal(t, domain.StageSampling, kind)
					return tt.result, tt.err
				},
			}

			rec := serve(t, newTestRouter(&mockOrderUseCase{}, stages), http.MethodPost, "/api/orders/o-1/stages/sampling/email", tt.body)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestListEmails(t *testing.T) {
	stages := &mockStageUseCase{
		ListEmailsFunc: func(ctx context.Context, orderID string) ([]domain.EmailEvent, error) {
			return []domain.EmailEvent{{ID: "e-2"}, {ID: "e-1"}}, nil
		},
	}

	rec := serve(t, newTestRouter(&mockOrderUseCase{}, stages), http.MethodGet, "/api/orders/o-1/emails", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.EmailLogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Events, 2)
	assert.Equal(t, "e-2", resp.Events[0].ID)
}
