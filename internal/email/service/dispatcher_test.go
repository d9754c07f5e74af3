package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"labelflow/internal/domain"
	"labelflow/internal/dto"
	apperrors "labelflow/internal/errors"
)

type mockObjectReader struct {
	GetFunc func(ctx context.Context, url string) ([]byte, error)
}

func (m *mockObjectReader) Get(ctx context.Context, url string) ([]byte, error) {
	return m.GetFunc(ctx, url)
}

func (m *mockObjectReader) IsManaged(url string) bool {
	return strings.HasPrefix(url, "https://files.test/")
}

type mockTransport struct {
	SendFunc func(ctx context.Context, msg dto.MailMessage) error

	sent []dto.MailMessage
}

func (m *mockTransport) Send(ctx context.Context, msg dto.MailMessage) error {
	m.sent = append(m.sent, msg)
	if m.SendFunc == nil {
		return nil
	}
	return m.SendFunc(ctx, msg)
}

func TestDispatcher_Send_InlinesManagedAttachments(t *testing.T) {
	objects := &mockObjectReader{
		GetFunc: func(ctx context.Context, url string) ([]byte, error) {
			assert.Equal(t, "https://files.test/orders/R1/sampling/1_proof.pdf", url)
			return []byte("%PDF"), nil
		},
	}
	transport := &mockTransport{}
	d := NewDispatcher(objects, transport, zap.NewNop())
	d.newID = func() string { return "msg-1" }

	id, err := d.Send(context.Background(), domain.EmailDraft{
		Subject: "Sampling Request: Winter",
		From:    "orders@labelflow.test",
		To:      "v@x.com",
		Body:    "R1",
		Attachments: []domain.EmailAttachment{
			{Name: "proof.pdf", URL: "https://files.test/orders/R1/sampling/1_proof.pdf"},
			{URL: "https://carrier.test/labels/label.png?sig=abc"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "msg-1", id)
	require.Len(t, transport.sent, 1)
	msg := transport.sent[0]
	assert.Equal(t, "msg-1", msg.ID)
	require.Len(t, msg.Attachments, 2)
	assert.Equal(t, []byte("%PDF"), msg.Attachments[0].Content)
	assert.Empty(t, msg.Attachments[0].URL)
	assert.Equal(t, "label.png", msg.Attachments[1].Name)
	assert.Equal(t, "https://carrier.test/labels/label.png?sig=abc", msg.Attachments[1].URL)
	assert.Nil(t, msg.Attachments[1].Content)
}

func TestDispatcher_Send_TransportFailureIsSendError(t *testing.T) {
	transport := &mockTransport{
		SendFunc: func(ctx context.Context, msg dto.MailMessage) error { return errors.New("connection refused") },
	}
	d := NewDispatcher(&mockObjectReader{}, transport, zap.NewNop())

	_, err := d.Send(context.Background(), domain.EmailDraft{To: "v@x.com"})

	se, ok := apperrors.IsSendError(err)
	require.True(t, ok)
	assert.Contains(t, se.Error(), "connection refused")
}

func TestDispatcher_Send_StorageFailureStopsSend(t *testing.T) {
	objects := &mockObjectReader{
		GetFunc: func(ctx context.Context, url string) ([]byte, error) {
			return nil, apperrors.NewStorageError("reading object", errors.New("no such key"))
		},
	}
	transport := &mockTransport{}
	d := NewDispatcher(objects, transport, zap.NewNop())

	_, err := d.Send(context.Background(), domain.EmailDraft{
		To:          "v@x.com",
		Attachments: []domain.EmailAttachment{{Name: "a.pdf", URL: "https://files.test/a.pdf"}},
	})

	_, ok := apperrors.IsStorageError(err)
	assert.True(t, ok)
	assert.Empty(t, transport.sent)
}

func TestDispatcher_Send_RequiresRecipient(t *testing.T) {
	d := NewDispatcher(&mockObjectReader{}, &mockTransport{}, zap.NewNop())

	_, err := d.Send(context.Background(), domain.EmailDraft{To: " "})

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestDraftFromRequest(t *testing.T) {
	draft := DraftFromRequest(dto.SendEmailRequest{
		Subject:     "Hi",
		From:        "a@x.com",
		To:          " b@x.com ",
		Body:        "text",
		Attachments: []dto.SendEmailAttachment{{URL: "https://files.test/x.pdf"}},
	})

	assert.Equal(t, "b@x.com", draft.To)
	require.Len(t, draft.Attachments, 1)
	assert.Equal(t, domain.DefaultAttachmentSize, draft.Attachments[0].Size)
	assert.Equal(t, domain.AttachmentTypePDF, draft.Attachments[0].Type)
}
