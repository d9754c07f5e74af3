package mailer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"labelflow/internal/config"
	"labelflow/internal/dto"
	apperrors "labelflow/internal/errors"
)

func newTestMailer() *SMTPMailer {
	return NewSMTPMailer(config.MailConfig{Host: "localhost", Port: 2525, From: "orders@labelflow.test"}, zap.NewNop())
}

func TestBuildMessage_InlineAndRemoteAttachments(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer remote.Close()

	m := newTestMailer()
	msg, err := m.buildMessage(context.Background(), dto.MailMessage{
		ID:      "msg-1",
		To:      "v@x.com",
		Subject: "Sampling Request: Winter",
		Body:    "Reference Number: R1",
		Attachments: []dto.MailAttachment{
			{Name: "proof.pdf", ContentType: "application/pdf", Content: []byte("%PDF")},
			{Name: "label.png", URL: remote.URL + "/label.png"},
		},
	})
	require.NoError(t, err)

	rcpts, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"v@x.com"}, rcpts)

	files := msg.GetAttachments()
	require.Len(t, files, 2)
	assert.Equal(t, "proof.pdf", files[0].Name)
	assert.Equal(t, "label.png", files[1].Name)
}

func TestBuildMessage_RemoteFetchFailure(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer remote.Close()

	_, err := newTestMailer().buildMessage(context.Background(), dto.MailMessage{
		To:          "v@x.com",
		Attachments: []dto.MailAttachment{{Name: "gone.pdf", URL: remote.URL + "/gone.pdf"}},
	})

	_, ok := apperrors.IsSendError(err)
	assert.True(t, ok)
}

func TestBuildMessage_InvalidRecipient(t *testing.T) {
	_, err := newTestMailer().buildMessage(context.Background(), dto.MailMessage{To: "not an address"})

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestClientOptions_AuthOnlyWithUsername(t *testing.T) {
	anonymous := newTestMailer()
	assert.Len(t, anonymous.clientOptions(), 2)

	authed := NewSMTPMailer(config.MailConfig{Host: "smtp", Port: 587, Username: "u", Password: "p"}, zap.NewNop())
	assert.Len(t, authed.clientOptions(), 5)
}
