package mailer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"labelflow/internal/config"
	"labelflow/internal/dto"
	apperrors "labelflow/internal/errors"
)

const maxRemoteAttachment = 25 << 20

// SMTPMailer delivers messages over SMTP. Attachments given by URL are
// downloaded at send time.
type SMTPMailer struct {
	cfg    config.MailConfig
	http   *http.Client
	logger *zap.Logger
}

func NewSMTPMailer(cfg config.MailConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg dto.MailMessage) error {
	message, err := m.buildMessage(ctx, msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.cfg.Host, m.clientOptions()...)
	if err != nil {
		return apperrors.NewSendError("creating smtp client", err)
	}

	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return apperrors.NewSendError("delivering message", err)
	}

	return nil
}

func (m *SMTPMailer) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	return opts
}

func (m *SMTPMailer) buildMessage(ctx context.Context, msg dto.MailMessage) (*mail.Msg, error) {
	message := mail.NewMsg()

	from := msg.From
	if from == "" {
		from = m.cfg.From
	}
	if err := message.From(from); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid sender %q", from))
	}
	if err := message.To(msg.To); err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid recipient %q", msg.To))
	}

	message.Subject(msg.Subject)
	message.SetMessageIDWithValue(msg.ID)
	message.SetDate()
	message.SetBodyString(mail.TypeTextPlain, msg.Body)

	for _, a := range msg.Attachments {
		content := a.Content
		contentType := a.ContentType

		if content == nil && a.URL != "" {
			var err error
			content, contentType, err = m.fetch(ctx, a.URL)
			if err != nil {
				return nil, apperrors.NewSendError(fmt.Sprintf("fetching attachment %s", a.Name), err)
			}
		}

		var opts []mail.FileOption
		if contentType != "" {
			opts = append(opts, mail.WithFileContentType(mail.ContentType(contentType)))
		}
		if err := message.AttachReader(a.Name, bytes.NewReader(content), opts...); err != nil {
			return nil, apperrors.NewSendError(fmt.Sprintf("attaching %s", a.Name), err)
		}
	}

	return message, nil
}

func (m *SMTPMailer) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := m.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteAttachment))
	if err != nil {
		return nil, "", err
	}

	m.logger.Debug("remote attachment fetched", zap.String("url", url), zap.Int("bytes", len(data)))
	return data, resp.Header.Get("Content-Type"), nil
}
