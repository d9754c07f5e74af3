package dto

// SendEmailRequest is the body accepted by the mail-send endpoint.
type SendEmailRequest struct {
	Subject     string               `json:"subject"`
	From        string               `json:"from"`
	To          string               `json:"to"`
	Body        string               `json:"body"`
	Attachments []SendEmailAttachment `json:"attachments"`
}

type SendEmailAttachment struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url"`
}

type SendEmailResponse struct {
	MessageID string `json:"messageId"`
}

// MailMessage is handed to the mail transport. Each attachment carries either
// inline Content or a URL the transport fetches itself.
type MailMessage struct {
	ID          string
	From        string
	To          string
	Subject     string
	Body        string
	Attachments []MailAttachment
}

type MailAttachment struct {
	Name        string
	ContentType string
	Content     []byte
	URL         string
}
