package workflow

import (
	"fmt"
	"path"
	"strings"

	"labelflow/internal/domain"
	apperrors "labelflow/internal/errors"
)

// Composer builds stage emails from fixed per-stage templates.
type Composer struct {
	from string
}

func NewComposer(from string) *Composer {
	return &Composer{from: from}
}

// Compose builds the draft for kind. rec may be nil for order details, in which
// case the order root is used.
func (c *Composer) Compose(kind domain.Stage, rec *domain.StageRecord, order *domain.Order) (domain.EmailDraft, error) {
	if kind == domain.StageOrderDetails && rec == nil {
		rec = order.DetailsRecord()
	}

	var subject string
	var body strings.Builder

	switch kind {
	case domain.StageOrderDetails:
		subject = fmt.Sprintf("Order Confirmation: %s (%s)", order.OrderName, order.ReferenceNumber)
		body.WriteString("Hello,\n\nThank you for your order. Here is a summary of what we received.\n\n")
		writeOrderSummary(&body, order)
		writeSection(&body, "Details", order.OrderDetails)
		body.WriteString("We will be in touch as soon as sampling begins.\n")

	case domain.StageSampling:
		subject = fmt.Sprintf("Sampling Request: %s", order.OrderName)
		body.WriteString("Hello,\n\nPlease prepare samples for the order below.\n\n")
		writeOrderSummary(&body, order)
		writeLine(&body, "Quantity", rec.Field(domain.FieldQuantity))
		writeLine(&body, "Due Date", rec.Field(domain.FieldDueDate))
		body.WriteString("\n")
		writeSection(&body, "Instructions", rec.Field(domain.FieldInstructions))
		body.WriteString("Please reply to confirm receipt of this request.\n")

	case domain.StageProduction:
		subject = fmt.Sprintf("Production Order: %s", order.OrderName)
		body.WriteString("Hello,\n\nThe samples have been approved. Please proceed with production.\n\n")
		writeOrderSummary(&body, order)
		writeLine(&body, "Quantity", rec.Field(domain.FieldQuantity))
		writeLine(&body, "Due Date", rec.Field(domain.FieldDueDate))
		body.WriteString("\n")
		writeSection(&body, "Instructions", rec.Field(domain.FieldInstructions))
		body.WriteString("Please confirm the expected completion date.\n")

	case domain.StageShipment:
		subject = fmt.Sprintf("Your order has shipped: %s", order.OrderName)
		body.WriteString("Hello,\n\nGood news, your order is on its way.\n\n")
		writeOrderSummary(&body, order)
		writeLine(&body, "Carrier", rec.Field(domain.FieldCarrier))
		writeLine(&body, "Tracking Number", rec.Field(domain.FieldTrackingNumber))
		writeLine(&body, "Ship Date", rec.Field(domain.FieldShipDate))
		body.WriteString("\n")
		writeSection(&body, "Notes", rec.Field(domain.FieldNotes))
		body.WriteString("Thank you for your business.\n")

	default:
		return domain.EmailDraft{}, apperrors.NewValidationError(fmt.Sprintf("no email template for stage %q", kind))
	}

	var files []domain.Attachment
	if rec != nil {
		files = rec.Files
	}
	attachments := NormalizeAttachments(files)
	if len(attachments) > 0 {
		body.WriteString("\nAttachments:\n")
		for _, a := range attachments {
			fmt.Fprintf(&body, "- %s (%s)\n", a.Name, a.Type)
		}
	}

	return domain.EmailDraft{
		Subject:     subject,
		From:        c.from,
		To:          Recipient(kind, rec, order),
		Body:        body.String(),
		Attachments: attachments,
	}, nil
}

// NormalizeAttachments maps stored references to the triple shown in emails.
func NormalizeAttachments(files []domain.Attachment) []domain.EmailAttachment {
	out := make([]domain.EmailAttachment, 0, len(files))
	for _, f := range files {
		out = append(out, domain.EmailAttachment{
			Name: f.Name,
			URL:  f.URL,
			Type: InferAttachmentType(f.Name),
			Size: domain.DefaultAttachmentSize,
		})
	}
	return out
}

// InferAttachmentType classifies a file by its extension, case-insensitively.
func InferAttachmentType(name string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")) {
	case "pdf":
		return domain.AttachmentTypePDF
	case "jpg", "jpeg", "png":
		return domain.AttachmentTypeImage
	}
	return domain.AttachmentTypeDocument
}

func writeOrderSummary(b *strings.Builder, order *domain.Order) {
	writeLine(b, "Reference Number", order.ReferenceNumber)
	writeLine(b, "Order Name", order.OrderName)
	writeLine(b, "Label Type", order.LabelType)
}

func writeLine(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}

func writeSection(b *strings.Builder, title, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	fmt.Fprintf(b, "\n%s:\n%s\n\n", title, text)
}
