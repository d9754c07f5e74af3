package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"labelflow/internal/config"
	"labelflow/internal/domain"
)

const defaultModel = "gemini-2.0-flash"

// ReceiptClassifier asks a Gemini model to read a receipt image and answer
// with the expense fields as JSON.
type ReceiptClassifier struct {
	client *genai.Client
	model  string
}

func NewReceiptClassifier(ctx context.Context, cfg config.GenAIConfig) (*ReceiptClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &ReceiptClassifier{client: client, model: model}, nil
}

// Classify returns the model's raw JSON answer for the receipt image.
func (c *ReceiptClassifier) Classify(ctx context.Context, image []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(ReceiptPrompt()),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	})
	if err != nil {
		return "", fmt.Errorf("GenAI classify failed: %w", err)
	}

	return resp.Text(), nil
}

// ReceiptPrompt is the instruction sent with every receipt.
func ReceiptPrompt() string {
	var b strings.Builder
	b.WriteString("Read this purchase receipt and answer with a single JSON object with the keys ")
	b.WriteString(`"date" (YYYY-MM-DD), "vendor", "category", "description", "amount" (total paid, number), `)
	b.WriteString(`"payment" (payment method), "hst" (sales tax, number). `)
	b.WriteString("category must be one of: ")
	b.WriteString(strings.Join(domain.ExpenseCategories, ", "))
	b.WriteString(". Use an empty string for anything you cannot read and 0 for unknown numbers.")
	return b.String()
}
