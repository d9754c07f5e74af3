package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLMapper_RoundTrip(t *testing.T) {
	m := NewURLMapper("https://files.example.com/labelflow/")

	url := m.URLFor("orders/R1/sampling/1700000000000_dieline sheet.pdf")
	assert.Equal(t, "https://files.example.com/labelflow/orders/R1/sampling/1700000000000_dieline%20sheet.pdf", url)

	key, ok := m.KeyFor(url)
	assert.True(t, ok)
	assert.Equal(t, "orders/R1/sampling/1700000000000_dieline sheet.pdf", key)
}

func TestURLMapper_ExternalURL(t *testing.T) {
	m := NewURLMapper("https://files.example.com/labelflow")

	assert.False(t, m.IsManaged("https://elsewhere.example.com/dieline.pdf"))
	assert.False(t, m.IsManaged("https://files.example.com/labelflowx/dieline.pdf"))
	assert.False(t, m.IsManaged("https://files.example.com/labelflow/"))
	assert.True(t, m.IsManaged("https://files.example.com/labelflow/receipts/1_a.png?X-Amz-Expires=60"))
}

func TestURLMapper_QueryStripped(t *testing.T) {
	m := NewURLMapper("https://files.example.com/labelflow")

	key, ok := m.KeyFor("https://files.example.com/labelflow/receipts/1_a.png?token=abc")
	assert.True(t, ok)
	assert.Equal(t, "receipts/1_a.png", key)
}

func TestURLMapper_EmptyPrefixManagesNothing(t *testing.T) {
	m := NewURLMapper("")
	assert.False(t, m.IsManaged("/orders/a"))
}
