package commons

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "labelflow/internal/errors"
)

func TestReadMultipartFiles(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("files", "proof.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4"))
	part, err = mw.CreateFormFile("files", "art.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	files, err := ReadMultipartFiles(req, "files", 1<<20)
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Equal(t, "proof.pdf", files[0].Name)
	assert.Equal(t, []byte("%PDF-1.4"), files[0].Data)
	assert.NotEmpty(t, files[0].ContentType)
	assert.Equal(t, "art.png", files[1].Name)
}

func TestReadMultipartFiles_NotMultipart(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")

	_, err := ReadMultipartFiles(req, "files", 1<<20)

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}
