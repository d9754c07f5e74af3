package commons

import (
	"io"
	"net/http"

	"labelflow/internal/dto"
	apperrors "labelflow/internal/errors"
)

// ReadMultipartFiles loads every part named field of a multipart request.
func ReadMultipartFiles(r *http.Request, field string, maxMemory int64) ([]dto.FileUpload, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, apperrors.NewValidationError("invalid multipart body", apperrors.ValidationDetail{
			Field:   field,
			Message: "request must be multipart/form-data",
		})
	}

	headers := r.MultipartForm.File[field]
	files := make([]dto.FileUpload, 0, len(headers))

	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return nil, apperrors.NewInternalError("opening uploaded file", err)
		}

		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, apperrors.NewInternalError("reading uploaded file", err)
		}

		contentType := h.Header.Get("Content-Type")
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}

		files = append(files, dto.FileUpload{Name: h.Filename, ContentType: contentType, Data: data})
	}

	return files, nil
}
