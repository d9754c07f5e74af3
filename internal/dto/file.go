package dto

import "labelflow/internal/domain"

// FileUpload is one file received from a multipart request.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

type UploadResponse struct {
	Files []domain.Attachment `json:"files"`
}
