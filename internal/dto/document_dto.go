package dto

import (
	"time"

	"github.com/Khalick/student-portal-api/internal/models"
)

// DocumentResponse serializes one entry of the student document log.
type DocumentResponse struct {
	ID                 uint      `json:"id"`
	RegistrationNumber string    `json:"registration_number"`
	DocumentType       string    `json:"document_type"`
	FileURL            string    `json:"file_url"`
	FileName           string    `json:"file_name"`
	FileSize           int64     `json:"file_size"`
	MimeType           string    `json:"mime_type"`
	StorageMethod      string    `json:"storage_method"`
	UploadedAt         time.Time `json:"uploaded_at"`
}

// NewDocumentResponse converts a StudentDocument model into a DTO.
func NewDocumentResponse(model models.StudentDocument) DocumentResponse {
	return DocumentResponse{
		ID:                 model.ID,
		RegistrationNumber: model.RegistrationNumber,
		DocumentType:       model.DocumentType,
		FileURL:            model.FileURL,
		FileName:           model.FileName,
		FileSize:           model.FileSize,
		MimeType:           model.MimeType,
		StorageMethod:      model.StorageMethod,
		UploadedAt:         model.UploadedAt,
	}
}
