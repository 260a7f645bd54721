package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/Khalick/student-portal-api/internal/dto"
	"github.com/Khalick/student-portal-api/internal/models"
	"github.com/Khalick/student-portal-api/internal/observability"
	"github.com/Khalick/student-portal-api/internal/repository"
	"github.com/Khalick/student-portal-api/internal/storage"
)

var (
	// ErrFileRequired indicates no file (or an empty file) was submitted.
	ErrFileRequired = errors.New("file is required")
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTooSmall indicates the payload is under the endpoint's minimum.
	ErrUploadTooSmall = errors.New("file is below minimum allowed size")
	// ErrDocumentTypeUnknown indicates an unrecognized document type tag.
	ErrDocumentTypeUnknown = errors.New("unknown document type")
	// ErrDocumentNotFound indicates no document exists for the query.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDocumentPersist indicates the database insert failed after the blob
	// was stored; blob cleanup was attempted.
	ErrDocumentPersist = errors.New("failed to persist document record")
)

// BlobStore abstracts the storage adapter for the orchestrator.
type BlobStore interface {
	Store(ctx context.Context, file storage.File, folder, keyPrefix string) (storage.StoredFile, error)
	Delete(ctx context.Context, stored storage.StoredFile) error
}

// DocumentService orchestrates document uploads: validate, store the blob,
// persist the metadata row, and clean the blob up when persistence fails.
type DocumentService interface {
	Upload(ctx context.Context, regNumber string, file *multipart.FileHeader, documentType string) (dto.DocumentResponse, error)
	List(ctx context.Context, regNumber, typeFilter string) ([]dto.DocumentResponse, error)
	Latest(ctx context.Context, regNumber, documentType string) (dto.DocumentResponse, error)
}

type documentService struct {
	blobs    BlobStore
	repo     repository.DocumentRepository
	students StudentService
	logger   zerolog.Logger
	maxSize  int64
	tracer   trace.Tracer
}

// NewDocumentService constructs the document upload orchestrator.
func NewDocumentService(blobs BlobStore, repo repository.DocumentRepository, students StudentService, maxSizeMB int, logger zerolog.Logger) DocumentService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &documentService{
		blobs:    blobs,
		repo:     repo,
		students: students,
		logger:   logger.With().Str("component", "document_service").Logger(),
		maxSize:  int64(maxSizeMB) * 1024 * 1024,
		tracer:   otel.Tracer("github.com/Khalick/student-portal-api/internal/service/document"),
	}
}

// Upload appends a new document row; there are no replace semantics. The
// caller finds the current document for a type by newest uploaded_at.
func (s *documentService) Upload(ctx context.Context, regNumber string, file *multipart.FileHeader, documentType string) (dto.DocumentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "document.upload")
	defer span.End()

	span.SetAttributes(attribute.String("document.type", documentType))

	start := time.Now()
	defer func() {
		observability.DocumentUploadLatency().Observe(time.Since(start).Seconds())
	}()

	regNumber = strings.TrimSpace(regNumber)
	if regNumber == "" {
		err := errors.New("registration number is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return dto.DocumentResponse{}, err
	}

	if !models.IsDocumentType(documentType) {
		observability.DocumentRejected().WithLabelValues("type").Inc()
		span.RecordError(ErrDocumentTypeUnknown)
		span.SetStatus(codes.Error, "validation failed")
		return dto.DocumentResponse{}, ErrDocumentTypeUnknown
	}

	if file == nil || file.Size == 0 {
		observability.DocumentRejected().WithLabelValues("missing").Inc()
		span.RecordError(ErrFileRequired)
		span.SetStatus(codes.Error, "validation failed")
		return dto.DocumentResponse{}, ErrFileRequired
	}

	if file.Size > s.maxSize {
		observability.DocumentRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.DocumentResponse{}, ErrUploadTooLarge
	}

	if _, err := s.students.Resolve(ctx, StudentRef{RegistrationNumber: regNumber}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "student lookup failed")
		return dto.DocumentResponse{}, err
	}

	payload, err := readFile(file, s.maxSize)
	if err != nil {
		if errors.Is(err, ErrUploadTooLarge) {
			observability.DocumentRejected().WithLabelValues("size").Inc()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.DocumentResponse{}, err
	}

	mime := mimetype.Detect(payload)
	span.SetAttributes(
		attribute.String("document.mime", mime.String()),
		attribute.Int64("document.size_bytes", int64(len(payload))),
	)

	stored, err := s.blobs.Store(ctx, storage.File{
		Name:     file.Filename,
		MimeType: mime.String(),
		Size:     int64(len(payload)),
		Bytes:    payload,
	}, documentType, regNumber)
	if err != nil {
		observability.DocumentRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.DocumentResponse{}, err
	}

	document := models.StudentDocument{
		RegistrationNumber: regNumber,
		DocumentType:       documentType,
		FileURL:            stored.URL,
		FileName:           file.Filename,
		FileSize:           int64(len(payload)),
		MimeType:           mime.String(),
		StorageMethod:      string(stored.Method),
		StorageKey:         stored.Key,
		UploadedAt:         time.Now(),
	}

	if err := s.repo.Create(ctx, &document); err != nil {
		// Best-effort blob cleanup so no orphan outlives a failed insert.
		// Cleanup failures are logged, never escalated over the insert error.
		if cleanupErr := s.blobs.Delete(ctx, stored); cleanupErr != nil {
			s.logger.Warn().Err(cleanupErr).Str("key", stored.Key).Msg("blob cleanup after failed insert also failed")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.DocumentResponse{}, fmt.Errorf("%w: %v", ErrDocumentPersist, err)
	}

	observability.DocumentUploads().WithLabelValues(string(stored.Method), documentType).Inc()
	span.SetStatus(codes.Ok, "stored")

	s.logger.Info().
		Str("registration_number", regNumber).
		Str("document_type", documentType).
		Str("storage_method", string(stored.Method)).
		Msg("document uploaded")

	return dto.NewDocumentResponse(document), nil
}

func (s *documentService) List(ctx context.Context, regNumber, typeFilter string) ([]dto.DocumentResponse, error) {
	regNumber = strings.TrimSpace(regNumber)
	if _, err := s.students.Resolve(ctx, StudentRef{RegistrationNumber: regNumber}); err != nil {
		return nil, err
	}

	var (
		documents []models.StudentDocument
		err       error
	)
	if typeFilter != "" {
		if !models.IsDocumentType(typeFilter) {
			return nil, ErrDocumentTypeUnknown
		}
		documents, err = s.repo.ListByType(ctx, regNumber, typeFilter)
	} else {
		documents, err = s.repo.ListByRegistrationNumber(ctx, regNumber)
	}
	if err != nil {
		return nil, err
	}

	responses := make([]dto.DocumentResponse, 0, len(documents))
	for _, document := range documents {
		responses = append(responses, dto.NewDocumentResponse(document))
	}

	return responses, nil
}

func (s *documentService) Latest(ctx context.Context, regNumber, documentType string) (dto.DocumentResponse, error) {
	if !models.IsDocumentType(documentType) {
		return dto.DocumentResponse{}, ErrDocumentTypeUnknown
	}

	regNumber = strings.TrimSpace(regNumber)
	if _, err := s.students.Resolve(ctx, StudentRef{RegistrationNumber: regNumber}); err != nil {
		return dto.DocumentResponse{}, err
	}

	document, err := s.repo.LatestByType(ctx, regNumber, documentType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DocumentResponse{}, ErrDocumentNotFound
		}
		return dto.DocumentResponse{}, err
	}

	return dto.NewDocumentResponse(document), nil
}

func readFile(file *multipart.FileHeader, maxSize int64) ([]byte, error) {
	handle, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, maxSize+1)); err != nil {
		return nil, err
	}
	if int64(buf.Len()) > maxSize {
		return nil, ErrUploadTooLarge
	}
	if buf.Len() == 0 {
		return nil, ErrFileRequired
	}

	return buf.Bytes(), nil
}
