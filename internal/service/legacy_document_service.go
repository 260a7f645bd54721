package service

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/rs/zerolog"

	"github.com/Khalick/student-portal-api/internal/dto"
	"github.com/Khalick/student-portal-api/internal/models"
	"github.com/Khalick/student-portal-api/internal/repository"
)

// ErrFeesOutstanding withholds the exam card while the student owes fees.
var ErrFeesOutstanding = errors.New("exam card withheld: outstanding fee balance")

// LegacyDocumentService serves the older per-document-type endpoints. Each
// upload delegates to the orchestrator and mirrors the row into the matching
// legacy table for backward-compatible readers.
type LegacyDocumentService interface {
	UploadTyped(ctx context.Context, regNumber string, file *multipart.FileHeader, documentType string) (dto.DocumentResponse, error)
	ExamCard(ctx context.Context, regNumber string) (dto.DocumentResponse, error)
}

type legacyDocumentService struct {
	documents DocumentService
	students  StudentService
	mirror    repository.LegacyDocumentRepository
	minSizes  map[string]int64
	logger    zerolog.Logger
}

// NewLegacyDocumentService constructs the legacy per-type document service.
// minBytes applies to exam cards and results; the remaining types accept any
// non-empty file.
func NewLegacyDocumentService(documents DocumentService, students StudentService, mirror repository.LegacyDocumentRepository, minBytes int64, logger zerolog.Logger) LegacyDocumentService {
	minSizes := map[string]int64{}
	if minBytes > 0 {
		minSizes[models.DocumentTypeExamCard] = minBytes
		minSizes[models.DocumentTypeResults] = minBytes
	}

	return &legacyDocumentService{
		documents: documents,
		students:  students,
		mirror:    mirror,
		minSizes:  minSizes,
		logger:    logger.With().Str("component", "legacy_document_service").Logger(),
	}
}

func (s *legacyDocumentService) UploadTyped(ctx context.Context, regNumber string, file *multipart.FileHeader, documentType string) (dto.DocumentResponse, error) {
	if !models.IsDocumentType(documentType) {
		return dto.DocumentResponse{}, ErrDocumentTypeUnknown
	}

	if min, ok := s.minSizes[documentType]; ok && file != nil && file.Size > 0 && file.Size < min {
		return dto.DocumentResponse{}, ErrUploadTooSmall
	}

	document, err := s.documents.Upload(ctx, regNumber, file, documentType)
	if err != nil {
		return dto.DocumentResponse{}, err
	}

	// Mirror write is best-effort: legacy readers lag, they do not gate.
	if err := s.mirror.Mirror(ctx, document.RegistrationNumber, documentType, document.FileURL, document.UploadedAt); err != nil {
		s.logger.Warn().Err(err).
			Str("registration_number", document.RegistrationNumber).
			Str("document_type", documentType).
			Msg("legacy table mirror failed")
	}

	return document, nil
}

// ExamCard returns the latest exam card, unless the student carries an
// outstanding fee balance, in which case the card is withheld regardless of
// whether a document exists.
func (s *legacyDocumentService) ExamCard(ctx context.Context, regNumber string) (dto.DocumentResponse, error) {
	owing, err := s.students.HasOutstandingBalance(ctx, regNumber)
	if err != nil {
		return dto.DocumentResponse{}, err
	}
	if owing {
		return dto.DocumentResponse{}, ErrFeesOutstanding
	}

	return s.documents.Latest(ctx, regNumber, models.DocumentTypeExamCard)
}
