package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Khalick/student-portal-api/internal/models"
)

// LegacyDocumentRepository mirrors document uploads into the older per-type
// tables (exam_cards, finance, results, timetables) so pre-existing readers
// keep working.
type LegacyDocumentRepository interface {
	Mirror(ctx context.Context, regNumber, documentType, fileURL string, uploadedAt time.Time) error
}

type legacyDocumentRepository struct {
	db *gorm.DB
}

// NewLegacyDocumentRepository constructs the legacy mirror repository.
func NewLegacyDocumentRepository(db *gorm.DB) LegacyDocumentRepository {
	return &legacyDocumentRepository{db: db}
}

func (r *legacyDocumentRepository) Mirror(ctx context.Context, regNumber, documentType, fileURL string, uploadedAt time.Time) error {
	db := r.db.WithContext(ctx)

	switch documentType {
	case models.DocumentTypeExamCard:
		return db.Create(&models.ExamCard{
			RegistrationNumber: regNumber,
			FileURL:            fileURL,
			UploadedAt:         uploadedAt,
		}).Error
	case models.DocumentTypeFeesStructure, models.DocumentTypeFeesStatement, models.DocumentTypeFeesReceipt:
		return db.Create(&models.FinanceRecord{
			RegistrationNumber: regNumber,
			DocumentType:       documentType,
			FileURL:            fileURL,
			UploadedAt:         uploadedAt,
		}).Error
	case models.DocumentTypeResults:
		return db.Create(&models.ResultRecord{
			RegistrationNumber: regNumber,
			FileURL:            fileURL,
			UploadedAt:         uploadedAt,
		}).Error
	case models.DocumentTypeTimetable:
		return db.Create(&models.Timetable{
			RegistrationNumber: regNumber,
			FileURL:            fileURL,
			UploadedAt:         uploadedAt,
		}).Error
	default:
		return fmt.Errorf("no legacy table for document type %q", documentType)
	}
}
