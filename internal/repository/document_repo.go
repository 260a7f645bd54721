package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Khalick/student-portal-api/internal/models"
)

// DocumentRepository persists the append-only student document log.
type DocumentRepository interface {
	Create(ctx context.Context, document *models.StudentDocument) error
	ListByRegistrationNumber(ctx context.Context, regNumber string) ([]models.StudentDocument, error)
	ListByType(ctx context.Context, regNumber, documentType string) ([]models.StudentDocument, error)
	LatestByType(ctx context.Context, regNumber, documentType string) (models.StudentDocument, error)
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository constructs a repository for student documents.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, document *models.StudentDocument) error {
	return r.db.WithContext(ctx).Create(document).Error
}

func (r *documentRepository) ListByRegistrationNumber(ctx context.Context, regNumber string) ([]models.StudentDocument, error) {
	var documents []models.StudentDocument
	err := r.db.WithContext(ctx).
		Where("registration_number = ?", regNumber).
		Order("uploaded_at DESC").
		Find(&documents).Error
	if err != nil {
		return nil, err
	}

	return documents, nil
}

func (r *documentRepository) ListByType(ctx context.Context, regNumber, documentType string) ([]models.StudentDocument, error) {
	var documents []models.StudentDocument
	err := r.db.WithContext(ctx).
		Where("registration_number = ? AND document_type = ?", regNumber, documentType).
		Order("uploaded_at DESC").
		Find(&documents).Error
	if err != nil {
		return nil, err
	}

	return documents, nil
}

func (r *documentRepository) LatestByType(ctx context.Context, regNumber, documentType string) (models.StudentDocument, error) {
	var document models.StudentDocument
	err := r.db.WithContext(ctx).
		Where("registration_number = ? AND document_type = ?", regNumber, documentType).
		Order("uploaded_at DESC").
		First(&document).Error
	if err != nil {
		return models.StudentDocument{}, err
	}

	return document, nil
}
