package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Khalick/student-portal-api/internal/models"
)

// StudentRepository exposes persistence helpers for student records.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id uint) (models.Student, error)
	GetByRegistrationNumber(ctx context.Context, regNumber string) (models.Student, error)
	List(ctx context.Context) ([]models.Student, error)
	UpsertFeeRecord(ctx context.Context, record *models.FeeRecord) error
	HasOwingFeeRecord(ctx context.Context, studentID uint) (bool, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs the student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) GetByRegistrationNumber(ctx context.Context, regNumber string) (models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Where("registration_number = ?", strings.TrimSpace(regNumber)).
		First(&student).Error
	if err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

func (r *studentRepository) UpsertFeeRecord(ctx context.Context, record *models.FeeRecord) error {
	record.Balance = record.Billed - record.Paid

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "academic_year"}},
		DoUpdates: clause.AssignmentColumns([]string{"billed", "paid", "balance", "updated_at"}),
	}).Create(record).Error
}

// HasOwingFeeRecord reports whether any single fee record carries a positive
// balance. Records are checked individually; an overpaid year never offsets
// an owing one.
func (r *studentRepository) HasOwingFeeRecord(ctx context.Context, studentID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FeeRecord{}).
		Where("student_id = ? AND balance > 0", studentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
