package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Khalick/student-portal-api/internal/dto"
	"github.com/Khalick/student-portal-api/internal/models"
	"github.com/Khalick/student-portal-api/internal/repository"
)

var (
	// ErrStudentNotFound indicates the referenced student does not exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrStudentExists indicates the registration number is already taken.
	ErrStudentExists = errors.New("student already exists")
)

// StudentRef identifies a student either by id or by registration number.
// Every operation not keyed by id resolves the registration number first.
type StudentRef struct {
	ID                 uint
	RegistrationNumber string
}

// StudentService manages student accounts and fee records.
type StudentService interface {
	Create(ctx context.Context, req dto.StudentCreateRequest) (dto.StudentResponse, error)
	Get(ctx context.Context, ref StudentRef) (dto.StudentResponse, error)
	List(ctx context.Context) ([]dto.StudentResponse, error)
	UpsertFee(ctx context.Context, req dto.FeeRecordRequest) (dto.FeeRecordResponse, error)
	Resolve(ctx context.Context, ref StudentRef) (models.Student, error)
	HasOutstandingBalance(ctx context.Context, regNumber string) (bool, error)
}

type studentService struct {
	repo      repository.StudentRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo repository.StudentRepository, validator *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		repo:      repo,
		validator: validator,
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Create(ctx context.Context, req dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.StudentResponse{}, err
	}

	regNumber := strings.TrimSpace(req.RegistrationNumber)
	if _, err := s.repo.GetByRegistrationNumber(ctx, regNumber); err == nil {
		return dto.StudentResponse{}, ErrStudentExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.StudentResponse{}, err
	}

	student := models.Student{
		RegistrationNumber: regNumber,
		Name:               strings.TrimSpace(req.Name),
		Course:             strings.TrimSpace(req.Course),
		LevelOfStudy:       strings.TrimSpace(req.LevelOfStudy),
		NationalID:         strings.TrimSpace(req.NationalID),
		Status:             models.StudentStatusActive,
	}
	if err := s.repo.Create(ctx, &student); err != nil {
		return dto.StudentResponse{}, err
	}

	s.logger.Info().Str("registration_number", student.RegistrationNumber).Msg("student created")

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) Get(ctx context.Context, ref StudentRef) (dto.StudentResponse, error) {
	student, err := s.Resolve(ctx, ref)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	return dto.NewStudentResponse(student), nil
}

func (s *studentService) List(ctx context.Context) ([]dto.StudentResponse, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, dto.NewStudentResponse(student))
	}

	return responses, nil
}

func (s *studentService) UpsertFee(ctx context.Context, req dto.FeeRecordRequest) (dto.FeeRecordResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.FeeRecordResponse{}, err
	}

	student, err := s.Resolve(ctx, StudentRef{RegistrationNumber: req.RegistrationNumber})
	if err != nil {
		return dto.FeeRecordResponse{}, err
	}

	record := models.FeeRecord{
		StudentID:    student.ID,
		AcademicYear: strings.TrimSpace(req.AcademicYear),
		Billed:       req.Billed,
		Paid:         req.Paid,
	}
	if err := s.repo.UpsertFeeRecord(ctx, &record); err != nil {
		return dto.FeeRecordResponse{}, err
	}

	return dto.NewFeeRecordResponse(record), nil
}

// Resolve looks the student up by id when present, otherwise by registration
// number.
func (s *studentService) Resolve(ctx context.Context, ref StudentRef) (models.Student, error) {
	var (
		student models.Student
		err     error
	)

	switch {
	case ref.ID > 0:
		student, err = s.repo.GetByID(ctx, ref.ID)
	case strings.TrimSpace(ref.RegistrationNumber) != "":
		student, err = s.repo.GetByRegistrationNumber(ctx, ref.RegistrationNumber)
	default:
		return models.Student{}, ErrStudentNotFound
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}

	return student, nil
}

// HasOutstandingBalance reports whether the student has any fee record with
// a positive balance. Each record is judged on its own; credit in one year
// does not clear debt in another.
func (s *studentService) HasOutstandingBalance(ctx context.Context, regNumber string) (bool, error) {
	student, err := s.Resolve(ctx, StudentRef{RegistrationNumber: regNumber})
	if err != nil {
		return false, err
	}

	return s.repo.HasOwingFeeRecord(ctx, student.ID)
}
