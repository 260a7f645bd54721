package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Khalick/student-portal-api/internal/dto"
	"github.com/Khalick/student-portal-api/internal/models"
	"github.com/Khalick/student-portal-api/internal/observability"
	"github.com/Khalick/student-portal-api/internal/repository"
)

var (
	// ErrAllocationNotFound indicates the allocation id does not exist.
	ErrAllocationNotFound = errors.New("allocation not found")
	// ErrAllocationNotEligible covers a register attempt against an
	// allocation that is absent, someone else's, or no longer allocated.
	ErrAllocationNotEligible = errors.New("allocation is not eligible for registration")
	// ErrUnitAlreadyRegistered indicates the student already registered the unit.
	ErrUnitAlreadyRegistered = errors.New("unit already registered")
	// ErrUnitNotFound indicates the unit catalog entry does not exist.
	ErrUnitNotFound = errors.New("unit not found")
	// ErrUnitExists indicates the unit code is already in the catalog.
	ErrUnitExists = errors.New("unit already exists")
)

// AllocationService drives the unit allocation workflow: admin-side batch
// allocation, student-side registration, and admin cancellation.
type AllocationService interface {
	Allocate(ctx context.Context, ref StudentRef, req dto.AllocateUnitsRequest, allocatedBy string) (dto.AllocationSummaryResponse, error)
	ListAllocated(ctx context.Context, ref StudentRef) ([]dto.AllocatedUnitResponse, error)
	Register(ctx context.Context, ref StudentRef, req dto.RegisterAllocatedUnitRequest) (dto.RegisteredUnitResponse, error)
	Cancel(ctx context.Context, allocationID uint) (dto.AllocatedUnitResponse, error)
	RegisterDirect(ctx context.Context, ref StudentRef, req dto.RegisterUnitRequest) (dto.RegisteredUnitResponse, error)
	ListRegistered(ctx context.Context, ref StudentRef) ([]dto.RegisteredUnitResponse, error)
	CreateUnit(ctx context.Context, req dto.UnitCreateRequest) (dto.UnitResponse, error)
	ListUnits(ctx context.Context) ([]dto.UnitResponse, error)
}

type allocationService struct {
	students    StudentService
	allocations repository.AllocationRepository
	units       repository.UnitRepository
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewAllocationService constructs the allocation service.
func NewAllocationService(students StudentService, allocations repository.AllocationRepository, units repository.UnitRepository, validator *validator.Validate, logger zerolog.Logger) AllocationService {
	return &allocationService{
		students:    students,
		allocations: allocations,
		units:       units,
		validator:   validator,
		logger:      logger.With().Str("component", "allocation_service").Logger(),
	}
}

// Allocate processes every requested unit id and reports per-item outcomes in
// request order. Item failures are business errors carried in the response;
// the successful subset still commits.
func (s *allocationService) Allocate(ctx context.Context, ref StudentRef, req dto.AllocateUnitsRequest, allocatedBy string) (dto.AllocationSummaryResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AllocationSummaryResponse{}, err
	}

	student, err := s.students.Resolve(ctx, ref)
	if err != nil {
		return dto.AllocationSummaryResponse{}, err
	}

	outcomes, err := s.allocations.AllocateBatch(ctx, student.ID, req.UnitIDs, req.Semester, req.AcademicYear, allocatedBy, req.Notes)
	if err != nil {
		return dto.AllocationSummaryResponse{}, err
	}

	response := dto.AllocationSummaryResponse{
		Allocated: make([]dto.AllocatedUnitResponse, 0, len(outcomes)),
		Errors:    make([]dto.AllocationItemResult, 0),
		Results:   make([]dto.AllocationItemResult, 0, len(outcomes)),
	}

	for _, outcome := range outcomes {
		item := dto.AllocationItemResult{UnitID: outcome.UnitID, Success: outcome.Allocated()}
		if outcome.Allocated() {
			allocation := dto.NewAllocatedUnitResponse(*outcome.Allocation)
			item.Allocation = &allocation
			response.Allocated = append(response.Allocated, allocation)
			response.SuccessfullyAllocated++
			observability.AllocationItems().WithLabelValues("allocated").Inc()
		} else {
			item.Error = outcome.Reason
			response.Errors = append(response.Errors, item)
			response.ErrorCount++
			observability.AllocationItems().WithLabelValues("rejected").Inc()
		}
		response.Results = append(response.Results, item)
	}

	s.logger.Info().
		Str("registration_number", student.RegistrationNumber).
		Int("allocated", response.SuccessfullyAllocated).
		Int("errors", response.ErrorCount).
		Msg("unit allocation processed")

	return response, nil
}

func (s *allocationService) ListAllocated(ctx context.Context, ref StudentRef) ([]dto.AllocatedUnitResponse, error) {
	student, err := s.students.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	allocations, err := s.allocations.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AllocatedUnitResponse, 0, len(allocations))
	for _, allocation := range allocations {
		responses = append(responses, dto.NewAllocatedUnitResponse(allocation))
	}

	return responses, nil
}

func (s *allocationService) Register(ctx context.Context, ref StudentRef, req dto.RegisterAllocatedUnitRequest) (dto.RegisteredUnitResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.RegisteredUnitResponse{}, err
	}

	student, err := s.students.Resolve(ctx, ref)
	if err != nil {
		return dto.RegisteredUnitResponse{}, err
	}

	registered, err := s.allocations.RegisterAllocated(ctx, student.ID, req.AllocatedUnitID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAllocationNotEligible):
			return dto.RegisteredUnitResponse{}, ErrAllocationNotEligible
		case errors.Is(err, repository.ErrDuplicateRegistration):
			return dto.RegisteredUnitResponse{}, ErrUnitAlreadyRegistered
		default:
			return dto.RegisteredUnitResponse{}, err
		}
	}

	s.logger.Info().
		Str("registration_number", student.RegistrationNumber).
		Str("unit_code", registered.UnitCode).
		Msg("allocated unit registered")

	return dto.NewRegisteredUnitResponse(registered), nil
}

// Cancel marks the allocation cancelled regardless of its current status.
// Cancelling an already-registered allocation is allowed; the registered
// unit row is intentionally left in place.
func (s *allocationService) Cancel(ctx context.Context, allocationID uint) (dto.AllocatedUnitResponse, error) {
	allocation, err := s.allocations.Cancel(ctx, allocationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AllocatedUnitResponse{}, ErrAllocationNotFound
		}
		return dto.AllocatedUnitResponse{}, err
	}

	s.logger.Info().Uint("allocation_id", allocationID).Msg("allocation cancelled")

	return dto.NewAllocatedUnitResponse(allocation), nil
}

func (s *allocationService) RegisterDirect(ctx context.Context, ref StudentRef, req dto.RegisterUnitRequest) (dto.RegisteredUnitResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.RegisteredUnitResponse{}, err
	}

	student, err := s.students.Resolve(ctx, ref)
	if err != nil {
		return dto.RegisteredUnitResponse{}, err
	}

	registered, err := s.allocations.RegisterDirect(ctx, student.ID, req.UnitCode, req.UnitName)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateRegistration) {
			return dto.RegisteredUnitResponse{}, ErrUnitAlreadyRegistered
		}
		return dto.RegisteredUnitResponse{}, err
	}

	return dto.NewRegisteredUnitResponse(registered), nil
}

func (s *allocationService) ListRegistered(ctx context.Context, ref StudentRef) ([]dto.RegisteredUnitResponse, error) {
	student, err := s.students.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	units, err := s.allocations.ListRegistered(ctx, student.ID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.RegisteredUnitResponse, 0, len(units))
	for _, unit := range units {
		responses = append(responses, dto.NewRegisteredUnitResponse(unit))
	}

	return responses, nil
}

func (s *allocationService) CreateUnit(ctx context.Context, req dto.UnitCreateRequest) (dto.UnitResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UnitResponse{}, err
	}

	if _, err := s.units.GetByCode(ctx, req.UnitCode); err == nil {
		return dto.UnitResponse{}, ErrUnitExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UnitResponse{}, err
	}

	unit := models.Unit{UnitCode: req.UnitCode, UnitName: req.UnitName}
	if err := s.units.Create(ctx, &unit); err != nil {
		return dto.UnitResponse{}, err
	}

	return dto.NewUnitResponse(unit), nil
}

func (s *allocationService) ListUnits(ctx context.Context) ([]dto.UnitResponse, error) {
	units, err := s.units.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UnitResponse, 0, len(units))
	for _, unit := range units {
		responses = append(responses, dto.NewUnitResponse(unit))
	}

	return responses, nil
}
