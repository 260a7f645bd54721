package dto

import (
	"time"

	"github.com/Khalick/student-portal-api/internal/models"
)

// AllocateUnitsRequest is the admin payload for batch unit allocation.
type AllocateUnitsRequest struct {
	UnitIDs      []uint `json:"unit_ids" validate:"required,min=1,dive,gt=0"`
	Semester     int    `json:"semester" validate:"required,oneof=1 2"`
	AcademicYear string `json:"academic_year" validate:"required,min=4"`
	Notes        string `json:"notes" validate:"omitempty,max=512"`
}

// RegisterAllocatedUnitRequest identifies the allocation a student registers.
type RegisterAllocatedUnitRequest struct {
	AllocatedUnitID uint `json:"allocated_unit_id" validate:"required,gt=0"`
}

// RegisterUnitRequest is the legacy direct-registration payload.
type RegisterUnitRequest struct {
	UnitCode string `json:"unit_code" validate:"required,min=2,max=32"`
	UnitName string `json:"unit_name" validate:"required,min=2,max=255"`
}

// AllocationItemResult reports the outcome for one requested unit id, in
// request order.
type AllocationItemResult struct {
	UnitID     uint                   `json:"unit_id"`
	Success    bool                   `json:"success"`
	Error      string                 `json:"error,omitempty"`
	Allocation *AllocatedUnitResponse `json:"allocation,omitempty"`
}

// AllocationSummaryResponse is the partial-success envelope for batch
// allocation.
type AllocationSummaryResponse struct {
	Allocated             []AllocatedUnitResponse `json:"allocated"`
	Errors                []AllocationItemResult  `json:"errors"`
	Results               []AllocationItemResult  `json:"results"`
	SuccessfullyAllocated int                     `json:"successfully_allocated"`
	ErrorCount            int                     `json:"error_count"`
}

// AllocatedUnitResponse serializes an allocation row.
type AllocatedUnitResponse struct {
	ID           uint      `json:"id"`
	StudentID    uint      `json:"student_id"`
	UnitID       uint      `json:"unit_id"`
	UnitCode     string    `json:"unit_code"`
	UnitName     string    `json:"unit_name"`
	Semester     int       `json:"semester"`
	AcademicYear string    `json:"academic_year"`
	Status       string    `json:"status"`
	AllocatedBy  string    `json:"allocated_by"`
	Notes        string    `json:"notes,omitempty"`
	AllocatedAt  time.Time `json:"allocated_at"`
}

// RegisteredUnitResponse serializes a registered unit row.
type RegisteredUnitResponse struct {
	ID        uint      `json:"id"`
	StudentID uint      `json:"student_id"`
	UnitCode  string    `json:"unit_code"`
	UnitName  string    `json:"unit_name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// UnitCreateRequest is the admin payload for catalog entries.
type UnitCreateRequest struct {
	UnitCode string `json:"unit_code" validate:"required,min=2,max=32"`
	UnitName string `json:"unit_name" validate:"required,min=2,max=255"`
}

// UnitResponse serializes a catalog unit.
type UnitResponse struct {
	ID       uint   `json:"id"`
	UnitCode string `json:"unit_code"`
	UnitName string `json:"unit_name"`
}

// NewAllocatedUnitResponse converts an AllocatedUnit model into a DTO.
func NewAllocatedUnitResponse(model models.AllocatedUnit) AllocatedUnitResponse {
	return AllocatedUnitResponse{
		ID:           model.ID,
		StudentID:    model.StudentID,
		UnitID:       model.UnitID,
		UnitCode:     model.Unit.UnitCode,
		UnitName:     model.Unit.UnitName,
		Semester:     model.Semester,
		AcademicYear: model.AcademicYear,
		Status:       model.Status,
		AllocatedBy:  model.AllocatedBy,
		Notes:        model.Notes,
		AllocatedAt:  model.AllocatedAt,
	}
}

// NewRegisteredUnitResponse converts a RegisteredUnit model into a DTO.
func NewRegisteredUnitResponse(model models.RegisteredUnit) RegisteredUnitResponse {
	return RegisteredUnitResponse{
		ID:        model.ID,
		StudentID: model.StudentID,
		UnitCode:  model.UnitCode,
		UnitName:  model.UnitName,
		Status:    model.Status,
		CreatedAt: model.CreatedAt,
	}
}

// NewUnitResponse converts a Unit model into a DTO.
func NewUnitResponse(model models.Unit) UnitResponse {
	return UnitResponse{
		ID:       model.ID,
		UnitCode: model.UnitCode,
		UnitName: model.UnitName,
	}
}
