package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Khalick/student-portal-api/internal/models"
)

var (
	// ErrAllocationNotEligible covers an allocation that is absent, belongs
	// to another student, or is no longer in the allocated state.
	ErrAllocationNotEligible = errors.New("allocation is not eligible for registration")
	// ErrDuplicateRegistration indicates the student already registered the unit.
	ErrDuplicateRegistration = errors.New("unit already registered")
)

// Per-item outcome reasons for batch allocation.
const (
	AllocationOutcomeAllocated        = "allocated"
	AllocationOutcomeUnitNotFound     = "unit not found"
	AllocationOutcomeAlreadyAllocated = "already allocated"
)

// AllocationOutcome reports what happened to a single unit id during batch
// allocation. Outcomes preserve the order of the requested unit ids.
type AllocationOutcome struct {
	UnitID     uint
	Reason     string
	Allocation *models.AllocatedUnit
}

// Allocated reports whether the item resulted in a new allocation row.
func (o AllocationOutcome) Allocated() bool {
	return o.Reason == AllocationOutcomeAllocated
}

// AllocationRepository runs the allocation workflow against the database.
// Multi-row mutations happen inside single transactions so no reader observes
// a registered unit whose allocation is not yet registered, or vice versa.
type AllocationRepository interface {
	AllocateBatch(ctx context.Context, studentID uint, unitIDs []uint, semester int, academicYear, allocatedBy, notes string) ([]AllocationOutcome, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.AllocatedUnit, error)
	GetByID(ctx context.Context, id uint) (models.AllocatedUnit, error)
	RegisterAllocated(ctx context.Context, studentID, allocationID uint) (models.RegisteredUnit, error)
	Cancel(ctx context.Context, allocationID uint) (models.AllocatedUnit, error)
	RegisterDirect(ctx context.Context, studentID uint, unitCode, unitName string) (models.RegisteredUnit, error)
	ListRegistered(ctx context.Context, studentID uint) ([]models.RegisteredUnit, error)
}

type allocationRepository struct {
	db *gorm.DB
}

// NewAllocationRepository constructs the allocation repository.
func NewAllocationRepository(db *gorm.DB) AllocationRepository {
	return &allocationRepository{db: db}
}

// AllocateBatch processes each unit id independently inside one transaction.
// Per-item business failures (missing unit, duplicate allocation) are
// recorded as outcomes and do not abort the transaction; only an unexpected
// database error rolls the whole batch back.
func (r *allocationRepository) AllocateBatch(ctx context.Context, studentID uint, unitIDs []uint, semester int, academicYear, allocatedBy, notes string) ([]AllocationOutcome, error) {
	outcomes := make([]AllocationOutcome, 0, len(unitIDs))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, unitID := range unitIDs {
			var unit models.Unit
			if err := tx.First(&unit, unitID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					outcomes = append(outcomes, AllocationOutcome{UnitID: unitID, Reason: AllocationOutcomeUnitNotFound})
					continue
				}
				return err
			}

			var existing int64
			err := tx.Model(&models.AllocatedUnit{}).
				Where("student_id = ? AND unit_id = ? AND semester = ? AND academic_year = ?", studentID, unitID, semester, academicYear).
				Where("status <> ?", models.AllocationStatusCancelled).
				Count(&existing).Error
			if err != nil {
				return err
			}
			if existing > 0 {
				outcomes = append(outcomes, AllocationOutcome{UnitID: unitID, Reason: AllocationOutcomeAlreadyAllocated})
				continue
			}

			allocation := models.AllocatedUnit{
				StudentID:    studentID,
				UnitID:       unitID,
				Semester:     semester,
				AcademicYear: academicYear,
				Status:       models.AllocationStatusAllocated,
				AllocatedBy:  allocatedBy,
				Notes:        notes,
				AllocatedAt:  time.Now(),
			}
			// The insert runs under a savepoint so the partial unique index
			// rejecting a concurrent duplicate does not poison the batch.
			err = tx.Transaction(func(tx *gorm.DB) error {
				return tx.Create(&allocation).Error
			})
			if err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					outcomes = append(outcomes, AllocationOutcome{UnitID: unitID, Reason: AllocationOutcomeAlreadyAllocated})
					continue
				}
				return err
			}
			allocation.Unit = unit

			outcomes = append(outcomes, AllocationOutcome{UnitID: unitID, Reason: AllocationOutcomeAllocated, Allocation: &allocation})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcomes, nil
}

func (r *allocationRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.AllocatedUnit, error) {
	var allocations []models.AllocatedUnit
	err := r.db.WithContext(ctx).
		Preload("Unit").
		Where("student_id = ?", studentID).
		Order("allocated_at DESC").
		Find(&allocations).Error
	if err != nil {
		return nil, err
	}

	return allocations, nil
}

func (r *allocationRepository) GetByID(ctx context.Context, id uint) (models.AllocatedUnit, error) {
	var allocation models.AllocatedUnit
	if err := r.db.WithContext(ctx).Preload("Unit").First(&allocation, id).Error; err != nil {
		return models.AllocatedUnit{}, err
	}

	return allocation, nil
}

// RegisterAllocated moves an allocation to registered and creates the
// denormalized registered_units row. Both writes commit atomically.
func (r *allocationRepository) RegisterAllocated(ctx context.Context, studentID, allocationID uint) (models.RegisteredUnit, error) {
	var registered models.RegisteredUnit

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var allocation models.AllocatedUnit
		if err := tx.Preload("Unit").First(&allocation, allocationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAllocationNotEligible
			}
			return err
		}

		if allocation.StudentID != studentID || allocation.Status != models.AllocationStatusAllocated {
			return ErrAllocationNotEligible
		}

		var existing int64
		err := tx.Model(&models.RegisteredUnit{}).
			Where("student_id = ? AND unit_code = ?", studentID, allocation.Unit.UnitCode).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicateRegistration
		}

		update := tx.Model(&models.AllocatedUnit{}).
			Where("id = ? AND status = ?", allocationID, models.AllocationStatusAllocated).
			Update("status", models.AllocationStatusRegistered)
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return ErrAllocationNotEligible
		}

		registered = models.RegisteredUnit{
			StudentID: studentID,
			UnitCode:  allocation.Unit.UnitCode,
			UnitName:  allocation.Unit.UnitName,
			Status:    models.RegisteredUnitStatus,
		}

		return tx.Create(&registered).Error
	})
	if err != nil {
		return models.RegisteredUnit{}, err
	}

	return registered, nil
}

// Cancel marks the allocation cancelled regardless of its current status.
func (r *allocationRepository) Cancel(ctx context.Context, allocationID uint) (models.AllocatedUnit, error) {
	update := r.db.WithContext(ctx).
		Model(&models.AllocatedUnit{}).
		Where("id = ?", allocationID).
		Update("status", models.AllocationStatusCancelled)
	if update.Error != nil {
		return models.AllocatedUnit{}, update.Error
	}
	if update.RowsAffected == 0 {
		return models.AllocatedUnit{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, allocationID)
}

// RegisterDirect registers a unit without a prior allocation, the legacy
// path. The unit catalog entry is created on first reference.
func (r *allocationRepository) RegisterDirect(ctx context.Context, studentID uint, unitCode, unitName string) (models.RegisteredUnit, error) {
	var registered models.RegisteredUnit

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		unit := models.Unit{UnitCode: unitCode}
		err := tx.Where("unit_code = ?", unitCode).
			Attrs(models.Unit{UnitName: unitName}).
			FirstOrCreate(&unit).Error
		if err != nil {
			return err
		}

		var existing int64
		err = tx.Model(&models.RegisteredUnit{}).
			Where("student_id = ? AND unit_code = ?", studentID, unit.UnitCode).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicateRegistration
		}

		registered = models.RegisteredUnit{
			StudentID: studentID,
			UnitCode:  unit.UnitCode,
			UnitName:  unit.UnitName,
			Status:    models.RegisteredUnitStatus,
		}

		return tx.Create(&registered).Error
	})
	if err != nil {
		return models.RegisteredUnit{}, err
	}

	return registered, nil
}

func (r *allocationRepository) ListRegistered(ctx context.Context, studentID uint) ([]models.RegisteredUnit, error) {
	var units []models.RegisteredUnit
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&units).Error
	if err != nil {
		return nil, err
	}

	return units, nil
}
