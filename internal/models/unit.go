package models

import "time"

// Allocation lifecycle: allocated -> registered (student action, terminal) or
// allocated -> cancelled (admin action, terminal).
const (
	AllocationStatusAllocated  = "allocated"
	AllocationStatusRegistered = "registered"
	AllocationStatusCancelled  = "cancelled"
)

// RegisteredUnitStatus is the only status a registered_units row is created with.
const RegisteredUnitStatus = "registered"

// Unit is a catalog entry. Created explicitly by admin or implicitly the
// first time a legacy direct registration references it.
type Unit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UnitCode  string    `gorm:"size:32;uniqueIndex;not null" json:"unit_code"`
	UnitName  string    `gorm:"size:255;not null" json:"unit_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AllocatedUnit is an admin-created offer of a unit to a student for a
// semester/year. The (student, unit, semester, year) key may only repeat once
// the earlier allocation is cancelled. The partial unique index is the final
// arbiter against concurrent duplicate allocations; the workflow's
// in-transaction check only produces the friendlier per-item outcome.
type AllocatedUnit struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StudentID    uint      `gorm:"not null;index;uniqueIndex:idx_active_allocation,priority:1" json:"student_id"`
	UnitID       uint      `gorm:"not null;index;uniqueIndex:idx_active_allocation,priority:2" json:"unit_id"`
	Semester     int       `gorm:"not null;uniqueIndex:idx_active_allocation,priority:3" json:"semester"`
	AcademicYear string    `gorm:"size:16;not null;uniqueIndex:idx_active_allocation,priority:4,where:status <> 'cancelled'" json:"academic_year"`
	Status       string    `gorm:"size:16;not null;default:allocated" json:"status"`
	AllocatedBy  string    `gorm:"size:128" json:"allocated_by"`
	Notes        string    `gorm:"size:512" json:"notes"`
	AllocatedAt  time.Time `json:"allocated_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Student Student `gorm:"foreignKey:StudentID" json:"-"`
	Unit    Unit    `gorm:"foreignKey:UnitID" json:"unit"`
}

// RegisteredUnit is the denormalized record the student-facing pages read.
// The composite unique index is the final arbiter against duplicate
// registration when concurrent requests race.
type RegisteredUnit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_registered_student_unit" json:"student_id"`
	UnitCode  string    `gorm:"size:32;not null;uniqueIndex:idx_registered_student_unit" json:"unit_code"`
	UnitName  string    `gorm:"size:255;not null" json:"unit_name"`
	Status    string    `gorm:"size:16;not null;default:registered" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Student Student `gorm:"foreignKey:StudentID" json:"-"`
}
