package service

import (
	"context"
	"io"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Khalick/student-portal-api/internal/dto"
	"github.com/Khalick/student-portal-api/internal/models"
	"github.com/Khalick/student-portal-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.FeeRecord{},
		&models.Unit{},
		&models.AllocatedUnit{},
		&models.RegisteredUnit{},
		&models.StudentDocument{},
		&models.ExamCard{},
		&models.FinanceRecord{},
		&models.ResultRecord{},
		&models.Timetable{},
	))
	return db
}

func newAllocationFixture(t *testing.T) (AllocationService, *gorm.DB, models.Student, []models.Unit) {
	t.Helper()
	db := setupTestDB(t)

	student := models.Student{RegistrationNumber: "CS/001/2021", Name: "Jane Wanjiru", Status: models.StudentStatusActive}
	require.NoError(t, db.Create(&student).Error)

	units := []models.Unit{
		{UnitCode: "CS101", UnitName: "Introduction to Programming"},
		{UnitCode: "CS102", UnitName: "Discrete Mathematics"},
	}
	for i := range units {
		require.NoError(t, db.Create(&units[i]).Error)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	students := NewStudentService(repository.NewStudentRepository(db), validate, testLogger())
	svc := NewAllocationService(students, repository.NewAllocationRepository(db), repository.NewUnitRepository(db), validate, testLogger())

	return svc, db, student, units
}

func TestAllocateReportsPartialSuccess(t *testing.T) {
	svc, _, student, units := newAllocationFixture(t)
	ref := StudentRef{RegistrationNumber: student.RegistrationNumber}

	first, err := svc.Allocate(context.Background(), ref, dto.AllocateUnitsRequest{
		UnitIDs:      []uint{units[0].ID, units[1].ID},
		Semester:     1,
		AcademicYear: "2024/2025",
	}, "admin")
	require.NoError(t, err)
	require.Equal(t, 2, first.SuccessfullyAllocated)
	require.Equal(t, 0, first.ErrorCount)
	require.Len(t, first.Allocated, 2)
	require.Equal(t, "CS101", first.Allocated[0].UnitCode)

	// Re-allocating U1 for the same semester/year reports a per-item error
	// and leaves everything else untouched.
	second, err := svc.Allocate(context.Background(), ref, dto.AllocateUnitsRequest{
		UnitIDs:      []uint{units[0].ID},
		Semester:     1,
		AcademicYear: "2024/2025",
	}, "admin")
	require.NoError(t, err)
	require.Equal(t, 0, second.SuccessfullyAllocated)
	require.Equal(t, 1, second.ErrorCount)
	require.Len(t, second.Errors, 1)
	require.Equal(t, units[0].ID, second.Errors[0].UnitID)
	require.Contains(t, second.Errors[0].Error, "already allocated")
}

func TestAllocatePreservesInputOrderInResults(t *testing.T) {
	svc, _, student, units := newAllocationFixture(t)
	ref := StudentRef{RegistrationNumber: student.RegistrationNumber}

	summary, err := svc.Allocate(context.Background(), ref, dto.AllocateUnitsRequest{
		UnitIDs:      []uint{999, units[1].ID, units[0].ID},
		Semester:     1,
		AcademicYear: "2024/2025",
	}, "admin")
	require.NoError(t, err)
	require.Len(t, summary.Results, 3)
	require.Equal(t, uint(999), summary.Results[0].UnitID)
	require.False(t, summary.Results[0].Success)
	require.Equal(t, units[1].ID, summary.Results[1].UnitID)
	require.True(t, summary.Results[1].Success)
	require.Equal(t, units[0].ID, summary.Results[2].UnitID)
	require.True(t, summary.Results[2].Success)
}

func TestAllocateRejectsUnknownStudent(t *testing.T) {
	svc, _, _, units := newAllocationFixture(t)

	_, err := svc.Allocate(context.Background(), StudentRef{RegistrationNumber: "CS/999/2021"}, dto.AllocateUnitsRequest{
		UnitIDs:      []uint{units[0].ID},
		Semester:     1,
		AcademicYear: "2024/2025",
	}, "admin")
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestRegisterAllocatedUnitFullLifecycle(t *testing.T) {
	svc, db, student, units := newAllocationFixture(t)
	ref := StudentRef{RegistrationNumber: student.RegistrationNumber}

	summary, err := svc.Allocate(context.Background(), ref, dto.AllocateUnitsRequest{
		UnitIDs:      []uint{units[0].ID},
		Semester:     1,
		AcademicYear: "2024/2025",
	}, "admin")
	require.NoError(t, err)
	allocationID := summary.Allocated[0].ID

	registered, err := svc.Register(context.Background(), ref, dto.RegisterAllocatedUnitRequest{AllocatedUnitID: allocationID})
	require.NoError(t, err)
	require.Equal(t, "CS101", registered.UnitCode)
	require.Equal(t, "registered", registered.Status)

	var allocation models.AllocatedUnit
	require.NoError(t, db.First(&allocation, allocationID).Error)
	require.Equal(t, models.AllocationStatusRegistered, allocation.Status)

	// A second register call on the same allocation is rejected and no
	// second registered row appears.
	_, err = svc.Register(context.Background(), ref, dto.RegisterAllocatedUnitRequest{AllocatedUnitID: allocationID})
	require.ErrorIs(t, err, ErrAllocationNotEligible)

	var count int64
	require.NoError(t, db.Model(&models.RegisteredUnit{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestCancelAllowsReallocation(t *testing.T) {
	svc, _, student, units := newAllocationFixture(t)
	ref := StudentRef{RegistrationNumber: student.RegistrationNumber}

	summary, err := svc.Allocate(context.Background(), ref, dto.AllocateUnitsRequest{
		UnitIDs:      []uint{units[0].ID},
		Semester:     1,
		AcademicYear: "2024/2025",
	}, "admin")
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), summary.Allocated[0].ID)
	require.NoError(t, err)
	require.Equal(t, models.AllocationStatusCancelled, cancelled.Status)

	again, err := svc.Allocate(context.Background(), ref, dto.AllocateUnitsRequest{
		UnitIDs:      []uint{units[0].ID},
		Semester:     1,
		AcademicYear: "2024/2025",
	}, "admin")
	require.NoError(t, err)
	require.Equal(t, 1, again.SuccessfullyAllocated)

	_, err = svc.Cancel(context.Background(), 9999)
	require.ErrorIs(t, err, ErrAllocationNotFound)
}

func TestRegisterDirectAndDuplicateGuard(t *testing.T) {
	svc, _, student, _ := newAllocationFixture(t)
	ref := StudentRef{RegistrationNumber: student.RegistrationNumber}

	registered, err := svc.RegisterDirect(context.Background(), ref, dto.RegisterUnitRequest{UnitCode: "CS301", UnitName: "Operating Systems"})
	require.NoError(t, err)
	require.Equal(t, "CS301", registered.UnitCode)

	_, err = svc.RegisterDirect(context.Background(), ref, dto.RegisterUnitRequest{UnitCode: "CS301", UnitName: "Operating Systems"})
	require.ErrorIs(t, err, ErrUnitAlreadyRegistered)

	units, err := svc.ListRegistered(context.Background(), ref)
	require.NoError(t, err)
	require.Len(t, units, 1)
}

func TestCreateUnitRejectsDuplicateCode(t *testing.T) {
	svc, _, _, _ := newAllocationFixture(t)

	_, err := svc.CreateUnit(context.Background(), dto.UnitCreateRequest{UnitCode: "CS101", UnitName: "Intro"})
	require.ErrorIs(t, err, ErrUnitExists)

	created, err := svc.CreateUnit(context.Background(), dto.UnitCreateRequest{UnitCode: "CS401", UnitName: "Compilers"})
	require.NoError(t, err)
	require.Equal(t, "CS401", created.UnitCode)
}
