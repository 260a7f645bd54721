package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Khalick/student-portal-api/internal/models"
	"github.com/Khalick/student-portal-api/internal/repository"
	"github.com/Khalick/student-portal-api/internal/service"
	"github.com/Khalick/student-portal-api/internal/storage"
	"github.com/Khalick/student-portal-api/internal/utils"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

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

// newTestEnv wires the full handler stack over an in-memory database, with
// route registration in the same order the production router uses.
func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	db := setupTestDB(t)
	logger := testLogger()
	validate := validator.New(validator.WithRequiredStructEnabled())

	local, err := storage.NewLocalStore(t.TempDir(), "/uploads", logger)
	require.NoError(t, err)
	blobs, err := storage.NewAdapter(nil, local, logger)
	require.NoError(t, err)

	students := service.NewStudentService(repository.NewStudentRepository(db), validate, logger)
	allocations := service.NewAllocationService(students, repository.NewAllocationRepository(db), repository.NewUnitRepository(db), validate, logger)
	documents := service.NewDocumentService(blobs, repository.NewDocumentRepository(db), students, 1, logger)
	legacy := service.NewLegacyDocumentService(documents, students, repository.NewLegacyDocumentRepository(db), 1024, logger)

	studentHandler := NewStudentHandler(students, logger)
	allocationHandler := NewAllocationHandler(allocations, logger)
	documentHandler := NewDocumentHandler(documents, logger)
	legacyHandler := NewLegacyDocumentHandler(legacy, documentHandler, logger)

	app := fiber.New()
	passthrough := func(c *fiber.Ctx) error { return c.Next() }

	// Allocation routes first, mirroring the production registration order.
	allocationHandler.RegisterStudentRoutes(app.Group("/students"))
	allocationHandler.RegisterAllocationRoutes(app.Group("/allocated-units"))
	allocationHandler.RegisterUnitRoutes(app.Group("/units"), passthrough)
	studentHandler.Register(app.Group("/students"), passthrough)
	studentHandler.RegisterFees(app.Group("/fees"))
	documentHandler.Register(app.Group("/documents"))
	legacyHandler.Register(app.Group(""))

	return testEnv{app: app, db: db}
}

func (e testEnv) seedStudent(t *testing.T) models.Student {
	t.Helper()
	student := models.Student{RegistrationNumber: "CS/001/2021", Name: "Jane Wanjiru", Status: models.StudentStatusActive}
	require.NoError(t, e.db.Create(&student).Error)
	return student
}

func (e testEnv) seedUnits(t *testing.T) []models.Unit {
	t.Helper()
	units := []models.Unit{
		{UnitCode: "CS101", UnitName: "Introduction to Programming"},
		{UnitCode: "CS102", UnitName: "Discrete Mathematics"},
	}
	for i := range units {
		require.NoError(t, e.db.Create(&units[i]).Error)
	}
	return units
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeResponse(t *testing.T, resp *http.Response) utils.APIResponse {
	t.Helper()
	defer resp.Body.Close()
	var envelope utils.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}

func dataAsMap(t *testing.T, envelope utils.APIResponse) map[string]any {
	t.Helper()
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok, "expected object data, got %T", envelope.Data)
	return data
}

func TestAllocateUnitsEndpointReportsPartialSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.seedStudent(t)
	units := env.seedUnits(t)

	req := jsonRequest(t, fiber.MethodPost, "/students/registration/CS/001/2021/allocate-units", fiber.Map{
		"unit_ids":      []uint{units[0].ID, 999},
		"semester":      1,
		"academic_year": "2024/2025",
	})

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := dataAsMap(t, decodeResponse(t, resp))
	require.Equal(t, float64(1), data["successfully_allocated"])
	require.Equal(t, float64(1), data["error_count"])
}

func TestAllocateUnitsEndpointByStudentID(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedStudent(t)
	units := env.seedUnits(t)

	target := "/students/" + itoa(student.ID) + "/allocate-units"
	req := jsonRequest(t, fiber.MethodPost, target, fiber.Map{
		"unit_ids":      []uint{units[0].ID},
		"semester":      2,
		"academic_year": "2024/2025",
	})

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := dataAsMap(t, decodeResponse(t, resp))
	require.Equal(t, float64(1), data["successfully_allocated"])
}

func TestAllocateUnitsEndpointUnknownStudent(t *testing.T) {
	env := newTestEnv(t)
	env.seedUnits(t)

	req := jsonRequest(t, fiber.MethodPost, "/students/registration/CS/999/2021/allocate-units", fiber.Map{
		"unit_ids":      []uint{1},
		"semester":      1,
		"academic_year": "2024/2025",
	})

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	envelope := decodeResponse(t, resp)
	require.False(t, envelope.Success)
}

func TestRegisterAllocatedUnitEndpoint(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedStudent(t)
	units := env.seedUnits(t)

	allocation := models.AllocatedUnit{
		StudentID:    student.ID,
		UnitID:       units[0].ID,
		Semester:     1,
		AcademicYear: "2024/2025",
		Status:       models.AllocationStatusAllocated,
	}
	require.NoError(t, env.db.Create(&allocation).Error)

	req := jsonRequest(t, fiber.MethodPost, "/students/registration/CS/001/2021/register-allocated-unit", fiber.Map{
		"allocated_unit_id": allocation.ID,
	})

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data := dataAsMap(t, decodeResponse(t, resp))
	require.Equal(t, "CS101", data["unit_code"])

	// Registering the same allocation again conflicts.
	resp, err = env.app.Test(jsonRequest(t, fiber.MethodPost, "/students/registration/CS/001/2021/register-allocated-unit", fiber.Map{
		"allocated_unit_id": allocation.ID,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCancelAllocationEndpoint(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedStudent(t)
	units := env.seedUnits(t)

	allocation := models.AllocatedUnit{
		StudentID:    student.ID,
		UnitID:       units[0].ID,
		Semester:     1,
		AcademicYear: "2024/2025",
		Status:       models.AllocationStatusAllocated,
	}
	require.NoError(t, env.db.Create(&allocation).Error)

	resp, err := env.app.Test(httptest.NewRequest(fiber.MethodDelete, "/allocated-units/"+itoa(allocation.ID), nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reloaded models.AllocatedUnit
	require.NoError(t, env.db.First(&reloaded, allocation.ID).Error)
	require.Equal(t, models.AllocationStatusCancelled, reloaded.Status)

	resp, err = env.app.Test(httptest.NewRequest(fiber.MethodDelete, "/allocated-units/9999", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListAllocatedUnitsEndpointSlashRoute(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedStudent(t)
	units := env.seedUnits(t)

	allocation := models.AllocatedUnit{
		StudentID:    student.ID,
		UnitID:       units[1].ID,
		Semester:     1,
		AcademicYear: "2024/2025",
		Status:       models.AllocationStatusAllocated,
	}
	require.NoError(t, env.db.Create(&allocation).Error)

	// The three path segments reassemble into "CS/001/2021".
	resp, err := env.app.Test(httptest.NewRequest(fiber.MethodGet, "/students/registration/CS/001/2021/allocated-units", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeResponse(t, resp)
	items, ok := envelope.Data.([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
}

func TestRegisterUnitEndpointDirect(t *testing.T) {
	env := newTestEnv(t)
	env.seedStudent(t)

	req := jsonRequest(t, fiber.MethodPost, "/students/registration/CS/001/2021/register-unit", fiber.Map{
		"unit_code": "CS301",
		"unit_name": "Operating Systems",
	})

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = env.app.Test(jsonRequest(t, fiber.MethodPost, "/students/registration/CS/001/2021/register-unit", fiber.Map{
		"unit_code": "CS301",
		"unit_name": "Operating Systems",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUnitCatalogEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.app.Test(jsonRequest(t, fiber.MethodPost, "/units", fiber.Map{
		"unit_code": "CS101",
		"unit_name": "Introduction to Programming",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = env.app.Test(jsonRequest(t, fiber.MethodPost, "/units", fiber.Map{
		"unit_code": "CS101",
		"unit_name": "Introduction to Programming",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, err = env.app.Test(httptest.NewRequest(fiber.MethodGet, "/units", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeResponse(t, resp)
	items, ok := envelope.Data.([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
}

func TestStudentLookupEndpointSlashRoute(t *testing.T) {
	env := newTestEnv(t)
	env.seedStudent(t)

	resp, err := env.app.Test(httptest.NewRequest(fiber.MethodGet, "/students/registration/CS/001/2021", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := dataAsMap(t, decodeResponse(t, resp))
	require.Equal(t, "CS/001/2021", data["registration_number"])
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
