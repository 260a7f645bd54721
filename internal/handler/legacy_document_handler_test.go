package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/Khalick/student-portal-api/internal/models"
)

func multipartRequest(t *testing.T, target string, fields map[string]string, fileField, filename, content string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(fiber.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestLegacyUploadEndpointAcceptsAliasFields(t *testing.T) {
	env := newTestEnv(t)
	env.seedStudent(t)

	// "reg_no" and "document" are accepted spellings.
	req := multipartRequest(t, "/timetable", map[string]string{"reg_no": "CS/001/2021"}, "document", "tt.pdf", "semester one timetable")

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data := dataAsMap(t, decodeResponse(t, resp))
	require.Equal(t, models.DocumentTypeTimetable, data["document_type"])

	var mirrored models.Timetable
	require.NoError(t, env.db.First(&mirrored).Error)
	require.Equal(t, "CS/001/2021", mirrored.RegistrationNumber)
}

func TestLegacyUploadEndpointEnforcesMinimumSize(t *testing.T) {
	env := newTestEnv(t)
	env.seedStudent(t)

	req := multipartRequest(t, "/exam-card", map[string]string{"registrationNumber": "CS/001/2021"}, "file", "card.pdf", "too small")

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var count int64
	require.NoError(t, env.db.Model(&models.StudentDocument{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestLegacyUploadEndpointMissingFile(t *testing.T) {
	env := newTestEnv(t)
	env.seedStudent(t)

	req := multipartRequest(t, "/results", map[string]string{"registrationNumber": "CS/001/2021"}, "", "", "")

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExamCardEndpointFeeGate(t *testing.T) {
	env := newTestEnv(t)
	student := env.seedStudent(t)

	require.NoError(t, env.db.Create(&models.StudentDocument{
		RegistrationNumber: student.RegistrationNumber,
		DocumentType:       models.DocumentTypeExamCard,
		FileURL:            "/uploads/exam-card/card.pdf",
		FileName:           "card.pdf",
		UploadedAt:         time.Now(),
	}).Error)
	require.NoError(t, env.db.Create(&models.FeeRecord{
		StudentID:    student.ID,
		AcademicYear: "2024/2025",
		Billed:       50000,
		Paid:         10000,
		Balance:      40000,
	}).Error)

	resp, err := env.app.Test(httptest.NewRequest(fiber.MethodGet, "/exam-card/registration/CS/001/2021", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	require.NoError(t, env.db.Model(&models.FeeRecord{}).
		Where("student_id = ?", student.ID).
		Updates(map[string]any{"paid": 50000, "balance": 0}).Error)

	resp, err = env.app.Test(httptest.NewRequest(fiber.MethodGet, "/exam-card/registration/CS/001/2021", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := dataAsMap(t, decodeResponse(t, resp))
	require.Equal(t, "card.pdf", data["file_name"])
}

func TestDocumentUploadEndpointAndListing(t *testing.T) {
	env := newTestEnv(t)
	env.seedStudent(t)

	req := multipartRequest(t, "/documents/upload", map[string]string{
		"registration_number": "CS/001/2021",
		"documentType":        models.DocumentTypeResults,
	}, "file", "results.pdf", strings.Repeat("r", 2048))

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data := dataAsMap(t, decodeResponse(t, resp))
	require.Equal(t, "local", data["storage_method"])

	resp, err = env.app.Test(httptest.NewRequest(fiber.MethodGet, "/documents/registration/CS/001/2021?type=results", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	envelope := decodeResponse(t, resp)
	items, ok := envelope.Data.([]any)
	require.True(t, ok)
	require.Len(t, items, 1)

	resp, err = env.app.Test(httptest.NewRequest(fiber.MethodGet, "/documents/registration/CS/001/2021?type=transcript", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDocumentUploadEndpointRejectsOversized(t *testing.T) {
	env := newTestEnv(t)
	env.seedStudent(t)

	req := multipartRequest(t, "/documents/upload", map[string]string{
		"registrationNumber": "CS/001/2021",
		"documentType":       models.DocumentTypeResults,
	}, "file", "big.pdf", strings.Repeat("a", 1<<20+1))

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}
