package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func performRequest(t *testing.T, handler fiber.Handler) (*http.Response, APIResponse) {
	t.Helper()

	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var envelope APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp, envelope
}

func TestSendSuccess(t *testing.T) {
	resp, envelope := performRequest(t, func(c *fiber.Ctx) error {
		return SendSuccess(c, "student created", fiber.Map{"id": 1})
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, envelope.Success)
	require.Equal(t, "student created", envelope.Message)
	require.NotNil(t, envelope.Data)
}

func TestSendSuccessWithStatusDefaults(t *testing.T) {
	resp, envelope := performRequest(t, func(c *fiber.Ctx) error {
		return SendSuccessWithStatus(c, 0, "", nil)
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, envelope.Success)
	require.Equal(t, "success", envelope.Message)
}

func TestSendError(t *testing.T) {
	resp, envelope := performRequest(t, func(c *fiber.Ctx) error {
		return SendError(c, fiber.StatusConflict, "unit already registered")
	})

	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.False(t, envelope.Success)
	require.Equal(t, "unit already registered", envelope.Message)
	require.Nil(t, envelope.Data)
}
