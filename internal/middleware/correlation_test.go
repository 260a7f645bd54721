package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newCorrelationApp() *fiber.App {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString(GetCorrelationID(c))
	})
	return app
}

func TestCorrelationIDMintedWhenAbsent(t *testing.T) {
	app := newCorrelationApp()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	id := resp.Header.Get(HeaderCorrelationID)
	require.NoError(t, uuid.Validate(id))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, id, string(body))
}

func TestCorrelationIDKeptFromCaller(t *testing.T) {
	app := newCorrelationApp()

	req := httptest.NewRequest(fiber.MethodGet, "/ping", nil)
	req.Header.Set(HeaderCorrelationID, "portal-session-42")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "portal-session-42", resp.Header.Get(HeaderCorrelationID))
}

func TestCorrelationIDFallsBackToRequestID(t *testing.T) {
	app := newCorrelationApp()

	req := httptest.NewRequest(fiber.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "proxy-7f3a")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, "proxy-7f3a", resp.Header.Get(HeaderCorrelationID))
}

func TestRegisterExposesCorrelationHeaderThroughCORS(t *testing.T) {
	app := fiber.New()
	logger := zerolog.New(io.Discard)
	Register(app, Config{Logger: &logger})
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	req := httptest.NewRequest(fiber.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://portal.example.edu")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get(HeaderCorrelationID))
	require.Contains(t, resp.Header.Get(fiber.HeaderAccessControlExposeHeaders), HeaderCorrelationID)
}
