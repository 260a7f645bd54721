package handler

import (
	"errors"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Ordered alias lists for multipart fields. Clients spell these several ways;
// the first non-empty match wins.
var (
	registrationNumberAliases = []string{"registrationNumber", "registration_number", "regNumber", "reg_number", "regNo", "reg_no"}
	fileFieldAliases          = []string{"file", "document", "upload", "attachment"}
)

// formValueAlias returns the first non-empty form value among the aliases.
func formValueAlias(c *fiber.Ctx, aliases []string) string {
	for _, alias := range aliases {
		if value := strings.TrimSpace(c.FormValue(alias)); value != "" {
			return value
		}
	}
	return ""
}

// formFileAlias returns the first file present among the aliases.
func formFileAlias(c *fiber.Ctx, aliases []string) (*multipart.FileHeader, error) {
	for _, alias := range aliases {
		if file, err := c.FormFile(alias); err == nil && file != nil {
			return file, nil
		}
	}
	return nil, errors.New("file is required")
}

// registrationNumberParam reassembles a registration number from one or three
// path segments. Numbers like "CS/001/2021" arrive either URL-encoded in a
// single segment or split across the slash-tolerant 3-segment route variant.
func registrationNumberParam(c *fiber.Ctx) string {
	segments := make([]string, 0, 3)
	for _, name := range []string{"regNumber", "regNumber2", "regNumber3"} {
		raw := c.Params(name)
		if raw == "" {
			continue
		}
		if decoded, err := url.PathUnescape(raw); err == nil {
			raw = decoded
		}
		segments = append(segments, raw)
	}

	return strings.Join(segments, "/")
}

func parseUintParam(c *fiber.Ctx, key string) (uint, error) {
	value := c.Params(key)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid " + key)
	}
	return uint(parsed), nil
}

func userSubjectFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_subject"); v != nil {
		if subject, ok := v.(string); ok {
			return subject
		}
	}
	return ""
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}
