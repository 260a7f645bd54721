package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Khalick/student-portal-api/internal/dto"
	"github.com/Khalick/student-portal-api/internal/service"
	"github.com/Khalick/student-portal-api/internal/utils"
)

// StudentHandler manages student account and fee endpoints.
type StudentHandler struct {
	service service.StudentService
	logger  zerolog.Logger
}

// NewStudentHandler builds a student handler instance.
func NewStudentHandler(service service.StudentService, logger zerolog.Logger) *StudentHandler {
	return &StudentHandler{
		service: service,
		logger:  logger.With().Str("component", "student_handler").Logger(),
	}
}

// Register attaches student routes to the provided router group. Account
// creation is admin-only.
func (h *StudentHandler) Register(router fiber.Router, admin fiber.Handler) {
	router.Post("", admin, h.create)
	router.Get("", h.list)
	router.Get("/registration/:regNumber", h.getByRegistration)
	router.Get("/registration/:regNumber/:regNumber2/:regNumber3", h.getByRegistration)
}

// RegisterFees attaches the fee upsert route.
func (h *StudentHandler) RegisterFees(router fiber.Router) {
	router.Post("", h.upsertFee)
}

func (h *StudentHandler) create(c *fiber.Ctx) error {
	var payload dto.StudentCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	student, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student created", student)
}

func (h *StudentHandler) list(c *fiber.Ctx) error {
	students, err := h.service.List(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "students retrieved", students)
}

func (h *StudentHandler) getByRegistration(c *fiber.Ctx) error {
	regNumber := registrationNumberParam(c)
	if regNumber == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "registration number is required")
	}

	student, err := h.service.Get(c.Context(), service.StudentRef{RegistrationNumber: regNumber})
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "student retrieved", student)
}

func (h *StudentHandler) upsertFee(c *fiber.Ctx) error {
	var payload dto.FeeRecordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	record, err := h.service.UpsertFee(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "fee record saved", record)
}

func (h *StudentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrStudentExists):
		return utils.SendError(c, fiber.StatusConflict, "student already exists")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
