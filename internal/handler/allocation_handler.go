package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Khalick/student-portal-api/internal/dto"
	"github.com/Khalick/student-portal-api/internal/service"
	"github.com/Khalick/student-portal-api/internal/utils"
)

// AllocationHandler manages unit allocation and registration endpoints.
type AllocationHandler struct {
	service service.AllocationService
	logger  zerolog.Logger
}

// NewAllocationHandler builds an allocation handler instance.
func NewAllocationHandler(service service.AllocationService, logger zerolog.Logger) *AllocationHandler {
	return &AllocationHandler{
		service: service,
		logger:  logger.With().Str("component", "allocation_handler").Logger(),
	}
}

// RegisterStudentRoutes attaches the allocation routes under /students.
// Registration numbers may contain slashes, so each registration-number route
// has a three-segment variant.
func (h *AllocationHandler) RegisterStudentRoutes(router fiber.Router) {
	router.Post("/:studentID<int>/allocate-units", h.allocateByID)

	router.Post("/registration/:regNumber/allocate-units", h.allocateByRegistration)
	router.Post("/registration/:regNumber/:regNumber2/:regNumber3/allocate-units", h.allocateByRegistration)

	router.Get("/registration/:regNumber/allocated-units", h.listAllocated)
	router.Get("/registration/:regNumber/:regNumber2/:regNumber3/allocated-units", h.listAllocated)

	router.Post("/registration/:regNumber/register-allocated-unit", h.registerAllocated)
	router.Post("/registration/:regNumber/:regNumber2/:regNumber3/register-allocated-unit", h.registerAllocated)

	router.Post("/registration/:regNumber/register-unit", h.registerDirect)
	router.Post("/registration/:regNumber/:regNumber2/:regNumber3/register-unit", h.registerDirect)

	router.Get("/registration/:regNumber/registered-units", h.listRegistered)
	router.Get("/registration/:regNumber/:regNumber2/:regNumber3/registered-units", h.listRegistered)
}

// RegisterAllocationRoutes attaches the admin allocation management routes.
func (h *AllocationHandler) RegisterAllocationRoutes(router fiber.Router) {
	router.Delete("/:id", h.cancel)
}

// RegisterUnitRoutes attaches the unit catalog routes. Catalog writes are
// admin-only; listing is open to any authenticated caller.
func (h *AllocationHandler) RegisterUnitRoutes(router fiber.Router, admin fiber.Handler) {
	router.Post("", admin, h.createUnit)
	router.Get("", h.listUnits)
}

func (h *AllocationHandler) allocateByID(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	return h.allocate(c, service.StudentRef{ID: studentID})
}

func (h *AllocationHandler) allocateByRegistration(c *fiber.Ctx) error {
	regNumber := registrationNumberParam(c)
	if regNumber == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "registration number is required")
	}

	return h.allocate(c, service.StudentRef{RegistrationNumber: regNumber})
}

func (h *AllocationHandler) allocate(c *fiber.Ctx, ref service.StudentRef) error {
	var payload dto.AllocateUnitsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	summary, err := h.service.Allocate(c.Context(), ref, payload, userSubjectFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "allocation processed", summary)
}

func (h *AllocationHandler) listAllocated(c *fiber.Ctx) error {
	regNumber := registrationNumberParam(c)
	if regNumber == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "registration number is required")
	}

	allocations, err := h.service.ListAllocated(c.Context(), service.StudentRef{RegistrationNumber: regNumber})
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "allocated units retrieved", allocations)
}

func (h *AllocationHandler) registerAllocated(c *fiber.Ctx) error {
	regNumber := registrationNumberParam(c)
	if regNumber == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "registration number is required")
	}

	var payload dto.RegisterAllocatedUnitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	registered, err := h.service.Register(c.Context(), service.StudentRef{RegistrationNumber: regNumber}, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "unit registered", registered)
}

func (h *AllocationHandler) registerDirect(c *fiber.Ctx) error {
	regNumber := registrationNumberParam(c)
	if regNumber == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "registration number is required")
	}

	var payload dto.RegisterUnitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	registered, err := h.service.RegisterDirect(c.Context(), service.StudentRef{RegistrationNumber: regNumber}, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "unit registered", registered)
}

func (h *AllocationHandler) listRegistered(c *fiber.Ctx) error {
	regNumber := registrationNumberParam(c)
	if regNumber == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "registration number is required")
	}

	units, err := h.service.ListRegistered(c.Context(), service.StudentRef{RegistrationNumber: regNumber})
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "registered units retrieved", units)
}

func (h *AllocationHandler) cancel(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	allocation, err := h.service.Cancel(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "allocation cancelled", allocation)
}

func (h *AllocationHandler) createUnit(c *fiber.Ctx) error {
	var payload dto.UnitCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	unit, err := h.service.CreateUnit(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "unit created", unit)
}

func (h *AllocationHandler) listUnits(c *fiber.Ctx) error {
	units, err := h.service.ListUnits(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "units retrieved", units)
}

func (h *AllocationHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrUnitNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "unit not found")
	case errors.Is(err, service.ErrAllocationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "allocation not found")
	case errors.Is(err, service.ErrAllocationNotEligible):
		return utils.SendError(c, fiber.StatusConflict, "allocation is not eligible for registration")
	case errors.Is(err, service.ErrUnitAlreadyRegistered):
		return utils.SendError(c, fiber.StatusConflict, "unit already registered")
	case errors.Is(err, service.ErrUnitExists):
		return utils.SendError(c, fiber.StatusConflict, "unit already exists")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
