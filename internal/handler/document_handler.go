package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Khalick/student-portal-api/internal/service"
	"github.com/Khalick/student-portal-api/internal/storage"
	"github.com/Khalick/student-portal-api/internal/utils"
)

// DocumentHandler manages the generic document upload and listing endpoints.
type DocumentHandler struct {
	service service.DocumentService
	logger  zerolog.Logger
}

// NewDocumentHandler builds a document handler instance.
func NewDocumentHandler(service service.DocumentService, logger zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		logger:  logger.With().Str("component", "document_handler").Logger(),
	}
}

// Register attaches document routes to the provided router group.
func (h *DocumentHandler) Register(router fiber.Router) {
	router.Post("/upload", h.upload)
	router.Get("/registration/:regNumber", h.list)
	router.Get("/registration/:regNumber/:regNumber2/:regNumber3", h.list)
}

func (h *DocumentHandler) upload(c *fiber.Ctx) error {
	regNumber := formValueAlias(c, registrationNumberAliases)
	if regNumber == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "registration number is required")
	}

	documentType := c.FormValue("documentType")
	if documentType == "" {
		documentType = c.FormValue("document_type")
	}
	if documentType == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "document type is required")
	}

	file, err := formFileAlias(c, fileFieldAliases)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file is required")
	}

	document, err := h.service.Upload(c.Context(), regNumber, file, documentType)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "document uploaded", document)
}

func (h *DocumentHandler) list(c *fiber.Ctx) error {
	regNumber := registrationNumberParam(c)
	if regNumber == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "registration number is required")
	}

	documents, err := h.service.List(c.Context(), regNumber, c.Query("type"))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "documents retrieved", documents)
}

func (h *DocumentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "student not found")
	case errors.Is(err, service.ErrDocumentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "document not found")
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrUploadTooSmall),
		errors.Is(err, service.ErrFileRequired),
		errors.Is(err, service.ErrDocumentTypeUnknown):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrStorageFailed):
		h.logger.Error().Err(err).Msg("document storage failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to store document")
	case errors.Is(err, service.ErrDocumentPersist):
		h.logger.Error().Err(err).Msg("document persistence failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to save document record")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
