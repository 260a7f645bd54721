package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/Khalick/student-portal-api/internal/models"
	"github.com/Khalick/student-portal-api/internal/service"
	"github.com/Khalick/student-portal-api/internal/utils"
)

// LegacyDocumentHandler serves the older per-document-type routes. Each POST
// is a thin multipart wrapper over the upload orchestrator.
type LegacyDocumentHandler struct {
	service  service.LegacyDocumentService
	fallback *DocumentHandler
	logger   zerolog.Logger
}

// NewLegacyDocumentHandler builds a legacy document handler instance.
func NewLegacyDocumentHandler(service service.LegacyDocumentService, fallback *DocumentHandler, logger zerolog.Logger) *LegacyDocumentHandler {
	return &LegacyDocumentHandler{
		service:  service,
		fallback: fallback,
		logger:   logger.With().Str("component", "legacy_document_handler").Logger(),
	}
}

// Register attaches one POST route per document type plus the fee-gated exam
// card retrieval.
func (h *LegacyDocumentHandler) Register(router fiber.Router) {
	for _, documentType := range models.DocumentTypes {
		router.Post("/"+documentType, h.uploadFor(documentType))
	}

	router.Get("/exam-card/registration/:regNumber", h.examCard)
	router.Get("/exam-card/registration/:regNumber/:regNumber2/:regNumber3", h.examCard)
}

func (h *LegacyDocumentHandler) uploadFor(documentType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		regNumber := formValueAlias(c, registrationNumberAliases)
		if regNumber == "" {
			return utils.SendError(c, fiber.StatusBadRequest, "registration number is required")
		}

		file, err := formFileAlias(c, fileFieldAliases)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "file is required")
		}

		document, err := h.service.UploadTyped(c.Context(), regNumber, file, documentType)
		if err != nil {
			return h.handleError(c, err)
		}

		return utils.SendSuccessWithStatus(c, fiber.StatusCreated, documentType+" uploaded", document)
	}
}

func (h *LegacyDocumentHandler) examCard(c *fiber.Ctx) error {
	regNumber := registrationNumberParam(c)
	if regNumber == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "registration number is required")
	}

	document, err := h.service.ExamCard(c.Context(), regNumber)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "exam card retrieved", document)
}

func (h *LegacyDocumentHandler) handleError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrFeesOutstanding) {
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	}

	return h.fallback.handleError(c, err)
}
