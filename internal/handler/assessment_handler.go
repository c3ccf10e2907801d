package handler

import (
	"leadsync/internal/domain"
	"leadsync/internal/dto"
	"leadsync/internal/service"
	"leadsync/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// AssessmentHandler handles assessment lifecycle HTTP requests
type AssessmentHandler struct {
	service   service.AssessmentService
	validator *validation.Validator
}

// NewAssessmentHandler creates a new AssessmentHandler instance
func NewAssessmentHandler(service service.AssessmentService, validator *validation.Validator) *AssessmentHandler {
	return &AssessmentHandler{
		service:   service,
		validator: validator,
	}
}

// Start godoc
// @Summary Start a new assessment
// @Description Creates a new assessment with a 24h session
// @Tags assessments
// @Accept json
// @Produce json
// @Success 201 {object} dto.StartAssessmentResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /assessments [post]
func (h *AssessmentHandler) Start(c *fiber.Ctx) error {
	resp, err := h.service.Start(c.Context())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// SaveResponses godoc
// @Summary Save questionnaire answers
// @Description Records step answers and extends the session TTL
// @Tags assessments
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param request body dto.SaveResponsesRequest true "Answers"
// @Success 204
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 410 {object} middleware.ErrorResponse
// @Router /assessments/{id}/responses [put]
func (h *AssessmentHandler) SaveResponses(c *fiber.Ctx) error {
	assessmentID := c.Params("id")
	if errs := h.validator.ValidateAssessmentID(assessmentID); len(errs) > 0 {
		return errs
	}

	var req dto.SaveResponsesRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateSaveResponsesRequest(&req); len(errs) > 0 {
		return errs
	}

	if err := h.service.SaveResponses(c.Context(), assessmentID, &req); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Complete godoc
// @Summary Complete an assessment
// @Description Finalizes the assessment, scores it and hands qualified leads to the CRM
// @Tags assessments
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param request body dto.CompleteAssessmentRequest true "Final answers and contact info"
// @Success 200 {object} dto.AssessmentResultResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 410 {object} middleware.ErrorResponse
// @Router /assessments/{id}/complete [post]
func (h *AssessmentHandler) Complete(c *fiber.Ctx) error {
	assessmentID := c.Params("id")
	if errs := h.validator.ValidateAssessmentID(assessmentID); len(errs) > 0 {
		return errs
	}

	var req dto.CompleteAssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateCompleteRequest(&req); len(errs) > 0 {
		return errs
	}

	result, err := h.service.Complete(c.Context(), assessmentID, &req)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// GetResults godoc
// @Summary Get assessment results
// @Description Returns score, category, breakdown and recommendations
// @Tags assessments
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} dto.AssessmentResultResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /assessments/{id}/results [get]
func (h *AssessmentHandler) GetResults(c *fiber.Ctx) error {
	assessmentID := c.Params("id")
	if errs := h.validator.ValidateAssessmentID(assessmentID); len(errs) > 0 {
		return errs
	}

	result, err := h.service.GetResults(c.Context(), assessmentID)
	if err != nil {
		return err
	}
	return c.JSON(result)
}
