package server

import (
	"warden/internal/models"
	"warden/internal/service"

	"github.com/gofiber/fiber/v2"
)

// FileReportRequest is the body of POST /api/reports.
type FileReportRequest struct {
	TargetType string `json:"target_type"`
	TargetID   uint   `json:"target_id"`
	Reason     string `json:"reason"`
	Detail     string `json:"detail,omitempty"`
}

// FileReport handles POST /api/reports
// @Summary Report content
// @Description File a report against a piece of content. Repeating a pending report is a no-op that returns already_reported.
// @Tags reports
// @Accept json
// @Produce json
// @Param request body FileReportRequest true "Report"
// @Success 201 {object} service.FileReportResult
// @Success 200 {object} service.FileReportResult "already reported"
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse "reporting privilege suspended or account suspended"
// @Failure 404 {object} models.ErrorResponse
// @Failure 429 {object} object{error=string}
// @Security BearerAuth
// @Router /reports [post]
func (s *Server) FileReport(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return nil
	}

	var req FileReportRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	targetType, err := models.ParseTargetType(req.TargetType)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	result, err := s.services.Reports.FileReport(c.UserContext(), service.FileReportInput{
		ReporterID: userID,
		Target:     models.ContentTarget{Type: targetType, ID: req.TargetID},
		Reason:     models.ReportReason(req.Reason),
		Detail:     req.Detail,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	if result.AlreadyReported {
		return c.JSON(result)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// GetMyStatus handles GET /api/me/status
// @Summary Own suspension status
// @Description Returns whether the caller is currently suspended and until when.
// @Tags reports
// @Produce json
// @Success 200 {object} models.SuspensionStatus
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /me/status [get]
func (s *Server) GetMyStatus(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return nil
	}

	status, err := s.services.Sanctions.CheckStatus(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(status)
}
