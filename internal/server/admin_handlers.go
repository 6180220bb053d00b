package server

import (
	"strings"

	"warden/internal/models"
	"warden/internal/service"

	"github.com/gofiber/fiber/v2"
)

const defaultQueuePageSize = 20

// ResolveReportsRequest is the body of the resolve endpoint.
type ResolveReportsRequest struct {
	Verdict string `json:"verdict"`
}

// IssuePenaltyRequest is the body of POST /api/admin/users/:id/penalties.
// Type is "warning", "permanent" or a duration such as "7d" or "12h".
type IssuePenaltyRequest struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// BannedTermRequest names one managed term.
type BannedTermRequest struct {
	Term string `json:"term"`
}

// GetReportQueue handles GET /api/admin/reports
// @Summary Report queue
// @Description Pending report groups, most reported first.
// @Tags moderation-admin
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} service.ReportQueuePage
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/reports [get]
func (s *Server) GetReportQueue(c *fiber.Ctx) error {
	page := parsePagination(c, defaultQueuePageSize)
	queue, err := s.services.Moderation.ListReportQueue(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(queue)
}

// GetReportGroup handles GET /api/admin/reports/:type/:id
// @Summary Report group detail
// @Description Every report on one target plus the stored content.
// @Tags moderation-admin
// @Produce json
// @Param type path string true "Target type"
// @Param id path int true "Target ID"
// @Success 200 {object} service.ReportGroupDetail
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/reports/{type}/{id} [get]
func (s *Server) GetReportGroup(c *fiber.Ctx) error {
	target, err := s.parseTarget(c)
	if err != nil {
		return nil
	}
	detail, err := s.services.Moderation.GetReportGroupDetail(c.UserContext(), target)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(detail)
}

// ResolveReports handles POST /api/admin/reports/:type/:id/resolve
// @Summary Adjudicate a report group
// @Description Resolve every pending report on the target as confirmed or false.
// @Tags moderation-admin
// @Accept json
// @Produce json
// @Param type path string true "Target type"
// @Param id path int true "Target ID"
// @Param request body ResolveReportsRequest true "Verdict"
// @Success 200 {object} service.ResolveResult
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/reports/{type}/{id}/resolve [post]
func (s *Server) ResolveReports(c *fiber.Ctx) error {
	adminID, err := currentUser(c)
	if err != nil {
		return nil
	}
	target, err := s.parseTarget(c)
	if err != nil {
		return nil
	}

	var req ResolveReportsRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	verdict, err := service.ParseVerdict(req.Verdict)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	result, err := s.services.Adjudication.Resolve(c.UserContext(), service.ResolveInput{
		Target:  target,
		Verdict: verdict,
		AdminID: adminID,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(result)
}

// RestoreContent handles POST /api/admin/contents/:type/:id/restore
// @Summary Restore concealed content
// @Tags moderation-admin
// @Produce json
// @Param type path string true "Target type"
// @Param id path int true "Target ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/contents/{type}/{id}/restore [post]
func (s *Server) RestoreContent(c *fiber.Ctx) error {
	adminID, err := currentUser(c)
	if err != nil {
		return nil
	}
	target, err := s.parseTarget(c)
	if err != nil {
		return nil
	}
	if err := s.services.Moderation.RestoreContent(c.UserContext(), target, adminID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(fiber.Map{"message": "Content restored"})
}

// DeleteContent handles DELETE /api/admin/contents/:type/:id
// @Summary Delete content
// @Description Delete the content together with every report on it.
// @Tags moderation-admin
// @Produce json
// @Param type path string true "Target type"
// @Param id path int true "Target ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/contents/{type}/{id} [delete]
func (s *Server) DeleteContent(c *fiber.Ctx) error {
	adminID, err := currentUser(c)
	if err != nil {
		return nil
	}
	target, err := s.parseTarget(c)
	if err != nil {
		return nil
	}
	if err := s.services.Moderation.DeleteContent(c.UserContext(), target, adminID); err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(fiber.Map{"message": "Content deleted"})
}

// GetUserModeration handles GET /api/admin/users/:id
// @Summary User moderation detail
// @Description Trust standing, suspension status, penalties and filed reports. Sections that fail to load are listed in warnings.
// @Tags moderation-admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} service.UserModerationDetail
// @Security BearerAuth
// @Router /admin/users/{id} [get]
func (s *Server) GetUserModeration(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	detail, err := s.services.Moderation.GetUserDetail(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(detail)
}

// GetPenaltyHistory handles GET /api/admin/users/:id/penalties
// @Summary Penalty history
// @Tags moderation-admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} models.Penalty
// @Security BearerAuth
// @Router /admin/users/{id}/penalties [get]
func (s *Server) GetPenaltyHistory(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	penalties, err := s.services.Sanctions.History(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	if penalties == nil {
		penalties = []models.Penalty{}
	}
	return c.JSON(penalties)
}

// IssuePenalty handles POST /api/admin/users/:id/penalties
// @Summary Issue a penalty
// @Tags moderation-admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body IssuePenaltyRequest true "Penalty"
// @Success 201 {object} models.Penalty
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/users/{id}/penalties [post]
func (s *Server) IssuePenalty(c *fiber.Ctx) error {
	adminID, err := currentUser(c)
	if err != nil {
		return nil
	}
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req IssuePenaltyRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	penaltyType, err := models.ParsePenaltyType(req.Type)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}

	penalty, err := s.services.Sanctions.Issue(c.UserContext(), service.IssueInput{
		UserID:   userID,
		Reason:   req.Reason,
		Type:     penaltyType,
		IssuedBy: adminID,
	})
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.Status(fiber.StatusCreated).JSON(penalty)
}

// RevokePenalty handles DELETE /api/admin/users/:id/penalties/active
// @Summary Lift active suspensions
// @Description Delete every active timed or permanent penalty. Warnings stay on record.
// @Tags moderation-admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{revoked=bool}
// @Security BearerAuth
// @Router /admin/users/{id}/penalties/active [delete]
func (s *Server) RevokePenalty(c *fiber.Ctx) error {
	adminID, err := currentUser(c)
	if err != nil {
		return nil
	}
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	revoked, err := s.services.Sanctions.Revoke(c.UserContext(), userID, adminID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(fiber.Map{"revoked": revoked})
}

// GetBannedTerms handles GET /api/admin/banned-terms
// @Summary List managed banned terms
// @Tags moderation-admin
// @Produce json
// @Success 200 {array} models.BannedTerm
// @Security BearerAuth
// @Router /admin/banned-terms [get]
func (s *Server) GetBannedTerms(c *fiber.Ctx) error {
	terms, err := s.services.Terms.Managed(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	if terms == nil {
		terms = []models.BannedTerm{}
	}
	return c.JSON(terms)
}

// AddBannedTerm handles POST /api/admin/banned-terms
// @Summary Add a banned term
// @Tags moderation-admin
// @Accept json
// @Produce json
// @Param request body BannedTermRequest true "Term"
// @Success 201 {object} object{added=bool}
// @Success 200 {object} object{added=bool} "already present"
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/banned-terms [post]
func (s *Server) AddBannedTerm(c *fiber.Ctx) error {
	adminID, err := currentUser(c)
	if err != nil {
		return nil
	}
	var req BannedTermRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	added, err := s.services.Terms.Add(c.UserContext(), req.Term, adminID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	if added {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"added": true})
	}
	return c.JSON(fiber.Map{"added": false})
}

// RemoveBannedTerm handles DELETE /api/admin/banned-terms
// @Summary Remove a banned term
// @Description Terms shipped in the static list cannot be removed here.
// @Tags moderation-admin
// @Accept json
// @Produce json
// @Param term query string false "Term (alternatively in the body)"
// @Success 200 {object} object{removed=bool}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/banned-terms [delete]
func (s *Server) RemoveBannedTerm(c *fiber.Ctx) error {
	adminID, err := currentUser(c)
	if err != nil {
		return nil
	}
	term := c.Query("term")
	if strings.TrimSpace(term) == "" && len(c.Body()) > 0 {
		var req BannedTermRequest
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		term = req.Term
	}

	removed, err := s.services.Terms.Remove(c.UserContext(), term, adminID)
	if err != nil {
		return models.RespondWithError(c, mapServiceError(err), err)
	}
	return c.JSON(fiber.Map{"removed": removed})
}
