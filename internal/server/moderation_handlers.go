package server

import (
	"postmarket/internal/models"
	"postmarket/internal/repository"
	"postmarket/internal/service"

	"github.com/gofiber/fiber/v2"
)

// FileReport handles POST /api/reports. A report targets exactly one of a
// listing or a user.
func (s *Server) FileReport(c *fiber.Ctx) error {
	var req struct {
		ListingID      *uint  `json:"listing_id"`
		ReportedUserID *uint  `json:"reported_user_id"`
		Reason         string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, err := s.moderationService.FileReport(c.Context(), service.FileReportInput{
		ReporterID:     currentUserID(c),
		ListingID:      req.ListingID,
		ReportedUserID: req.ReportedUserID,
		Reason:         req.Reason,
	})
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

// GetReports handles GET /api/admin/reports
func (s *Server) GetReports(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	filter := repository.ReportFilter{
		Status: models.ReportStatus(c.Query("status")),
		Limit:  page.Limit,
		Offset: page.Offset,
	}

	reports, total, err := s.moderationService.ListReports(c.Context(), filter)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
	})
}

// GetReport handles GET /api/admin/reports/:id
func (s *Server) GetReport(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	report, err := s.moderationService.GetReport(c.Context(), id)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(report)
}

// ResolveReport handles POST /api/admin/reports/:id/resolve. Resolving twice
// is a no-op.
func (s *Server) ResolveReport(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	report, err := s.moderationService.ResolveReport(c.Context(), id)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(report)
}

// DeleteReport handles DELETE /api/admin/reports/:id
func (s *Server) DeleteReport(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if err := s.moderationService.DeleteReport(c.Context(), id); err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Report deleted"})
}

// GetAdminOverview handles GET /api/admin/overview
func (s *Server) GetAdminOverview(c *fiber.Ctx) error {
	overview, err := s.analyticsService.Overview(c.Context())
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(overview)
}
