package server

import (
	"postmarket/internal/models"
	"postmarket/internal/repository"
	"postmarket/internal/service"
	"postmarket/internal/vendors"

	"github.com/gofiber/fiber/v2"
)

// BrowseListings handles GET /api/listings
// @Summary Browse the marketplace
// @Description List active listings with optional search, category and sort
// @Tags listings
// @Produce json
// @Param q query string false "Search in title, domain and description"
// @Param category_id query int false "Filter by category"
// @Param sort query string false "price_asc | price_desc | authority | traffic"
// @Success 200 {object} object{listings=[]models.Listing,total=int}
// @Router /listings [get]
func (s *Server) BrowseListings(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	filter := repository.ListingFilter{
		Query:      c.Query("q"),
		CategoryID: uint(c.QueryInt("category_id", 0)),
		Sort:       c.Query("sort"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}

	listings, total, err := s.listingService.Browse(c.Context(), filter)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"listings": listings,
		"total":    total,
	})
}

// GetListing handles GET /api/listings/:id. Non-active listings exist only
// for their owner and admins; everyone else gets the same 404 as a missing ID.
func (s *Server) GetListing(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	listing, err := s.listingService.GetListing(c.Context(), id)
	if err != nil {
		return models.RespondError(c, err)
	}

	if listing.Status != models.ListingActive {
		viewerID, ok := s.optionalUserID(c)
		if !ok || (viewerID != listing.UserID && !s.isAdminByUserID(c, viewerID)) {
			return models.RespondError(c, models.NewNotFoundError("Listing", id))
		}
	}

	return c.JSON(listing)
}

// GetMyListings handles GET /api/listings/me. It returns the caller's own
// listings in every status, unlike the public browse.
func (s *Server) GetMyListings(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	filter := repository.ListingFilter{
		UserID: currentUserID(c),
		Status: models.ListingStatus(c.Query("status")),
		Limit:  page.Limit,
		Offset: page.Offset,
	}

	listings, total, err := s.listingService.ListAll(c.Context(), filter)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"listings": listings,
		"total":    total,
	})
}

// CreateListing handles POST /api/listings
func (s *Server) CreateListing(c *fiber.Ctx) error {
	var req struct {
		CategoryID  uint   `json:"category_id"`
		Domain      string `json:"domain"`
		Title       string `json:"title"`
		Description string `json:"description"`
		PriceCents  int64  `json:"price_cents"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	listing, err := s.listingService.CreateListing(c.Context(), service.CreateListingInput{
		UserID:      currentUserID(c),
		CategoryID:  req.CategoryID,
		Domain:      req.Domain,
		Title:       req.Title,
		Description: req.Description,
		PriceCents:  req.PriceCents,
	})
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(listing)
}

// UpdateListing handles PUT /api/listings/:id
func (s *Server) UpdateListing(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req struct {
		CategoryID  *uint   `json:"category_id"`
		Title       *string `json:"title"`
		Description *string `json:"description"`
		PriceCents  *int64  `json:"price_cents"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	listing, err := s.listingService.UpdateListing(c.Context(), id,
		currentUserID(c), isAdminActor(c), service.UpdateListingInput{
			CategoryID:  req.CategoryID,
			Title:       req.Title,
			Description: req.Description,
			PriceCents:  req.PriceCents,
		})
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(listing)
}

// DeleteListing handles DELETE /api/listings/:id
func (s *Server) DeleteListing(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if err := s.listingService.DeleteListing(c.Context(), id, currentUserID(c), isAdminActor(c)); err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Listing deleted"})
}

// GetVerificationToken handles GET /api/listings/:id/verification-token.
// The owner publishes this token on their site to prove ownership.
func (s *Server) GetVerificationToken(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	token, err := s.listingService.VerificationToken(c.Context(), id, currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"token":     token,
		"file_name": vendors.VerifyFileName,
	})
}

// VerifyListing handles POST /api/listings/:id/verify
func (s *Server) VerifyListing(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	listing, err := s.listingService.VerifySite(c.Context(), id, currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(listing)
}

// RefreshListingMetrics handles POST /api/listings/:id/refresh-metrics
func (s *Server) RefreshListingMetrics(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	listing, err := s.listingService.RefreshMetrics(c.Context(), id, currentUserID(c), isAdminActor(c))
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(listing)
}

// CaptureListingScreenshot handles POST /api/listings/:id/screenshot
func (s *Server) CaptureListingScreenshot(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	listing, err := s.listingService.CaptureScreenshot(c.Context(), id, currentUserID(c), isAdminActor(c))
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(listing)
}

// GetAdminListings handles GET /api/admin/listings. The moderation queue
// defaults to pending listings but accepts any status filter.
func (s *Server) GetAdminListings(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	filter := repository.ListingFilter{
		Query:      c.Query("q"),
		Status:     models.ListingStatus(c.Query("status")),
		CategoryID: uint(c.QueryInt("category_id", 0)),
		UserID:     uint(c.QueryInt("user_id", 0)),
		Sort:       c.Query("sort"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}

	listings, total, err := s.listingService.ListAll(c.Context(), filter)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"listings": listings,
		"total":    total,
	})
}

// SetListingStatus handles POST /api/admin/listings/:id/status
func (s *Server) SetListingStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	listing, err := s.listingService.SetStatus(c.Context(), id, models.ListingStatus(req.Status))
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(listing)
}
