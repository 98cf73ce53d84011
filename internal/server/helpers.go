package server

import (
	"errors"

	"postmarket/internal/auth"
	"postmarket/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const maxPaginationLimit = 100

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts the :id route parameter as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentUserID returns the authenticated user's ID. Only valid behind
// AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	return c.Locals("userID").(uint)
}

// currentUser returns the authenticated account loaded by AuthRequired.
func currentUser(c *fiber.Ctx) *models.User {
	return c.Locals("user").(*models.User)
}

// isAdminActor reports whether the authenticated user is an admin.
func isAdminActor(c *fiber.Ctx) bool {
	return currentUser(c).IsAdmin()
}

// optionalUserID attempts to resolve the session cookie on a public route
// without enforcing authentication.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	token := auth.SessionToken(c)
	if token == "" {
		return 0, false
	}
	userID, err := s.authService.VerifyToken(token)
	if err != nil {
		return 0, false
	}
	return userID, true
}

// isAdminByUserID checks the role of an optionally-authenticated viewer.
func (s *Server) isAdminByUserID(c *fiber.Ctx, userID uint) bool {
	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return false
	}
	return user.IsAdmin()
}
