package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the cookie the browser client carries the
// session token in.
const SessionCookieName = "auth-token"

// SetSessionCookie writes the session token cookie on the response.
// Secure is only set in production so local HTTP development keeps working.
func SetSessionCookie(c *fiber.Ctx, token string, production bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(SessionDuration),
		MaxAge:   int(SessionDuration.Seconds()),
		HTTPOnly: true,
		Secure:   production,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// SessionToken reads the session token from the request cookie.
// Returns the empty string when the cookie is absent.
func SessionToken(c *fiber.Ctx) string {
	return c.Cookies(SessionCookieName)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *fiber.Ctx, production bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   production,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
