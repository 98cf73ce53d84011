package server

import (
	"postmarket/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendPhoneCode handles POST /api/phone/send-code. It delivers a one-time
// code to the phone number already saved on the profile.
func (s *Server) SendPhoneCode(c *fiber.Ctx) error {
	user := currentUser(c)
	if user.Phone == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Add a phone number to your profile first"))
	}
	if user.PhoneVerified {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Phone number is already verified"))
	}

	if err := s.sms.SendCode(c.Context(), user.Phone); err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Verification code sent"})
}

// VerifyPhoneCode handles POST /api/phone/verify. A correct code is
// single-use and marks the profile's phone number as verified.
func (s *Server) VerifyPhoneCode(c *fiber.Ctx) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Code == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Verification code is required"))
	}

	user := currentUser(c)
	if user.Phone == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No phone number on the profile"))
	}

	if err := s.sms.CheckCode(c.Context(), user.Phone, req.Code); err != nil {
		return models.RespondError(c, err)
	}

	updated, err := s.userService.MarkPhoneVerified(c.Context(), user.ID)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(updated)
}
