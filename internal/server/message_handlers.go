package server

import (
	"postmarket/internal/models"
	"postmarket/internal/repository"
	"postmarket/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SendMessage handles POST /api/messages
func (s *Server) SendMessage(c *fiber.Ctx) error {
	var req struct {
		ReceiverID uint   `json:"receiver_id"`
		Subject    string `json:"subject"`
		Content    string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.messageService.Send(c.Context(), service.SendMessageInput{
		SenderID:   currentUserID(c),
		ReceiverID: req.ReceiverID,
		Subject:    req.Subject,
		Content:    req.Content,
	})
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetMessages handles GET /api/messages?box=inbox|sent
func (s *Server) GetMessages(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	filter := repository.MessageFilter{
		UserID: currentUserID(c),
		Box:    repository.MessageBox(c.Query("box", string(repository.BoxInbox))),
		Status: models.MessageStatus(c.Query("status")),
		Limit:  page.Limit,
		Offset: page.Offset,
	}

	messages, total, err := s.messageService.List(c.Context(), filter)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"messages": messages,
		"total":    total,
	})
}

// GetUnreadCount handles GET /api/messages/unread-count
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	count, err := s.messageService.UnreadCount(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"unread": count})
}

// GetMessage handles GET /api/messages/:id
func (s *Server) GetMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	message, err := s.messageService.Get(c.Context(), id, currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(message)
}

// MarkMessageRead handles POST /api/messages/:id/read. Marking an already
// read or replied message is a harmless no-op.
func (s *Server) MarkMessageRead(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	message, err := s.messageService.MarkRead(c.Context(), id, currentUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(message)
}

// ReplyMessage handles POST /api/messages/:id/replies
func (s *Server) ReplyMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.messageService.Reply(c.Context(), id, currentUserID(c), req.Content)
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// DeleteMessage handles DELETE /api/messages/:id
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if err := s.messageService.Delete(c.Context(), id, currentUserID(c)); err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Message deleted"})
}
