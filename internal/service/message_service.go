package service

import (
	"context"
	"time"

	"postmarket/internal/middleware"
	"postmarket/internal/models"
	"postmarket/internal/notifications"
	"postmarket/internal/repository"
)

// MessageService handles buyer/seller messaging.
type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	publisher   EventPublisher
}

// SendMessageInput carries the fields of a new message.
type SendMessageInput struct {
	SenderID   uint
	ReceiverID uint
	Subject    string
	Content    string
}

// NewMessageService returns a new MessageService.
func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	publisher EventPublisher,
) *MessageService {
	return &MessageService{messageRepo: messageRepo, userRepo: userRepo, publisher: publisher}
}

// Send delivers a message to another user and notifies them asynchronously.
func (s *MessageService) Send(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Message content is required")
	}
	if in.SenderID == in.ReceiverID {
		return nil, models.NewValidationError("Cannot send a message to yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, in.ReceiverID); err != nil {
		return nil, err
	}

	message := &models.Message{
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		Subject:    in.Subject,
		Content:    in.Content,
		Status:     models.MessageUnread,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	s.notifyAsync(message.ReceiverID, notifications.Event{
		Type: notifications.EventMessageReceived,
		Payload: map[string]any{
			"message_id": message.ID,
			"sender_id":  message.SenderID,
		},
	})
	return message, nil
}

// List returns one side of a user's conversations.
func (s *MessageService) List(ctx context.Context, filter repository.MessageFilter) ([]models.Message, int64, error) {
	return s.messageRepo.List(ctx, filter)
}

// Get loads a message with its replies. Only the two participants may read it.
func (s *MessageService) Get(ctx context.Context, id, actorID uint) (*models.Message, error) {
	message, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if message.SenderID != actorID && message.ReceiverID != actorID {
		return nil, models.NewForbiddenError("You are not a participant of this conversation")
	}
	return message, nil
}

// MarkRead marks a message as read. The operation is idempotent: a message
// that is already read or replied stays in its current state.
func (s *MessageService) MarkRead(ctx context.Context, id, actorID uint) (*models.Message, error) {
	message, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if message.ReceiverID != actorID {
		return nil, models.NewForbiddenError("Only the recipient can mark a message read")
	}

	if message.Status != models.MessageUnread {
		return message, nil
	}

	if err := s.messageRepo.UpdateStatus(ctx, id, models.MessageRead); err != nil {
		return nil, err
	}
	message.Status = models.MessageRead
	return message, nil
}

// Reply appends exactly one reply to the conversation, moves the message to
// the replied state and notifies the other participant. The notification is
// best-effort and never rolls back the committed reply.
func (s *MessageService) Reply(ctx context.Context, id, actorID uint, content string) (*models.Message, error) {
	if content == "" {
		return nil, models.NewValidationError("Reply content is required")
	}

	message, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if message.SenderID != actorID && message.ReceiverID != actorID {
		return nil, models.NewForbiddenError("You are not a participant of this conversation")
	}

	reply := &models.MessageReply{
		MessageID: message.ID,
		AuthorID:  actorID,
		Content:   content,
	}
	if err := s.messageRepo.AddReply(ctx, reply); err != nil {
		return nil, err
	}
	if message.Status != models.MessageReplied {
		if err := s.messageRepo.UpdateStatus(ctx, id, models.MessageReplied); err != nil {
			return nil, err
		}
		message.Status = models.MessageReplied
	}
	message.Replies = append(message.Replies, *reply)

	counterpart := message.SenderID
	if actorID == message.SenderID {
		counterpart = message.ReceiverID
	}
	s.notifyAsync(counterpart, notifications.Event{
		Type: notifications.EventMessageReplied,
		Payload: map[string]any{
			"message_id": message.ID,
			"author_id":  actorID,
		},
	})
	return message, nil
}

// Delete removes a message. Either participant may delete their copy; the
// model keeps a single row so deletion removes the conversation for both.
func (s *MessageService) Delete(ctx context.Context, id, actorID uint) error {
	message, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if message.SenderID != actorID && message.ReceiverID != actorID {
		return models.NewForbiddenError("You are not a participant of this conversation")
	}
	return s.messageRepo.Delete(ctx, id)
}

// UnreadCount reports how many unread messages a user has.
func (s *MessageService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.messageRepo.CountUnread(ctx, userID)
}

func (s *MessageService) notifyAsync(userID uint, event notifications.Event) {
	if s.publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.publisher.PublishUser(ctx, userID, event); err != nil {
			middleware.Logger.Warn("notification publish failed",
				"user_id", userID, "event", event.Type, "error", err)
		}
	}()
}
