package service

import (
	"context"
	"testing"
	"time"

	"postmarket/internal/models"
	"postmarket/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageService_Send(t *testing.T) {
	t.Parallel()

	t.Run("delivers and notifies the receiver", func(t *testing.T) {
		t.Parallel()
		msgRepo := noopMessageRepo()
		msgRepo.createFn = func(_ context.Context, m *models.Message) error {
			m.ID = 10
			return nil
		}
		pub := newPublisherStub()
		svc := NewMessageService(msgRepo, noopUserRepo(), pub)

		message, err := svc.Send(context.Background(), SendMessageInput{
			SenderID: 1, ReceiverID: 2, Subject: "Guest post", Content: "Interested?",
		})
		require.NoError(t, err)
		assert.Equal(t, models.MessageUnread, message.Status)

		select {
		case evt := <-pub.events:
			assert.Equal(t, uint(2), evt.UserID)
			assert.Equal(t, notifications.EventMessageReceived, evt.Event.Type)
		case <-time.After(time.Second):
			t.Fatal("expected a notification for the receiver")
		}
	})

	t.Run("rejects empty content", func(t *testing.T) {
		t.Parallel()
		svc := NewMessageService(noopMessageRepo(), noopUserRepo(), nil)
		_, err := svc.Send(context.Background(), SendMessageInput{SenderID: 1, ReceiverID: 2})
		assertValidationError(t, err)
	})

	t.Run("rejects self-messaging", func(t *testing.T) {
		t.Parallel()
		svc := NewMessageService(noopMessageRepo(), noopUserRepo(), nil)
		_, err := svc.Send(context.Background(), SendMessageInput{SenderID: 1, ReceiverID: 1, Content: "hi"})
		assertValidationError(t, err)
	})

	t.Run("unknown receiver propagates not found", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		}
		svc := NewMessageService(noopMessageRepo(), userRepo, nil)
		_, err := svc.Send(context.Background(), SendMessageInput{SenderID: 1, ReceiverID: 99, Content: "hi"})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})
}

func TestMessageService_MarkRead(t *testing.T) {
	t.Parallel()

	t.Run("unread becomes read", func(t *testing.T) {
		t.Parallel()
		msgRepo := noopMessageRepo()
		msgRepo.getByIDFn = func(_ context.Context, id uint) (*models.Message, error) {
			return &models.Message{ID: id, SenderID: 1, ReceiverID: 2, Status: models.MessageUnread}, nil
		}
		var statusWritten *models.MessageStatus
		msgRepo.updateStatusFn = func(_ context.Context, _ uint, status models.MessageStatus) error {
			statusWritten = &status
			return nil
		}
		svc := NewMessageService(msgRepo, noopUserRepo(), nil)

		message, err := svc.MarkRead(context.Background(), 10, 2)
		require.NoError(t, err)
		assert.Equal(t, models.MessageRead, message.Status)
		require.NotNil(t, statusWritten)
		assert.Equal(t, models.MessageRead, *statusWritten)
	})

	t.Run("read and replied are terminal", func(t *testing.T) {
		t.Parallel()
		for _, terminal := range []models.MessageStatus{models.MessageRead, models.MessageReplied} {
			msgRepo := noopMessageRepo()
			msgRepo.getByIDFn = func(_ context.Context, id uint) (*models.Message, error) {
				return &models.Message{ID: id, SenderID: 1, ReceiverID: 2, Status: terminal}, nil
			}
			msgRepo.updateStatusFn = func(context.Context, uint, models.MessageStatus) error {
				t.Fatalf("status %q must not be rewritten", terminal)
				return nil
			}
			svc := NewMessageService(msgRepo, noopUserRepo(), nil)

			message, err := svc.MarkRead(context.Background(), 10, 2)
			require.NoError(t, err)
			assert.Equal(t, terminal, message.Status)
		}
	})

	t.Run("only the recipient may mark read", func(t *testing.T) {
		t.Parallel()
		msgRepo := noopMessageRepo()
		msgRepo.getByIDFn = func(_ context.Context, id uint) (*models.Message, error) {
			return &models.Message{ID: id, SenderID: 1, ReceiverID: 2, Status: models.MessageUnread}, nil
		}
		svc := NewMessageService(msgRepo, noopUserRepo(), nil)

		_, err := svc.MarkRead(context.Background(), 10, 1)
		assertForbiddenError(t, err)
	})
}

func TestMessageService_Reply(t *testing.T) {
	t.Parallel()

	t.Run("appends one reply and notifies the counterpart", func(t *testing.T) {
		t.Parallel()
		msgRepo := noopMessageRepo()
		msgRepo.getByIDFn = func(_ context.Context, id uint) (*models.Message, error) {
			return &models.Message{ID: id, SenderID: 1, ReceiverID: 2, Status: models.MessageRead}, nil
		}
		var replies []*models.MessageReply
		msgRepo.addReplyFn = func(_ context.Context, r *models.MessageReply) error {
			r.ID = uint(len(replies) + 1)
			replies = append(replies, r)
			return nil
		}
		pub := newPublisherStub()
		svc := NewMessageService(msgRepo, noopUserRepo(), pub)

		message, err := svc.Reply(context.Background(), 10, 2, "Happy to discuss")
		require.NoError(t, err)
		assert.Equal(t, models.MessageReplied, message.Status)
		require.Len(t, replies, 1)
		assert.Equal(t, uint(2), replies[0].AuthorID)
		require.Len(t, message.Replies, 1)

		select {
		case evt := <-pub.events:
			assert.Equal(t, uint(1), evt.UserID, "the sender is the counterpart of the replying receiver")
			assert.Equal(t, notifications.EventMessageReplied, evt.Event.Type)
		case <-time.After(time.Second):
			t.Fatal("expected a notification for the counterpart")
		}
	})

	t.Run("failed notification does not fail the reply", func(t *testing.T) {
		t.Parallel()
		msgRepo := noopMessageRepo()
		msgRepo.getByIDFn = func(_ context.Context, id uint) (*models.Message, error) {
			return &models.Message{ID: id, SenderID: 1, ReceiverID: 2, Status: models.MessageUnread}, nil
		}
		svc := NewMessageService(msgRepo, noopUserRepo(), failingPublisher{})

		message, err := svc.Reply(context.Background(), 10, 1, "Still interested")
		require.NoError(t, err)
		assert.Equal(t, models.MessageReplied, message.Status)
	})

	t.Run("second reply keeps replied status without rewriting it", func(t *testing.T) {
		t.Parallel()
		msgRepo := noopMessageRepo()
		msgRepo.getByIDFn = func(_ context.Context, id uint) (*models.Message, error) {
			return &models.Message{ID: id, SenderID: 1, ReceiverID: 2, Status: models.MessageReplied}, nil
		}
		msgRepo.updateStatusFn = func(context.Context, uint, models.MessageStatus) error {
			t.Fatal("replied status must not be rewritten")
			return nil
		}
		svc := NewMessageService(msgRepo, noopUserRepo(), nil)

		message, err := svc.Reply(context.Background(), 10, 1, "One more thing")
		require.NoError(t, err)
		assert.Equal(t, models.MessageReplied, message.Status)
	})

	t.Run("non-participant is forbidden", func(t *testing.T) {
		t.Parallel()
		msgRepo := noopMessageRepo()
		msgRepo.getByIDFn = func(_ context.Context, id uint) (*models.Message, error) {
			return &models.Message{ID: id, SenderID: 1, ReceiverID: 2}, nil
		}
		svc := NewMessageService(msgRepo, noopUserRepo(), nil)

		_, err := svc.Reply(context.Background(), 10, 3, "Let me in")
		assertForbiddenError(t, err)
	})
}

type failingPublisher struct{}

func (failingPublisher) PublishUser(context.Context, uint, notifications.Event) error {
	return assert.AnError
}

func TestMessageService_Delete(t *testing.T) {
	t.Parallel()

	msgRepo := noopMessageRepo()
	msgRepo.getByIDFn = func(_ context.Context, id uint) (*models.Message, error) {
		return &models.Message{ID: id, SenderID: 1, ReceiverID: 2}, nil
	}
	svc := NewMessageService(msgRepo, noopUserRepo(), nil)

	assert.NoError(t, svc.Delete(context.Background(), 10, 1))
	assert.NoError(t, svc.Delete(context.Background(), 10, 2))
	assertForbiddenError(t, svc.Delete(context.Background(), 10, 3))
}
