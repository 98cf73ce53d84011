package repository

import (
	"context"
	"errors"

	"postmarket/internal/models"

	"gorm.io/gorm"
)

// MessageBox selects which side of a user's conversations to list.
type MessageBox string

const (
	BoxInbox MessageBox = "inbox"
	BoxSent  MessageBox = "sent"
)

// MessageFilter narrows message listings.
type MessageFilter struct {
	UserID uint
	Box    MessageBox
	Status models.MessageStatus
	Limit  int
	Offset int
}

// MessageRepository defines persistence operations for messages and replies.
type MessageRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	List(ctx context.Context, filter MessageFilter) ([]models.Message, int64, error)
	Create(ctx context.Context, message *models.Message) error
	UpdateStatus(ctx context.Context, id uint, status models.MessageStatus) error
	AddReply(ctx context.Context, reply *models.MessageReply) error
	Delete(ctx context.Context, id uint) error
	CountUnread(ctx context.Context, userID uint) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &message, nil
}

func (r *messageRepository) List(ctx context.Context, filter MessageFilter) ([]models.Message, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Message{})

	switch filter.Box {
	case BoxSent:
		query = query.Where("sender_id = ?", filter.UserID)
	default:
		query = query.Where("receiver_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var messages []models.Message
	if err := query.
		Order("created_at DESC").
		Limit(clampLimit(filter.Limit)).
		Offset(maxInt(filter.Offset, 0)).
		Find(&messages).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return messages, total, nil
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) UpdateStatus(ctx context.Context, id uint, status models.MessageStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Message", id)
	}
	return nil
}

func (r *messageRepository) AddReply(ctx context.Context, reply *models.MessageReply) error {
	if err := r.db.WithContext(ctx).Create(reply).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Message{}, id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Message", id)
	}
	return nil
}

func (r *messageRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ? AND status = ?", userID, models.MessageUnread).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
