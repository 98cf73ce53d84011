package models

import (
	"time"
)

// MessageStatus represents the read/reply state of a message.
type MessageStatus string

const (
	// MessageUnread is the initial state of a delivered message.
	MessageUnread MessageStatus = "unread"
	// MessageRead means the recipient has opened the message.
	MessageRead MessageStatus = "read"
	// MessageReplied means at least one reply has been appended.
	MessageReplied MessageStatus = "replied"
)

// Message is a direct message between two users. Replies are stored as an
// ordered sequence of child rows rather than mutating the original content.
type Message struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	SenderID   uint           `gorm:"not null;index" json:"sender_id"`
	Sender     *User          `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	ReceiverID uint           `gorm:"not null;index" json:"receiver_id"`
	Receiver   *User          `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	Subject    string         `json:"subject"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	Status     MessageStatus  `gorm:"type:varchar(20);default:'unread';index" json:"status"`
	Replies    []MessageReply `gorm:"foreignKey:MessageID" json:"replies,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// MessageReply is a single entry in a message's reply sequence.
type MessageReply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MessageID uint      `gorm:"not null;index" json:"message_id"`
	AuthorID  uint      `gorm:"not null" json:"author_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
