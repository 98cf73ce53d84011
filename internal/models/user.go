// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole represents the privilege level of a user account.
type UserRole string

const (
	// RoleUser is the default role for self-registered accounts.
	RoleUser UserRole = "user"
	// RoleAdmin grants access to the admin console routes.
	RoleAdmin UserRole = "admin"
)

// UserStatus represents the lifecycle state of a user account.
type UserStatus string

const (
	// StatusActive allows the account to authenticate and use the marketplace.
	StatusActive UserStatus = "active"
	// StatusSuspended blocks the account without deleting its data.
	StatusSuspended UserStatus = "suspended"
)

// User represents an account in the marketplace.
// The password hash is never serialized.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Username      string         `gorm:"unique;not null" json:"username"`
	Email         string         `gorm:"unique;not null" json:"email"`
	Phone         string         `json:"phone"`
	PhoneVerified bool           `gorm:"default:false" json:"phone_verified"`
	Password      string         `gorm:"not null" json:"-"`
	Role          UserRole       `gorm:"type:varchar(20);default:'user';index" json:"role"`
	Status        UserStatus     `gorm:"type:varchar(20);default:'active';index" json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	Listings      []Listing      `gorm:"foreignKey:UserID" json:"listings,omitempty"`
}

// PublicUser is the profile view exposed to other users. Contact details
// stay private.
type PublicUser struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// PublicProfile strips the fields other users may not see.
func (u *User) PublicProfile() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsSuspended reports whether the account is suspended.
func (u *User) IsSuspended() bool {
	return u.Status == StatusSuspended
}
