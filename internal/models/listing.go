package models

import (
	"time"

	"gorm.io/gorm"
)

// ListingStatus represents the moderation state of a marketplace listing.
type ListingStatus string

const (
	// ListingPending is the state of a freshly created listing awaiting review.
	ListingPending ListingStatus = "pending"
	// ListingActive means the listing is visible in the public marketplace.
	ListingActive ListingStatus = "active"
	// ListingRejected means moderation declined the listing.
	ListingRejected ListingStatus = "rejected"
)

// Listing represents a website offered for guest posts.
type Listing struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	UserID      uint          `gorm:"not null;index" json:"user_id"`
	User        User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CategoryID  uint          `gorm:"not null;index" json:"category_id"`
	Category    *Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Domain      string        `gorm:"not null;index" json:"domain"`
	Title       string        `gorm:"not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	PriceCents  int64         `gorm:"not null;default:0" json:"price_cents"`
	Status      ListingStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	// SEO metrics snapshot, refreshed from the metrics vendor.
	DomainAuthority  int        `json:"domain_authority"`
	MonthlyTraffic   int64      `json:"monthly_traffic"`
	Backlinks        int64      `json:"backlinks"`
	MetricsUpdatedAt *time.Time `json:"metrics_updated_at,omitempty"`

	ScreenshotURL     string `json:"screenshot_url"`
	VerificationToken string `json:"-"`
	Verified          bool   `gorm:"default:false" json:"verified"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
