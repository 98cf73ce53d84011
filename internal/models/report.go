package models

import (
	"time"
)

// ReportStatus represents the handling state of an abuse report.
type ReportStatus string

const (
	// ReportOpen means the report awaits admin review.
	ReportOpen ReportStatus = "open"
	// ReportResolved means an admin has handled the report.
	ReportResolved ReportStatus = "resolved"
)

// Report is an abuse/content report filed by a user against a listing or
// another user. Exactly one of ListingID / ReportedUserID is expected.
type Report struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	ReporterID     uint         `gorm:"not null;index" json:"reporter_id"`
	Reporter       *User        `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	ListingID      *uint        `gorm:"index" json:"listing_id,omitempty"`
	ReportedUserID *uint        `gorm:"index" json:"reported_user_id,omitempty"`
	Reason         string       `gorm:"type:text;not null" json:"reason"`
	Status         ReportStatus `gorm:"type:varchar(20);default:'open';index" json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
