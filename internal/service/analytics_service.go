package service

import (
	"context"

	"postmarket/internal/models"

	"gorm.io/gorm"
)

// AdminOverview aggregates the headline numbers for the admin dashboard.
type AdminOverview struct {
	TotalUsers      int64 `json:"total_users"`
	SuspendedUsers  int64 `json:"suspended_users"`
	TotalListings   int64 `json:"total_listings"`
	ActiveListings  int64 `json:"active_listings"`
	PendingListings int64 `json:"pending_listings"`
	OpenReports     int64 `json:"open_reports"`
	TotalMessages   int64 `json:"total_messages"`
}

// AnalyticsService computes aggregate counts for the admin dashboard.
// It queries the database directly; the numbers are informational and do
// not need to be transactionally consistent with each other.
type AnalyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService returns a new AnalyticsService.
func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// Overview returns the admin dashboard counters.
func (s *AnalyticsService) Overview(ctx context.Context) (*AdminOverview, error) {
	overview := &AdminOverview{}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&overview.TotalUsers, s.db.WithContext(ctx).Model(&models.User{})},
		{&overview.SuspendedUsers, s.db.WithContext(ctx).Model(&models.User{}).Where("status = ?", models.StatusSuspended)},
		{&overview.TotalListings, s.db.WithContext(ctx).Model(&models.Listing{})},
		{&overview.ActiveListings, s.db.WithContext(ctx).Model(&models.Listing{}).Where("status = ?", models.ListingActive)},
		{&overview.PendingListings, s.db.WithContext(ctx).Model(&models.Listing{}).Where("status = ?", models.ListingPending)},
		{&overview.OpenReports, s.db.WithContext(ctx).Model(&models.Report{}).Where("status = ?", models.ReportOpen)},
		{&overview.TotalMessages, s.db.WithContext(ctx).Model(&models.Message{})},
	}

	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
	}
	return overview, nil
}
