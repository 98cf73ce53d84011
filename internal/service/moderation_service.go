package service

import (
	"context"
	"time"

	"postmarket/internal/middleware"
	"postmarket/internal/models"
	"postmarket/internal/notifications"
	"postmarket/internal/repository"
)

// ModerationService handles abuse reports and their admin workflow.
type ModerationService struct {
	reportRepo  repository.ReportRepository
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	publisher   EventPublisher
}

// FileReportInput carries the fields of a new report. Exactly one of
// ListingID / ReportedUserID must be set.
type FileReportInput struct {
	ReporterID     uint
	ListingID      *uint
	ReportedUserID *uint
	Reason         string
}

// NewModerationService returns a new ModerationService.
func NewModerationService(
	reportRepo repository.ReportRepository,
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	publisher EventPublisher,
) *ModerationService {
	return &ModerationService{
		reportRepo:  reportRepo,
		listingRepo: listingRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// FileReport records a new abuse report after checking the target exists.
func (s *ModerationService) FileReport(ctx context.Context, in FileReportInput) (*models.Report, error) {
	if in.Reason == "" {
		return nil, models.NewValidationError("Report reason is required")
	}
	if (in.ListingID == nil) == (in.ReportedUserID == nil) {
		return nil, models.NewValidationError("Report exactly one target: a listing or a user")
	}

	if in.ListingID != nil {
		if _, err := s.listingRepo.GetByID(ctx, *in.ListingID); err != nil {
			return nil, err
		}
	}
	if in.ReportedUserID != nil {
		if *in.ReportedUserID == in.ReporterID {
			return nil, models.NewValidationError("Cannot report yourself")
		}
		if _, err := s.userRepo.GetByID(ctx, *in.ReportedUserID); err != nil {
			return nil, err
		}
	}

	report := &models.Report{
		ReporterID:     in.ReporterID,
		ListingID:      in.ListingID,
		ReportedUserID: in.ReportedUserID,
		Reason:         in.Reason,
		Status:         models.ReportOpen,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports returns the moderation queue. Admin only.
func (s *ModerationService) ListReports(ctx context.Context, filter repository.ReportFilter) ([]models.Report, int64, error) {
	return s.reportRepo.List(ctx, filter)
}

func (s *ModerationService) GetReport(ctx context.Context, id uint) (*models.Report, error) {
	return s.reportRepo.GetByID(ctx, id)
}

// ResolveReport closes a report. Resolving an already resolved report is a
// no-op. The reporter is notified asynchronously.
func (s *ModerationService) ResolveReport(ctx context.Context, id uint) (*models.Report, error) {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.Status == models.ReportResolved {
		return report, nil
	}

	report.Status = models.ReportResolved
	if err := s.reportRepo.Update(ctx, report); err != nil {
		return nil, err
	}

	s.notifyAsync(report.ReporterID, notifications.Event{
		Type: notifications.EventReportResolved,
		Payload: map[string]any{
			"report_id": report.ID,
		},
	})
	return report, nil
}

// DeleteReport removes a report from the queue. Admin only.
func (s *ModerationService) DeleteReport(ctx context.Context, id uint) error {
	return s.reportRepo.Delete(ctx, id)
}

func (s *ModerationService) notifyAsync(userID uint, event notifications.Event) {
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
