package service

import (
	"context"
	"time"

	"postmarket/internal/middleware"
	"postmarket/internal/models"
	"postmarket/internal/notifications"
	"postmarket/internal/repository"
	"postmarket/internal/validation"
	"postmarket/internal/vendors"

	"github.com/google/uuid"
)

// ScreenshotCapturer captures a site screenshot and returns its stored path.
type ScreenshotCapturer interface {
	Capture(ctx context.Context, domain string) (string, error)
}

// SEOLookup fetches the SEO metrics snapshot for a domain.
type SEOLookup interface {
	Lookup(ctx context.Context, domain string) (*vendors.SEOMetrics, error)
}

// SiteProber checks a domain for its ownership proof file.
type SiteProber interface {
	Probe(ctx context.Context, domain, expectedToken string) error
}

// EventPublisher delivers asynchronous user events.
type EventPublisher interface {
	PublishUser(ctx context.Context, userID uint, event notifications.Event) error
}

// ListingService manages marketplace listings and their vendor-backed
// enrichment (screenshots, SEO metrics, ownership verification).
type ListingService struct {
	listingRepo  repository.ListingRepository
	categoryRepo repository.CategoryRepository
	screenshots  ScreenshotCapturer
	seo          SEOLookup
	prober       SiteProber
	publisher    EventPublisher
}

// CreateListingInput carries the fields of a listing submission.
type CreateListingInput struct {
	UserID      uint
	CategoryID  uint
	Domain      string
	Title       string
	Description string
	PriceCents  int64
}

// UpdateListingInput carries the editable listing fields. Nil pointers are
// left unchanged.
type UpdateListingInput struct {
	CategoryID  *uint
	Title       *string
	Description *string
	PriceCents  *int64
}

// NewListingService returns a new ListingService.
func NewListingService(
	listingRepo repository.ListingRepository,
	categoryRepo repository.CategoryRepository,
	screenshots ScreenshotCapturer,
	seo SEOLookup,
	prober SiteProber,
	publisher EventPublisher,
) *ListingService {
	return &ListingService{
		listingRepo:  listingRepo,
		categoryRepo: categoryRepo,
		screenshots:  screenshots,
		seo:          seo,
		prober:       prober,
		publisher:    publisher,
	}
}

// CreateListing submits a new listing. It starts in the pending state with a
// fresh verification token; visibility requires admin approval.
func (s *ListingService) CreateListing(ctx context.Context, in CreateListingInput) (*models.Listing, error) {
	if err := validation.ValidateDomain(in.Domain); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.PriceCents < 0 {
		return nil, models.NewValidationError("Price cannot be negative")
	}

	if _, err := s.categoryRepo.GetByID(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	if existing, err := s.listingRepo.GetByDomain(ctx, in.Domain); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewDuplicateError("A listing for this domain already exists")
	}

	listing := &models.Listing{
		UserID:            in.UserID,
		CategoryID:        in.CategoryID,
		Domain:            in.Domain,
		Title:             in.Title,
		Description:       in.Description,
		PriceCents:        in.PriceCents,
		Status:            models.ListingPending,
		VerificationToken: uuid.NewString(),
	}
	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Browse lists publicly visible listings. The active-status filter is
// forced regardless of what the caller asked for.
func (s *ListingService) Browse(ctx context.Context, filter repository.ListingFilter) ([]models.Listing, int64, error) {
	filter.Status = models.ListingActive
	return s.listingRepo.List(ctx, filter)
}

// ListAll lists listings without forcing a status. Admin console and
// owner dashboards use it.
func (s *ListingService) ListAll(ctx context.Context, filter repository.ListingFilter) ([]models.Listing, int64, error) {
	return s.listingRepo.List(ctx, filter)
}

func (s *ListingService) GetListing(ctx context.Context, id uint) (*models.Listing, error) {
	return s.listingRepo.GetByID(ctx, id)
}

// UpdateListing applies a partial update. Only the owner or an admin may
// edit; edits to an active listing send it back to pending review.
func (s *ListingService) UpdateListing(ctx context.Context, id, actorID uint, isAdmin bool, in UpdateListingInput) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.UserID != actorID && !isAdmin {
		return nil, models.NewForbiddenError("You do not own this listing")
	}

	if in.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		listing.CategoryID = *in.CategoryID
	}
	if in.Title != nil {
		if *in.Title == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		listing.Title = *in.Title
	}
	if in.Description != nil {
		listing.Description = *in.Description
	}
	if in.PriceCents != nil {
		if *in.PriceCents < 0 {
			return nil, models.NewValidationError("Price cannot be negative")
		}
		listing.PriceCents = *in.PriceCents
	}

	if !isAdmin && listing.Status == models.ListingActive {
		listing.Status = models.ListingPending
	}

	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// DeleteListing removes a listing. Only the owner or an admin may delete.
func (s *ListingService) DeleteListing(ctx context.Context, id, actorID uint, isAdmin bool) error {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.UserID != actorID && !isAdmin {
		return models.NewForbiddenError("You do not own this listing")
	}
	return s.listingRepo.Delete(ctx, id)
}

// SetStatus moves a listing through moderation. Admin only. The owner is
// notified asynchronously; a failed notification never rolls back the change.
func (s *ListingService) SetStatus(ctx context.Context, id uint, status models.ListingStatus) (*models.Listing, error) {
	if status != models.ListingPending && status != models.ListingActive && status != models.ListingRejected {
		return nil, models.NewValidationError("Invalid listing status")
	}

	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	listing.Status = status
	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}

	s.notifyAsync(listing.UserID, notifications.Event{
		Type: notifications.EventListingStatusChanged,
		Payload: map[string]any{
			"listing_id": listing.ID,
			"status":     string(status),
		},
	})
	return listing, nil
}

// VerificationToken returns the ownership token the owner must publish.
func (s *ListingService) VerificationToken(ctx context.Context, id, actorID uint) (string, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if listing.UserID != actorID {
		return "", models.NewForbiddenError("You do not own this listing")
	}
	return listing.VerificationToken, nil
}

// VerifySite probes the listed domain for the ownership proof file and
// records a successful match.
func (s *ListingService) VerifySite(ctx context.Context, id, actorID uint) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.UserID != actorID {
		return nil, models.NewForbiddenError("You do not own this listing")
	}
	if listing.Verified {
		return listing, nil
	}

	if err := s.prober.Probe(ctx, listing.Domain, listing.VerificationToken); err != nil {
		return nil, err
	}

	listing.Verified = true
	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// RefreshMetrics pulls a fresh SEO snapshot from the vendor onto the listing.
func (s *ListingService) RefreshMetrics(ctx context.Context, id, actorID uint, isAdmin bool) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.UserID != actorID && !isAdmin {
		return nil, models.NewForbiddenError("You do not own this listing")
	}

	metrics, err := s.seo.Lookup(ctx, listing.Domain)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	listing.DomainAuthority = metrics.DomainAuthority
	listing.MonthlyTraffic = metrics.MonthlyTraffic
	listing.Backlinks = metrics.Backlinks
	listing.MetricsUpdatedAt = &now

	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// CaptureScreenshot asks the screenshot vendor for a fresh capture and
// stores the resulting thumbnail path on the listing.
func (s *ListingService) CaptureScreenshot(ctx context.Context, id, actorID uint, isAdmin bool) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.UserID != actorID && !isAdmin {
		return nil, models.NewForbiddenError("You do not own this listing")
	}

	path, err := s.screenshots.Capture(ctx, listing.Domain)
	if err != nil {
		return nil, err
	}

	listing.ScreenshotURL = path
	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// notifyAsync publishes an event without blocking or failing the caller.
func (s *ListingService) notifyAsync(userID uint, event notifications.Event) {
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
