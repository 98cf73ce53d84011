package service

import (
	"context"
	"testing"
	"time"

	"postmarket/internal/models"
	"postmarket/internal/notifications"
	"postmarket/internal/repository"
	"postmarket/internal/vendors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newListingService(listingRepo *listingRepoStub, categoryRepo *categoryRepoStub, pub EventPublisher) *ListingService {
	return NewListingService(listingRepo, categoryRepo,
		&screenshotStub{captureFn: func(context.Context, string) (string, error) { return "screenshots/x.webp", nil }},
		&seoStub{lookupFn: func(context.Context, string) (*vendors.SEOMetrics, error) {
			return &vendors.SEOMetrics{DomainAuthority: 40, MonthlyTraffic: 5000, Backlinks: 100}, nil
		}},
		&proberStub{probeFn: func(context.Context, string, string) error { return nil }},
		pub,
	)
}

func TestListingService_CreateListing(t *testing.T) {
	t.Parallel()

	t.Run("creates pending listing with verification token", func(t *testing.T) {
		t.Parallel()
		listingRepo := noopListingRepo()
		var created *models.Listing
		listingRepo.createFn = func(_ context.Context, l *models.Listing) error {
			l.ID = 1
			created = l
			return nil
		}
		svc := newListingService(listingRepo, noopCategoryRepo(), nil)

		listing, err := svc.CreateListing(context.Background(), CreateListingInput{
			UserID: 1, CategoryID: 2, Domain: "blog.example.com", Title: "Tech blog", PriceCents: 15000,
		})
		require.NoError(t, err)
		assert.Equal(t, models.ListingPending, listing.Status)
		assert.False(t, listing.Verified)
		require.NotNil(t, created)
		assert.NotEmpty(t, created.VerificationToken)
	})

	t.Run("rejects bad domain", func(t *testing.T) {
		t.Parallel()
		svc := newListingService(noopListingRepo(), noopCategoryRepo(), nil)
		_, err := svc.CreateListing(context.Background(), CreateListingInput{
			UserID: 1, CategoryID: 2, Domain: "https://blog.example.com", Title: "Tech blog",
		})
		assertValidationError(t, err)
	})

	t.Run("rejects duplicate domain", func(t *testing.T) {
		t.Parallel()
		listingRepo := noopListingRepo()
		listingRepo.getByDomainFn = func(_ context.Context, domain string) (*models.Listing, error) {
			return &models.Listing{ID: 5, Domain: domain}, nil
		}
		svc := newListingService(listingRepo, noopCategoryRepo(), nil)
		_, err := svc.CreateListing(context.Background(), CreateListingInput{
			UserID: 1, CategoryID: 2, Domain: "blog.example.com", Title: "Tech blog",
		})
		assertDuplicateError(t, err)
	})

	t.Run("unknown category propagates not found", func(t *testing.T) {
		t.Parallel()
		categoryRepo := noopCategoryRepo()
		categoryRepo.getByIDFn = func(_ context.Context, id uint) (*models.Category, error) {
			return nil, models.NewNotFoundError("Category", id)
		}
		svc := newListingService(noopListingRepo(), categoryRepo, nil)
		_, err := svc.CreateListing(context.Background(), CreateListingInput{
			UserID: 1, CategoryID: 99, Domain: "blog.example.com", Title: "Tech blog",
		})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})
}

func TestListingService_Browse_ForcesActiveStatus(t *testing.T) {
	t.Parallel()

	listingRepo := noopListingRepo()
	var captured repository.ListingFilter
	listingRepo.listFn = func(_ context.Context, f repository.ListingFilter) ([]models.Listing, int64, error) {
		captured = f
		return nil, 0, nil
	}
	svc := newListingService(listingRepo, noopCategoryRepo(), nil)

	_, _, err := svc.Browse(context.Background(), repository.ListingFilter{Status: models.ListingPending})
	require.NoError(t, err)
	assert.Equal(t, models.ListingActive, captured.Status, "public browse must only see active listings")
}

func TestListingService_UpdateListing(t *testing.T) {
	t.Parallel()

	t.Run("owner edit of active listing returns it to pending", func(t *testing.T) {
		t.Parallel()
		listingRepo := noopListingRepo()
		listingRepo.getByIDFn = func(_ context.Context, id uint) (*models.Listing, error) {
			return &models.Listing{ID: id, UserID: 1, Status: models.ListingActive, Title: "Old"}, nil
		}
		svc := newListingService(listingRepo, noopCategoryRepo(), nil)

		title := "New title"
		listing, err := svc.UpdateListing(context.Background(), 1, 1, false, UpdateListingInput{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "New title", listing.Title)
		assert.Equal(t, models.ListingPending, listing.Status)
	})

	t.Run("admin edit keeps status", func(t *testing.T) {
		t.Parallel()
		listingRepo := noopListingRepo()
		listingRepo.getByIDFn = func(_ context.Context, id uint) (*models.Listing, error) {
			return &models.Listing{ID: id, UserID: 1, Status: models.ListingActive}, nil
		}
		svc := newListingService(listingRepo, noopCategoryRepo(), nil)

		price := int64(20000)
		listing, err := svc.UpdateListing(context.Background(), 1, 99, true, UpdateListingInput{PriceCents: &price})
		require.NoError(t, err)
		assert.Equal(t, models.ListingActive, listing.Status)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		t.Parallel()
		listingRepo := noopListingRepo()
		listingRepo.getByIDFn = func(_ context.Context, id uint) (*models.Listing, error) {
			return &models.Listing{ID: id, UserID: 1}, nil
		}
		svc := newListingService(listingRepo, noopCategoryRepo(), nil)

		title := "Hijack"
		_, err := svc.UpdateListing(context.Background(), 1, 2, false, UpdateListingInput{Title: &title})
		assertForbiddenError(t, err)
	})
}

func TestListingService_SetStatus(t *testing.T) {
	t.Parallel()

	t.Run("approval notifies the owner", func(t *testing.T) {
		t.Parallel()
		listingRepo := noopListingRepo()
		listingRepo.getByIDFn = func(_ context.Context, id uint) (*models.Listing, error) {
			return &models.Listing{ID: id, UserID: 7, Status: models.ListingPending}, nil
		}
		pub := newPublisherStub()
		svc := newListingService(listingRepo, noopCategoryRepo(), pub)

		listing, err := svc.SetStatus(context.Background(), 1, models.ListingActive)
		require.NoError(t, err)
		assert.Equal(t, models.ListingActive, listing.Status)

		select {
		case evt := <-pub.events:
			assert.Equal(t, uint(7), evt.UserID)
			assert.Equal(t, notifications.EventListingStatusChanged, evt.Event.Type)
			assert.Equal(t, "active", evt.Event.Payload["status"])
		case <-time.After(time.Second):
			t.Fatal("expected owner notification")
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		t.Parallel()
		svc := newListingService(noopListingRepo(), noopCategoryRepo(), nil)
		_, err := svc.SetStatus(context.Background(), 1, "archived")
		assertValidationError(t, err)
	})
}

func TestListingService_VerifySite(t *testing.T) {
	t.Parallel()

	t.Run("successful probe marks verified", func(t *testing.T) {
		t.Parallel()
		listingRepo := noopListingRepo()
		listingRepo.getByIDFn = func(_ context.Context, id uint) (*models.Listing, error) {
			return &models.Listing{ID: id, UserID: 1, Domain: "blog.example.com", VerificationToken: "tok"}, nil
		}
		var probedToken string
		svc := NewListingService(listingRepo, noopCategoryRepo(), nil, nil,
			&proberStub{probeFn: func(_ context.Context, _, token string) error {
				probedToken = token
				return nil
			}}, nil)

		listing, err := svc.VerifySite(context.Background(), 1, 1)
		require.NoError(t, err)
		assert.True(t, listing.Verified)
		assert.Equal(t, "tok", probedToken)
	})

	t.Run("already verified is a no-op", func(t *testing.T) {
		t.Parallel()
		listingRepo := noopListingRepo()
		listingRepo.getByIDFn = func(_ context.Context, id uint) (*models.Listing, error) {
			return &models.Listing{ID: id, UserID: 1, Verified: true}, nil
		}
		svc := NewListingService(listingRepo, noopCategoryRepo(), nil, nil,
			&proberStub{probeFn: func(context.Context, string, string) error {
				t.Fatal("verified listing must not be probed again")
				return nil
			}}, nil)

		listing, err := svc.VerifySite(context.Background(), 1, 1)
		require.NoError(t, err)
		assert.True(t, listing.Verified)
	})

	t.Run("failed probe leaves listing unverified", func(t *testing.T) {
		t.Parallel()
		listingRepo := noopListingRepo()
		listingRepo.getByIDFn = func(_ context.Context, id uint) (*models.Listing, error) {
			return &models.Listing{ID: id, UserID: 1, Domain: "blog.example.com"}, nil
		}
		listingRepo.updateFn = func(context.Context, *models.Listing) error {
			t.Fatal("failed probe must not persist anything")
			return nil
		}
		svc := NewListingService(listingRepo, noopCategoryRepo(), nil, nil,
			&proberStub{probeFn: func(context.Context, string, string) error {
				return models.NewValidationError("Verification file not found on the site")
			}}, nil)

		_, err := svc.VerifySite(context.Background(), 1, 1)
		assertValidationError(t, err)
	})
}

func TestListingService_RefreshMetrics(t *testing.T) {
	t.Parallel()

	listingRepo := noopListingRepo()
	listingRepo.getByIDFn = func(_ context.Context, id uint) (*models.Listing, error) {
		return &models.Listing{ID: id, UserID: 1, Domain: "blog.example.com"}, nil
	}
	var saved *models.Listing
	listingRepo.updateFn = func(_ context.Context, l *models.Listing) error {
		saved = l
		return nil
	}
	svc := newListingService(listingRepo, noopCategoryRepo(), nil)

	listing, err := svc.RefreshMetrics(context.Background(), 1, 1, false)
	require.NoError(t, err)
	assert.Equal(t, 40, listing.DomainAuthority)
	assert.Equal(t, int64(5000), listing.MonthlyTraffic)
	require.NotNil(t, listing.MetricsUpdatedAt)
	require.NotNil(t, saved)
}

func TestListingService_CaptureScreenshot(t *testing.T) {
	t.Parallel()

	listingRepo := noopListingRepo()
	listingRepo.getByIDFn = func(_ context.Context, id uint) (*models.Listing, error) {
		return &models.Listing{ID: id, UserID: 1, Domain: "blog.example.com"}, nil
	}
	svc := newListingService(listingRepo, noopCategoryRepo(), nil)

	listing, err := svc.CaptureScreenshot(context.Background(), 1, 1, false)
	require.NoError(t, err)
	assert.Equal(t, "screenshots/x.webp", listing.ScreenshotURL)
}
