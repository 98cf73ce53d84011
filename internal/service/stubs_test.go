package service

import (
	"context"
	"errors"
	"testing"

	"postmarket/internal/models"
	"postmarket/internal/notifications"
	"postmarket/internal/repository"
	"postmarket/internal/vendors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
	listFn          func(context.Context, repository.UserFilter) ([]models.User, int64, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, filter repository.UserFilter) ([]models.User, int64, error) {
	return s.listFn(ctx, filter)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:        func(context.Context, *models.User) error { return nil },
		updateFn:        func(context.Context, *models.User) error { return nil },
		deleteFn:        func(context.Context, uint) error { return nil },
		listFn: func(context.Context, repository.UserFilter) ([]models.User, int64, error) {
			return nil, 0, nil
		},
	}
}

type listingRepoStub struct {
	getByIDFn     func(context.Context, uint) (*models.Listing, error)
	getByDomainFn func(context.Context, string) (*models.Listing, error)
	listFn        func(context.Context, repository.ListingFilter) ([]models.Listing, int64, error)
	createFn      func(context.Context, *models.Listing) error
	updateFn      func(context.Context, *models.Listing) error
	deleteFn      func(context.Context, uint) error
}

func (s *listingRepoStub) GetByID(ctx context.Context, id uint) (*models.Listing, error) {
	return s.getByIDFn(ctx, id)
}
func (s *listingRepoStub) GetByDomain(ctx context.Context, domain string) (*models.Listing, error) {
	return s.getByDomainFn(ctx, domain)
}
func (s *listingRepoStub) List(ctx context.Context, filter repository.ListingFilter) ([]models.Listing, int64, error) {
	return s.listFn(ctx, filter)
}
func (s *listingRepoStub) Create(ctx context.Context, listing *models.Listing) error {
	return s.createFn(ctx, listing)
}
func (s *listingRepoStub) Update(ctx context.Context, listing *models.Listing) error {
	return s.updateFn(ctx, listing)
}
func (s *listingRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopListingRepo() *listingRepoStub {
	return &listingRepoStub{
		getByIDFn:     func(_ context.Context, id uint) (*models.Listing, error) { return &models.Listing{ID: id}, nil },
		getByDomainFn: func(context.Context, string) (*models.Listing, error) { return nil, nil },
		listFn: func(context.Context, repository.ListingFilter) ([]models.Listing, int64, error) {
			return nil, 0, nil
		},
		createFn: func(context.Context, *models.Listing) error { return nil },
		updateFn: func(context.Context, *models.Listing) error { return nil },
		deleteFn: func(context.Context, uint) error { return nil },
	}
}

type categoryRepoStub struct {
	getByIDFn   func(context.Context, uint) (*models.Category, error)
	getBySlugFn func(context.Context, string) (*models.Category, error)
	listFn      func(context.Context) ([]models.Category, error)
	createFn    func(context.Context, *models.Category) error
	updateFn    func(context.Context, *models.Category) error
	deleteFn    func(context.Context, uint) error
}

func (s *categoryRepoStub) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return s.getByIDFn(ctx, id)
}
func (s *categoryRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *categoryRepoStub) List(ctx context.Context) ([]models.Category, error) {
	return s.listFn(ctx)
}
func (s *categoryRepoStub) Create(ctx context.Context, category *models.Category) error {
	return s.createFn(ctx, category)
}
func (s *categoryRepoStub) Update(ctx context.Context, category *models.Category) error {
	return s.updateFn(ctx, category)
}
func (s *categoryRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCategoryRepo() *categoryRepoStub {
	return &categoryRepoStub{
		getByIDFn:   func(_ context.Context, id uint) (*models.Category, error) { return &models.Category{ID: id}, nil },
		getBySlugFn: func(context.Context, string) (*models.Category, error) { return nil, nil },
		listFn:      func(context.Context) ([]models.Category, error) { return nil, nil },
		createFn:    func(context.Context, *models.Category) error { return nil },
		updateFn:    func(context.Context, *models.Category) error { return nil },
		deleteFn:    func(context.Context, uint) error { return nil },
	}
}

type messageRepoStub struct {
	getByIDFn      func(context.Context, uint) (*models.Message, error)
	listFn         func(context.Context, repository.MessageFilter) ([]models.Message, int64, error)
	createFn       func(context.Context, *models.Message) error
	updateStatusFn func(context.Context, uint, models.MessageStatus) error
	addReplyFn     func(context.Context, *models.MessageReply) error
	deleteFn       func(context.Context, uint) error
	countUnreadFn  func(context.Context, uint) (int64, error)
}

func (s *messageRepoStub) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	return s.getByIDFn(ctx, id)
}
func (s *messageRepoStub) List(ctx context.Context, filter repository.MessageFilter) ([]models.Message, int64, error) {
	return s.listFn(ctx, filter)
}
func (s *messageRepoStub) Create(ctx context.Context, message *models.Message) error {
	return s.createFn(ctx, message)
}
func (s *messageRepoStub) UpdateStatus(ctx context.Context, id uint, status models.MessageStatus) error {
	return s.updateStatusFn(ctx, id, status)
}
func (s *messageRepoStub) AddReply(ctx context.Context, reply *models.MessageReply) error {
	return s.addReplyFn(ctx, reply)
}
func (s *messageRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *messageRepoStub) CountUnread(ctx context.Context, userID uint) (int64, error) {
	return s.countUnreadFn(ctx, userID)
}

func noopMessageRepo() *messageRepoStub {
	return &messageRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Message, error) { return &models.Message{ID: id}, nil },
		listFn: func(context.Context, repository.MessageFilter) ([]models.Message, int64, error) {
			return nil, 0, nil
		},
		createFn:       func(context.Context, *models.Message) error { return nil },
		updateStatusFn: func(context.Context, uint, models.MessageStatus) error { return nil },
		addReplyFn:     func(context.Context, *models.MessageReply) error { return nil },
		deleteFn:       func(context.Context, uint) error { return nil },
		countUnreadFn:  func(context.Context, uint) (int64, error) { return 0, nil },
	}
}

type reportRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.Report, error)
	listFn          func(context.Context, repository.ReportFilter) ([]models.Report, int64, error)
	createFn        func(context.Context, *models.Report) error
	updateFn        func(context.Context, *models.Report) error
	deleteFn        func(context.Context, uint) error
	countByStatusFn func(context.Context, models.ReportStatus) (int64, error)
}

func (s *reportRepoStub) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	return s.getByIDFn(ctx, id)
}
func (s *reportRepoStub) List(ctx context.Context, filter repository.ReportFilter) ([]models.Report, int64, error) {
	return s.listFn(ctx, filter)
}
func (s *reportRepoStub) Create(ctx context.Context, report *models.Report) error {
	return s.createFn(ctx, report)
}
func (s *reportRepoStub) Update(ctx context.Context, report *models.Report) error {
	return s.updateFn(ctx, report)
}
func (s *reportRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *reportRepoStub) CountByStatus(ctx context.Context, status models.ReportStatus) (int64, error) {
	return s.countByStatusFn(ctx, status)
}

func noopReportRepo() *reportRepoStub {
	return &reportRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Report, error) { return &models.Report{ID: id}, nil },
		listFn: func(context.Context, repository.ReportFilter) ([]models.Report, int64, error) {
			return nil, 0, nil
		},
		createFn:        func(context.Context, *models.Report) error { return nil },
		updateFn:        func(context.Context, *models.Report) error { return nil },
		deleteFn:        func(context.Context, uint) error { return nil },
		countByStatusFn: func(context.Context, models.ReportStatus) (int64, error) { return 0, nil },
	}
}

type proberStub struct {
	probeFn func(context.Context, string, string) error
}

func (s *proberStub) Probe(ctx context.Context, domain, token string) error {
	return s.probeFn(ctx, domain, token)
}

type seoStub struct {
	lookupFn func(context.Context, string) (*vendors.SEOMetrics, error)
}

func (s *seoStub) Lookup(ctx context.Context, domain string) (*vendors.SEOMetrics, error) {
	return s.lookupFn(ctx, domain)
}

type screenshotStub struct {
	captureFn func(context.Context, string) (string, error)
}

func (s *screenshotStub) Capture(ctx context.Context, domain string) (string, error) {
	return s.captureFn(ctx, domain)
}

type publisherStub struct {
	events chan publishedEvent
}

type publishedEvent struct {
	UserID uint
	Event  notifications.Event
}

func newPublisherStub() *publisherStub {
	return &publisherStub{events: make(chan publishedEvent, 8)}
}

func (s *publisherStub) PublishUser(_ context.Context, userID uint, event notifications.Event) error {
	s.events <- publishedEvent{UserID: userID, Event: event}
	return nil
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

// assertForbiddenError asserts that err is an AppError with code FORBIDDEN.
func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "FORBIDDEN", appErr.Code)
}

// assertDuplicateError asserts that err is an AppError with code DUPLICATE.
func assertDuplicateError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "DUPLICATE", appErr.Code)
}
