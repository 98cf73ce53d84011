package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"postmarket/internal/models"
	"postmarket/internal/repository"
	"postmarket/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newListingTestServer(
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	categoryRepo repository.CategoryRepository,
) *Server {
	s := newTestServer(userRepo)
	s.listingRepo = listingRepo
	s.categoryRepo = categoryRepo
	s.listingService = service.NewListingService(listingRepo, categoryRepo, nil, nil, nil, nil)
	return s
}

func TestBrowseListings_ForcesActiveStatus(t *testing.T) {
	mockListings := new(MockListingRepository)
	s := newListingTestServer(new(MockUserRepository), mockListings, new(MockCategoryRepository))

	app := fiber.New()
	app.Get("/listings", s.BrowseListings)

	mockListings.On("List", mock.Anything, mock.MatchedBy(func(f repository.ListingFilter) bool {
		return f.Status == models.ListingActive
	})).Return([]models.Listing{{ID: 1, Status: models.ListingActive}}, int64(1), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/listings?status=pending", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockListings.AssertExpectations(t)
}

func TestGetListing_PendingVisibility(t *testing.T) {
	pending := &models.Listing{ID: 5, UserID: 9, Status: models.ListingPending}

	mockUsers := new(MockUserRepository)
	mockListings := new(MockListingRepository)
	s := newListingTestServer(mockUsers, mockListings, new(MockCategoryRepository))

	app := fiber.New()
	app.Get("/listings/:id", s.GetListing)

	t.Run("hidden from anonymous viewers", func(t *testing.T) {
		mockListings.On("GetByID", mock.Anything, uint(5)).Return(pending, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/listings/5", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("visible to the owner", func(t *testing.T) {
		mockListings.On("GetByID", mock.Anything, uint(5)).Return(pending, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/listings/5", nil)
		req.AddCookie(sessionCookie(t, 9))
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("hidden from other users", func(t *testing.T) {
		mockListings.On("GetByID", mock.Anything, uint(5)).Return(pending, nil).Once()
		mockUsers.On("GetByID", mock.Anything, uint(3)).
			Return(&models.User{ID: 3, Role: models.RoleUser}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/listings/5", nil)
		req.AddCookie(sessionCookie(t, 3))
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("visible to admins", func(t *testing.T) {
		mockListings.On("GetByID", mock.Anything, uint(5)).Return(pending, nil).Once()
		mockUsers.On("GetByID", mock.Anything, uint(4)).
			Return(&models.User{ID: 4, Role: models.RoleAdmin}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/listings/5", nil)
		req.AddCookie(sessionCookie(t, 4))
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestCreateListing(t *testing.T) {
	mockUsers := new(MockUserRepository)
	mockListings := new(MockListingRepository)
	mockCategories := new(MockCategoryRepository)
	s := newListingTestServer(mockUsers, mockListings, mockCategories)

	app := fiber.New()
	app.Post("/listings", s.AuthRequired(), s.CreateListing)

	t.Run("requires authentication", func(t *testing.T) {
		resp := postJSON(t, app, "/listings", map[string]any{
			"category_id": 1,
			"domain":      "techblog.example.com",
			"title":       "Tech blog guest posts",
			"price_cents": 15000,
		})
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("creates a pending listing", func(t *testing.T) {
		mockUsers.On("GetByID", mock.Anything, uint(1)).
			Return(&models.User{ID: 1, Status: models.StatusActive}, nil).Once()
		mockCategories.On("GetByID", mock.Anything, uint(1)).
			Return(&models.Category{ID: 1, Name: "Technology", Slug: "technology"}, nil).Once()
		mockListings.On("GetByDomain", mock.Anything, "techblog.example.com").Return(nil, nil).Once()
		mockListings.On("Create", mock.Anything, mock.MatchedBy(func(l *models.Listing) bool {
			return l.Status == models.ListingPending && l.VerificationToken != ""
		})).Return(nil).Once()

		resp := postJSONWithCookie(t, app, "/listings", map[string]any{
			"category_id": 1,
			"domain":      "techblog.example.com",
			"title":       "Tech blog guest posts",
			"price_cents": 15000,
		}, sessionCookie(t, 1))
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockListings.AssertExpectations(t)
	})
}
