package repository

import (
	"context"
	"errors"

	"postmarket/internal/cache"
	"postmarket/internal/models"

	"gorm.io/gorm"
)

// ListingFilter narrows marketplace queries. Zero values mean "no filter".
type ListingFilter struct {
	Query      string
	Status     models.ListingStatus
	CategoryID uint
	UserID     uint
	Sort       string
	Limit      int
	Offset     int
}

// ListingRepository defines persistence operations for listings.
type ListingRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Listing, error)
	GetByDomain(ctx context.Context, domain string) (*models.Listing, error)
	List(ctx context.Context, filter ListingFilter) ([]models.Listing, int64, error)
	Create(ctx context.Context, listing *models.Listing) error
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, id uint) error
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository returns a new ListingRepository implementation.
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) GetByID(ctx context.Context, id uint) (*models.Listing, error) {
	var listing models.Listing
	key := cache.ListingKey(id)

	err := cache.Aside(ctx, key, &listing, cache.ListingTTL, func() error {
		if err := r.db.WithContext(ctx).
			Preload("Category").
			First(&listing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Listing", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) GetByDomain(ctx context.Context, domain string) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).Where("domain = ?", domain).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &listing, nil
}

// sortClause maps the public sort keys onto ORDER BY clauses. Unknown keys
// fall back to newest-first.
func sortClause(sort string) string {
	switch sort {
	case "price_asc":
		return "price_cents ASC"
	case "price_desc":
		return "price_cents DESC"
	case "authority":
		return "domain_authority DESC"
	case "traffic":
		return "monthly_traffic DESC"
	default:
		return "created_at DESC"
	}
}

func (r *listingRepository) List(ctx context.Context, filter ListingFilter) ([]models.Listing, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Listing{})

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		query = query.Where("title ILIKE ? OR domain ILIKE ? OR description ILIKE ?", pattern, pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var listings []models.Listing
	if err := query.
		Preload("Category").
		Order(sortClause(filter.Sort)).
		Limit(clampLimit(filter.Limit)).
		Offset(maxInt(filter.Offset, 0)).
		Find(&listings).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return listings, total, nil
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateError("Listing for this domain already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *listingRepository) Update(ctx context.Context, listing *models.Listing) error {
	if err := r.db.WithContext(ctx).Save(listing).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateListing(ctx, listing.ID)
	return nil
}

func (r *listingRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Listing{}, id)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Listing", id)
	}
	cache.InvalidateListing(ctx, id)
	return nil
}
