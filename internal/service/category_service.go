package service

import (
	"context"

	"postmarket/internal/models"
	"postmarket/internal/repository"
	"postmarket/internal/validation"
)

// CategoryService manages the marketplace category taxonomy.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

// CategoryInput carries the fields of a category create or update.
type CategoryInput struct {
	Name        string
	Description string
}

// NewCategoryService returns a new CategoryService.
func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *CategoryService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	return s.categoryRepo.GetByID(ctx, id)
}

// CreateCategory creates a category, deriving the slug from the name.
func (s *CategoryService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if in.Name == "" {
		return nil, models.NewValidationError("Category name is required")
	}
	slug := validation.Slugify(in.Name)
	if err := validation.ValidateSlug(slug); err != nil {
		return nil, models.NewValidationError("Category name produces an invalid slug")
	}

	if existing, err := s.categoryRepo.GetBySlug(ctx, slug); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewDuplicateError("Category already exists")
	}

	category := &models.Category{
		Name:        in.Name,
		Slug:        slug,
		Description: in.Description,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory renames a category. The slug follows the name.
func (s *CategoryService) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" && in.Name != category.Name {
		slug := validation.Slugify(in.Name)
		if err := validation.ValidateSlug(slug); err != nil {
			return nil, models.NewValidationError("Category name produces an invalid slug")
		}
		if existing, err := s.categoryRepo.GetBySlug(ctx, slug); err != nil {
			return nil, err
		} else if existing != nil && existing.ID != category.ID {
			return nil, models.NewDuplicateError("Category already exists")
		}
		category.Name = in.Name
		category.Slug = slug
	}
	if in.Description != "" {
		category.Description = in.Description
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id uint) error {
	return s.categoryRepo.Delete(ctx, id)
}
