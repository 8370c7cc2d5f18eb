package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/slug"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// categoryService implements CategoryService.
type categoryService struct {
	categoryRepo repository.CategoryRepository
	logger       zerolog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo repository.CategoryRepository, logger zerolog.Logger) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		logger:       logger.With().Str("service", "category").Logger(),
	}
}

func (s *categoryService) List(ctx context.Context, includeInactive bool) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx, includeInactive)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list categories")
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Get retrieves an active category by id or slug.
func (s *categoryService) Get(ctx context.Context, idOrSlug string) (*model.Category, error) {
	category, err := lookupCategory(ctx, s.categoryRepo, idOrSlug)
	if err != nil {
		s.logger.Error().Err(err).Str("category", idOrSlug).Msg("failed to get category")
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil || !category.IsActive {
		return nil, model.ErrCategoryNotFound
	}
	return category, nil
}

func (s *categoryService) Create(ctx context.Context, req *model.CategoryRequest) (*model.Category, error) {
	if err := s.checkName(ctx, req.Name, nil); err != nil {
		return nil, err
	}

	categorySlug, err := slug.Unique(ctx, req.Name, func(ctx context.Context, candidate string) (bool, error) {
		return s.categoryRepo.SlugExists(ctx, candidate, nil)
	})
	if err != nil {
		return nil, slugError(s.logger, err, req.Name)
	}

	now := time.Now().UTC()
	category := &model.Category{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        categorySlug,
		Description: req.Description,
		Image:       req.Image,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("category_id", category.ID.String()).
		Str("slug", category.Slug).
		Msg("category created")

	return category, nil
}

// Update overwrites the category. A rename regenerates the slug.
func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req *model.CategoryRequest) (*model.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, model.ErrCategoryNotFound
	}

	if req.Name != category.Name {
		if err := s.checkName(ctx, req.Name, &id); err != nil {
			return nil, err
		}
		categorySlug, err := slug.Unique(ctx, req.Name, func(ctx context.Context, candidate string) (bool, error) {
			return s.categoryRepo.SlugExists(ctx, candidate, &id)
		})
		if err != nil {
			return nil, slugError(s.logger, err, req.Name)
		}
		category.Slug = categorySlug
	}

	category.Name = req.Name
	category.Description = req.Description
	category.Image = req.Image
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	category.UpdatedAt = time.Now().UTC()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info().Str("category_id", id.String()).Msg("category updated")
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.categoryRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if !found {
		return model.ErrCategoryNotFound
	}
	s.logger.Info().Str("category_id", id.String()).Msg("category deleted")
	return nil
}

func (s *categoryService) checkName(ctx context.Context, name string, excludeID *uuid.UUID) error {
	exists, err := s.categoryRepo.NameExists(ctx, name, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check category name: %w", err)
	}
	if exists {
		return model.ErrAlreadyExists.WithMessage("A category with this name already exists")
	}
	return nil
}
