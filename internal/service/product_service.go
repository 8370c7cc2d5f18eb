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

// productService implements ProductService.
type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	logger       zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	logger zerolog.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		logger:       logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves one page of the catalogue. An unknown category yields an
// empty page.
func (s *productService) List(ctx context.Context, q model.ProductQuery) (*model.ProductPage, error) {
	page, limit, offset := normalisePage(q.Page, q.Limit)
	empty := &model.ProductPage{Products: []model.Product{}, Page: page, Limit: limit}

	filter := model.ProductFilter{
		Search:        q.Search,
		MinPrice:      q.MinPrice,
		MaxPrice:      q.MaxPrice,
		Featured:      q.Featured,
		IsGiftBox:     q.IsGiftBox,
		IncludeHidden: q.IncludeHidden,
		Sort:          q.Sort,
		Limit:         limit,
		Offset:        offset,
	}

	if q.Category != "" {
		category, err := lookupCategory(ctx, s.categoryRepo, q.Category)
		if err != nil {
			s.logger.Error().Err(err).Str("category", q.Category).Msg("failed to resolve category")
			return nil, fmt.Errorf("failed to resolve category: %w", err)
		}
		if category == nil {
			s.logger.Debug().Str("category", q.Category).Msg("unknown category filter")
			return empty, nil
		}
		filter.CategoryID = &category.ID
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("total", total).
		Int("page", page).
		Msg("retrieved products")

	return &model.ProductPage{
		Products:   products,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages(total, limit),
	}, nil
}

// Get retrieves a single active product by id or slug.
func (s *productService) Get(ctx context.Context, idOrSlug string) (*model.Product, error) {
	if idOrSlug == "" {
		return nil, model.ErrProductNotFound
	}

	var product *model.Product
	var err error
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		product, err = s.productRepo.GetByID(ctx, id)
	} else {
		product, err = s.productRepo.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("product", idOrSlug).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil || !product.IsActive {
		s.logger.Debug().Str("product", idOrSlug).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// Create adds a product with a slug derived from its name.
func (s *productService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	productSlug, err := slug.Unique(ctx, req.Name, func(ctx context.Context, candidate string) (bool, error) {
		return s.productRepo.SlugExists(ctx, candidate, nil)
	})
	if err != nil {
		return nil, s.slugError(err, req.Name)
	}

	now := time.Now().UTC()
	product := &model.Product{
		ID:        uuid.New(),
		Slug:      productSlug,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyProductRequest(product, req)

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("slug", product.Slug).
		Msg("product created")

	return product, nil
}

// Update overwrites the editable fields. A rename regenerates the slug.
func (s *productService) Update(ctx context.Context, id uuid.UUID, req *model.ProductRequest) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	if req.Name != product.Name {
		productSlug, err := slug.Unique(ctx, req.Name, func(ctx context.Context, candidate string) (bool, error) {
			return s.productRepo.SlugExists(ctx, candidate, &id)
		})
		if err != nil {
			return nil, s.slugError(err, req.Name)
		}
		product.Slug = productSlug
	}

	applyProductRequest(product, req)
	product.UpdatedAt = time.Now().UTC()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product updated")
	return product, nil
}

// Delete hides the product unless hard is set.
func (s *productService) Delete(ctx context.Context, id uuid.UUID, hard bool) error {
	var found bool
	var err error
	if hard {
		found, err = s.productRepo.Delete(ctx, id)
	} else {
		found, err = s.productRepo.Deactivate(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !found {
		return model.ErrProductNotFound
	}

	s.logger.Info().Str("product_id", id.String()).Bool("hard", hard).Msg("product deleted")
	return nil
}

func (s *productService) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	category, err := s.categoryRepo.GetByID(ctx, *id)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return model.ErrCategoryNotFound
	}
	return nil
}

func (s *productService) slugError(err error, name string) error {
	return slugError(s.logger, err, name)
}

// slugError reports an unusable name as a validation failure and anything
// else as an internal error.
func slugError(logger zerolog.Logger, err error, name string) error {
	if slug.Make(name) == "" {
		return model.ErrValidationFailed.WithMessage("Name must contain at least one letter or digit")
	}
	logger.Error().Err(err).Str("name", name).Msg("failed to derive slug")
	return fmt.Errorf("failed to derive slug: %w", err)
}

func applyProductRequest(p *model.Product, req *model.ProductRequest) {
	p.Name = req.Name
	p.CategoryID = req.CategoryID
	p.Description = req.Description
	p.Price = req.Price
	p.Variants = req.Variants
	p.Images = req.Images
	p.Badges = req.Badges
	p.Stock = req.Stock
	p.IsFeatured = req.IsFeatured
	p.IsGiftBox = req.IsGiftBox
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
}

// lookupCategory resolves a category by id or slug, returning nil if absent.
func lookupCategory(ctx context.Context, repo repository.CategoryRepository, idOrSlug string) (*model.Category, error) {
	if id, err := uuid.Parse(idOrSlug); err == nil {
		return repo.GetByID(ctx, id)
	}
	return repo.GetBySlug(ctx, idOrSlug)
}
