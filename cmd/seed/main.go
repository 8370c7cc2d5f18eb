// Command seed loads a small sample catalogue into the configured database.
// Running it twice leaves existing categories and products untouched.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/service"
	"storefront/internal/slug"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type sampleProduct struct {
	name      string
	category  string
	price     int64
	stock     int
	featured  bool
	giftBox   bool
	variants  []model.Variant
	badges    []string
	imageSlug string
}

var sampleCategories = []model.CategoryRequest{
	{Name: "Dry Fruits", Description: "Almonds, pistachios, walnuts and more"},
	{Name: "Spices", Description: "Whole and ground spices"},
	{Name: "Gift Boxes", Description: "Curated hampers for every occasion"},
}

var sampleProducts = []sampleProduct{
	{
		name: "California Almonds", category: "dry-fruits", price: 1200, stock: 120, featured: true,
		variants: []model.Variant{
			{Size: "250g", Price: 1200, SKU: "ALM-250"},
			{Size: "500g", Price: 2300, SKU: "ALM-500"},
			{Size: "1kg", Price: 4400, SKU: "ALM-1000"},
		},
		badges: []string{"Bestseller"}, imageSlug: "almonds",
	},
	{
		name: "Roasted Pistachios", category: "dry-fruits", price: 1800, stock: 80,
		variants: []model.Variant{
			{Size: "250g", Price: 1800, SKU: "PIS-250"},
			{Size: "500g", Price: 3500, SKU: "PIS-500"},
		},
		imageSlug: "pistachios",
	},
	{
		name: "Kashmiri Saffron", category: "spices", price: 1500, stock: 40, featured: true,
		variants: []model.Variant{
			{Size: "1g", Price: 1500, SKU: "SAF-1"},
			{Size: "5g", Price: 6500, SKU: "SAF-5"},
		},
		badges: []string{"Premium"}, imageSlug: "saffron",
	},
	{
		name: "Green Cardamom", category: "spices", price: 900, stock: 150, imageSlug: "cardamom",
	},
	{
		name: "Eid Celebration Box", category: "gift-boxes", price: 7500, stock: 25, featured: true, giftBox: true,
		badges: []string{"Limited"}, imageSlug: "eid-box",
	},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger).With().Str("command", "seed").Logger()
	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	categoryRepo := repository.NewCategoryRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	categories := service.NewCategoryService(categoryRepo, logger)
	products := service.NewProductService(productRepo, categoryRepo, logger)

	categoryIDs, err := seedCategories(ctx, categories, logger)
	if err != nil {
		return err
	}

	created := 0
	for _, sp := range sampleProducts {
		if _, err := products.Get(ctx, slug.Make(sp.name)); err == nil {
			continue
		} else if !errors.Is(err, model.ErrProductNotFound) {
			return fmt.Errorf("failed to look up %s: %w", sp.name, err)
		}

		req := sp.request(cfg.S3.PublicBaseURL)
		if id, ok := categoryIDs[sp.category]; ok {
			req.CategoryID = &id
		}
		if _, err := products.Create(ctx, req); err != nil {
			return fmt.Errorf("failed to create %s: %w", sp.name, err)
		}
		created++
	}

	logger.Info().
		Int("categories", len(categoryIDs)).
		Int("products_created", created).
		Msg("sample catalogue ready")
	return nil
}

// seedCategories creates missing categories and returns every sample
// category id keyed by slug.
func seedCategories(ctx context.Context, categories service.CategoryService, logger zerolog.Logger) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(sampleCategories))

	for i := range sampleCategories {
		req := sampleCategories[i]
		key := slug.Make(req.Name)

		category, err := categories.Get(ctx, key)
		if errors.Is(err, model.ErrCategoryNotFound) {
			category, err = categories.Create(ctx, &req)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to seed category %s: %w", req.Name, err)
		}

		logger.Debug().Str("category", key).Msg("category ready")
		ids[key] = category.ID
	}

	return ids, nil
}

func (sp sampleProduct) request(imageBase string) *model.ProductRequest {
	if imageBase == "" {
		imageBase = "https://images.example.com/products"
	}
	return &model.ProductRequest{
		Name:        sp.name,
		Description: "Sample product: " + sp.name,
		Price:       sp.price,
		Variants:    sp.variants,
		Images:      []string{fmt.Sprintf("%s/%s.jpg", imageBase, sp.imageSlug)},
		Badges:      sp.badges,
		Stock:       sp.stock,
		IsFeatured:  sp.featured,
		IsGiftBox:   sp.giftBox,
	}
}
