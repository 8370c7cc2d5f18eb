package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, slug, category_id, description, price, variants, images, badges,
	stock, is_active, is_featured, is_gift_box, rating, review_count, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.CategoryID, &p.Description, &p.Price, &p.Variants,
		&p.Images, &p.Badges, &p.Stock, &p.IsActive, &p.IsFeatured, &p.IsGiftBox,
		&p.Rating, &p.ReviewCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Variants == nil {
		p.Variants = []model.Variant{}
	}
	return &p, nil
}

func (r *productRepository) collect(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// productOrder maps sort keys to ORDER BY clauses. Unknown keys fall back to newest.
var productOrder = map[string]string{
	model.SortNewest:    "created_at DESC, id",
	model.SortPriceAsc:  "price ASC, id",
	model.SortPriceDesc: "price DESC, id",
	model.SortRating:    "rating DESC, review_count DESC, id",
	model.SortName:      "name ASC, id",
}

// likeEscaper makes LIKE wildcards in search text match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildProductWhere renders filter as a WHERE clause with positional args.
func buildProductWhere(filter model.ProductFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if !filter.IncludeHidden {
		conds = append(conds, "is_active = TRUE")
	}
	if filter.CategoryID != nil {
		add("category_id = $%d", *filter.CategoryID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		add(`name ILIKE $%d ESCAPE '\'`, "%"+likeEscaper.Replace(s)+"%")
	}
	if filter.MinPrice != nil {
		add("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price <= $%d", *filter.MaxPrice)
	}
	if filter.Featured != nil {
		add("is_featured = $%d", *filter.Featured)
	}
	if filter.IsGiftBox != nil {
		add("is_gift_box = $%d", *filter.IsGiftBox)
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page of products matching filter and the total match count.
func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error) {
	where, args := buildProductWhere(filter)

	var total int
	countQuery := "SELECT COUNT(*) FROM products " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count products")
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	orderBy, ok := productOrder[filter.Sort]
	if !ok {
		orderBy = productOrder[model.SortNewest]
	}

	query := fmt.Sprintf("SELECT %s FROM products %s ORDER BY %s LIMIT $%d OFFSET $%d",
		productColumns, where, orderBy, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to query products")
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE id = $1"

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// GetBySlug retrieves a single product by its slug.
func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE slug = $1"

	p, err := scanProduct(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("slug", slug).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("slug", slug).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// GetByIDsForUpdate retrieves multiple products by their IDs, locking the
// rows in id order so concurrent checkouts cannot deadlock.
func (r *productRepository) GetByIDsForUpdate(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := "SELECT " + productColumns + " FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE"

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}

	return r.collect(rows)
}

// SlugExists reports whether another product already uses slug.
func (r *productRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1 AND ($2::uuid IS NULL OR id <> $2))",
		slug, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check product slug: %w", err)
	}
	return exists, nil
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (id, name, slug, category_id, description, price, variants, images, badges,
			stock, is_active, is_featured, is_gift_box, rating, review_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Slug, p.CategoryID, p.Description, p.Price, nonNil(p.Variants),
		nonNil(p.Images), nonNil(p.Badges), p.Stock, p.IsActive, p.IsFeatured, p.IsGiftBox,
		p.Rating, p.ReviewCount, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return model.ErrAlreadyExists.WithMessage("A product with this slug already exists")
		}
		r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Str("product_id", p.ID.String()).Str("slug", p.Slug).Msg("product created")
	return nil
}

// Update overwrites the editable fields of a product. Rating and review
// count are owned by the review subsystem and left alone.
func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, slug = $3, category_id = $4, description = $5, price = $6, variants = $7,
			images = $8, badges = $9, stock = $10, is_active = $11, is_featured = $12,
			is_gift_box = $13, updated_at = $14
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Slug, p.CategoryID, p.Description, p.Price, nonNil(p.Variants),
		nonNil(p.Images), nonNil(p.Badges), p.Stock, p.IsActive, p.IsFeatured, p.IsGiftBox,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return model.ErrAlreadyExists.WithMessage("A product with this slug already exists")
		}
		r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// Deactivate hides a product from the public catalogue.
func (r *productRepository) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1", id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to deactivate product")
		return false, fmt.Errorf("failed to deactivate product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes the product row.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DecrementStock takes qty units if at least qty are available.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) (bool, error) {
	tag, err := tx.Exec(ctx,
		"UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id = $1 AND stock >= $2",
		id, qty)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", id.String()).
			Int("quantity", qty).
			Msg("failed to decrement stock")
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// IncrementStock returns qty units to a product. A product deleted since
// the order was placed is skipped.
func (r *productRepository) IncrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) error {
	_, err := tx.Exec(ctx,
		"UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1",
		id, qty)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", id.String()).
			Int("quantity", qty).
			Msg("failed to restore stock")
		return fmt.Errorf("failed to restore stock: %w", err)
	}
	return nil
}
