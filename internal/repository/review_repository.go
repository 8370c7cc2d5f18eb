package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const reviewColumns = "id, product_id, user_id, name, rating, comment, created_at, updated_at"

type reviewRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReviewRepository {
	return &reviewRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "review").Logger(),
	}
}

func scanReview(row pgx.Row) (*model.Review, error) {
	var rv model.Review
	if err := row.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Name, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *reviewRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return beginTx(ctx, r.pool, r.logger)
}

func (r *reviewRepository) LockProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID, activeOnly bool) (bool, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx,
		"SELECT id FROM products WHERE id = $1 AND (is_active OR NOT $2) FOR UPDATE",
		productID, activeOnly,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to lock product")
		return false, fmt.Errorf("failed to lock product: %w", err)
	}
	return true, nil
}

func (r *reviewRepository) Create(ctx context.Context, tx pgx.Tx, rv *model.Review) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO product_reviews (id, product_id, user_id, name, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rv.ID, rv.ProductID, rv.UserID, rv.Name, rv.Rating, rv.Comment, rv.CreatedAt, rv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "product_reviews_product_id_user_id_key") {
			return model.ErrAlreadyReviewed
		}
		r.logger.Error().Err(err).Str("product_id", rv.ProductID.String()).Msg("failed to create review")
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	rv, err := scanReview(r.pool.QueryRow(ctx, "SELECT "+reviewColumns+" FROM product_reviews WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("review_id", id.String()).Msg("failed to query review")
		return nil, fmt.Errorf("failed to query review: %w", err)
	}
	return rv, nil
}

func (r *reviewRepository) Update(ctx context.Context, tx pgx.Tx, rv *model.Review) error {
	_, err := tx.Exec(ctx,
		"UPDATE product_reviews SET rating = $2, comment = $3, updated_at = $4 WHERE id = $1",
		rv.ID, rv.Rating, rv.Comment, rv.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("review_id", rv.ID.String()).Msg("failed to update review")
		return fmt.Errorf("failed to update review: %w", err)
	}
	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	if _, err := tx.Exec(ctx, "DELETE FROM product_reviews WHERE id = $1", id); err != nil {
		r.logger.Error().Err(err).Str("review_id", id.String()).Msg("failed to delete review")
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

func (r *reviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.Review, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+reviewColumns+" FROM product_reviews WHERE product_id = $1 ORDER BY created_at DESC, id",
		productID,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to query reviews")
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, *rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}

func (r *reviewRepository) Ratings(ctx context.Context, tx pgx.Tx, productID uuid.UUID) ([]int, error) {
	rows, err := tx.Query(ctx, "SELECT rating FROM product_reviews WHERE product_id = $1", productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}

	ratings, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("failed to collect ratings: %w", err)
	}
	return ratings, nil
}

func (r *reviewRepository) SetProductRating(ctx context.Context, tx pgx.Tx, productID uuid.UUID, summary model.RatingSummary) error {
	_, err := tx.Exec(ctx,
		"UPDATE products SET rating = $2, review_count = $3 WHERE id = $1",
		productID, summary.Rating, summary.ReviewCount,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to store product rating")
		return fmt.Errorf("failed to store product rating: %w", err)
	}
	return nil
}
