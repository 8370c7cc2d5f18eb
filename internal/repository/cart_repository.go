package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed account cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// GetOrCreate returns the account's cart, creating an empty one if needed.
// The unique user_id constraint makes concurrent first calls converge on one cart.
func (r *cartRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart := model.Cart{UserID: &userID}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO carts (id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, created_at, updated_at`,
		uuid.New(), userID,
	).Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to get or create cart")
		return nil, fmt.Errorf("failed to get or create cart: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT product_id, name, image, price, quantity, variant_size
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY position`,
		cart.ID,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_id", cart.ID.String()).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	cart.Items = []model.CartItem{}
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Image, &item.Price, &item.Quantity, &item.VariantSize); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return &cart, nil
}

// Save replaces the cart's line items in one transaction. Concurrent saves
// of the same cart are serialized on the cart row; the last one wins.
func (r *cartRepository) Save(ctx context.Context, cart *model.Cart) (err error) {
	tx, err := beginTx(ctx, r.pool, r.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var locked uuid.UUID
	if err = tx.QueryRow(ctx, "SELECT id FROM carts WHERE id = $1 FOR UPDATE", cart.ID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to lock cart %s: cart not found", cart.ID)
		}
		r.logger.Error().Err(err).Str("cart_id", cart.ID.String()).Msg("failed to lock cart")
		return fmt.Errorf("failed to lock cart: %w", err)
	}

	if _, err = tx.Exec(ctx, "DELETE FROM cart_items WHERE cart_id = $1", cart.ID); err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}

	if len(cart.Items) > 0 {
		batch := &pgx.Batch{}
		for i, item := range cart.Items {
			batch.Queue(`
				INSERT INTO cart_items (cart_id, position, product_id, name, image, price, quantity, variant_size)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				cart.ID, i, item.ProductID, item.Name, item.Image, item.Price, item.Quantity, item.VariantSize,
			)
		}

		results := tx.SendBatch(ctx, batch)
		for range cart.Items {
			if _, err = results.Exec(); err != nil {
				_ = results.Close()
				r.logger.Error().Err(err).Str("cart_id", cart.ID.String()).Msg("failed to insert cart item")
				return fmt.Errorf("failed to insert cart item: %w", err)
			}
		}
		if err = results.Close(); err != nil {
			return fmt.Errorf("failed to insert cart items: %w", err)
		}
	}

	cart.UpdatedAt = time.Now().UTC()
	if _, err = tx.Exec(ctx, "UPDATE carts SET updated_at = $2 WHERE id = $1", cart.ID, cart.UpdatedAt); err != nil {
		return fmt.Errorf("failed to touch cart: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit cart: %w", err)
	}

	return nil
}

// Clear removes every line item from the account's cart.
func (r *cartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM cart_items
		WHERE cart_id = (SELECT id FROM carts WHERE user_id = $1)`,
		userID,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
