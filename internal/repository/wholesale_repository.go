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

const wholesaleColumns = `id, user_id, business_name, business_type, tax_id, phone, address, website,
	is_approved, discount_tier, discount_percentage, minimum_order, credit_limit, approved_at, created_at, updated_at`

type wholesaleRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewWholesaleRepository creates a new PostgreSQL-backed wholesale account repository.
func NewWholesaleRepository(pool *pgxpool.Pool, logger zerolog.Logger) WholesaleRepository {
	return &wholesaleRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "wholesale").Logger(),
	}
}

func scanWholesale(row pgx.Row) (*model.WholesaleAccount, error) {
	var a model.WholesaleAccount
	err := row.Scan(
		&a.ID, &a.UserID, &a.Profile.BusinessName, &a.Profile.BusinessType, &a.Profile.TaxID,
		&a.Profile.Phone, &a.Profile.Address, &a.Profile.Website, &a.IsApproved, &a.DiscountTier,
		&a.DiscountPercentage, &a.MinimumOrder, &a.CreditLimit, &a.ApprovedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *wholesaleRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return beginTx(ctx, r.pool, r.logger)
}

func (r *wholesaleRepository) Create(ctx context.Context, a *model.WholesaleAccount) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO wholesale_accounts (id, user_id, business_name, business_type, tax_id, phone, address, website,
			is_approved, discount_tier, discount_percentage, minimum_order, credit_limit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		a.ID, a.UserID, a.Profile.BusinessName, a.Profile.BusinessType, a.Profile.TaxID, a.Profile.Phone,
		a.Profile.Address, a.Profile.Website, a.IsApproved, a.DiscountTier, a.DiscountPercentage,
		a.MinimumOrder, a.CreditLimit, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "wholesale_accounts_user_id_key") {
			return model.ErrAlreadyRegistered
		}
		r.logger.Error().Err(err).Str("user_id", a.UserID.String()).Msg("failed to create wholesale account")
		return fmt.Errorf("failed to create wholesale account: %w", err)
	}
	return nil
}

func (r *wholesaleRepository) get(ctx context.Context, column string, id uuid.UUID) (*model.WholesaleAccount, error) {
	query := "SELECT " + wholesaleColumns + " FROM wholesale_accounts WHERE " + column + " = $1"

	a, err := scanWholesale(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str(column, id.String()).Msg("failed to query wholesale account")
		return nil, fmt.Errorf("failed to query wholesale account: %w", err)
	}
	return a, nil
}

func (r *wholesaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WholesaleAccount, error) {
	return r.get(ctx, "id", id)
}

func (r *wholesaleRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*model.WholesaleAccount, error) {
	return r.get(ctx, "user_id", userID)
}

func (r *wholesaleRepository) List(ctx context.Context, approved *bool) ([]model.WholesaleAccount, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+wholesaleColumns+" FROM wholesale_accounts WHERE ($1::boolean IS NULL OR is_approved = $1) ORDER BY created_at DESC",
		approved,
	)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query wholesale accounts")
		return nil, fmt.Errorf("failed to query wholesale accounts: %w", err)
	}
	defer rows.Close()

	accounts := []model.WholesaleAccount{}
	for rows.Next() {
		a, err := scanWholesale(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wholesale account: %w", err)
		}
		accounts = append(accounts, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wholesale accounts: %w", err)
	}

	return accounts, nil
}

func (r *wholesaleRepository) Approve(ctx context.Context, tx pgx.Tx, a *model.WholesaleAccount) error {
	_, err := tx.Exec(ctx, `
		UPDATE wholesale_accounts
		SET is_approved = $2, discount_tier = $3, discount_percentage = $4, minimum_order = $5,
			credit_limit = $6, approved_at = $7, updated_at = $8
		WHERE id = $1`,
		a.ID, a.IsApproved, a.DiscountTier, a.DiscountPercentage, a.MinimumOrder,
		a.CreditLimit, a.ApprovedAt, a.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("wholesale_id", a.ID.String()).Msg("failed to approve wholesale account")
		return fmt.Errorf("failed to approve wholesale account: %w", err)
	}
	return nil
}
