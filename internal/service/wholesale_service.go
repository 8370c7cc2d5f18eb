package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// wholesaleService implements WholesaleService.
type wholesaleService struct {
	wholesaleRepo repository.WholesaleRepository
	userRepo      repository.UserRepository
	productRepo   repository.ProductRepository
	logger        zerolog.Logger
}

// NewWholesaleService creates a new wholesale service.
func NewWholesaleService(
	wholesaleRepo repository.WholesaleRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) WholesaleService {
	return &wholesaleService{
		wholesaleRepo: wholesaleRepo,
		userRepo:      userRepo,
		productRepo:   productRepo,
		logger:        logger.With().Str("service", "wholesale").Logger(),
	}
}

// Register creates an unapproved account with the default terms.
func (s *wholesaleService) Register(ctx context.Context, userID uuid.UUID, profile *model.BusinessProfile) (*model.WholesaleAccount, error) {
	existing, err := s.wholesaleRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wholesale account: %w", err)
	}
	if existing != nil {
		return nil, model.ErrAlreadyRegistered
	}

	now := time.Now().UTC()
	account := &model.WholesaleAccount{
		ID:                 uuid.New(),
		UserID:             userID,
		Profile:            *profile,
		DiscountTier:       model.TierBronze,
		DiscountPercentage: model.DefaultDiscountPercentage,
		MinimumOrder:       model.DefaultMinimumOrder,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.wholesaleRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("wholesale_id", account.ID.String()).
		Str("user_id", userID.String()).
		Str("business_name", profile.BusinessName).
		Msg("wholesale account registered")

	return account, nil
}

func (s *wholesaleService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.WholesaleAccount, error) {
	account, err := s.wholesaleRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wholesale account: %w", err)
	}
	if account == nil {
		return nil, model.ErrWholesaleNotFound
	}
	return account, nil
}

func (s *wholesaleService) GetPricing(ctx context.Context, userID uuid.UUID) (*model.WholesalePricing, error) {
	account, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !account.IsApproved {
		return nil, model.ErrNotApproved
	}
	return &model.WholesalePricing{
		DiscountTier:       account.DiscountTier,
		DiscountPercentage: account.DiscountPercentage,
		MinimumOrder:       account.MinimumOrder,
		CreditLimit:        account.CreditLimit,
	}, nil
}

// Approve marks the account approved, applies any term overrides and
// promotes the owner to the wholesale role. Approving twice only updates
// the terms.
func (s *wholesaleService) Approve(ctx context.Context, id uuid.UUID, req *model.ApproveWholesaleRequest) (_ *model.WholesaleAccount, err error) {
	if req.DiscountTier != nil && !req.DiscountTier.Valid() {
		return nil, model.ErrValidationFailed.WithMessage(fmt.Sprintf("Unknown discount tier %q", *req.DiscountTier))
	}
	if p := req.DiscountPercentage; p != nil && (*p < 0 || *p > model.MaxDiscountPercentage) {
		return nil, model.ErrValidationFailed.WithMessage(
			fmt.Sprintf("Discount percentage must be between 0 and %d", model.MaxDiscountPercentage))
	}

	account, err := s.wholesaleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get wholesale account: %w", err)
	}
	if account == nil {
		return nil, model.ErrWholesaleNotFound
	}

	owner, err := s.userRepo.GetByID(ctx, account.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account owner: %w", err)
	}

	now := time.Now().UTC()
	account.IsApproved = true
	if account.ApprovedAt == nil {
		account.ApprovedAt = &now
	}
	if req.DiscountTier != nil {
		account.DiscountTier = *req.DiscountTier
	}
	if req.DiscountPercentage != nil {
		account.DiscountPercentage = *req.DiscountPercentage
	}
	if req.MinimumOrder != nil {
		account.MinimumOrder = *req.MinimumOrder
	}
	if req.CreditLimit != nil {
		account.CreditLimit = *req.CreditLimit
	}
	account.UpdatedAt = now

	tx, err := s.wholesaleRepo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.wholesaleRepo.Approve(ctx, tx, account); err != nil {
		return nil, err
	}

	// Admins keep their role.
	if owner != nil && owner.Role == model.RoleCustomer {
		if err = s.userRepo.UpdateRole(ctx, tx, owner.ID, model.RoleWholesale); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to approve wholesale account: %w", err)
	}

	s.logger.Info().
		Str("wholesale_id", id.String()).
		Str("tier", string(account.DiscountTier)).
		Int("discount_percentage", account.DiscountPercentage).
		Msg("wholesale account approved")

	return account, nil
}

func (s *wholesaleService) List(ctx context.Context, approved *bool) ([]model.WholesaleAccount, error) {
	accounts, err := s.wholesaleRepo.List(ctx, approved)
	if err != nil {
		return nil, fmt.Errorf("failed to list wholesale accounts: %w", err)
	}
	return accounts, nil
}

// PriceList applies the account's discount to one page of active products.
func (s *wholesaleService) PriceList(ctx context.Context, userID uuid.UUID, page, limit int) (*model.WholesalePriceList, error) {
	terms, err := s.GetPricing(ctx, userID)
	if err != nil {
		return nil, err
	}

	page, limit, offset := normalisePage(page, limit)
	products, total, err := s.productRepo.List(ctx, model.ProductFilter{
		Sort:   model.SortName,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	priced := make([]model.WholesaleProduct, len(products))
	for i, p := range products {
		wp := model.WholesaleProduct{
			Product:        p,
			WholesalePrice: pricing.WholesaleDiscount(p.Price, terms.DiscountPercentage),
		}
		if len(p.Variants) > 0 {
			wp.WholesaleVariants = make(map[string]int64, len(p.Variants))
			for _, v := range p.Variants {
				wp.WholesaleVariants[v.Size] = pricing.WholesaleDiscount(v.Price, terms.DiscountPercentage)
			}
		}
		priced[i] = wp
	}

	return &model.WholesalePriceList{
		Pricing:    *terms,
		Products:   priced,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages(total, limit),
	}, nil
}
