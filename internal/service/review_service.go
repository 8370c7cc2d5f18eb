package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// reviewService implements ReviewService. Every mutation locks the product
// row and recomputes its rating from the full review list before commit.
type reviewService struct {
	reviewRepo repository.ReviewRepository
	userRepo   repository.UserRepository
	logger     zerolog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		userRepo:   userRepo,
		logger:     logger.With().Str("service", "review").Logger(),
	}
}

func (s *reviewService) Add(ctx context.Context, caller model.Principal, productID uuid.UUID, req *model.ReviewRequest) (*model.Review, error) {
	if caller.IsAdmin() {
		return nil, model.ErrForbidden.WithMessage("Administrators cannot review products")
	}

	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUnauthenticated
	}

	now := time.Now().UTC()
	review := &model.Review{
		ID:        uuid.New(),
		ProductID: productID,
		UserID:    user.ID,
		Name:      user.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.withProductLock(ctx, productID, true, func(tx pgx.Tx) error {
		return s.reviewRepo.Create(ctx, tx, review)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", productID.String()).
		Str("review_id", review.ID.String()).
		Int("rating", review.Rating).
		Msg("review added")

	return review, nil
}

func (s *reviewService) Update(ctx context.Context, productID, reviewID uuid.UUID, req *model.ReviewRequest) (*model.Review, error) {
	review, err := s.find(ctx, productID, reviewID)
	if err != nil {
		return nil, err
	}

	review.Rating = req.Rating
	review.Comment = req.Comment
	review.UpdatedAt = time.Now().UTC()

	err = s.withProductLock(ctx, productID, false, func(tx pgx.Tx) error {
		return s.reviewRepo.Update(ctx, tx, review)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("review_id", reviewID.String()).Msg("review updated")
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, productID, reviewID uuid.UUID) error {
	if _, err := s.find(ctx, productID, reviewID); err != nil {
		return err
	}

	err := s.withProductLock(ctx, productID, false, func(tx pgx.Tx) error {
		return s.reviewRepo.Delete(ctx, tx, reviewID)
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("review_id", reviewID.String()).Msg("review deleted")
	return nil
}

func (s *reviewService) List(ctx context.Context, productID uuid.UUID) ([]model.Review, error) {
	reviews, err := s.reviewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (s *reviewService) find(ctx context.Context, productID, reviewID uuid.UUID) (*model.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	if review == nil || review.ProductID != productID {
		return nil, model.ErrNotFound.WithMessage("Review not found")
	}
	return review, nil
}

// withProductLock runs mutate and the rating recomputation in one
// transaction holding the product row lock. New reviews need an active
// product; moderation also reaches hidden ones.
func (s *reviewService) withProductLock(ctx context.Context, productID uuid.UUID, activeOnly bool, mutate func(tx pgx.Tx) error) (err error) {
	tx, err := s.reviewRepo.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	found, err := s.reviewRepo.LockProduct(ctx, tx, productID, activeOnly)
	if err != nil {
		return err
	}
	if !found {
		return model.ErrProductNotFound
	}

	if err = mutate(tx); err != nil {
		return err
	}

	ratings, err := s.reviewRepo.Ratings(ctx, tx, productID)
	if err != nil {
		return err
	}
	summary := model.RatingSummary{Rating: pricing.AverageRating(ratings), ReviewCount: len(ratings)}
	if err = s.reviewRepo.SetProductRating(ctx, tx, productID, summary); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit review: %w", err)
	}

	s.logger.Debug().
		Str("product_id", productID.String()).
		Float64("rating", summary.Rating).
		Int("review_count", summary.ReviewCount).
		Msg("product rating recomputed")
	return nil
}
