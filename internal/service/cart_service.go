package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var guestIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// cartService implements CartService. Account carts live in PostgreSQL and
// guest carts in Redis; both share the same line-item rules.
type cartService struct {
	cartRepo    repository.CartRepository
	guestRepo   repository.GuestCartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service. guestRepo may be nil, in which
// case guest carts are unavailable and merges are skipped.
func NewCartService(
	cartRepo repository.CartRepository,
	guestRepo repository.GuestCartRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		guestRepo:   guestRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// errGuestCartsDisabled is returned by guest operations without a guest store.
var errGuestCartsDisabled = errors.New("guest carts are not enabled")

func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (*model.Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.addLine(ctx, cart, req.ProductID, req.Quantity, req.VariantSize); err != nil {
		return nil, err
	}
	return s.saveAccount(ctx, cart)
}

func (s *cartService) SetQuantity(ctx context.Context, userID uuid.UUID, req *model.UpdateCartRequest) (*model.Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := setLine(cart, req.ProductID, req.Quantity, req.VariantSize); err != nil {
		return nil, err
	}
	return s.saveAccount(ctx, cart)
}

// RemoveItem succeeds whether or not the line exists.
func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID, variantSize string) (*model.Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !removeLine(cart, productID, variantSize) {
		return cart, nil
	}
	return s.saveAccount(ctx, cart)
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	s.logger.Debug().Str("user_id", userID.String()).Msg("cart cleared")
	return nil
}

// GetGuest returns the guest cart, or an empty one if none is stored.
func (s *cartService) GetGuest(ctx context.Context, guestID string) (*model.Cart, error) {
	if s.guestRepo == nil {
		return nil, errGuestCartsDisabled
	}
	if !guestIDPattern.MatchString(guestID) {
		return nil, model.ErrValidationFailed.WithMessage("Invalid guest cart id")
	}

	cart, err := s.guestRepo.Get(ctx, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guest cart: %w", err)
	}
	if cart == nil {
		now := time.Now().UTC()
		cart = &model.Cart{GuestID: guestID, Items: []model.CartItem{}, CreatedAt: now, UpdatedAt: now}
	}
	return cart, nil
}

func (s *cartService) AddGuestItem(ctx context.Context, guestID string, req *model.AddToCartRequest) (*model.Cart, error) {
	cart, err := s.GetGuest(ctx, guestID)
	if err != nil {
		return nil, err
	}
	if err := s.addLine(ctx, cart, req.ProductID, req.Quantity, req.VariantSize); err != nil {
		return nil, err
	}
	return s.saveGuest(ctx, cart)
}

func (s *cartService) SetGuestQuantity(ctx context.Context, guestID string, req *model.UpdateCartRequest) (*model.Cart, error) {
	cart, err := s.GetGuest(ctx, guestID)
	if err != nil {
		return nil, err
	}
	if err := setLine(cart, req.ProductID, req.Quantity, req.VariantSize); err != nil {
		return nil, err
	}
	return s.saveGuest(ctx, cart)
}

func (s *cartService) RemoveGuestItem(ctx context.Context, guestID string, productID uuid.UUID, variantSize string) (*model.Cart, error) {
	cart, err := s.GetGuest(ctx, guestID)
	if err != nil {
		return nil, err
	}
	if !removeLine(cart, productID, variantSize) {
		return cart, nil
	}
	return s.saveGuest(ctx, cart)
}

func (s *cartService) ClearGuest(ctx context.Context, guestID string) error {
	if s.guestRepo == nil {
		return errGuestCartsDisabled
	}
	if !guestIDPattern.MatchString(guestID) {
		return model.ErrValidationFailed.WithMessage("Invalid guest cart id")
	}
	if err := s.guestRepo.Delete(ctx, guestID); err != nil {
		return fmt.Errorf("failed to clear guest cart: %w", err)
	}
	return nil
}

// MergeGuestCart re-adds every guest line at current catalogue prices. Lines
// whose product or variant is gone are skipped.
func (s *cartService) MergeGuestCart(ctx context.Context, userID uuid.UUID, guestID string) (*model.Cart, error) {
	if s.guestRepo == nil || guestID == "" {
		return s.Get(ctx, userID)
	}

	guest, err := s.GetGuest(ctx, guestID)
	if err != nil {
		return nil, err
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := 0
	for _, line := range guest.Items {
		err := s.addLine(ctx, cart, line.ProductID, line.Quantity, line.VariantSize)
		if errors.Is(err, model.ErrProductNotFound) || errors.Is(err, model.ErrVariantNotFound) {
			s.logger.Warn().
				Str("guest_id", guestID).
				Str("product_id", line.ProductID.String()).
				Msg("skipping unavailable guest cart line")
			continue
		}
		if err != nil {
			return nil, err
		}
		merged++
	}

	if merged > 0 {
		if cart, err = s.saveAccount(ctx, cart); err != nil {
			return nil, err
		}
	}

	if err := s.guestRepo.Delete(ctx, guestID); err != nil {
		s.logger.Warn().Err(err).Str("guest_id", guestID).Msg("failed to delete merged guest cart")
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("guest_id", guestID).
		Int("merged", merged).
		Msg("guest cart merged")

	return cart, nil
}

// addLine adds quantity to the matching line, or appends a line carrying a
// snapshot of the current product or variant price.
func (s *cartService) addLine(ctx context.Context, cart *model.Cart, productID uuid.UUID, quantity int, variantSize string) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil || !product.IsActive {
		return model.ErrProductNotFound
	}

	price := product.Price
	if variantSize != "" {
		variant, ok := product.VariantBySize(variantSize)
		if !ok {
			return model.ErrVariantNotFound.WithMessage(
				fmt.Sprintf("Variant %q of %s is not available", variantSize, product.Name))
		}
		price = variant.Price
	}

	if quantity < 1 {
		quantity = 1
	}

	if i := cart.Find(productID, variantSize); i >= 0 {
		cart.Items[i].Quantity += quantity
		return nil
	}

	cart.Items = append(cart.Items, model.CartItem{
		ProductID:   productID,
		Name:        product.Name,
		Image:       product.PrimaryImage(),
		Price:       price,
		Quantity:    quantity,
		VariantSize: variantSize,
	})
	return nil
}

// setLine sets the quantity of an existing line; zero or less removes it.
func setLine(cart *model.Cart, productID uuid.UUID, quantity int, variantSize string) error {
	i := cart.Find(productID, variantSize)
	if i < 0 {
		return model.ErrItemNotFound
	}
	if quantity <= 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		return nil
	}
	cart.Items[i].Quantity = quantity
	return nil
}

// removeLine reports whether a line was removed.
func removeLine(cart *model.Cart, productID uuid.UUID, variantSize string) bool {
	i := cart.Find(productID, variantSize)
	if i < 0 {
		return false
	}
	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	return true
}

func (s *cartService) saveAccount(ctx context.Context, cart *model.Cart) (*model.Cart, error) {
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return cart, nil
}

func (s *cartService) saveGuest(ctx context.Context, cart *model.Cart) (*model.Cart, error) {
	if err := s.guestRepo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save guest cart: %w", err)
	}
	return cart, nil
}
