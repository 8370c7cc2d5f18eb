package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for the product catalogue.
type ProductService interface {
	// List returns one filtered page of the catalogue.
	List(ctx context.Context, query model.ProductQuery) (*model.ProductPage, error)

	// Get retrieves an active product by id or slug.
	Get(ctx context.Context, idOrSlug string) (*model.Product, error)

	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)
	Update(ctx context.Context, id uuid.UUID, req *model.ProductRequest) (*model.Product, error)

	// Delete hides the product, or removes it when hard is set.
	Delete(ctx context.Context, id uuid.UUID, hard bool) error
}

// CategoryService defines operations for catalogue categories.
type CategoryService interface {
	List(ctx context.Context, includeInactive bool) ([]model.Category, error)
	Get(ctx context.Context, idOrSlug string) (*model.Category, error)
	Create(ctx context.Context, req *model.CategoryRequest) (*model.Category, error)
	Update(ctx context.Context, id uuid.UUID, req *model.CategoryRequest) (*model.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CartService defines operations on account and guest carts.
type CartService interface {
	Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *model.AddToCartRequest) (*model.Cart, error)
	SetQuantity(ctx context.Context, userID uuid.UUID, req *model.UpdateCartRequest) (*model.Cart, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID, variantSize string) (*model.Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) error

	GetGuest(ctx context.Context, guestID string) (*model.Cart, error)
	AddGuestItem(ctx context.Context, guestID string, req *model.AddToCartRequest) (*model.Cart, error)
	SetGuestQuantity(ctx context.Context, guestID string, req *model.UpdateCartRequest) (*model.Cart, error)
	RemoveGuestItem(ctx context.Context, guestID string, productID uuid.UUID, variantSize string) (*model.Cart, error)
	ClearGuest(ctx context.Context, guestID string) error

	// MergeGuestCart adds every guest line to the account cart and deletes
	// the guest cart.
	MergeGuestCart(ctx context.Context, userID uuid.UUID, guestID string) (*model.Cart, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// Create validates prices against the catalogue and places the order.
	Create(ctx context.Context, userID uuid.UUID, req *model.CreateOrderRequest) (*model.Order, error)

	// TransitionStatus moves the order along its state machine.
	TransitionStatus(ctx context.Context, id uuid.UUID, req *model.UpdateStatusRequest) (*model.Order, error)

	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (*model.Order, error)

	// Track returns the public projection of an order.
	Track(ctx context.Context, orderNumber string) (*model.OrderTracking, error)

	// Get returns the order if the caller owns it or is an admin.
	Get(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Order, error)

	ListMine(ctx context.Context, userID uuid.UUID, page, limit int) (*model.OrderPage, error)
	ListAll(ctx context.Context, status *model.OrderStatus, page, limit int) (*model.OrderPage, error)
}

// ReviewService defines operations for product reviews.
type ReviewService interface {
	Add(ctx context.Context, caller model.Principal, productID uuid.UUID, req *model.ReviewRequest) (*model.Review, error)
	Update(ctx context.Context, productID, reviewID uuid.UUID, req *model.ReviewRequest) (*model.Review, error)
	Delete(ctx context.Context, productID, reviewID uuid.UUID) error
	List(ctx context.Context, productID uuid.UUID) ([]model.Review, error)
}

// WholesaleService defines operations for wholesale accounts.
type WholesaleService interface {
	Register(ctx context.Context, userID uuid.UUID, profile *model.BusinessProfile) (*model.WholesaleAccount, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.WholesaleAccount, error)

	// GetPricing returns the terms of an approved account.
	GetPricing(ctx context.Context, userID uuid.UUID) (*model.WholesalePricing, error)

	Approve(ctx context.Context, id uuid.UUID, req *model.ApproveWholesaleRequest) (*model.WholesaleAccount, error)
	List(ctx context.Context, approved *bool) ([]model.WholesaleAccount, error)

	// PriceList returns active products with wholesale prices applied.
	PriceList(ctx context.Context, userID uuid.UUID, page, limit int) (*model.WholesalePriceList, error)
}

// AuthService defines account registration and login.
type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)

	// EnsureAdmin creates an admin account unless the email is already taken.
	EnsureAdmin(ctx context.Context, email, password string) error
}

// OrderNotifier publishes customer notifications about orders.
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, order *model.Order) error
	StatusChanged(ctx context.Context, order *model.Order, entry model.StatusEntry) error
}
