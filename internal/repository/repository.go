package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Lookups return (nil, nil) when the row does not exist; callers translate
// that into the appropriate domain error.

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List returns one page of products matching filter and the total match count.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetBySlug retrieves a single product by its slug.
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)

	// GetByIDsForUpdate retrieves multiple products by their IDs and holds
	// their row locks until tx ends.
	GetByIDsForUpdate(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Product, error)

	// SlugExists reports whether another product already uses slug.
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)

	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error

	// Deactivate hides a product from the public catalogue.
	Deactivate(ctx context.Context, id uuid.UUID) (bool, error)

	// Delete removes the product row.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// DecrementStock takes qty units if at least qty are available. It
	// reports false when stock is insufficient or the product is gone.
	DecrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) (bool, error)

	// IncrementStock returns qty units to a product.
	IncrementStock(ctx context.Context, tx pgx.Tx, id uuid.UUID, qty int) error
}

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	List(ctx context.Context, includeInactive bool) ([]model.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	NameExists(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// UserRepository defines the interface for account data access operations.
type UserRepository interface {
	// Create inserts a user. A duplicate email yields model.ErrAlreadyExists.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// UpdateRole changes a user's role within the provided transaction.
	UpdateRole(ctx context.Context, tx pgx.Tx, id uuid.UUID, role model.Role) error
}

// CartRepository stores account carts.
type CartRepository interface {
	// GetOrCreate returns the account's cart, creating an empty one if needed.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.Cart, error)

	// Save replaces the cart's line items.
	Save(ctx context.Context, cart *model.Cart) error

	// Clear removes every line item from the account's cart.
	Clear(ctx context.Context, userID uuid.UUID) error
}

// GuestCartRepository stores anonymous carts keyed by guest id.
type GuestCartRepository interface {
	Get(ctx context.Context, guestID string) (*model.Cart, error)
	Save(ctx context.Context, cart *model.Cart) error
	Delete(ctx context.Context, guestID string) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// AppendStatus adds a status history entry within the provided transaction.
	AppendStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, entry model.StatusEntry) error

	// GetByID retrieves an order by its ID along with its items and history.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// GetByNumber retrieves an order by its order number along with its items and history.
	GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error)

	// GetForUpdate locks the order row and returns it with its items.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// List returns one page of orders, newest first, and the total match count.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, int, error)

	// UpdateStatus persists status, payment status and delivery time.
	UpdateStatus(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// UpdatePaymentStatus sets the payment status only.
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (bool, error)
}

// ReviewRepository defines the interface for review data access operations.
type ReviewRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// LockProduct takes a row lock on the product, reporting false if it
	// does not exist or, with activeOnly, is hidden from the catalogue.
	LockProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID, activeOnly bool) (bool, error)

	// Create inserts a review. A second review by the same user yields
	// model.ErrAlreadyReviewed.
	Create(ctx context.Context, tx pgx.Tx, review *model.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	Update(ctx context.Context, tx pgx.Tx, review *model.Review) error
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.Review, error)

	// Ratings returns every rating of the product.
	Ratings(ctx context.Context, tx pgx.Tx, productID uuid.UUID) ([]int, error)

	// SetProductRating stores the recomputed aggregate on the product.
	SetProductRating(ctx context.Context, tx pgx.Tx, productID uuid.UUID, summary model.RatingSummary) error
}

// WholesaleRepository defines the interface for wholesale account data access operations.
type WholesaleRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts an account. A second account for the same user yields
	// model.ErrAlreadyRegistered.
	Create(ctx context.Context, account *model.WholesaleAccount) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.WholesaleAccount, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*model.WholesaleAccount, error)
	List(ctx context.Context, approved *bool) ([]model.WholesaleAccount, error)

	// Approve persists the approval flag and pricing terms within the provided transaction.
	Approve(ctx context.Context, tx pgx.Tx, account *model.WholesaleAccount) error
}
