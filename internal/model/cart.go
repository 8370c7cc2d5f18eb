package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Cart holds the line items of an account or a guest visitor.
type Cart struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"userId,omitempty"`
	GuestID   string     `json:"guestId,omitempty"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartItem is a line in a cart. Name, Image and Price are snapshots taken
// when the product was added.
type CartItem struct {
	ProductID   uuid.UUID `json:"productId"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	Price       int64     `json:"price"`
	Quantity    int       `json:"quantity"`
	VariantSize string    `json:"variantSize,omitempty"`
}

// Matches reports whether the line is keyed by the given product and variant.
func (i CartItem) Matches(productID uuid.UUID, variantSize string) bool {
	return i.ProductID == productID && i.VariantSize == variantSize
}

// Find returns the index of the line keyed by product and variant, or -1.
func (c *Cart) Find(productID uuid.UUID, variantSize string) int {
	for i := range c.Items {
		if c.Items[i].Matches(productID, variantSize) {
			return i
		}
	}
	return -1
}

// Subtotal is the sum of price snapshots times quantities.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// MarshalJSON adds the computed subtotal to the cart payload.
func (c Cart) MarshalJSON() ([]byte, error) {
	type cart Cart
	return json.Marshal(struct {
		cart
		Subtotal int64 `json:"subtotal"`
	}{cart(c), c.Subtotal()})
}

// AddToCartRequest is the payload for POST /cart/add.
type AddToCartRequest struct {
	ProductID   uuid.UUID `json:"productId" validate:"required"`
	Quantity    int       `json:"quantity"`
	VariantSize string    `json:"variantSize,omitempty" validate:"max=50"`
}

// UpdateCartRequest is the payload for PUT /cart/update.
type UpdateCartRequest struct {
	ProductID   uuid.UUID `json:"productId" validate:"required"`
	Quantity    int       `json:"quantity"`
	VariantSize string    `json:"variantSize,omitempty" validate:"max=50"`
}
