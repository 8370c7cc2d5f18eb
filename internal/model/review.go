package model

import (
	"time"

	"github.com/google/uuid"
)

// Review is a customer rating of a product.
type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ReviewRequest is the payload for adding or editing a review.
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=1000"`
}

// RatingSummary is the derived rating of a product.
type RatingSummary struct {
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
}
