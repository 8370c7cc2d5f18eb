package model

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products in the catalogue.
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	Image       string    `json:"image" db:"image"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// CategoryRequest is the admin payload for creating or updating a category.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=1000"`
	Image       string `json:"image" validate:"omitempty,url"`
	IsActive    *bool  `json:"isActive,omitempty"`
}
