package model

import (
	"time"

	"github.com/google/uuid"
)

// Product represents an item in the catalogue.
type Product struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Slug        string     `json:"slug" db:"slug"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty" db:"category_id"`
	Description string     `json:"description" db:"description"`
	Price       int64      `json:"price" db:"price"`
	Variants    []Variant  `json:"variants" db:"variants"`
	Images      []string   `json:"images" db:"images"`
	Badges      []string   `json:"badges" db:"badges"`
	Stock       int        `json:"stock" db:"stock"`
	IsActive    bool       `json:"isActive" db:"is_active"`
	IsFeatured  bool       `json:"isFeatured" db:"is_featured"`
	IsGiftBox   bool       `json:"isGiftBox" db:"is_gift_box"`
	Rating      float64    `json:"rating" db:"rating"`
	ReviewCount int        `json:"reviewCount" db:"review_count"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// Variant is a purchasable size of a product with its own price.
type Variant struct {
	Size  string `json:"size" validate:"required,max=50"`
	Price int64  `json:"price" validate:"gte=0"`
	Stock *int   `json:"stock,omitempty" validate:"omitempty,gte=0"`
	SKU   string `json:"sku,omitempty" validate:"max=64"`
}

// VariantBySize returns the variant with the given size label.
func (p *Product) VariantBySize(size string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].Size == size {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// VariantBySKU returns the variant with the given sku.
func (p *Product) VariantBySKU(sku string) (*Variant, bool) {
	if sku == "" {
		return nil, false
	}
	for i := range p.Variants {
		if p.Variants[i].SKU == sku {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// PrimaryImage returns the first image URL, or an empty string.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ProductFilter holds the catalogue listing filters.
type ProductFilter struct {
	CategoryID    *uuid.UUID
	Search        string
	MinPrice      *int64
	MaxPrice      *int64
	Featured      *bool
	IsGiftBox     *bool
	IncludeHidden bool
	Sort          string
	Limit         int
	Offset        int
}

// Product sort keys.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortName      = "name"
)

// ProductRequest is the admin payload for creating or updating a product.
type ProductRequest struct {
	Name        string     `json:"name" validate:"required,min=2,max=200"`
	CategoryID  *uuid.UUID `json:"categoryId,omitempty"`
	Description string     `json:"description" validate:"max=5000"`
	Price       int64      `json:"price" validate:"gte=0"`
	Variants    []Variant  `json:"variants" validate:"omitempty,dive"`
	Images      []string   `json:"images" validate:"required,min=1,dive,url"`
	Badges      []string   `json:"badges" validate:"omitempty,dive,max=40"`
	Stock       int        `json:"stock" validate:"gte=0"`
	IsActive    *bool      `json:"isActive,omitempty"`
	IsFeatured  bool       `json:"isFeatured"`
	IsGiftBox   bool       `json:"isGiftBox"`
}

// ProductPage is a paginated slice of the catalogue.
type ProductPage struct {
	Products   []Product `json:"products"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	Total      int       `json:"total"`
	TotalPages int       `json:"totalPages"`
}

// ProductQuery is the catalogue listing request. Category is an id or slug.
type ProductQuery struct {
	Category      string
	Search        string
	MinPrice      *int64
	MaxPrice      *int64
	Featured      *bool
	IsGiftBox     *bool
	IncludeHidden bool
	Sort          string
	Page          int
	Limit         int
}
