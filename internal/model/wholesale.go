package model

import (
	"time"

	"github.com/google/uuid"
)

// DiscountTier is the wholesale discount band.
type DiscountTier string

// Discount tiers.
const (
	TierBronze   DiscountTier = "Bronze"
	TierSilver   DiscountTier = "Silver"
	TierGold     DiscountTier = "Gold"
	TierPlatinum DiscountTier = "Platinum"
)

// Valid reports whether t is a known tier.
func (t DiscountTier) Valid() bool {
	switch t {
	case TierBronze, TierSilver, TierGold, TierPlatinum:
		return true
	}
	return false
}

// Wholesale defaults.
const (
	DefaultDiscountPercentage = 5
	MaxDiscountPercentage     = 50
	DefaultMinimumOrder       = 10000
)

// WholesaleAccount is the B2B profile of an account.
type WholesaleAccount struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	UserID             uuid.UUID       `json:"userId" db:"user_id"`
	Profile            BusinessProfile `json:"profile"`
	IsApproved         bool            `json:"isApproved" db:"is_approved"`
	DiscountTier       DiscountTier    `json:"discountTier" db:"discount_tier"`
	DiscountPercentage int             `json:"discountPercentage" db:"discount_percentage"`
	MinimumOrder       int64           `json:"minimumOrder" db:"minimum_order"`
	CreditLimit        int64           `json:"creditLimit" db:"credit_limit"`
	ApprovedAt         *time.Time      `json:"approvedAt,omitempty" db:"approved_at"`
	CreatedAt          time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time       `json:"updatedAt" db:"updated_at"`
}

// BusinessProfile is the business information supplied at registration.
type BusinessProfile struct {
	BusinessName string `json:"businessName" validate:"required,min=2,max=200"`
	BusinessType string `json:"businessType" validate:"required,max=100"`
	TaxID        string `json:"taxId,omitempty" validate:"max=50"`
	Phone        string `json:"phone" validate:"required,max=30"`
	Address      string `json:"address" validate:"required,max=300"`
	Website      string `json:"website,omitempty" validate:"omitempty,url"`
}

// WholesalePricing is what an approved account may see.
type WholesalePricing struct {
	DiscountTier       DiscountTier `json:"discountTier"`
	DiscountPercentage int          `json:"discountPercentage"`
	MinimumOrder       int64        `json:"minimumOrder"`
	CreditLimit        int64        `json:"creditLimit"`
}

// ApproveWholesaleRequest optionally adjusts the terms on approval.
type ApproveWholesaleRequest struct {
	DiscountTier       *DiscountTier `json:"discountTier,omitempty"`
	DiscountPercentage *int          `json:"discountPercentage,omitempty" validate:"omitempty,min=0,max=50"`
	MinimumOrder       *int64        `json:"minimumOrder,omitempty" validate:"omitempty,gte=0"`
	CreditLimit        *int64        `json:"creditLimit,omitempty" validate:"omitempty,gte=0"`
}

// WholesaleProduct is a catalogue product with wholesale prices applied.
type WholesaleProduct struct {
	Product
	WholesalePrice    int64            `json:"wholesalePrice"`
	WholesaleVariants map[string]int64 `json:"wholesaleVariants,omitempty"`
}

// WholesalePriceList is a page of wholesale-priced products.
type WholesalePriceList struct {
	Pricing    WholesalePricing   `json:"pricing"`
	Products   []WholesaleProduct `json:"products"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	Total      int                `json:"total"`
	TotalPages int                `json:"totalPages"`
}
