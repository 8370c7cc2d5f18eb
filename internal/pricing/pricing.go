// Package pricing holds the side-effect-free money rules shared by the cart,
// checkout and wholesale views. All amounts are integer currency units.
package pricing

import (
	"fmt"
	"math"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// Totals is the price breakdown of an order.
type Totals struct {
	ItemsPrice    int64 `json:"itemsPrice"`
	ShippingPrice int64 `json:"shippingPrice"`
	TaxPrice      int64 `json:"taxPrice"`
	TotalPrice    int64 `json:"totalPrice"`
}

// LineSubtotal sums unit price times quantity over items.
func LineSubtotal(items []model.OrderItem) int64 {
	var sum int64
	for _, item := range items {
		sum += item.Price * int64(item.Quantity)
	}
	return sum
}

// ComputeTotals derives the full breakdown. Tax is rounded half away from
// zero; the total is always the exact sum of its parts.
func ComputeTotals(items []model.OrderItem, shippingPrice int64, taxPercentage float64) Totals {
	itemsPrice := LineSubtotal(items)
	taxPrice := int64(math.Round(float64(itemsPrice) * taxPercentage / 100))
	return Totals{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shippingPrice,
		TaxPrice:      taxPrice,
		TotalPrice:    itemsPrice + shippingPrice + taxPrice,
	}
}

// WholesaleDiscount applies a percentage discount, rounded to a whole unit.
func WholesaleDiscount(price int64, discountPercentage int) int64 {
	p := float64(price)
	return int64(math.Round(p - p*float64(discountPercentage)/100))
}

// AverageRating is the mean of ratings rounded to one decimal place, or 0
// when there are none.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum int
	for _, r := range ratings {
		sum += r
	}
	mean := float64(sum) / float64(len(ratings))
	return math.Round(mean*10) / 10
}

// ResolvedItem is an order line whose product and variant were found in
// the catalogue.
type ResolvedItem struct {
	Product *model.Product
	Variant *model.Variant
	Request model.OrderItemRequest
}

// ValidatePrices checks every requested line against the live catalogue.
// It fails on the first line whose product is missing or inactive, whose
// variant is missing, or whose price differs from the catalogue price.
func ValidatePrices(items []model.OrderItemRequest, catalog map[uuid.UUID]model.Product) ([]ResolvedItem, error) {
	resolved := make([]ResolvedItem, 0, len(items))

	for _, item := range items {
		product, ok := catalog[item.ProductID]
		if !ok || !product.IsActive {
			return nil, model.ErrProductNotFound.WithMessage(
				fmt.Sprintf("Product %s is no longer available", item.ProductID))
		}

		current := product.Price
		var variant *model.Variant

		if item.Variant != nil && (item.Variant.SKU != "" || item.Variant.Size != "") {
			v, found := product.VariantBySKU(item.Variant.SKU)
			if !found {
				v, found = product.VariantBySize(item.Variant.Size)
			}
			if !found {
				return nil, model.ErrVariantNotFound.WithMessage(
					fmt.Sprintf("Variant %q of %s is no longer available", variantLabel(item.Variant), product.Name))
			}
			variant = v
			current = v.Price
		}

		if item.Price != current {
			label := product.Name
			if variant != nil {
				label = fmt.Sprintf("%s (%s)", product.Name, variant.Size)
			}
			return nil, model.ErrPriceMismatch.WithMessage(
				fmt.Sprintf("Price of %s has changed from %d to %d", label, item.Price, current))
		}

		resolved = append(resolved, ResolvedItem{Product: &product, Variant: variant, Request: item})
	}

	return resolved, nil
}

func variantLabel(v *model.VariantRef) string {
	if v.SKU != "" {
		return v.SKU
	}
	return v.Size
}
