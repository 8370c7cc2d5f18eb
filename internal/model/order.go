package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

// Order statuses.
const (
	StatusPending    OrderStatus = "Pending"
	StatusConfirmed  OrderStatus = "Confirmed"
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// nextStatus is the linear happy path.
var nextStatus = map[OrderStatus]OrderStatus{
	StatusPending:    StatusConfirmed,
	StatusConfirmed:  StatusProcessing,
	StatusProcessing: StatusShipped,
	StatusShipped:    StatusDelivered,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo allows the next happy-path step, or cancellation from any
// non-terminal status.
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	return nextStatus[s] == to
}

// PaymentStatus is the settlement state of an order.
type PaymentStatus string

// Payment statuses.
const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentFailed  PaymentStatus = "Failed"
)

// Valid reports whether p is a known payment status.
func (p PaymentStatus) Valid() bool {
	return p == PaymentPending || p == PaymentPaid || p == PaymentFailed
}

// PaymentMethod is the label of the method chosen at checkout.
type PaymentMethod string

// Payment methods.
const (
	PaymentCOD          PaymentMethod = "COD"
	PaymentCard         PaymentMethod = "Card"
	PaymentBankTransfer PaymentMethod = "Bank Transfer"
	PaymentJazzCash     PaymentMethod = "JazzCash"
	PaymentEasypaisa    PaymentMethod = "Easypaisa"
)

// Valid reports whether m is an accepted payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentCard, PaymentBankTransfer, PaymentJazzCash, PaymentEasypaisa:
		return true
	}
	return false
}

// Order represents a customer order. Items, address and prices are frozen
// at creation.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"userId" db:"user_id"`
	OrderNumber     string          `json:"orderNumber" db:"order_number"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" db:"payment_method"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	Status          OrderStatus     `json:"status" db:"status"`
	ItemsPrice      int64           `json:"itemsPrice" db:"items_price"`
	ShippingPrice   int64           `json:"shippingPrice" db:"shipping_price"`
	TaxPrice        int64           `json:"taxPrice" db:"tax_price"`
	TotalPrice      int64           `json:"totalPrice" db:"total_price"`
	IsGiftBox       bool            `json:"isGiftBox" db:"is_gift_box"`
	Notes           string          `json:"notes,omitempty" db:"notes"`
	StatusHistory   []StatusEntry   `json:"statusHistory"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty" db:"delivered_at"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID          uuid.UUID `json:"-" db:"id"`
	OrderID     uuid.UUID `json:"-" db:"order_id"`
	ProductID   uuid.UUID `json:"productId" db:"product_id"`
	Name        string    `json:"name" db:"name"`
	Image       string    `json:"image" db:"image"`
	Price       int64     `json:"price" db:"price"`
	Quantity    int       `json:"quantity" db:"quantity"`
	VariantSize string    `json:"variantSize,omitempty" db:"variant_size"`
	VariantSKU  string    `json:"variantSku,omitempty" db:"variant_sku"`
}

// ShippingAddress is the delivery address snapshot stored with an order.
type ShippingAddress struct {
	Name       string `json:"name" validate:"required,max=100"`
	Phone      string `json:"phone" validate:"required,max=30"`
	Email      string `json:"email" validate:"required,email"`
	Street     string `json:"street" validate:"required,max=200"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state" validate:"max=100"`
	PostalCode string `json:"postalCode" validate:"max=20"`
	Country    string `json:"country" validate:"required,max=100"`
}

// StatusEntry is one append-only record of the order's status history.
type StatusEntry struct {
	Status    OrderStatus `json:"status"`
	Note      string      `json:"note,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// CreateOrderRequest represents the request payload for creating an order.
type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddress ShippingAddress    `json:"shippingAddress" validate:"required"`
	PaymentMethod   PaymentMethod      `json:"paymentMethod" validate:"required"`
	Notes           string             `json:"notes,omitempty" validate:"max=1000"`
	IsGiftBox       bool               `json:"isGiftBox,omitempty"`
}

// OrderItemRequest represents a single item in an order request. Price is
// what the shopper saw; it is checked against the catalogue.
type OrderItemRequest struct {
	ProductID uuid.UUID   `json:"productId" validate:"required"`
	Name      string      `json:"name,omitempty" validate:"max=200"`
	Image     string      `json:"image,omitempty"`
	Price     int64       `json:"price" validate:"gte=0"`
	Quantity  int         `json:"quantity" validate:"required,min=1"`
	Variant   *VariantRef `json:"variant,omitempty"`
}

// VariantRef selects a product variant by sku or size.
type VariantRef struct {
	Size string `json:"size,omitempty" validate:"max=50"`
	SKU  string `json:"sku,omitempty" validate:"max=64"`
}

// UpdateStatusRequest is the admin payload for a status transition.
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
	Note   string      `json:"note,omitempty" validate:"max=500"`
}

// UpdatePaymentRequest is the admin payload for a payment status change.
type UpdatePaymentRequest struct {
	PaymentStatus PaymentStatus `json:"paymentStatus" validate:"required"`
}

// OrderTracking is the public, PII-free projection of an order.
type OrderTracking struct {
	OrderNumber   string        `json:"orderNumber"`
	Status        OrderStatus   `json:"status"`
	StatusHistory []StatusEntry `json:"statusHistory"`
	CreatedAt     time.Time     `json:"createdAt"`
	DeliveredAt   *time.Time    `json:"deliveredAt,omitempty"`
}

// Tracking projects the order for the public tracking endpoint.
func (o *Order) Tracking() *OrderTracking {
	return &OrderTracking{
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		StatusHistory: o.StatusHistory,
		CreatedAt:     o.CreatedAt,
		DeliveredAt:   o.DeliveredAt,
	}
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	UserID *uuid.UUID
	Status *OrderStatus
	Limit  int
	Offset int
}

// OrderPage is a paginated list of orders.
type OrderPage struct {
	Orders     []Order `json:"orders"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	Total      int     `json:"total"`
	TotalPages int     `json:"totalPages"`
}
