package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Status    string   `json:"status"`
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Errors    []string `json:"errors,omitempty"`
	RequestID string   `json:"requestId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON             = "INVALID_JSON"
	ErrCodeValidationFailed        = "VALIDATION_FAILED"
	ErrCodeNotFound                = "NOT_FOUND"
	ErrCodeProductNotFound         = "PRODUCT_NOT_FOUND"
	ErrCodeVariantNotFound         = "VARIANT_NOT_FOUND"
	ErrCodeCategoryNotFound        = "CATEGORY_NOT_FOUND"
	ErrCodeOrderNotFound           = "ORDER_NOT_FOUND"
	ErrCodeItemNotFound            = "CART_ITEM_NOT_FOUND"
	ErrCodeWholesaleNotFound       = "WHOLESALE_NOT_FOUND"
	ErrCodePriceMismatch           = "PRICE_MISMATCH"
	ErrCodeOutOfStock              = "OUT_OF_STOCK"
	ErrCodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	ErrCodeAlreadyExists           = "ALREADY_EXISTS"
	ErrCodeAlreadyReviewed         = "ALREADY_REVIEWED"
	ErrCodeAlreadyRegistered       = "ALREADY_REGISTERED"
	ErrCodeNotApproved             = "WHOLESALE_NOT_APPROVED"
	ErrCodeUnauthorised            = "UNAUTHORIZED"
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeInternalError           = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
	Details []string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so specialised errors
// built with WithMessage still match their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of the error with a different message.
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{Code: e.Code, Message: message}
}

// WithDetails returns a copy of the error carrying per-field details.
func (e *DomainError) WithDetails(details ...string) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Details: details}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrValidationFailed        = NewDomainError(ErrCodeValidationFailed, "Request validation failed")
	ErrNotFound                = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrProductNotFound         = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrVariantNotFound         = NewDomainError(ErrCodeVariantNotFound, "Product variant not found")
	ErrCategoryNotFound        = NewDomainError(ErrCodeCategoryNotFound, "Category not found")
	ErrOrderNotFound           = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrItemNotFound            = NewDomainError(ErrCodeItemNotFound, "Item not found in cart")
	ErrWholesaleNotFound       = NewDomainError(ErrCodeWholesaleNotFound, "Wholesale account not found")
	ErrPriceMismatch           = NewDomainError(ErrCodePriceMismatch, "Product price has changed")
	ErrOutOfStock              = NewDomainError(ErrCodeOutOfStock, "Insufficient stock")
	ErrInvalidStatusTransition = NewDomainError(ErrCodeInvalidStatusTransition, "Invalid order status transition")
	ErrAlreadyExists           = NewDomainError(ErrCodeAlreadyExists, "Resource already exists")
	ErrAlreadyReviewed         = NewDomainError(ErrCodeAlreadyReviewed, "You have already reviewed this product")
	ErrAlreadyRegistered       = NewDomainError(ErrCodeAlreadyRegistered, "Wholesale account already registered")
	ErrNotApproved             = NewDomainError(ErrCodeNotApproved, "Wholesale account is pending approval")
	ErrUnauthenticated         = NewDomainError(ErrCodeUnauthorised, "Authentication required")
	ErrInvalidCredentials      = NewDomainError(ErrCodeUnauthorised, "Invalid email or password")
	ErrForbidden               = NewDomainError(ErrCodeForbidden, "You do not have permission to perform this action")
)
