package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrProductNotFound     = fmt.Errorf("product %w", ErrNotFound)
	ErrVariantNotFound     = fmt.Errorf("variant %w", ErrNotFound)
	ErrCategoryNotFound    = fmt.Errorf("category %w", ErrNotFound)
	ErrOrderNotFound       = fmt.Errorf("order %w", ErrNotFound)
	ErrCartItemNotFound    = fmt.Errorf("cart item %w", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrStaffNotFound       = fmt.Errorf("staff profile %w", ErrNotFound)
	ErrReviewNotFound      = fmt.Errorf("review %w", ErrNotFound)
	ErrPaymentNotFound     = fmt.Errorf("payment %w", ErrNotFound)
	ErrEmptyCart           = errors.New("your cart is empty")
	ErrInvalidShipping     = errors.New("please fill in all shipping information")
	ErrInvalidVariant      = errors.New("invalid product variant")
	ErrProductUnavailable  = errors.New("product is not available online")
	ErrInvalidQuantity     = errors.New("quantity must be greater than 0")
	ErrInvalidPayment      = errors.New("unsupported payment method")
	ErrInvalidTransition   = errors.New("invalid order status transition")
	ErrInvalidStatus       = errors.New("invalid order status")
	ErrReviewPending       = errors.New("order is awaiting fraud review")
	ErrReviewClosed        = errors.New("review already resolved")
	ErrNegativeStock       = errors.New("stock cannot go below zero")
	ErrInvalidRole         = errors.New("invalid role")
	ErrForbidden           = errors.New("you do not have permission to perform this action")
	ErrInvalidTrackingCode = errors.New("invalid or expired tracking code")
)

// InsufficientStockError is returned when a line asks for more units than
// are on hand at commit time.
type InsufficientStockError struct {
	SKU       string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %s is out of stock: requested %d, only %d available", e.SKU, e.Requested, e.Available)
}

// ValidationError is rejected user input; its message is safe to return to
// the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Invalid(message string) error {
	return &ValidationError{Message: message}
}
