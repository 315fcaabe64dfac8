package domain

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

type ErrorKind string

const (
	KindValidation        ErrorKind = "VALIDATION_ERROR"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindConflict          ErrorKind = "CONFLICT"
	KindForbidden         ErrorKind = "FORBIDDEN"
	KindUnauthorized      ErrorKind = "UNAUTHORIZED"
	KindInsufficientStock ErrorKind = "INSUFFICIENT_STOCK"
	KindEmptyCart         ErrorKind = "EMPTY_CART"
	KindCouponExpired     ErrorKind = "COUPON_EXPIRED"
	KindInvalidAddress    ErrorKind = "INVALID_ADDRESS"
	KindPaymentFailed     ErrorKind = "PAYMENT_FAILED"
	KindInvalidTransition ErrorKind = "INVALID_TRANSITION"
	KindInternal          ErrorKind = "INTERNAL_ERROR"
)

// Error is the typed failure returned by services. The REST layer maps Kind
// to an HTTP status, and Details is rendered as-is.
type Error struct {
	Kind    ErrorKind
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind, so errors.Is(err, ErrEmptyCart) holds for any empty cart error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock}
	ErrEmptyCart         = &Error{Kind: KindEmptyCart}
	ErrCouponExpired     = &Error{Kind: KindCouponExpired}
	ErrInvalidAddress    = &Error{Kind: KindInvalidAddress}
	ErrPaymentFailed     = &Error{Kind: KindPaymentFailed}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrInternal          = &Error{Kind: KindInternal}
)

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func NewValidationError(message string, details map[string]any) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func NewNotFoundError(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func NewInsufficientStockError(productID uuid.UUID, name string, available, requested int) *Error {
	return &Error{
		Kind:    KindInsufficientStock,
		Message: fmt.Sprintf("insufficient stock for %s", name),
		Details: map[string]any{
			"product_id": productID.String(),
			"available":  available,
			"requested":  requested,
		},
	}
}

func NewEmptyCartError() *Error {
	return &Error{Kind: KindEmptyCart, Message: "cart is empty"}
}

func NewCouponExpiredError(code string) *Error {
	return &Error{
		Kind:    KindCouponExpired,
		Message: "coupon has expired",
		Details: map[string]any{"code": code},
	}
}

func NewInvalidAddressError(addressID uuid.UUID) *Error {
	return &Error{
		Kind:    KindInvalidAddress,
		Message: "address not found for this user",
		Details: map[string]any{"address_id": addressID.String()},
	}
}

func NewPaymentFailedError(reason string, cause error) *Error {
	return &Error{
		Kind:    KindPaymentFailed,
		Message: "payment was not completed",
		Details: map[string]any{"reason": reason},
		Err:     cause,
	}
}

func NewInvalidTransitionError(from, to OrderStatus) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot move order from %s to %s", from, to),
		Details: map[string]any{"from": string(from), "to": string(to)},
	}
}

func NewInternalError(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: cause}
}
