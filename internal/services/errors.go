package services

import "fmt"

// Kind classifies a business-rule failure so handlers can map it to the wire
// contract without string matching.
type Kind string

const (
	KindValidation          Kind = "VALIDATION_FAILED"
	KindProductNotFound     Kind = "PRODUCT_NOT_FOUND"
	KindProductUnavailable  Kind = "PRODUCT_UNAVAILABLE"
	KindProductExpired      Kind = "PRODUCT_EXPIRED"
	KindInsufficientStock   Kind = "INSUFFICIENT_STOCK"
	KindOrderNotFound       Kind = "ORDER_NOT_FOUND"
	KindAccessDenied        Kind = "ACCESS_DENIED"
	KindAlreadyCancelled    Kind = "ALREADY_CANCELLED"
	KindCannotCancelShipped Kind = "CANNOT_CANCEL_SHIPPED"
	KindCancelWindowExpired Kind = "CANCEL_WINDOW_EXPIRED"
)

// Error is a recoverable business failure surfaced to the caller. Anything
// else bubbling out of a service is a store failure and is reported
// generically.
type Error struct {
	Kind    Kind
	Message string
	// Available carries the remaining quantity for INSUFFICIENT_STOCK.
	Available int
}

func (e *Error) Error() string { return e.Message }

func bizErr(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

// insufficientStock builds the stock failure so every path reports the
// remaining quantity the same way.
func insufficientStock(name string, available int) *Error {
	return &Error{
		Kind:      KindInsufficientStock,
		Message:   fmt.Sprintf("Insufficient stock for %s. Available: %d", name, available),
		Available: available,
	}
}
