package domain

import (
	"context"
	"errors"
)

// OrderQuery reads orders from the commerce backend.
type OrderQuery interface {
	// FetchOrder returns ErrOrderNotFound when the order does not exist.
	FetchOrder(ctx context.Context, id string, view OrderView) (*Order, error)
	// ListOrdersByPaymentCollection returns every order linked to the payment
	// collection, with PaymentCollections populated, in a stable query order.
	ListOrdersByPaymentCollection(ctx context.Context, paymentCollectionID string) ([]Order, error)
}

// PaymentQuery reads payments from the commerce backend.
type PaymentQuery interface {
	// FetchPayment returns ErrPaymentNotFound when the payment does not exist.
	FetchPayment(ctx context.Context, id string) (*Payment, error)
}

type ListInvoicesRequest struct {
	// Query filters by case-insensitive substring of invoice id or customer name.
	Query string
}

type Service interface {
	ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, error)
}

// PaymentCapturedHandler consumes payment captured events without reporting back.
type PaymentCapturedHandler interface {
	HandlePaymentCaptured(ctx context.Context, evt PaymentCapturedEvent)
}

var (
	ErrOrderNotFound   = errors.New("order_not_found")
	ErrPaymentNotFound = errors.New("payment_not_found")
	ErrUpstreamQuery   = errors.New("upstream_query_failed")
	ErrRender          = errors.New("render_failed")
	ErrStorage         = errors.New("storage_failed")
	ErrInvalidEvent    = errors.New("invalid_event")
)
