package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
)

// ResolvedVia records which lookup tied a payment to its order.
type ResolvedVia string

const (
	ViaNone              ResolvedVia = ""
	ViaDirect            ResolvedVia = "direct"
	ViaPaymentCollection ResolvedVia = "payment_collection"
)

// Resolution is the outcome of mapping a payment to an order. Found=false is a
// normal outcome, not an error.
type Resolution struct {
	OrderID string
	Found   bool
	Via     ResolvedVia
}

// Resolve maps a captured payment to the order that owns it. The payment's own
// order id wins. Otherwise the orders sharing its payment collection are scanned
// in query order for the first one whose collections contain the payment.
func (s *Service) Resolve(ctx context.Context, paymentID string) (Resolution, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return Resolution{}, nil
	}

	payment, err := s.payments.FetchPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, invoicedomain.ErrPaymentNotFound) {
			return Resolution{}, nil
		}
		return Resolution{}, fmt.Errorf("%w: fetch payment %s: %v", invoicedomain.ErrUpstreamQuery, paymentID, err)
	}
	if payment == nil {
		return Resolution{}, nil
	}

	if orderID := strings.TrimSpace(payment.OrderID); orderID != "" {
		return Resolution{OrderID: orderID, Found: true, Via: ViaDirect}, nil
	}

	collectionID := strings.TrimSpace(payment.PaymentCollectionID)
	if collectionID == "" {
		return Resolution{}, nil
	}

	orders, err := s.orders.ListOrdersByPaymentCollection(ctx, collectionID)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: list orders for payment collection %s: %v", invoicedomain.ErrUpstreamQuery, collectionID, err)
	}
	for _, order := range orders {
		if order.ContainsPayment(paymentID) {
			return Resolution{OrderID: order.ID, Found: true, Via: ViaPaymentCollection}, nil
		}
	}

	return Resolution{}, nil
}
