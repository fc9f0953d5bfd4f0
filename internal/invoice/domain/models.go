package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the read-only projection of a commerce order.
type Order struct {
	ID             string
	DisplayID      int64
	CurrencyCode   string
	Total          decimal.Decimal
	ShippingTotal  decimal.Decimal
	CreatedAt      time.Time
	CustomerEmail  string
	BillingAddress *Address
	Items          []LineItem

	// Only populated by OrderQuery.ListOrdersByPaymentCollection.
	PaymentCollections []PaymentCollection
}

type Address struct {
	FirstName   string
	LastName    string
	Address1    string
	City        string
	PostalCode  string
	CountryCode string
}

type LineItem struct {
	Title        string
	ProductTitle string
	Quantity     int64
	UnitPrice    decimal.Decimal
}

type PaymentCollection struct {
	ID         string
	PaymentIDs []string
}

type Payment struct {
	ID                  string
	OrderID             string
	PaymentCollectionID string
}

// CustomerName joins the billing first and last name, empty when there is no address.
func (o Order) CustomerName() string {
	if o.BillingAddress == nil {
		return ""
	}
	return strings.TrimSpace(o.BillingAddress.FirstName + " " + o.BillingAddress.LastName)
}

// ContainsPayment reports whether any of the order's payment collections holds paymentID.
func (o Order) ContainsPayment(paymentID string) bool {
	for _, collection := range o.PaymentCollections {
		for _, id := range collection.PaymentIDs {
			if id == paymentID {
				return true
			}
		}
	}
	return false
}

// OrderView selects how much of an order a query loads.
type OrderView int

const (
	// OrderViewSummary loads identity, billing name, currency and totals.
	OrderViewSummary OrderView = iota
	// OrderViewDetail additionally loads customer, full address and line items.
	OrderViewDetail
)

func (v OrderView) String() string {
	switch v {
	case OrderViewDetail:
		return "detail"
	default:
		return "summary"
	}
}

// Invoice is derived from an object key plus a live order lookup. It is never stored.
type Invoice struct {
	InvoiceID    string `json:"invoice_id"`
	OrderID      string `json:"order_id"`
	DisplayID    int64  `json:"display_id"`
	CustomerName string `json:"customer_name"`
	Total        string `json:"total"`
	Timestamp    int64  `json:"timestamp"`
	URL          string `json:"url"`
}

// PaymentCapturedEvent is delivered at least once, unordered, per captured payment.
type PaymentCapturedEvent struct {
	PaymentID string
}
