package render

import (
	"context"
	"strconv"
	"strings"
)

const (
	NotAvailable   = "N/A"
	UnnamedProduct = "Unnamed Product"
)

// Renderer turns a resolved invoice into a binary document. Implementations must
// not touch the network or storage.
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

// Document is the fully resolved content of one invoice. Amounts are already formatted.
type Document struct {
	InvoiceID string
	OrderID   string
	Date      string

	StoreName    string
	StoreAddress string
	StoreEmail   string
	Footer       string

	CustomerEmail string
	CustomerName  string
	Address       string

	Currency string
	Items    []Item
	Shipping string
	Total    string
}

type Item struct {
	Name      string
	Quantity  int64
	UnitPrice string
}

// ItemRow is one printed line of the items table.
type ItemRow struct {
	Description string
	Quantity    string
	UnitPrice   string
}

// ItemRows lays out the items in the order they were supplied. Each row shows
// the quantity of its own item.
func (d Document) ItemRows() []ItemRow {
	rows := make([]ItemRow, 0, len(d.Items))
	for _, item := range d.Items {
		rows = append(rows, ItemRow{
			Description: item.Name,
			Quantity:    strconv.FormatInt(item.Quantity, 10) + "x",
			UnitPrice:   joinAmount(item.UnitPrice, d.Currency) + " each",
		})
	}
	return rows
}

// ItemName prefers the product title, then the line item title.
func ItemName(productTitle, title string) string {
	if name := strings.TrimSpace(productTitle); name != "" {
		return name
	}
	if name := strings.TrimSpace(title); name != "" {
		return name
	}
	return UnnamedProduct
}

// FormatAddress prints "address, city, postal code, COUNTRY", keeping empty slots.
func FormatAddress(address1, city, postalCode, countryCode string) string {
	return strings.Join([]string{
		strings.TrimSpace(address1),
		strings.TrimSpace(city),
		strings.TrimSpace(postalCode),
		strings.ToUpper(strings.TrimSpace(countryCode)),
	}, ", ")
}

// OrNotAvailable substitutes the N/A placeholder for blank values.
func OrNotAvailable(value string) string {
	if strings.TrimSpace(value) == "" {
		return NotAvailable
	}
	return value
}

func joinAmount(amount, currency string) string {
	return strings.TrimSpace(amount + " " + currency)
}
