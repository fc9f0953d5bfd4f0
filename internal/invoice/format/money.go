package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MinorUnits is the number of decimal places every amount is rounded to.
const MinorUnits int32 = 2

// Totals holds the formatted amounts printed on an invoice.
type Totals struct {
	Currency   string
	Total      string
	Shipping   string
	GrandTotal string
}

// FormatAmount rounds half away from zero to MinorUnits places.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(MinorUnits)
}

// ComputeTotals formats the order total and the shipping total on their own,
// then sums the rounded values and rounds again.
//
// This function is PURE: the same input always yields the same strings.
func ComputeTotals(total, shipping decimal.Decimal, currency string) Totals {
	roundedTotal := total.Round(MinorUnits)
	roundedShipping := shipping.Round(MinorUnits)
	grand := roundedTotal.Add(roundedShipping).Round(MinorUnits)

	return Totals{
		Currency:   NormalizeCurrency(currency),
		Total:      FormatAmount(roundedTotal),
		Shipping:   FormatAmount(roundedShipping),
		GrandTotal: FormatAmount(grand),
	}
}

// Display renders the grand total the way invoice listings show it.
func (t Totals) Display() string {
	return Money(t.GrandTotal, t.Currency)
}

// Money joins a formatted amount and a currency code: "12.50 EUR".
func Money(amount, currency string) string {
	return strings.TrimSpace(amount + " " + NormalizeCurrency(currency))
}

func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}
