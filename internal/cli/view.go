package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/smallbiznis/invoicer/internal/invoice/service"
)

var (
	accent  = lipgloss.Color("#D97706")
	dim     = lipgloss.Color("#6B7280")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(dim)
	labelStyle  = lipgloss.NewStyle().Foreground(dim).Width(10)

	stateStyles = map[service.State]lipgloss.Style{
		service.StateDone:    lipgloss.NewStyle().Bold(true).Foreground(success),
		service.StateFailed:  lipgloss.NewStyle().Bold(true).Foreground(danger),
		service.StateSkipped: lipgloss.NewStyle().Bold(true).Foreground(warning),
		service.StateAborted: lipgloss.NewStyle().Bold(true).Foreground(warning),
	}
)

var invoiceHeaders = []string{"INVOICE", "ORDER", "CUSTOMER", "TOTAL", "CREATED"}

// RenderInvoices draws the admin invoice table.
func RenderInvoices(invoices []invoicedomain.Invoice) string {
	if len(invoices) == 0 {
		return dimStyle.Render("No invoices found.")
	}

	rows := make([][]string, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, []string{
			inv.InvoiceID,
			"#" + strconv.FormatInt(inv.DisplayID, 10),
			inv.CustomerName,
			inv.Total,
			time.UnixMilli(inv.Timestamp).UTC().Format("2006-01-02 15:04"),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers(invoiceHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d invoice(s)", len(invoices))))
	return b.String()
}

// RenderResult summarizes one generation run.
func RenderResult(res service.Result) string {
	style, ok := stateStyles[res.State]
	if !ok {
		style = lipgloss.NewStyle().Bold(true)
	}

	lines := []string{
		labelStyle.Render("state") + style.Render(string(res.State)),
		labelStyle.Render("run") + res.RunID,
		labelStyle.Render("payment") + res.PaymentID,
	}
	if res.OrderID != "" {
		lines = append(lines, labelStyle.Render("order")+res.OrderID+dimStyle.Render(" via "+string(res.Via)))
	}
	if res.Key != "" {
		lines = append(lines, labelStyle.Render("key")+res.Key)
	}
	if res.URL != "" {
		lines = append(lines, labelStyle.Render("url")+res.URL)
	}
	return strings.Join(lines, "\n")
}

func writeJSON(w io.Writer, invoices []invoicedomain.Invoice) error {
	if invoices == nil {
		invoices = []invoicedomain.Invoice{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(invoices)
}
