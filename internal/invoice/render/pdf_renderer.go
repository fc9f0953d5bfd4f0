package render

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFRenderer struct{}

func NewRenderer() Renderer {
	return &PDFRenderer{}
}

// Render lays the document out on A4 pages.
func (r *PDFRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	_ = ctx

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, "Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(16,
		col.New(8).Add(
			text.New("Invoice ID: "+doc.InvoiceID, props.Text{Top: 0, Style: fontstyle.Bold}),
			text.New("Invoice to order: "+doc.OrderID, props.Text{Top: 5}),
			text.New("Date: "+doc.Date, props.Text{Top: 10}),
		),
		col.New(4),
	)

	// Seller and buyer
	m.AddRow(32,
		col.New(6).Add(
			text.New("Store", props.Text{Style: fontstyle.Bold}),
			text.New(doc.StoreName, props.Text{Top: 5}),
			text.New(doc.StoreAddress, props.Text{Top: 10}),
			text.New(doc.StoreEmail, props.Text{Top: 15}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New("Customer: "+OrNotAvailable(doc.CustomerEmail), props.Text{Top: 5}),
			text.New("Name: "+OrNotAvailable(doc.CustomerName), props.Text{Top: 10}),
			text.New("Address: "+doc.Address, props.Text{Top: 15}),
		),
	)

	m.AddRow(10,
		text.NewCol(8, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(3, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, row := range doc.ItemRows() {
		m.AddRow(8,
			text.NewCol(8, row.Description, props.Text{Size: 9}),
			text.NewCol(1, row.Quantity, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(3, row.UnitPrice, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(7),
		text.NewCol(2, "Shipping", props.Text{Size: 10, Top: 3}),
		text.NewCol(3, joinAmount(doc.Shipping, doc.Currency), props.Text{Size: 10, Top: 3, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(7),
		text.NewCol(2, "Total", props.Text{Size: 12, Style: fontstyle.Bold}),
		text.NewCol(3, joinAmount(doc.Total, doc.Currency), props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right}),
	)

	if doc.Footer != "" {
		m.AddRow(12,
			text.NewCol(12, doc.Footer, props.Text{Size: 8, Top: 4, Align: align.Center}),
		)
	}

	document, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invoice pdf: %w", err)
	}

	return document.GetBytes(), nil
}
