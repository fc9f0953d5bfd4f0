package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/smallbiznis/invoicer/internal/invoice/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaryOrder(id string, displayID int64, first, last string) *invoicedomain.Order {
	return &invoicedomain.Order{
		ID:            id,
		DisplayID:     displayID,
		CurrencyCode:  "usd",
		Total:         decimal.RequireFromString("100"),
		ShippingTotal: decimal.RequireFromString("5.5"),
		BillingAddress: &invoicedomain.Address{
			FirstName: first,
			LastName:  last,
		},
	}
}

func TestListInvoices_SkipsForeignAndDanglingKeys(t *testing.T) {
	store := newMemoryStore(
		"order-order_9-1700000000000.pdf",
		"random-file.txt",
		"notes.pdf",
		"order-deleted-1700000000500.pdf",
	)
	orders := &stubOrders{orders: map[string]*invoicedomain.Order{
		"order_9": summaryOrder("order_9", 1042, "Jane", "Doe"),
	}}

	svc := newTestService(t, fixture{orders: orders, store: store})

	invoices, err := svc.ListInvoices(context.Background(), invoicedomain.ListInvoicesRequest{})

	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, invoicedomain.Invoice{
		InvoiceID:    "inv-1042-1700000000000",
		OrderID:      "order_9",
		DisplayID:    1042,
		CustomerName: "Jane Doe",
		Total:        "105.50 USD",
		Timestamp:    1700000000000,
		URL:          "https://docs.s3.eu-central-1.amazonaws.com/order-order_9-1700000000000.pdf",
	}, invoices[0])
	assert.Equal(t, 2, orders.calls)
}

func TestListInvoices_EmptyBucket(t *testing.T) {
	svc := newTestService(t, fixture{orders: &stubOrders{}, store: newMemoryStore()})

	invoices, err := svc.ListInvoices(context.Background(), invoicedomain.ListInvoicesRequest{})

	require.NoError(t, err)
	assert.NotNil(t, invoices)
	assert.Empty(t, invoices)
}

func TestListInvoices_ListingFailure(t *testing.T) {
	store := newMemoryStore()
	store.listErr = errors.New("access denied")

	svc := newTestService(t, fixture{orders: &stubOrders{}, store: store})

	invoices, err := svc.ListInvoices(context.Background(), invoicedomain.ListInvoicesRequest{})

	assert.ErrorIs(t, err, invoicedomain.ErrStorage)
	assert.Nil(t, invoices)
}

func TestListInvoices_DropsItemsWithQueryErrors(t *testing.T) {
	store := newMemoryStore("order-a-1.pdf", "order-b-2.pdf")
	orders := &stubOrders{
		orders: map[string]*invoicedomain.Order{"a": summaryOrder("a", 1, "Ann", "Lee")},
		errs:   map[string]error{"b": errors.New("timeout")},
	}

	svc := newTestService(t, fixture{orders: orders, store: store})

	invoices, err := svc.ListInvoices(context.Background(), invoicedomain.ListInvoicesRequest{})

	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "a", invoices[0].OrderID)
}

func TestListInvoices_KeepsListingOrderUnderConcurrency(t *testing.T) {
	var keys []string
	known := map[string]*invoicedomain.Order{}
	for i := 0; i < 40; i++ {
		id := fmt.Sprintf("ord_%02d", i)
		keys = append(keys, fmt.Sprintf("order-%s-%d.pdf", id, 1700000000000+int64(i)))
		known[id] = summaryOrder(id, int64(i), "Customer", id)
	}
	orders := &stubOrders{
		orders: known,
		// Earlier keys answer slower so completion order is reversed.
		delay: func(id string) time.Duration {
			var n int
			_, _ = fmt.Sscanf(id, "ord_%d", &n)
			return time.Duration(40-n) * time.Millisecond
		},
	}

	f := fixture{orders: orders, store: newMemoryStore(keys...)}
	f.cfg.Invoice.ListConcurrency = 4
	svc := newTestService(t, f)

	invoices, err := svc.ListInvoices(context.Background(), invoicedomain.ListInvoicesRequest{})

	require.NoError(t, err)
	require.Len(t, invoices, 40)
	for i, invoice := range invoices {
		assert.Equal(t, fmt.Sprintf("ord_%02d", i), invoice.OrderID)
	}
	assert.LessOrEqual(t, orders.peak, 4)
}

func TestListInvoices_DeadlineCancelsWholeRequest(t *testing.T) {
	orders := &stubOrders{
		orders: map[string]*invoicedomain.Order{"slow": summaryOrder("slow", 1, "A", "B")},
		delay:  func(string) time.Duration { return time.Second },
	}
	f := fixture{orders: orders, store: newMemoryStore("order-slow-1.pdf")}
	f.cfg.Invoice.ListTimeout = 20 * time.Millisecond
	svc := newTestService(t, f)

	_, err := svc.ListInvoices(context.Background(), invoicedomain.ListInvoicesRequest{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestListInvoices_QueryFilter(t *testing.T) {
	store := newMemoryStore("order-a-1700000000000.pdf", "order-b-1700000000001.pdf")
	orders := &stubOrders{orders: map[string]*invoicedomain.Order{
		"a": summaryOrder("a", 1042, "Jane", "Doe"),
		"b": summaryOrder("b", 77, "Max", "Power"),
	}}
	svc := newTestService(t, fixture{orders: orders, store: store})

	byName, err := svc.ListInvoices(context.Background(), invoicedomain.ListInvoicesRequest{Query: "  POWER "})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "b", byName[0].OrderID)

	byID, err := svc.ListInvoices(context.Background(), invoicedomain.ListInvoicesRequest{Query: "inv-1042"})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "a", byID[0].OrderID)

	none, err := svc.ListInvoices(context.Background(), invoicedomain.ListInvoicesRequest{Query: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestListInvoices_StripsKeyPrefix(t *testing.T) {
	store := newMemoryStore("invoices/order-a-1.pdf", "order-b-2.pdf", "other/order-c-3.pdf")
	orders := &stubOrders{orders: map[string]*invoicedomain.Order{
		"a": summaryOrder("a", 1, "Ann", "Lee"),
		"b": summaryOrder("b", 2, "Bo", "Kim"),
		"c": summaryOrder("c", 3, "Cy", "Ng"),
	}}
	f := fixture{orders: orders, store: store}
	f.cfg.Storage.KeyPrefix = "invoices"
	svc := newTestService(t, f)

	invoices, err := svc.ListInvoices(context.Background(), invoicedomain.ListInvoicesRequest{})

	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "a", invoices[0].OrderID)
	assert.Equal(t, "https://docs.s3.eu-central-1.amazonaws.com/invoices/order-a-1.pdf", invoices[0].URL)
}

func TestDeriveInvoice(t *testing.T) {
	ref, ok := format.ParseObjectKey("order-order_01H-9-1700000000123.pdf")
	require.True(t, ok)

	order := invoicedomain.Order{
		ID:            "order_01H-9",
		DisplayID:     12,
		CurrencyCode:  "gbp",
		Total:         decimal.RequireFromString("10.005"),
		ShippingTotal: decimal.RequireFromString("0.004"),
	}

	invoice := DeriveInvoice(ref, order, "https://example.com/doc.pdf")

	assert.Equal(t, "inv-12-1700000000123", invoice.InvoiceID)
	assert.Equal(t, "order_01H-9", invoice.OrderID)
	assert.Equal(t, "", invoice.CustomerName)
	assert.Equal(t, "10.01 GBP", invoice.Total)
	assert.Equal(t, int64(1700000000123), invoice.Timestamp)
	assert.Equal(t, "https://example.com/doc.pdf", invoice.URL)
}
