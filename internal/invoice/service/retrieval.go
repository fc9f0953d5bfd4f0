package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/smallbiznis/invoicer/internal/invoice/format"
	"github.com/smallbiznis/invoicer/internal/observability/logger"
	"github.com/smallbiznis/invoicer/internal/observability/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultListConcurrency = 8
	defaultListTimeout     = 30 * time.Second
)

const (
	dropReasonOrderNotFound = "order_not_found"
	dropReasonQueryFailed   = "query_failed"
)

// ListInvoices rebuilds invoice metadata from stored document keys and the live
// order data behind them. Objects that are not invoices, or whose order cannot
// be loaded, are left out. The result keeps the storage listing order.
func (s *Service) ListInvoices(ctx context.Context, req invoicedomain.ListInvoicesRequest) ([]invoicedomain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, s.listTimeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "invoice.list")
	defer span.End()

	log := logger.WithContext(ctx, s.log)

	prefix := ""
	if s.keyPrefix != "" {
		prefix = format.JoinKey(s.keyPrefix, "")
	}
	objects, err := s.store.List(ctx, prefix)
	if err != nil {
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, "list objects")
		return nil, fmt.Errorf("%w: %v", invoicedomain.ErrStorage, err)
	}

	refs := make([]format.ObjectRef, 0, len(objects))
	for _, obj := range objects {
		if !format.IsDocumentKey(obj.Key) {
			continue
		}
		name, ok := format.SplitKey(s.keyPrefix, obj.Key)
		if !ok {
			continue
		}
		ref, ok := format.ParseObjectKey(name)
		if !ok {
			log.Debug("skipping object with unrecognised key", zap.String("key", obj.Key))
			continue
		}
		ref.Key = obj.Key
		refs = append(refs, ref)
	}

	slots := make([]*invoicedomain.Invoice, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.listConcurrency)
	for i, ref := range refs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			invoice, ok := s.enrich(gctx, log, ref)
			if ok {
				slots[i] = &invoice
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, "list invoices cancelled")
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	query := strings.ToLower(strings.TrimSpace(req.Query))
	invoices := make([]invoicedomain.Invoice, 0, len(slots))
	for _, invoice := range slots {
		if invoice == nil || !matchesQuery(*invoice, query) {
			continue
		}
		invoices = append(invoices, *invoice)
	}

	span.SetAttributes(
		attribute.Int("objects", len(objects)),
		attribute.Int("documents", len(refs)),
		attribute.Int("invoices", len(invoices)),
	)
	return invoices, nil
}

func (s *Service) enrich(ctx context.Context, log *zap.Logger, ref format.ObjectRef) (invoicedomain.Invoice, bool) {
	ctx, span := s.tracer.Start(ctx, "invoice.enrich")
	defer span.End()
	span.SetAttributes(tracing.SafeAttributes(attribute.String("order_id", ref.OrderID))...)

	order, err := s.orders.FetchOrder(ctx, ref.OrderID, invoicedomain.OrderViewSummary)
	if err != nil {
		reason := dropReasonQueryFailed
		if errors.Is(err, invoicedomain.ErrOrderNotFound) {
			reason = dropReasonOrderNotFound
		}
		if ctx.Err() == nil {
			log.Warn("failed to fetch order for invoice",
				zap.String("key", ref.Key),
				zap.String("order_id", ref.OrderID),
				zap.String("reason", reason),
				zap.Error(err),
			)
			s.metrics.RecordRetrievalDrop(ctx, reason)
		}
		span.SetStatus(codes.Error, reason)
		return invoicedomain.Invoice{}, false
	}
	if order == nil {
		s.metrics.RecordRetrievalDrop(ctx, dropReasonOrderNotFound)
		return invoicedomain.Invoice{}, false
	}

	return DeriveInvoice(ref, *order, s.store.URL(ref.Key)), true
}

// DeriveInvoice computes the listing entry for one stored document.
//
// This function is PURE:
// - No side effects
// - No storage or order lookups
func DeriveInvoice(ref format.ObjectRef, order invoicedomain.Order, url string) invoicedomain.Invoice {
	totals := format.ComputeTotals(order.Total, order.ShippingTotal, order.CurrencyCode)
	return invoicedomain.Invoice{
		InvoiceID:    format.InvoiceID(order.DisplayID, ref.Timestamp),
		OrderID:      order.ID,
		DisplayID:    order.DisplayID,
		CustomerName: order.CustomerName(),
		Total:        totals.Display(),
		Timestamp:    ref.Timestamp,
		URL:          url,
	}
}

func matchesQuery(invoice invoicedomain.Invoice, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(invoice.InvoiceID), query) ||
		strings.Contains(strings.ToLower(invoice.CustomerName), query)
}
