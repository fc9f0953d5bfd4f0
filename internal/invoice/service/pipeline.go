package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smallbiznis/invoicer/internal/config"
	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/smallbiznis/invoicer/internal/invoice/format"
	"github.com/smallbiznis/invoicer/internal/invoice/render"
	obscontext "github.com/smallbiznis/invoicer/internal/observability/context"
	"github.com/smallbiznis/invoicer/internal/observability/logger"
	"github.com/smallbiznis/invoicer/internal/observability/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// State is a step of one generation run.
type State string

const (
	StateReceived       State = "received"
	StateOrderResolving State = "order_resolving"
	StateOrderResolved  State = "order_resolved"
	StateAborted        State = "aborted"
	StateSkipped        State = "skipped"
	StateRendering      State = "rendering"
	StateUploading      State = "uploading"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// Terminal reports whether no further transition follows.
func (s State) Terminal() bool {
	switch s {
	case StateAborted, StateSkipped, StateDone, StateFailed:
		return true
	default:
		return false
	}
}

// Result describes how a generation run ended.
type Result struct {
	RunID     string
	PaymentID string
	OrderID   string
	Via       ResolvedVia
	State     State
	Key       string
	URL       string
}

// HandlePaymentCaptured runs the pipeline for one event. Outcomes are logged
// and never reported to the caller.
func (s *Service) HandlePaymentCaptured(ctx context.Context, evt invoicedomain.PaymentCapturedEvent) {
	_, _ = s.Generate(ctx, evt)
}

// Generate renders and stores the invoice for the order that owns the captured
// payment. The error is non-nil only when the run ends in StateFailed.
func (s *Service) Generate(ctx context.Context, evt invoicedomain.PaymentCapturedEvent) (Result, error) {
	paymentID := strings.TrimSpace(evt.PaymentID)
	res := Result{RunID: s.genID.Generate().String(), PaymentID: paymentID, State: StateReceived}

	ctx = obscontext.WithPaymentID(ctx, paymentID)
	ctx, span := s.tracer.Start(ctx, "invoice.generate")
	defer span.End()
	span.SetAttributes(tracing.SafeAttributes(
		attribute.String("run_id", res.RunID),
		attribute.String("payment_id", paymentID),
	)...)

	log := logger.WithContext(ctx, s.log).With(zap.String("run_id", res.RunID))

	res, err := s.generate(ctx, log, res)

	span.SetAttributes(attribute.String("state", string(res.State)))
	if err != nil {
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, string(res.State))
	}
	s.metrics.RecordGeneration(ctx, string(res.State))
	return res, err
}

func (s *Service) generate(ctx context.Context, log *zap.Logger, res Result) (Result, error) {
	if res.PaymentID == "" {
		res.State = StateAborted
		log.Debug("payment captured event without payment id", zap.String("state", string(res.State)))
		return res, nil
	}

	token, acquired, err := s.guard.Acquire(ctx, res.PaymentID)
	if err != nil {
		log.Warn("idempotency guard unavailable, generating anyway", zap.Error(err))
		token, acquired = "", true
	}
	if !acquired {
		res.State = StateSkipped
		log.Info("invoice already generated for payment", zap.String("state", string(res.State)))
		return res, nil
	}

	res, err = s.run(ctx, log, res)
	if res.State != StateDone && token != "" {
		// Let a later delivery retry this payment.
		if releaseErr := s.guard.Release(context.WithoutCancel(ctx), res.PaymentID, token); releaseErr != nil {
			log.Warn("failed to release idempotency guard", zap.Error(releaseErr))
		}
	}
	return res, err
}

func (s *Service) run(ctx context.Context, log *zap.Logger, res Result) (Result, error) {
	res.State = StateOrderResolving
	resolution, err := s.Resolve(ctx, res.PaymentID)
	if err != nil {
		return s.fail(log, res, err)
	}
	if !resolution.Found {
		res.State = StateAborted
		log.Info("no order found for payment", zap.String("state", string(res.State)))
		return res, nil
	}
	res.OrderID = resolution.OrderID
	res.Via = resolution.Via
	res.State = StateOrderResolved
	log = log.With(zap.String("order_id", res.OrderID))
	log.Debug("order resolved", zap.String("via", string(res.Via)))

	order, err := s.orders.FetchOrder(ctx, res.OrderID, invoicedomain.OrderViewDetail)
	if err != nil {
		if !errors.Is(err, invoicedomain.ErrOrderNotFound) {
			err = fmt.Errorf("%w: fetch order %s: %v", invoicedomain.ErrUpstreamQuery, res.OrderID, err)
		}
		return s.fail(log, res, err)
	}

	timestamp := s.nextTimestamp()
	key, err := format.ObjectKey(order.ID, timestamp)
	if err != nil {
		return s.fail(log, res, err)
	}

	res.State = StateRendering
	doc := buildDocument(*order, format.InvoiceID(order.DisplayID, timestamp), s.docs.Get())
	pdf, err := s.renderer.Render(ctx, doc)
	if err != nil {
		return s.fail(log, res, fmt.Errorf("%w: %v", invoicedomain.ErrRender, err))
	}

	res.State = StateUploading
	storageKey := format.JoinKey(s.keyPrefix, key)
	if err := s.store.Put(ctx, storageKey, bytes.NewReader(pdf), format.ContentTypePDF); err != nil {
		return s.fail(log, res, fmt.Errorf("%w: %v", invoicedomain.ErrStorage, err))
	}

	res.State = StateDone
	res.Key = storageKey
	res.URL = s.store.URL(storageKey)
	log.Info("invoice uploaded",
		zap.String("state", string(res.State)),
		zap.String("key", storageKey),
		zap.String("invoice_id", doc.InvoiceID),
		zap.Int("size_bytes", len(pdf)),
	)
	return res, nil
}

func (s *Service) fail(log *zap.Logger, res Result, err error) (Result, error) {
	log.Error("invoice generation failed",
		zap.String("state", string(StateFailed)),
		zap.String("failed_at", string(res.State)),
		zap.Error(err),
	)
	res.State = StateFailed
	return res, err
}

// nextTimestamp returns epoch milliseconds that never go below the clock and
// strictly increase across calls, so two runs for one order never share a key.
func (s *Service) nextTimestamp() int64 {
	now := s.clock.Now().UnixMilli()
	for {
		last := s.lastTimestamp.Load()
		next := now
		if next <= last {
			next = last + 1
		}
		if s.lastTimestamp.CompareAndSwap(last, next) {
			return next
		}
	}
}

func buildDocument(order invoicedomain.Order, invoiceID string, docCfg config.DocumentConfig) render.Document {
	totals := format.ComputeTotals(order.Total, order.ShippingTotal, order.CurrencyCode)

	var address string
	if billing := order.BillingAddress; billing != nil {
		address = render.FormatAddress(billing.Address1, billing.City, billing.PostalCode, billing.CountryCode)
	} else {
		address = render.FormatAddress("", "", "", "")
	}

	items := make([]render.Item, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, render.Item{
			Name:      render.ItemName(item.ProductTitle, item.Title),
			Quantity:  item.Quantity,
			UnitPrice: format.FormatAmount(item.UnitPrice),
		})
	}

	var date string
	if !order.CreatedAt.IsZero() {
		date = order.CreatedAt.Format(docCfg.DateLayout)
	}

	return render.Document{
		InvoiceID:     invoiceID,
		OrderID:       order.ID,
		Date:          render.OrNotAvailable(date),
		StoreName:     docCfg.StoreName,
		StoreAddress:  docCfg.StoreAddress,
		StoreEmail:    docCfg.StoreEmail,
		Footer:        docCfg.Footer,
		CustomerEmail: order.CustomerEmail,
		CustomerName:  order.CustomerName(),
		Address:       address,
		Currency:      totals.Currency,
		Items:         items,
		Shipping:      totals.Shipping,
		Total:         totals.GrandTotal,
	}
}
