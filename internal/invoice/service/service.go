package service

import (
	"sync/atomic"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicer/internal/clock"
	"github.com/smallbiznis/invoicer/internal/config"
	"github.com/smallbiznis/invoicer/internal/idempotency"
	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/smallbiznis/invoicer/internal/invoice/render"
	obsmetrics "github.com/smallbiznis/invoicer/internal/observability/metrics"
	"github.com/smallbiznis/invoicer/internal/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Cfg      config.Config
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Orders   invoicedomain.OrderQuery
	Payments invoicedomain.PaymentQuery
	Store    storage.Store
	Renderer render.Renderer
	Docs     *config.DocumentConfigHolder `optional:"true"`
	Guard    idempotency.Guard            `optional:"true"`
	Metrics  *obsmetrics.Metrics          `optional:"true"`
}

type Service struct {
	log    *zap.Logger
	tracer trace.Tracer

	genID    *snowflake.Node
	clock    clock.Clock
	orders   invoicedomain.OrderQuery
	payments invoicedomain.PaymentQuery
	store    storage.Store
	renderer render.Renderer
	docs     *config.DocumentConfigHolder
	guard    idempotency.Guard
	metrics  *obsmetrics.Metrics

	keyPrefix       string
	listConcurrency int
	listTimeout     time.Duration

	lastTimestamp atomic.Int64
}

func NewService(p ServiceParam) *Service {
	guard := p.Guard
	if guard == nil {
		guard = idempotency.NoopGuard{}
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	concurrency := p.Cfg.Invoice.ListConcurrency
	if concurrency <= 0 {
		concurrency = defaultListConcurrency
	}
	timeout := p.Cfg.Invoice.ListTimeout
	if timeout <= 0 {
		timeout = defaultListTimeout
	}

	return &Service{
		log:    p.Log.Named("invoice.service"),
		tracer: otel.Tracer("invoicer/invoice"),

		genID:    p.GenID,
		clock:    clk,
		orders:   p.Orders,
		payments: p.Payments,
		store:    p.Store,
		renderer: p.Renderer,
		docs:     p.Docs,
		guard:    guard,
		metrics:  p.Metrics,

		keyPrefix:       p.Cfg.Storage.KeyPrefix,
		listConcurrency: concurrency,
		listTimeout:     timeout,
	}
}

var (
	_ invoicedomain.Service                = (*Service)(nil)
	_ invoicedomain.PaymentCapturedHandler = (*Service)(nil)
)
