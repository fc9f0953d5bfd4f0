package events

import (
	"context"
	"errors"
	"sync"

	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	obsmetrics "github.com/smallbiznis/invoicer/internal/observability/metrics"
	"go.uber.org/zap"
)

var ErrDispatcherStopped = errors.New("dispatcher_stopped")

const (
	SourceRedis = "redis"
	SourceHTTP  = "http"
)

// Dispatcher runs payment captured events on a fixed pool of workers. Events
// are processed on a context detached from the submitter, so an HTTP hook can
// return before its invoice is generated.
type Dispatcher struct {
	handler invoicedomain.PaymentCapturedHandler
	log     *zap.Logger
	metrics *obsmetrics.Metrics
	workers int

	queue  chan invoicedomain.PaymentCapturedEvent
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool
}

func NewDispatcher(handler invoicedomain.PaymentCapturedHandler, workers int, log *zap.Logger, metrics *obsmetrics.Metrics) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		handler: handler,
		log:     log.Named("events.dispatcher"),
		metrics: metrics,
		workers: workers,
		queue:   make(chan invoicedomain.PaymentCapturedEvent, workers),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for evt := range d.queue {
		d.handle(evt)
	}
}

func (d *Dispatcher) handle(evt invoicedomain.PaymentCapturedEvent) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("payment captured handler panicked",
				zap.String("payment_id", evt.PaymentID),
				zap.Any("panic", r),
			)
		}
	}()
	d.handler.HandlePaymentCaptured(d.ctx, evt)
}

// Submit queues evt, waiting for a free slot until ctx is done.
func (d *Dispatcher) Submit(ctx context.Context, source string, evt invoicedomain.PaymentCapturedEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.metrics.RecordPaymentEvent(ctx, source, "rejected")
		return ErrDispatcherStopped
	}

	select {
	case d.queue <- evt:
		d.metrics.RecordPaymentEvent(ctx, source, "accepted")
		return nil
	case <-ctx.Done():
		d.metrics.RecordPaymentEvent(ctx, source, "dropped")
		return ctx.Err()
	}
}

// Stop rejects new events and waits for queued ones until ctx expires, after
// which in-flight runs are cancelled.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		// Nothing will drain the queue.
		d.cancel()
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		d.log.Warn("payment captured events cancelled during shutdown")
		return ctx.Err()
	}
}
