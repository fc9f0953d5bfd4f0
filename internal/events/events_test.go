package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingHandler struct {
	mu       sync.Mutex
	received []string
	calls    chan string
	block    chan struct{}
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{calls: make(chan string, 16)}
}

func (h *recordingHandler) HandlePaymentCaptured(ctx context.Context, evt invoicedomain.PaymentCapturedEvent) {
	if h.block != nil {
		select {
		case <-h.block:
		case <-ctx.Done():
		}
	}
	h.mu.Lock()
	h.received = append(h.received, evt.PaymentID)
	h.mu.Unlock()
	h.calls <- evt.PaymentID
}

func (h *recordingHandler) Received() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.received...)
}

func waitFor(t *testing.T, calls <-chan string) string {
	t.Helper()
	select {
	case id := <-calls:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not called")
		return ""
	}
}

func TestDecodePaymentCaptured(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		wantErr bool
	}{
		{name: "bare id", payload: `{"id":"pay_1"}`, want: "pay_1"},
		{name: "named envelope", payload: `{"name":"payment.captured","data":{"id":"pay_2"}}`, want: "pay_2"},
		{name: "envelope without name", payload: `{"data":{"id":" pay_3 "}}`, want: "pay_3"},
		{name: "other event", payload: `{"name":"order.placed","data":{"id":"order_1"}}`, wantErr: true},
		{name: "missing id", payload: `{"data":{}}`, wantErr: true},
		{name: "not json", payload: `pay_1`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, err := DecodePaymentCaptured([]byte(tt.payload))
			if tt.wantErr {
				assert.ErrorIs(t, err, invoicedomain.ErrInvalidEvent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, evt.PaymentID)
		})
	}
}

func TestDispatcherRunsSubmittedEvents(t *testing.T) {
	handler := newRecordingHandler()
	dispatcher := NewDispatcher(handler, 2, zap.NewNop(), nil)
	dispatcher.Start()

	require.NoError(t, dispatcher.Submit(context.Background(), SourceHTTP, invoicedomain.PaymentCapturedEvent{PaymentID: "pay_1"}))
	require.NoError(t, dispatcher.Submit(context.Background(), SourceHTTP, invoicedomain.PaymentCapturedEvent{PaymentID: "pay_2"}))

	require.NoError(t, dispatcher.Stop(context.Background()))
	assert.ElementsMatch(t, []string{"pay_1", "pay_2"}, handler.Received())
}

func TestDispatcherRejectsAfterStop(t *testing.T) {
	dispatcher := NewDispatcher(newRecordingHandler(), 1, zap.NewNop(), nil)
	dispatcher.Start()
	require.NoError(t, dispatcher.Stop(context.Background()))

	err := dispatcher.Submit(context.Background(), SourceHTTP, invoicedomain.PaymentCapturedEvent{PaymentID: "pay_1"})
	assert.ErrorIs(t, err, ErrDispatcherStopped)
	assert.NoError(t, dispatcher.Stop(context.Background()))
}

func TestDispatcherStopCancelsInFlightOnDeadline(t *testing.T) {
	handler := newRecordingHandler()
	handler.block = make(chan struct{})
	dispatcher := NewDispatcher(handler, 1, zap.NewNop(), nil)
	dispatcher.Start()

	require.NoError(t, dispatcher.Submit(context.Background(), SourceHTTP, invoicedomain.PaymentCapturedEvent{PaymentID: "pay_1"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := dispatcher.Stop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{"pay_1"}, handler.Received())
}

func TestSubscriberDispatchesPublishedEvents(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	handler := newRecordingHandler()
	dispatcher := NewDispatcher(handler, 1, zap.NewNop(), nil)
	dispatcher.Start()
	t.Cleanup(func() { _ = dispatcher.Stop(context.Background()) })

	subscriber := NewSubscriber(client, "payment.captured", dispatcher, zap.NewNop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- subscriber.Run(ctx) }()

	require.Eventually(t, func() bool {
		return srv.Publish("payment.captured", `not json`) > 0
	}, 2*time.Second, 10*time.Millisecond)
	srv.Publish("payment.captured", `{"name":"payment.captured","data":{"id":"pay_7"}}`)

	assert.Equal(t, "pay_7", waitFor(t, handler.calls))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop")
	}
	assert.Equal(t, []string{"pay_7"}, handler.Received())
}
