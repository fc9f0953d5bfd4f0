package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicer/internal/clock"
	"github.com/smallbiznis/invoicer/internal/config"
	"github.com/smallbiznis/invoicer/internal/idempotency"
	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/smallbiznis/invoicer/internal/invoice/render"
	"github.com/smallbiznis/invoicer/internal/storage"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fixedMillis int64 = 1700000000000

type mockOrderQuery struct {
	mock.Mock
}

func (m *mockOrderQuery) FetchOrder(ctx context.Context, id string, view invoicedomain.OrderView) (*invoicedomain.Order, error) {
	args := m.Called(ctx, id, view)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicedomain.Order), args.Error(1)
}

func (m *mockOrderQuery) ListOrdersByPaymentCollection(ctx context.Context, paymentCollectionID string) ([]invoicedomain.Order, error) {
	args := m.Called(ctx, paymentCollectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]invoicedomain.Order), args.Error(1)
}

type mockPaymentQuery struct {
	mock.Mock
}

func (m *mockPaymentQuery) FetchPayment(ctx context.Context, id string) (*invoicedomain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicedomain.Payment), args.Error(1)
}

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(ctx context.Context, doc render.Document) ([]byte, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// memoryStore lists keys in insertion order.
type memoryStore struct {
	mu           sync.Mutex
	keys         []string
	objects      map[string][]byte
	contentTypes map[string]string
	putErr       error
	listErr      error
}

func newMemoryStore(keys ...string) *memoryStore {
	s := &memoryStore{objects: map[string][]byte{}, contentTypes: map[string]string{}}
	for _, key := range keys {
		s.keys = append(s.keys, key)
		s.objects[key] = []byte("%PDF")
	}
	return s
}

func (s *memoryStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.objects[key] = data
	s.contentTypes[key] = contentType
	return nil
}

func (s *memoryStore) List(ctx context.Context, prefix string) ([]storage.Object, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]storage.Object, 0, len(s.keys))
	for _, key := range s.keys {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.Object{Key: key, Size: int64(len(s.objects[key]))})
		}
	}
	return out, nil
}

func (s *memoryStore) URL(key string) string {
	return "https://docs.s3.eu-central-1.amazonaws.com/" + key
}

func (s *memoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := append([]string(nil), s.keys...)
	sort.Strings(keys)
	return keys
}

// stubOrders serves summary lookups for retrieval tests, optionally slowly.
type stubOrders struct {
	orders map[string]*invoicedomain.Order
	errs   map[string]error
	delay  func(id string) time.Duration

	mu     sync.Mutex
	calls  int
	active int
	peak   int
}

func (s *stubOrders) FetchOrder(ctx context.Context, id string, view invoicedomain.OrderView) (*invoicedomain.Order, error) {
	s.mu.Lock()
	s.calls++
	s.active++
	if s.active > s.peak {
		s.peak = s.active
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
	}()

	if s.delay != nil {
		select {
		case <-time.After(s.delay(id)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := s.errs[id]; ok {
		return nil, err
	}
	order, ok := s.orders[id]
	if !ok {
		return nil, invoicedomain.ErrOrderNotFound
	}
	return order, nil
}

func (s *stubOrders) ListOrdersByPaymentCollection(ctx context.Context, paymentCollectionID string) ([]invoicedomain.Order, error) {
	return nil, errors.New("not used")
}

type stubGuard struct {
	acquired   bool
	acquireErr error

	mu       sync.Mutex
	released []string
}

func (g *stubGuard) Acquire(ctx context.Context, paymentID string) (string, bool, error) {
	return "token-" + paymentID, g.acquired, g.acquireErr
}

func (g *stubGuard) Release(ctx context.Context, paymentID, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.released = append(g.released, paymentID)
	return nil
}

type fixture struct {
	orders   invoicedomain.OrderQuery
	payments invoicedomain.PaymentQuery
	store    storage.Store
	renderer render.Renderer
	guard    idempotency.Guard
	cfg      config.Config
	clock    *clock.FakeClock
}

func newTestService(t *testing.T, f fixture) *Service {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := f.clock
	if clk == nil {
		clk = clock.NewFakeClock(time.UnixMilli(fixedMillis))
	}
	if f.orders == nil {
		f.orders = &mockOrderQuery{}
	}
	if f.payments == nil {
		f.payments = &mockPaymentQuery{}
	}
	if f.store == nil {
		f.store = newMemoryStore()
	}
	if f.renderer == nil {
		f.renderer = &mockRenderer{}
	}

	return NewService(ServiceParam{
		Cfg:      f.cfg,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clk,
		Orders:   f.orders,
		Payments: f.payments,
		Store:    f.store,
		Renderer: f.renderer,
		Guard:    f.guard,
	})
}
