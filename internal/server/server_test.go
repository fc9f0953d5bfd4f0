package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/invoicer/internal/config"
	"github.com/smallbiznis/invoicer/internal/events"
	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/smallbiznis/invoicer/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockInvoiceService struct {
	mock.Mock
}

func (m *mockInvoiceService) ListInvoices(ctx context.Context, req invoicedomain.ListInvoicesRequest) ([]invoicedomain.Invoice, error) {
	args := m.Called(ctx, req)
	invoices, _ := args.Get(0).([]invoicedomain.Invoice)
	return invoices, args.Error(1)
}

type fakeSubmitter struct {
	err      error
	received []invoicedomain.PaymentCapturedEvent
}

func (f *fakeSubmitter) Submit(ctx context.Context, source string, evt invoicedomain.PaymentCapturedEvent) error {
	_ = ctx
	_ = source
	if f.err != nil {
		return f.err
	}
	f.received = append(f.received, evt)
	return nil
}

func newTestServer(t *testing.T, cfg config.Config, svc invoicedomain.Service, submitter EventSubmitter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := NewEngine(observability.Config{Environment: "test"}, nil)
	return newServer(engine, cfg, zap.NewNop(), svc, submitter).Engine()
}

func perform(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	r := newTestServer(t, config.Config{}, &mockInvoiceService{}, &fakeSubmitter{})

	rec := perform(r, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListInvoicesReturnsInvoices(t *testing.T) {
	svc := &mockInvoiceService{}
	svc.On("ListInvoices", mock.Anything, invoicedomain.ListInvoicesRequest{Query: "jane"}).Return([]invoicedomain.Invoice{
		{
			InvoiceID:    "inv-1042-1700000000000",
			OrderID:      "order_9",
			DisplayID:    1042,
			CustomerName: "Jane Doe",
			Total:        "25.00 EUR",
			Timestamp:    1700000000000,
			URL:          "https://docs.s3.eu-central-1.amazonaws.com/order-order_9-1700000000000.pdf",
		},
	}, nil)
	r := newTestServer(t, config.Config{}, svc, &fakeSubmitter{})

	rec := perform(r, http.MethodGet, "/admin/invoices?q=%20jane%20", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"invoices":[{
		"invoice_id":"inv-1042-1700000000000",
		"order_id":"order_9",
		"display_id":1042,
		"customer_name":"Jane Doe",
		"total":"25.00 EUR",
		"timestamp":1700000000000,
		"url":"https://docs.s3.eu-central-1.amazonaws.com/order-order_9-1700000000000.pdf"
	}]}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestListInvoicesEmptyIsArray(t *testing.T) {
	svc := &mockInvoiceService{}
	svc.On("ListInvoices", mock.Anything, invoicedomain.ListInvoicesRequest{}).Return(nil, nil)
	r := newTestServer(t, config.Config{}, svc, &fakeSubmitter{})

	rec := perform(r, http.MethodGet, "/admin/invoices", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"invoices":[]}`, rec.Body.String())
}

func TestListInvoicesFailureIsGeneric(t *testing.T) {
	svc := &mockInvoiceService{}
	svc.On("ListInvoices", mock.Anything, mock.Anything).
		Return(nil, errors.Join(invoicedomain.ErrStorage, errors.New("AccessDenied: bucket docs")))
	r := newTestServer(t, config.Config{}, svc, &fakeSubmitter{})

	rec := perform(r, http.MethodGet, "/admin/invoices", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":{"type":"internal_error","message":"Failed to load invoices"}}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "AccessDenied")
}

func TestPaymentCapturedHookAccepts(t *testing.T) {
	submitter := &fakeSubmitter{}
	r := newTestServer(t, config.Config{}, &mockInvoiceService{}, submitter)

	rec := perform(r, http.MethodPost, "/hooks/payment-captured", `{"name":"payment.captured","data":{"id":"pay_1"}}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"status":"accepted"}`, rec.Body.String())
	require.Len(t, submitter.received, 1)
	assert.Equal(t, "pay_1", submitter.received[0].PaymentID)
}

func TestPaymentCapturedHookRejectsMissingID(t *testing.T) {
	submitter := &fakeSubmitter{}
	r := newTestServer(t, config.Config{}, &mockInvoiceService{}, submitter)

	rec := perform(r, http.MethodPost, "/hooks/payment-captured", `{"data":{}}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error.Type)
	assert.Empty(t, submitter.received)
}

func TestPaymentCapturedHookDuringShutdown(t *testing.T) {
	r := newTestServer(t, config.Config{}, &mockInvoiceService{}, &fakeSubmitter{err: events.ErrDispatcherStopped})

	rec := perform(r, http.MethodPost, "/hooks/payment-captured", `{"id":"pay_1"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLocalDocumentsAreServed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "order-order_9-1700000000000.pdf"), []byte("%PDF-1.4"), 0o644))
	cfg := config.Config{Storage: config.StorageConfig{
		Driver:         config.StorageDriverLocal,
		LocalDir:       dir,
		LocalURLPrefix: "http://localhost:8080/files/",
	}}
	r := newTestServer(t, cfg, &mockInvoiceService{}, &fakeSubmitter{})

	rec := perform(r, http.MethodGet, "/files/order-order_9-1700000000000.pdf", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4", rec.Body.String())
}

func TestLocalDocumentRoute(t *testing.T) {
	assert.Equal(t, "/invoices", localDocumentRoute(""))
	assert.Equal(t, "/invoices", localDocumentRoute("http://localhost:8080"))
	assert.Equal(t, "/docs/pdf", localDocumentRoute("https://cdn.example.com/docs/pdf/"))
}

func TestClassifyErrorForLog(t *testing.T) {
	typ, code := classifyErrorForLog(errors.Join(ErrLoadInvoices, invoicedomain.ErrStorage))
	assert.Equal(t, "internal_error", typ)
	assert.Equal(t, "storage_failed", code)

	typ, code = classifyErrorForLog(errors.New("boom"))
	assert.Equal(t, "internal_error", typ)
	assert.Equal(t, "internal_error", code)
}
