package context

import (
	stdcontext "context"
	"strings"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	paymentIDKey ctxKey = "payment_id"
)

// WithRequestID stores the inbound request id.
func WithRequestID(ctx stdcontext.Context, requestID string) stdcontext.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return stdcontext.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx stdcontext.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

// WithPaymentID stores the payment currently being processed.
func WithPaymentID(ctx stdcontext.Context, paymentID string) stdcontext.Context {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return ctx
	}
	return stdcontext.WithValue(ctx, paymentIDKey, paymentID)
}

func PaymentIDFromContext(ctx stdcontext.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(paymentIDKey).(string)
	return value
}
