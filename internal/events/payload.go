package events

import (
	"encoding/json"
	"fmt"
	"strings"

	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
)

const EventPaymentCaptured = "payment.captured"

type envelope struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Data *struct {
		ID string `json:"id"`
	} `json:"data"`
}

// DecodePaymentCaptured accepts either a bare {"id": ...} body or a named
// envelope {"name": "payment.captured", "data": {"id": ...}}.
func DecodePaymentCaptured(payload []byte) (invoicedomain.PaymentCapturedEvent, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return invoicedomain.PaymentCapturedEvent{}, fmt.Errorf("%w: %v", invoicedomain.ErrInvalidEvent, err)
	}

	if name := strings.TrimSpace(env.Name); name != "" && name != EventPaymentCaptured {
		return invoicedomain.PaymentCapturedEvent{}, fmt.Errorf("%w: unexpected event %q", invoicedomain.ErrInvalidEvent, name)
	}

	id := env.ID
	if env.Data != nil && strings.TrimSpace(env.Data.ID) != "" {
		id = env.Data.ID
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return invoicedomain.PaymentCapturedEvent{}, fmt.Errorf("%w: missing payment id", invoicedomain.ErrInvalidEvent)
	}

	return invoicedomain.PaymentCapturedEvent{PaymentID: id}, nil
}
