package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKeyRoundTrip(t *testing.T) {
	cases := []struct {
		orderID   string
		timestamp int64
	}{
		{orderID: "order_9", timestamp: 1718000000000},
		{orderID: "order_01HZX3M8Q", timestamp: 0},
		{orderID: "ord-12-34", timestamp: 1700000000123},
		{orderID: "a-b-c", timestamp: 42},
	}

	for _, tc := range cases {
		key, err := ObjectKey(tc.orderID, tc.timestamp)
		require.NoError(t, err)

		ref, ok := ParseObjectKey(key)
		require.True(t, ok, "key %q should parse", key)
		assert.Equal(t, tc.orderID, ref.OrderID)
		assert.Equal(t, tc.timestamp, ref.Timestamp)
		assert.Equal(t, key, ref.Key)
	}
}

func TestObjectKeyFormat(t *testing.T) {
	key, err := ObjectKey("order_9", 1718000000000)
	require.NoError(t, err)
	assert.Equal(t, "order-order_9-1718000000000.pdf", key)
}

func TestObjectKeyRejectsInvalidInput(t *testing.T) {
	_, err := ObjectKey("  ", 1)
	assert.ErrorIs(t, err, ErrEmptyOrderID)

	_, err = ObjectKey("a/b", 1)
	assert.ErrorIs(t, err, ErrInvalidOrderID)

	_, err = ObjectKey("order_1", -5)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestParseObjectKeyRejectsForeignKeys(t *testing.T) {
	for _, key := range []string{
		"random-file.txt",
		"order-abc.pdf",
		"order--123.pdf",
		"order-abc-12x.pdf",
		"invoice-abc-123.pdf",
		"order-abc-123.pdf.bak",
		"order-abc-99999999999999999999.pdf",
	} {
		_, ok := ParseObjectKey(key)
		assert.False(t, ok, "key %q should not parse", key)
	}
}

func TestInvoiceID(t *testing.T) {
	assert.Equal(t, "inv-1042-1718000000000", InvoiceID(1042, 1718000000000))
}

func TestJoinAndSplitKey(t *testing.T) {
	assert.Equal(t, "order-a-1.pdf", JoinKey("", "order-a-1.pdf"))
	assert.Equal(t, "invoices/order-a-1.pdf", JoinKey("/invoices/", "order-a-1.pdf"))

	rest, ok := SplitKey("invoices", "invoices/order-a-1.pdf")
	assert.True(t, ok)
	assert.Equal(t, "order-a-1.pdf", rest)

	_, ok = SplitKey("invoices", "other/order-a-1.pdf")
	assert.False(t, ok)

	rest, ok = SplitKey("", "order-a-1.pdf")
	assert.True(t, ok)
	assert.Equal(t, "order-a-1.pdf", rest)
}
