package format

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	DocumentSuffix = ".pdf"
	ContentTypePDF = "application/pdf"
)

var objectKeyRe = regexp.MustCompile(`^order-(.+)-(\d+)\.pdf$`)

var (
	ErrEmptyOrderID     = errors.New("order id is empty")
	ErrInvalidOrderID   = errors.New("order id must not contain '/'")
	ErrInvalidTimestamp = errors.New("timestamp must not be negative")
)

// ObjectRef is what an object key tells about the invoice it stores.
type ObjectRef struct {
	Key       string
	OrderID   string
	Timestamp int64
}

// ObjectKey builds the storage key for an order document: order-{orderID}-{millis}.pdf.
//
// This function is PURE:
// - No side effects
// - No storage access
// - Fully deterministic
func ObjectKey(orderID string, timestamp int64) (string, error) {
	if strings.TrimSpace(orderID) == "" {
		return "", ErrEmptyOrderID
	}
	if strings.Contains(orderID, "/") {
		return "", ErrInvalidOrderID
	}
	if timestamp < 0 {
		return "", ErrInvalidTimestamp
	}
	return fmt.Sprintf("order-%s-%d%s", orderID, timestamp, DocumentSuffix), nil
}

// ParseObjectKey reverses ObjectKey. The order id capture is greedy so ids that
// themselves contain "-<digits>" still decode to the original pair.
func ParseObjectKey(key string) (ObjectRef, bool) {
	match := objectKeyRe.FindStringSubmatch(key)
	if len(match) != 3 {
		return ObjectRef{}, false
	}

	timestamp, err := strconv.ParseInt(match[2], 10, 64)
	if err != nil {
		return ObjectRef{}, false
	}

	return ObjectRef{
		Key:       key,
		OrderID:   match[1],
		Timestamp: timestamp,
	}, true
}

// InvoiceID formats the human-facing invoice identifier inv-{displayID}-{millis}.
func InvoiceID(displayID int64, timestamp int64) string {
	return fmt.Sprintf("inv-%d-%d", displayID, timestamp)
}

func IsDocumentKey(key string) bool {
	return strings.HasSuffix(key, DocumentSuffix)
}

// JoinKey prepends an optional folder prefix to a key.
func JoinKey(prefix, key string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return key
	}
	return prefix + "/" + key
}

// SplitKey strips the folder prefix, reporting false when the key lives elsewhere.
func SplitKey(prefix, key string) (string, bool) {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return key, true
	}
	rest, ok := strings.CutPrefix(key, prefix+"/")
	if !ok {
		return "", false
	}
	return rest, true
}
