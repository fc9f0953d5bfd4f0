package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Object is one entry of a bucket listing.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store persists rendered documents and lists them back.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	// List returns every object under prefix in the backend's listing order.
	List(ctx context.Context, prefix string) ([]Object, error)
	// URL returns the fully-qualified location of key.
	URL(key string) string
}

var ErrInvalidKey = errors.New("invalid_object_key")
