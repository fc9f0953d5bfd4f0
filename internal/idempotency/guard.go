package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const keyPaymentGuard = "invoicer:payment:%s"

var ErrEmptyPaymentID = errors.New("empty_payment_id")

// Guard claims a payment so that redelivered events do not produce a second document.
type Guard interface {
	// Acquire returns acquired=false when another run already claimed paymentID.
	Acquire(ctx context.Context, paymentID string) (token string, acquired bool, err error)
	// Release drops the claim so a later delivery can retry.
	Release(ctx context.Context, paymentID, token string) error
}

type RedisGuard struct {
	locker *Locker
	ttl    time.Duration
}

func NewRedisGuard(locker *Locker, ttl time.Duration) *RedisGuard {
	return &RedisGuard{locker: locker, ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context, paymentID string) (string, bool, error) {
	key, err := guardKey(paymentID)
	if err != nil {
		return "", false, err
	}
	return g.locker.TryLock(ctx, key, g.ttl)
}

func (g *RedisGuard) Release(ctx context.Context, paymentID, token string) error {
	key, err := guardKey(paymentID)
	if err != nil {
		return err
	}
	return g.locker.Release(ctx, key, token)
}

func guardKey(paymentID string) (string, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return "", ErrEmptyPaymentID
	}
	return fmt.Sprintf(keyPaymentGuard, paymentID), nil
}

// NoopGuard admits every delivery.
type NoopGuard struct{}

func (NoopGuard) Acquire(ctx context.Context, paymentID string) (string, bool, error) {
	return "", true, nil
}

func (NoopGuard) Release(ctx context.Context, paymentID, token string) error {
	return nil
}
