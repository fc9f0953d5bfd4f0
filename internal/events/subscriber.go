package events

import (
	"context"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	obsmetrics "github.com/smallbiznis/invoicer/internal/observability/metrics"
	"go.uber.org/zap"
)

// Subscriber feeds payment captured events published on a redis channel into
// the dispatcher.
type Subscriber struct {
	client     redis.UniversalClient
	channel    string
	dispatcher *Dispatcher
	log        *zap.Logger
	metrics    *obsmetrics.Metrics
}

func NewSubscriber(client redis.UniversalClient, channel string, dispatcher *Dispatcher, log *zap.Logger, metrics *obsmetrics.Metrics) *Subscriber {
	return &Subscriber{
		client:     client,
		channel:    channel,
		dispatcher: dispatcher,
		log:        log.Named("events.subscriber").With(zap.String("channel", channel)),
		metrics:    metrics,
	}
}

// Run blocks until ctx is cancelled or the subscription breaks.
func (s *Subscriber) Run(ctx context.Context) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.channel, err)
	}
	s.log.Info("listening for payment captured events")

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			s.handle(ctx, msg.Payload)
		}
	}
}

func (s *Subscriber) handle(ctx context.Context, payload string) {
	evt, err := DecodePaymentCaptured([]byte(payload))
	if err != nil {
		s.metrics.RecordPaymentEvent(ctx, SourceRedis, "invalid")
		s.log.Warn("discarding malformed payment captured event", zap.Error(err))
		return
	}

	if err := s.dispatcher.Submit(ctx, SourceRedis, evt); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.log.Warn("payment captured event not dispatched",
			zap.String("payment_id", evt.PaymentID),
			zap.Error(err),
		)
	}
}
