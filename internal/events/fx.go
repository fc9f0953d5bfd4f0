package events

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/invoicer/internal/config"
	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	obsmetrics "github.com/smallbiznis/invoicer/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("events",
	fx.Provide(provideDispatcher),
	fx.Invoke(runSubscriber),
)

type Params struct {
	fx.In

	Lc      fx.Lifecycle
	Cfg     config.Config
	Log     *zap.Logger
	Handler invoicedomain.PaymentCapturedHandler
	Metrics *obsmetrics.Metrics   `optional:"true"`
	Client  redis.UniversalClient `optional:"true"`
}

func provideDispatcher(p Params) *Dispatcher {
	dispatcher := NewDispatcher(p.Handler, p.Cfg.Events.Workers, p.Log, p.Metrics)
	p.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			dispatcher.Start()
			return nil
		},
		OnStop: dispatcher.Stop,
	})
	return dispatcher
}

func runSubscriber(p Params, dispatcher *Dispatcher) {
	if !p.Cfg.Events.Enabled {
		return
	}
	if p.Client == nil {
		p.Log.Info("redis not configured, payment captured events arrive only through the HTTP hook")
		return
	}

	subscriber := NewSubscriber(p.Client, p.Cfg.Events.Channel, dispatcher, p.Log, p.Metrics)

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})

			go func() {
				defer close(done)
				if err := subscriber.Run(ctx); err != nil {
					p.Log.Error("payment captured subscriber stopped", zap.Error(err))
				}
			}()

			p.Lc.Append(fx.Hook{
				OnStop: func(stopCtx context.Context) error {
					cancel()
					select {
					case <-done:
					case <-stopCtx.Done():
					}
					return nil
				},
			})
			return nil
		},
	})
}
