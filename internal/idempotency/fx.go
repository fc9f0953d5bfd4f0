package idempotency

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/invoicer/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("idempotency",
	fx.Provide(NewGuard),
)

type Params struct {
	fx.In

	Cfg    config.Config
	Log    *zap.Logger
	Client redis.UniversalClient `optional:"true"`
}

// NewGuard falls back to NoopGuard when redis is not configured.
func NewGuard(p Params) Guard {
	if p.Client == nil {
		p.Log.Info("idempotency guard disabled, every delivery regenerates")
		return NoopGuard{}
	}
	return NewRedisGuard(NewLocker(p.Client), p.Cfg.Invoice.DedupeTTL)
}
