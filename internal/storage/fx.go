package storage

import (
	"context"

	"github.com/smallbiznis/invoicer/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("storage",
	fx.Provide(provideStore),
)

func provideStore(cfg config.Config, log *zap.Logger) (Store, error) {
	store, err := FromConfig(context.Background(), cfg.Storage)
	if err != nil {
		return nil, err
	}
	log.Info("object storage configured", zap.String("driver", cfg.Storage.Driver), zap.Any("store", store))
	return store, nil
}
