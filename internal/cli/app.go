package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicer/internal/clock"
	"github.com/smallbiznis/invoicer/internal/commerce/repository"
	"github.com/smallbiznis/invoicer/internal/config"
	"github.com/smallbiznis/invoicer/internal/idempotency"
	"github.com/smallbiznis/invoicer/internal/invoice"
	"github.com/smallbiznis/invoicer/internal/observability"
	"github.com/smallbiznis/invoicer/internal/storage"
	"github.com/smallbiznis/invoicer/pkg/db"
	"github.com/smallbiznis/invoicer/pkg/redisconn"
	"go.uber.org/fx"
)

const startTimeout = 30 * time.Second

func coreModules() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		redisconn.Module,
		storage.Module,
		repository.Module,
		idempotency.Module,
		invoice.Module,
	)
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", cfg.NodeID, err)
	}
	return node, nil
}

// startOneShot starts the core graph without the HTTP server or the event
// subscriber and fills targets from it.
func startOneShot(ctx context.Context, targets ...any) (func(), error) {
	app := fx.New(
		coreModules(),
		fx.NopLogger,
		fx.Populate(targets...),
	)

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return nil, err
	}

	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		_ = app.Stop(stopCtx)
	}, nil
}
