package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/invoicer/internal/config"
	"github.com/smallbiznis/invoicer/internal/events"
	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	"github.com/smallbiznis/invoicer/internal/observability"
	obsmiddleware "github.com/smallbiznis/invoicer/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/invoicer/internal/observability/metrics"
	obstracing "github.com/smallbiznis/invoicer/internal/observability/tracing"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

// EventSubmitter queues payment captured events for asynchronous processing.
type EventSubmitter interface {
	Submit(ctx context.Context, source string, evt invoicedomain.PaymentCapturedEvent) error
}

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
		QuietRoutes:     []string{"/health", "/metrics"},
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.String("addr", srv.Addr), zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", srv.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	invoiceSvc invoicedomain.Service
	events     EventSubmitter
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	InvoiceSvc invoicedomain.Service
	Dispatcher *events.Dispatcher
}

func NewServer(p ServerParams) *Server {
	return newServer(p.Gin, p.Cfg, p.Log, p.InvoiceSvc, p.Dispatcher)
}

func newServer(engine *gin.Engine, cfg config.Config, log *zap.Logger, invoiceSvc invoicedomain.Service, submitter EventSubmitter) *Server {
	svc := &Server{
		engine:     engine,
		cfg:        cfg,
		log:        log.Named("http"),
		invoiceSvc: invoiceSvc,
		events:     submitter,
	}

	svc.registerAdminRoutes()
	svc.registerHookRoutes()
	svc.registerDocumentRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")
	admin.GET("/invoices", s.ListInvoices)
}

func (s *Server) registerHookRoutes() {
	hooks := s.engine.Group("/hooks")
	hooks.POST("/payment-captured", s.PaymentCaptured)
}

// registerDocumentRoutes serves rendered documents straight from disk when the
// local store is in use, under the path of the configured URL prefix.
func (s *Server) registerDocumentRoutes() {
	if s.cfg.Storage.Driver != config.StorageDriverLocal {
		return
	}
	route := localDocumentRoute(s.cfg.Storage.LocalURLPrefix)
	s.engine.StaticFS(route, gin.Dir(s.cfg.Storage.LocalDir, false))
}

func localDocumentRoute(prefix string) string {
	route := "/invoices"
	if parsed, err := url.Parse(strings.TrimSpace(prefix)); err == nil {
		if p := strings.TrimRight(parsed.Path, "/"); p != "" {
			route = p
		}
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return route
}
