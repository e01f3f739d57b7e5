package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/dali/internal/codec"
	"github.com/phambaophuc/dali/internal/codec/imagingcodec"
	"github.com/phambaophuc/dali/internal/codec/vipscodec"
	"github.com/phambaophuc/dali/internal/config"
	"github.com/phambaophuc/dali/internal/http/handlers"
	"github.com/phambaophuc/dali/internal/http/routes"
	"github.com/phambaophuc/dali/internal/models"
	"github.com/phambaophuc/dali/internal/observability"
	"github.com/phambaophuc/dali/internal/services/coordinator"
	"github.com/phambaophuc/dali/internal/services/health"
	"github.com/phambaophuc/dali/internal/services/processor"
	"github.com/phambaophuc/dali/internal/services/source"
	"github.com/phambaophuc/dali/internal/services/worker"
	"go.uber.org/zap"
)

// App owns every long-lived component of a running server.
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	pool    *worker.Pool
	server  *http.Server
	closers []func()
}

func NewApp(cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	imageCodec, err := a.newCodec(cfg.Codec)
	if err != nil {
		a.close()
		return nil, err
	}

	src, err := source.New(cfg)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to initialize image source: %w", err)
	}

	checker := health.NewChecker(cfg.Source.Timeout, logger)
	if probe, ok := src.(health.Probe); ok {
		checker.Register(probe)
	}

	observers := observability.Multi{observability.NewZapObserver(logger)}
	if cfg.Redis.Enabled {
		client := observability.NewRedisClient(cfg.Redis)
		a.closers = append(a.closers, func() { _ = client.Close() })
		redisObserver := observability.NewRedisObserver(client, cfg.Redis, logger)
		// Closers run in reverse, so queued counters flush before the client closes.
		a.closers = append(a.closers, redisObserver.Close)
		observers = append(observers, redisObserver)
		checker.Register(redisObserver)
	} else {
		checker.Disabled("redis")
	}

	a.pool = worker.NewPool(cfg.Worker.Size, cfg.Worker.QueueSize, logger)
	a.pool.Start()

	coord := coordinator.New(
		src,
		processor.NewImageProcessor(imageCodec, logger),
		a.pool,
		observers,
		source.Limits{MaxBytes: cfg.Source.MaxFileSize},
		logger,
	)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := routes.NewRouter(
		handlers.NewImageHandler(coord, cfg.Validation.Policy(), logger),
		handlers.NewHealthHandler(checker, a.pool),
		observers,
		logger,
	)

	a.server = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	if unsupported := unsupportedFormats(imageCodec); len(unsupported) > 0 {
		logger.Warn("Codec cannot encode some output formats; requests for them are rejected",
			zap.String("codec", imageCodec.Name()),
			zap.Strings("formats", unsupported),
		)
	}

	logger.Info("Application initialized",
		zap.String("codec", imageCodec.Name()),
		zap.String("source", src.Name()),
		zap.Int("workers", cfg.Worker.Size),
		zap.Bool("redis", cfg.Redis.Enabled),
	)
	return a, nil
}

func (a *App) newCodec(cfg config.CodecConfig) (codec.Codec, error) {
	if cfg.Engine != "vips" {
		return imagingcodec.New(), nil
	}

	vipscodec.Startup(vipscodec.Options{Concurrency: cfg.VipsConcurrency}, a.logger.Named("vips"))
	a.closers = append(a.closers, vipscodec.Shutdown)
	c, err := vipscodec.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vips codec: %w", err)
	}
	return c, nil
}

func unsupportedFormats(c codec.Codec) []string {
	var formats []string
	for _, format := range models.OutputFormats {
		if !c.Supports(format) {
			formats = append(formats, string(format))
		}
	}
	return formats
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves until ctx ends or the listener fails, then shuts down within
// server.shutdown_timeout.
func (a *App) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("Starting server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var err error
	select {
	case err = <-serveErr:
		a.logger.Error("Server failed", zap.Error(err))
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if shutdownErr := a.server.Shutdown(shutdownCtx); shutdownErr != nil {
		a.logger.Error("Server forced to shutdown", zap.Error(shutdownErr))
	}
	if stopErr := a.pool.Stop(shutdownCtx); stopErr != nil {
		a.logger.Error("Workers did not drain", zap.Error(stopErr))
	}
	a.close()

	a.logger.Info("Server exited")
	return err
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
