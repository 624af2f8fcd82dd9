package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"

	"github.com/okian/matchboard/internal/adapters/http/api"
	"github.com/okian/matchboard/internal/adapters/http/site"
	"github.com/okian/matchboard/internal/adapters/http/swagger"
	"github.com/okian/matchboard/internal/adapters/http/ws"
	"github.com/okian/matchboard/internal/adapters/publisher"
	"github.com/okian/matchboard/internal/adapters/upstream"
	app "github.com/okian/matchboard/internal/app"
	"github.com/okian/matchboard/internal/config"
	"github.com/okian/matchboard/pkg/logger"
	"github.com/okian/matchboard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 40 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "matchboard exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// defaults -> .env -> optional file -> env
	cfg, err := config.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return errors.Wrap(err, "init logger")
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()

	pub, hub, closePub, err := newPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePub()

	svc := app.New(newUpstream(cfg),
		app.WithLogger(log.Named("service")),
		app.WithScoresInterval(cfg.ScoresInterval()),
		app.WithStatsInterval(cfg.StatsInterval()),
		app.WithBatchSize(cfg.CardBatchSize),
		app.WithAutoAdd(cfg.AutoAddCards),
		app.WithRequirements(cfg.RequireStatistics, cfg.RequireHeatmap),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithStatKeys(cfg.StatKeys),
		app.WithWidgetURL(cfg.WidgetURL),
		app.WithPublisher(pub),
	)
	hub.SetSnapshot(svc.Snapshot)
	go hub.Run(hubCtx)

	if err := svc.Start(ctx); err != nil {
		return errors.Wrap(err, "start service")
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error(stopCtx, "service stop failed", logger.Error(err))
		}
	}()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(ctx, cfg, svc, hub),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return errors.Wrap(err, "http server")
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	stopHub()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "server stopped")
	return nil
}

func newUpstream(cfg *config.Config) *upstream.Client {
	opts := []upstream.Option{
		upstream.WithTimeout(cfg.UpstreamTimeout()),
		upstream.WithLogger(logger.Get().Named("upstream")),
	}
	if cfg.UpstreamHost != "" && cfg.APIKey != "" {
		opts = append(opts, upstream.WithRelay(cfg.UpstreamHost, cfg.APIKey))
	}
	return upstream.NewClient(cfg.BaseURL, opts...)
}

// newPublisher builds the push fan-out: the WebSocket hub always, the Redis
// stream when redis_url is set.
func newPublisher(ctx context.Context, cfg *config.Config) (*publisher.Multi, *ws.Hub, func(), error) {
	hub := ws.NewHub(
		ws.WithHubLogger(logger.Get().Named("ws")),
		ws.WithBroadcastBuffer(cfg.WSBroadcastBuffer),
	)
	multi := publisher.NewMulti(publisher.Sink{Name: "ws", Publisher: hub})
	closeFn := func() {}

	if cfg.RedisURL == "" {
		return multi, hub, closeFn, nil
	}
	client, err := publisher.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	stream := publisher.NewStreamPublisher(client, cfg.RedisStream)
	if err := stream.Ping(ctx); err != nil {
		logger.Get().Warn(ctx, "redis unreachable; card events will not be streamed until it recovers", logger.Error(err))
	}
	multi.Add("redis", stream)
	return multi, hub, func() { _ = stream.Close() }, nil
}

func newRouter(ctx context.Context, cfg *config.Config, svc *app.Service, hub *ws.Hub) chi.Router {
	r := api.NewServer(svc, svc,
		api.WithCORSOrigins(cfg.CORSOrigins),
		api.WithWebSocket(ws.NewHandler(hub, nil)),
	).Router(ctx)
	swagger.Register(ctx, r)
	site.Register(ctx, r)
	return r
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics copies the service stats into the gauges.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if live, ok := stats["liveMatches"].(int); ok {
		metrics.UpdateLiveMatches(live)
	}
	total, okTotal := stats["cards"].(int)
	visible, okVisible := stats["visibleCards"].(int)
	if okTotal && okVisible {
		metrics.UpdateCards(total, visible)
	}
}
