// Command fake-feed serves a simulated live-football API for local runs of
// the dashboard.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okian/matchboard/internal/simulator"
	"github.com/okian/matchboard/pkg/logger"
)

const (
	defaultAddr       = ":9090"
	defaultMatches    = 8
	defaultStep       = 5 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	var (
		addr    = flag.String("addr", defaultAddr, "Listen address of the fake feed")
		matches = flag.Int("matches", defaultMatches, "Live matches seeded at startup")
		step    = flag.Duration("step", defaultStep, "Interval between simulation steps")
		format  = flag.String("log-format", logger.FormatText, "Log format: text or json")
	)
	flag.Parse()

	if err := logger.Init(logger.WithFormat(*format)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *addr, *matches, *step); err != nil {
		logger.Get().Error(ctx, "fake feed exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, addr string, matches int, step time.Duration) error {
	log := logger.Get().Named("fake-feed")

	feed := simulator.New()
	feed.Seed(matches)

	srv := &http.Server{
		Addr:              addr,
		Handler:           feed.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "serving fake feed", logger.String("addr", addr), logger.Int("matches", matches))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	ticker := time.NewTicker(step)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
		case err := <-serveErr:
			return errors.Wrap(err, "listen")
		case <-ticker.C:
			feed.Step()
			log.Debug(ctx, "simulation stepped", logger.Int("live", len(feed.Matches())))
		}
	}
}
