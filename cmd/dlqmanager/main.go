package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Maqingtian/campus-hub/internal/config"
	"github.com/Maqingtian/campus-hub/internal/outbox"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	manager := outbox.NewDLQManager(pool, cfg.DLQMaxRetries, cfg.DLQBaseDelay)

	metricsSrv := &http.Server{Addr: cfg.MetricsAddress, Handler: promhttp.Handler(), ReadHeaderTimeout: 2 * time.Second}
	go func() {
		log.Printf("dlq manager metrics listening on %s", cfg.MetricsAddress)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server error: %v", err)
		}
	}()

	ticker := time.NewTicker(cfg.DLQPollInterval)
	defer ticker.Stop()

	log.Printf("DLQ manager started (interval=%s, maxRetries=%d, batch=%d)", cfg.DLQPollInterval, cfg.DLQMaxRetries, cfg.DLQBatchSize)

	run(ctx, ticker.C, func(ctx context.Context) {
		processed, err := manager.RunOnce(ctx, cfg.DLQBatchSize)
		if err != nil {
			log.Printf("dlq manager error: %v", err)
		} else if processed > 0 {
			log.Printf("dlq manager processed %d entries", processed)
		}
	})
	log.Println("dlq manager received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics server shutdown error: %v", err)
	}
}

// run invokes tick on every timer fire until ctx is done.
func run(ctx context.Context, ticks <-chan time.Time, tick func(context.Context)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			tick(ctx)
		}
	}
}
