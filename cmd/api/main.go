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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Maqingtian/campus-hub/internal/api"
	"github.com/Maqingtian/campus-hub/internal/auth"
	"github.com/Maqingtian/campus-hub/internal/config"
	"github.com/Maqingtian/campus-hub/internal/domain"
	"github.com/Maqingtian/campus-hub/internal/outbox"
	persistence "github.com/Maqingtian/campus-hub/internal/persistence/postgres"
	httptransport "github.com/Maqingtian/campus-hub/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := persistence.NewRepository(pool)
	producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
	defer producer.Close()

	registry := outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL)
	dispatcher := outbox.NewDispatcher(pool, producer, registry, cfg.OutboxPollInterval, cfg.OutboxBatchSize)

	go dispatcher.Start(ctx)

	signups := domain.NewSignupService(repo)
	activities := domain.NewActivityService(repo, signups)
	notifications := domain.NewNotificationService(repo, cfg.NotificationPageSize)

	handler := api.NewHandler(activities, signups, notifications, outbox.NewPublisher(pool),
		api.WithHealthCheck(repo.Ping))

	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})

	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(httptransport.RequestLogger(log.Default()))
	router.Use(httptransport.CORS(cfg.CORSOrigin))
	router.Use(authMiddleware.Wrap)
	router.Handle("/metrics", promhttp.Handler())
	handler.RegisterRoutes(router)

	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), router)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("campus-hub api listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	dispatcher.Wait()
}
