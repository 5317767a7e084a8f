// Command api serves the loan tracker web application.
//
// @title       Loan Tracker API
// @version     1.0
// @description Read-only JSON views over the clients and payments of the logged-in account.
// @BasePath    /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/prestamos/loan-tracker/internal/api"
	"github.com/prestamos/loan-tracker/internal/api/handler"
	"github.com/prestamos/loan-tracker/internal/core/service"
	"github.com/prestamos/loan-tracker/internal/infrastructure/config"
	mongostore "github.com/prestamos/loan-tracker/internal/infrastructure/db/mongo"
	"github.com/prestamos/loan-tracker/internal/infrastructure/db/postgres"
	redisstore "github.com/prestamos/loan-tracker/internal/infrastructure/db/redis"
	"github.com/prestamos/loan-tracker/internal/infrastructure/metrics"
	"github.com/prestamos/loan-tracker/pkg/logger"
)

const (
	serviceName     = "loan-tracker"
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "loan-tracker: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	db, err := postgres.Connect(ctx, postgres.Config{
		URL:          cfg.Database.URL,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	mongoClient, mongoDB, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Bucket:   cfg.Mongo.Bucket,
		AppName:  serviceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Dependencies ---
	clientRepo := postgres.NewClientRepository(db)
	accounts := service.NewAccountService(
		postgres.NewAccountRepository(db),
		redisstore.NewSessionStore(rdb),
		cfg.Session.Secret,
		cfg.Session.TTL,
		logger.Component("accounts"),
	).WithMetrics(metrics.Recorder{})
	clients := service.NewClientService(
		clientRepo,
		mongostore.NewDocumentStore(mongoDB, cfg.Mongo.Bucket),
		logger.Component("clients"),
	).WithMetrics(metrics.Recorder{})
	payments := service.NewPaymentService(
		clientRepo,
		postgres.NewPaymentRepository(db),
		logger.Component("payments"),
	).WithMetrics(metrics.Recorder{})

	e, err := api.NewRouter(api.Dependencies{
		Accounts: accounts,
		Clients:  clients,
		Payments: payments,
		Checks: []handler.DependencyCheck{
			{Name: "postgres", Check: db.PingContext},
			{Name: "mongo", Check: func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }},
			{Name: "redis", Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		},
		Logger:         log,
		CookieSecure:   cfg.Session.CookieSecure,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	if err != nil {
		return err
	}

	return serve(ctx, e, ":"+cfg.Port, log)
}

// serve blocks until ctx is cancelled or the listener fails, then drains
// in-flight requests.
func serve(ctx context.Context, h http.Handler, addr string, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
