package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/jasdeace/webapp/internal/api"
	"github.com/jasdeace/webapp/internal/auth"
	"github.com/jasdeace/webapp/internal/infra/logging"
	"github.com/jasdeace/webapp/internal/infra/pgutils"
	"github.com/jasdeace/webapp/internal/metrics"
	"github.com/jasdeace/webapp/internal/payment"
	pgcredits "github.com/jasdeace/webapp/internal/repos/credits/postgres"
	pgsubmissions "github.com/jasdeace/webapp/internal/repos/submissions/postgres"
	"github.com/jasdeace/webapp/internal/services/credits"
	"github.com/jasdeace/webapp/pkg/envconf"
	"github.com/jasdeace/webapp/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON("credit-api", cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error {
		return db.Close()
	})

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// --- Domain wiring ---
	coordinator := credits.New(
		pgcredits.New(db),
		pgsubmissions.New(db),
		cfg.SubmissionCost,
		collector,
	)

	verifier := auth.NewJWT(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	gateway := payment.NewStubGateway(cfg.PaymentCheckoutURL)

	router, stopLimiter := api.NewRouter(api.RouterConfig{
		Coordinator: coordinator,
		Gateway:     gateway,
		Identity:    verifier,
		Gatherer:    registry,
		RateLimit:   rate.Limit(cfg.RateLimitPerSec),
		RateBurst:   cfg.RateLimitBurst,
	})

	shutdownqueue.Add(func(context.Context) error {
		stopLimiter()
		return nil
	})

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, router)

	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port, "submission_cost", cfg.SubmissionCost)

	// --- Wait until either context cancels or server errors out ---
	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
