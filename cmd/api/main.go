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
	"time"

	"github.com/fastprodman/artmarket/internal/api"
	"github.com/fastprodman/artmarket/internal/infra/logging"
	"github.com/fastprodman/artmarket/internal/infra/metrics"
	"github.com/fastprodman/artmarket/internal/infra/objstore"
	"github.com/fastprodman/artmarket/internal/infra/pgutils"
	"github.com/fastprodman/artmarket/internal/services/accounts"
	"github.com/fastprodman/artmarket/internal/services/catalog"
	"github.com/fastprodman/artmarket/internal/services/uploads"
	"github.com/fastprodman/artmarket/internal/services/wallet"
	"github.com/fastprodman/artmarket/pkg/envconf"
	"github.com/fastprodman/artmarket/pkg/shutdownqueue"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	// A missing .env is fine; the real environment wins either way.
	_ = godotenv.Load()

	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	syncLogs := logging.Setup(cfg.LogLevel, cfg.AppEnv == "DEV")
	shutdownqueue.Add("flush logs", func(context.Context) error {
		_ = syncLogs()

		return nil
	})

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	cfg.warnMissing()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add("close db", func(context.Context) error {
		return db.Close()
	})

	m := metrics.New()

	uploadSrv, err := newUploads(ctx, cfg)
	if err != nil {
		return err
	}

	// --- Services ---
	txOpts := pgutils.TxOptions{
		AcquireTimeout:   cfg.Wallet.AcquireTimeout,
		LockTimeout:      cfg.Wallet.LockTimeout,
		StatementTimeout: cfg.Wallet.StatementTimeout,
	}

	h := api.NewHandler(api.Deps{
		Accounts: accounts.New(db, accounts.NewBcryptHasher(), txOpts),
		Wallet:   wallet.New(db, cfg.Wallet, m),
		Catalog:  catalog.New(db),
		Uploads:  uploadSrv,
		Ping:     func(ctx context.Context) error { return pgutils.Ping(ctx, db) },
		Metrics:  m,
	})

	limiter := api.NewClientRateLimiter(cfg.HTTP.AuthRatePerS, cfg.HTTP.AuthRateBurst)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	go limiter.Run(sweepCtx, time.Minute)

	shutdownqueue.Add("stop rate limiter sweep", func(context.Context) error {
		stopSweep()

		return nil
	})

	// --- HTTP server ---
	srv := api.NewServer(cfg.HTTP.Port, api.NewRouter(h, cfg.HTTP.CORSOrigins, limiter))

	shutdownqueue.Add("http server", func(c context.Context) error {
		slog.Info("shutting down http server")

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

	slog.Info("API started", "port", cfg.HTTP.Port, "env", cfg.AppEnv)

	select {
	case <-ctx.Done():
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}

// newUploads builds the upload gateway. Without S3 settings the gateway is
// still wired and its operations report the store as not configured.
func newUploads(ctx context.Context, cfg *apiConfig) (*uploads.Service, error) {
	if !cfg.S3.Configured() {
		return uploads.New(nil, cfg.S3.PresignTTL), nil
	}

	store, err := objstore.New(ctx, cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("init object store: %w", err)
	}

	return uploads.New(store, cfg.S3.PresignTTL), nil
}
