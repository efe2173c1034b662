package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"eventflow/internal/app/auth"
	"eventflow/internal/app/catalog"
	"eventflow/internal/app/payment"
	"eventflow/internal/app/storefront"
	"eventflow/internal/logging"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	logging.SetGlobal(logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg Config) error {
	events, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	kv, closer, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	users := auth.NewDirectory(kv, 0)
	if cfg.Env != "production" {
		if err := ensureDemoUser(ctx, users); err != nil {
			return err
		}
	}

	var issuer auth.TokenIssuer = auth.RandomIssuer{}
	if cfg.JWTSecret != "" {
		issuer = auth.NewJWTIssuer(cfg.JWTSecret, 0)
	}

	shop := storefront.NewRegistry(storefront.Config{
		Store:   kv,
		Catalog: events,
		Users:   users,
		Payments: payment.NewProcessor(payment.Config{
			Delay:  cfg.PaymentDelay,
			Jitter: cfg.PaymentDelay * 2 / 3,
		}),
		Issuer:      issuer,
		AuthDelay:   cfg.AuthDelay,
		MaxProfiles: cfg.MaxProfiles,
	})

	server := newHTTPServer(cfg, newHTTPHandler(cfg, shop))

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Addr).
			Str("store", cfg.StoreDriver).
			Int("events", events.Len()).
			Msg("API listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("shutting down")
	return server.Shutdown(shutdownCtx)
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}
