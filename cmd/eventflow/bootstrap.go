package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"eventflow/internal/app/auth"
	"eventflow/internal/store"
)

const (
	demoName     = "Demo Shopper"
	demoEmail    = "demo@eventflow.test"
	demoPassword = "password123"
)

// openStore selects the persistence backend. The returned closer releases
// the underlying connection.
func openStore(ctx context.Context, cfg Config) (store.KV, io.Closer, error) {
	switch cfg.StoreDriver {
	case storePostgres:
		db, err := openDatabase(ctx, cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		pg := store.NewPG(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return pg, db, nil

	case storeRedis:
		client := store.NewRedisClient(cfg.RedisURL)
		rs := store.NewRedis(client)
		if err := rs.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return rs, client, nil

	default:
		return store.NewMemory(), nopCloser{}, nil
	}
}

// ensureDemoUser seeds a known account outside production.
func ensureDemoUser(ctx context.Context, users *auth.Directory) error {
	_, err := users.Create(ctx, demoName, demoEmail, demoPassword)
	switch {
	case err == nil:
		log.Info().Str("email", demoEmail).Msg("seeded demo user")
		return nil
	case errors.Is(err, auth.ErrEmailTaken):
		return nil
	default:
		return fmt.Errorf("seed demo user: %w", err)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
