package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"eventflow/internal/logging"
	"eventflow/internal/store"
)

func main() {
	logging.SetGlobal(logging.New(logging.Config{Level: "info", Format: "text"}))

	flags := pflag.NewFlagSet("migrate", pflag.ExitOnError)
	steps := flags.Int("steps", 0, "apply only this many migrations (negative rolls back)")
	force := flags.Int("force", -1, "mark this version as applied without running it")
	_ = flags.Parse(os.Args[1:])

	if *steps == 0 && *force < 0 && (flags.NArg() != 1 || (flags.Arg(0) != "up" && flags.Arg(0) != "down")) {
		log.Fatal().Msg("usage: migrate [up|down] | --steps N | --force VERSION")
	}

	_ = godotenv.Load("config/local.env")
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal().Msg("DATABASE_URL env var is required")
	}

	m, db, err := newMigrator(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("create migrator")
	}
	defer db.Close()

	switch {
	case *force >= 0:
		err = m.Force(*force)
	case *steps != 0:
		err = m.Steps(*steps)
	case flags.Arg(0) == "up":
		err = m.Up()
	default:
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal().Err(err).Msg("migration failed")
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		log.Fatal().Err(verr).Msg("read schema version")
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migrations applied")
}

func newMigrator(dsn string) (*migrate.Migrate, *sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("postgres driver: %w", err)
	}

	source, err := iofs.New(store.Migrations, "migrations")
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate instance: %w", err)
	}
	return m, db, nil
}
