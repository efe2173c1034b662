package store

import "embed"

// Migrations holds the versioned schema for PGStore, applied by cmd/migrate.
// EnsureSchema covers the first version for development setups.
//
//go:embed migrations/*.sql
var Migrations embed.FS
