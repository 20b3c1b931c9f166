// Package cmd provides common initialization functions for the command-line
// binaries.
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hireflow/hireflow/pkg/persistence"
	"github.com/hireflow/hireflow/pkg/persistence/file"
	"github.com/hireflow/hireflow/pkg/persistence/memory"
	"github.com/hireflow/hireflow/pkg/persistence/postgresql"
)

// NewPersistence builds the persistence backend from the database URL scheme:
// postgres:// for PostgreSQL, memory:// for the in-memory store, anything
// else is treated as a file-backed root directory.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	case databaseURL == "memory" || strings.HasPrefix(databaseURL, "memory://"):
		return memory.NewPersistence(), nil
	case strings.HasPrefix(databaseURL, "file://"):
		return file.NewPersistence(strings.TrimPrefix(databaseURL, "file://")), nil
	default:
		return file.NewPersistence(databaseURL), nil
	}
}
