package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"
)

// Up runs all pending SQL migrations found in migrationsDir and returns the
// versions it applied.
func Up(ctx context.Context, db *sql.DB, migrationsDir string) ([]int64, error) {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, os.DirFS(migrationsDir))
	if err != nil {
		return nil, fmt.Errorf("create goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("run goose up migrations: %w", err)
	}

	applied := make([]int64, 0, len(results))
	for _, r := range results {
		applied = append(applied, r.Source.Version)
	}
	return applied, nil
}
