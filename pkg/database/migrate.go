package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// migrationLockID keys the advisory lock that serializes concurrent migrators
const migrationLockID = 7340021

// Migrations returns the embedded schema files
func Migrations() fs.FS {
	return migrationFS
}

// Migrate applies every *.sql file under migrations/ in fsys that is not yet
// recorded in schema_migrations. Files run in lexical order, each in its own
// transaction together with its bookkeeping row. Returns the versions applied.
func Migrate(ctx context.Context, cp *ConnectionPool, fsys fs.FS) ([]string, error) {
	if _, err := cp.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return nil, fmt.Errorf("ensure schema_migrations: %w", err)
	}

	files, err := migrationFiles(fsys)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, fname := range files {
		version := strings.TrimSuffix(fname, path.Ext(fname))

		body, err := fs.ReadFile(fsys, path.Join("migrations", fname))
		if err != nil {
			return applied, fmt.Errorf("read migration %s: %w", fname, err)
		}

		ran := false
		err = cp.WithTx(ctx, func(tx *sqlx.Tx) error {
			if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockID); err != nil {
				return fmt.Errorf("lock migrations: %w", err)
			}

			var count int
			if err := tx.GetContext(ctx, &count, `SELECT COUNT(1) FROM schema_migrations WHERE version = $1`, version); err != nil {
				return fmt.Errorf("check migration %s: %w", version, err)
			}
			if count > 0 {
				return nil
			}

			if _, err := tx.ExecContext(ctx, string(body)); err != nil {
				return fmt.Errorf("exec migration %s: %w", fname, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
				return fmt.Errorf("record migration %s: %w", fname, err)
			}
			ran = true
			return nil
		})
		if err != nil {
			return applied, err
		}

		if ran {
			cp.logger.Info("migration applied", slog.String("version", version))
			applied = append(applied, version)
		}
	}

	return applied, nil
}

// migrationFiles lists the .sql files under migrations/ sorted by name
func migrationFiles(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
