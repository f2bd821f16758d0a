package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// columnMigration adds one nullable/defaulted column to an existing table.
// Additive only: existing rows keep working, older binaries keep working.
type columnMigration struct {
	table      string
	column     string
	definition string
}

// Snapshot columns on product_mapping arrived after the base schema; they
// let quick mode diff against the last synced feed values without a
// catalog fetch.
var columnMigrations = []columnMigration{
	{"product_mapping", "title", "TEXT NOT NULL DEFAULT ''"},
	{"product_mapping", "price", "TEXT NOT NULL DEFAULT ''"},
	{"product_mapping", "wholesale_price", "TEXT NOT NULL DEFAULT ''"},
	{"product_mapping", "stock", "INTEGER NOT NULL DEFAULT 0"},
	{"product_mapping", "brand", "TEXT NOT NULL DEFAULT ''"},
	{"product_mapping", "ean", "TEXT NOT NULL DEFAULT ''"},
	{"orders", "wimood_order_id", "BIGINT"},
	{"orders", "wimood_status", "TEXT NOT NULL DEFAULT ''"},
	{"orders", "dropship_submitted", "BOOLEAN NOT NULL DEFAULT FALSE"},
}

// EnsureSchema applies the base schema file and then any additive column
// migrations that the current database is missing. Safe to run on every
// startup.
func EnsureSchema(ctx context.Context, db *sql.DB, schemaPath string, logger *zap.Logger) error {
	schema, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("failed to apply base schema: %w", err)
	}

	for _, m := range columnMigrations {
		exists, err := columnExists(ctx, db, m.table, m.column)
		if err != nil {
			return fmt.Errorf("failed to inspect %s.%s: %w", m.table, m.column, err)
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.table, m.column, m.definition)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add column %s.%s: %w", m.table, m.column, err)
		}
		logger.Info("Migrated: added column",
			zap.String("table", m.table),
			zap.String("column", m.column),
		)
	}

	return nil
}

func columnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_name = $1 AND column_name = $2
		)
	`
	var exists bool
	err := db.QueryRowContext(ctx, query, table, column).Scan(&exists)
	return exists, err
}
