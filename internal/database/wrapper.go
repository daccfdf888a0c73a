package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recipevault/recipevault/internal/sql"
)

type Database struct {
	Querier

	Pool *pgxpool.Pool
}

func NewDatabase(pool *pgxpool.Pool) *Database {
	return &Database{
		Querier: New(pool),
		Pool:    pool,
	}
}

const checkUsersTableExists = `
SELECT EXISTS (
    SELECT FROM information_schema.tables
    WHERE table_schema = 'public' AND table_name = 'users'
)
`

// EnsureSchema applies the schema to the database if it is not detected.
func (d *Database) EnsureSchema(ctx context.Context) error {
	var exists bool
	if err := d.Pool.QueryRow(ctx, checkUsersTableExists).Scan(&exists); err != nil {
		return fmt.Errorf("ensuring schema exists: %w", err)
	}

	if exists {
		return nil
	}

	if _, err := d.Pool.Exec(ctx, sql.Schema()); err != nil {
		return fmt.Errorf("applying database schema: %w", err)
	}

	return nil
}
