package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/target/wardrobe/internal/bootstrap"
)

// withDB opens and verifies the database connection, runs fn, and closes the pool.
func withDB(ctx context.Context, cmdCtx *commandContext, fn func(ctx context.Context, db *sql.DB) error) error {
	db, err := bootstrap.OpenDB(bootstrap.DatabaseConfig{DBConfig: cmdCtx.Config.Postgres, Logger: cmdCtx.Logger})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()
	if err := bootstrap.PingDB(ctx, db); err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	return fn(ctx, db)
}
