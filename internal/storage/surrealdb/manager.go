// Package surrealdb implements the internal (identity) store on SurrealDB.
package surrealdb

import (
	"context"
	"fmt"

	"github.com/bobmcallan/fundboard/internal/common"
	"github.com/surrealdb/surrealdb.go"
)

// tables are defined up front; SurrealDB v3 errors on querying a table
// that does not exist.
var tables = []string{"user", "system_kv"}

// Connect opens a SurrealDB session, signs in, selects the namespace and
// database, and ensures the internal tables exist.
func Connect(ctx context.Context, logger *common.Logger, config common.SurrealConfig) (*surrealdb.DB, error) {
	db, err := surrealdb.New(config.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Username,
		"pass": config.Password,
	}); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Namespace, config.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	if err := defineTables(ctx, db); err != nil {
		db.Close(ctx)
		return nil, err
	}

	logger.Info().
		Str("address", config.Address).
		Str("namespace", config.Namespace).
		Str("database", config.Database).
		Msg("SurrealDB internal store connected")

	return db, nil
}

func defineTables(ctx context.Context, db *surrealdb.DB) error {
	for _, table := range tables {
		sql := fmt.Sprintf("DEFINE TABLE IF NOT EXISTS %s SCHEMALESS", table)
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return fmt.Errorf("failed to define table %s: %w", table, err)
		}
	}
	sql := "DEFINE INDEX IF NOT EXISTS user_auth_subject ON TABLE user FIELDS auth_subject UNIQUE"
	if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
		return fmt.Errorf("failed to define auth subject index: %w", err)
	}
	return nil
}
