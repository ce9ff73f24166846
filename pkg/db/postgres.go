// Package db opens raw database/sql handles for the pgx stdlib driver.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PingTimeout bounds the connectivity check performed by Open.
const PingTimeout = 3 * time.Second

// Open creates a *sql.DB using the pgx driver and pings it with a short
// timeout to verify connectivity. DATABASE_URL, when set, takes precedence
// over dsn.
func Open(dsn string) (*sql.DB, error) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		dsn = url
	}
	if dsn == "" {
		return nil, fmt.Errorf("empty postgres DSN")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), PingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}
