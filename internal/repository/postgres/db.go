// Package postgres implements the repository ports on PostgreSQL through
// sqlx and the pgx stdlib driver.
package postgres

import (
	"context"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"packslip/internal/config"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// NewDB opens the connection pool and waits for the database to answer,
// retrying a few times so the service can start alongside its database.
func NewDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = db.PingContext(ctx)
		cancel()
		if err == nil {
			return db, nil
		}
		if attempt == connectAttempts {
			_ = db.Close()
			return nil, fmt.Errorf("connecting to postgres after %d attempts: %w", attempt, err)
		}
		log.Printf("postgres.NewDB: attempt %d/%d failed: %v", attempt, connectAttempts, err)
		time.Sleep(connectBackoff * time.Duration(attempt))
	}
}

