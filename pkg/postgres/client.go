// Package postgres wraps database/sql with the pool settings and
// transaction helper the index source needs.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Algolizen-Inc/LinkRanker/pkg/config"
	_ "github.com/lib/pq"
)

const connectProbeTimeout = 5 * time.Second

// Client owns the connection pool to the indexing collaborator's database.
// The DB field is exported for callers that need single-statement access,
// such as document lookups.
type Client struct {
	DB  *sql.DB
	cfg config.PostgresConfig
}

// New opens a pool against the configured database and verifies
// connectivity before returning.
func New(cfg config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), connectProbeTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Client{DB: db, cfg: cfg}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

// InTx runs fn inside a transaction with the given options, committing on
// success and rolling back on error. A nil opts starts a default
// read-committed transaction; snapshot loads pass repeatable-read
// read-only options so multi-table reads see one index generation.
func (c *Client) InTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back transaction after error %v: %w", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
