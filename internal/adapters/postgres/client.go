package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"asclepius/internal/adapters/config"
	"asclepius/pkg/errors"
	"asclepius/pkg/logger"
)

// Client wraps the PostgreSQL connection pool
type Client struct {
	db *sqlx.DB
}

// NewClient creates a new PostgreSQL client
func NewClient(cfg config.PostgresConfig) (*Client, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxConns / 2)
	db.SetConnMaxLifetime(5 * time.Minute)

	logger.Infof("Connected to PostgreSQL at %s:%d/%s", cfg.Host, cfg.Port, cfg.Database)

	return &Client{db: db}, nil
}

// DB returns the underlying sqlx database
func (c *Client) DB() *sqlx.DB {
	return c.db
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Health checks database connectivity
func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// EnsureSchema creates the verdict store if it does not exist yet. The full
// verdict and classification live as JSONB next to the queryable columns.
func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS verdicts (
			id                 TEXT PRIMARY KEY,
			patient_id         TEXT NOT NULL,
			patient_name       TEXT NOT NULL,
			final_risk_level   TEXT NOT NULL,
			primary_department TEXT NOT NULL,
			council_consensus  TEXT NOT NULL,
			priority_score     INT NOT NULL,
			referral_needed    BOOLEAN NOT NULL,
			verdict            JSONB NOT NULL,
			classification     JSONB,
			created_at         TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_verdicts_patient_created
			ON verdicts (patient_id, created_at DESC);`

	if _, err := c.db.ExecContext(ctx, ddl); err != nil {
		return errors.Wrap(err, "failed to ensure verdicts schema")
	}
	return nil
}
