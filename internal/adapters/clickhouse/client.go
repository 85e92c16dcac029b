package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"asclepius/internal/adapters/config"
	"asclepius/pkg/errors"
	"asclepius/pkg/logger"
)

// Client wraps the ClickHouse connection for analytics writes
type Client struct {
	conn driver.Conn
}

// NewClient creates a new ClickHouse client
func NewClient(cfg config.ClickHouseConfig) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to clickhouse")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.Ping(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to ping clickhouse")
	}

	logger.Infof("Connected to ClickHouse at %s:%d/%s", cfg.Host, cfg.Port, cfg.Database)

	return &Client{conn: conn}, nil
}

// Exec executes a statement
func (c *Client) Exec(ctx context.Context, query string, args ...interface{}) error {
	return c.conn.Exec(ctx, query, args...)
}

// Query runs a query and returns rows
func (c *Client) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	return c.conn.Query(ctx, query, args...)
}

// QueryRow runs a query expected to return a single row
func (c *Client) QueryRow(ctx context.Context, query string, args ...interface{}) driver.Row {
	return c.conn.QueryRow(ctx, query, args...)
}

// AsyncInsert performs a non-blocking insert
func (c *Client) AsyncInsert(ctx context.Context, query string, wait bool) error {
	return c.conn.AsyncInsert(ctx, query, wait)
}

// BatchInsert inserts structs via a prepared batch
func (c *Client) BatchInsert(ctx context.Context, table string, rows []interface{}) error {
	batch, err := c.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s", table))
	if err != nil {
		return errors.Wrapf(err, "failed to prepare batch for %s", table)
	}

	for _, row := range rows {
		if err := batch.AppendStruct(row); err != nil {
			return errors.Wrap(err, "failed to append row")
		}
	}

	return batch.Send()
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// Health checks ClickHouse connectivity
func (c *Client) Health(ctx context.Context) error {
	return c.conn.Ping(ctx)
}
