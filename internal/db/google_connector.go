package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

var _ pgetl.Connector = (*GoogleCloudSQLConnector)(nil)

// GoogleCloudSQLConnector dials Cloud SQL through the Cloud SQL Go Connector
// with IAM database authentication.
//
// Close must be called after the returned pool is closed.
type GoogleCloudSQLConnector struct {
	config   *pgetl.ConnectionConfig
	instance string
	logger   pgetl.Logger
	dialer   *cloudsqlconn.Dialer
}

// NewGoogleCloudSQLConnector takes the instance connection name (project:region:instance).
func NewGoogleCloudSQLConnector(config *pgetl.ConnectionConfig, instance string, logger pgetl.Logger) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{
		config:   config,
		instance: instance,
		logger:   logger,
	}
}

func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Cloud SQL dialer: %w", pgetl.ErrConnectionFailed, err)
	}

	dsn := fmt.Sprintf("host=%s user=%s dbname=%s sslmode=disable", c.instance, c.config.Username, c.config.Database)
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		dialer.Close()
		return nil, fmt.Errorf("%w: failed to parse connection config: %w", pgetl.ErrConnectionFailed, err)
	}
	poolConfig.ConnConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.Dial(ctx, c.instance)
	}
	configurePool(poolConfig, c.logger)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		dialer.Close()
		return nil, fmt.Errorf("%w: %w", pgetl.ErrConnectionFailed, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		dialer.Close()
		return nil, fmt.Errorf("%w: failed to ping %s: %w", pgetl.ErrConnectionFailed, c.instance, err)
	}

	c.dialer = dialer
	c.logger.Verbose("Connected to Cloud SQL instance %s", c.instance)
	return pool, nil
}

// Close releases the Cloud SQL dialer.
func (c *GoogleCloudSQLConnector) Close() error {
	if c.dialer != nil {
		err := c.dialer.Close()
		c.dialer = nil
		return err
	}
	return nil
}
