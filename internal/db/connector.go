// Package db opens pgx pools for pgetl using standard credentials or
// cloud IAM tokens, and resolves connection parameters from flags,
// environment and pgetl.yaml.
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgetl/internal/retry"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

const (
	// DefaultMaxConns is one: a load run uses a single connection serially.
	DefaultMaxConns = 1

	// DefaultMaxConnIdleTime keeps the connection alive across long passes.
	DefaultMaxConnIdleTime = 30 * time.Minute

	// tokenExpiryWarning is the remaining token lifetime below which a warning is logged.
	tokenExpiryWarning = 5 * time.Minute
)

// ConnectorFactory builds a Connector for a resolved configuration.
type ConnectorFactory func(config *pgetl.ConnectionConfig) (pgetl.Connector, error)

func configurePool(poolConfig *pgxpool.Config, logger pgetl.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = 0
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("server notice: %s", notice.Message)
	}
}

func newConnectExecutor(logger pgetl.Logger) *retry.Executor {
	return retry.NewExecutor(
		retry.NewPostgreSQLErrorClassifier(),
		retry.NewExponentialBackoff(pgetl.DefaultRetryMaxAttempts,
			retry.WithInitialDelay(pgetl.DefaultRetryInitialDelay),
			retry.WithMaxDelay(pgetl.DefaultRetryMaxDelay),
		),
		logger,
	)
}

// openPool parses connStr, opens a pool and pings it. Any failure is wrapped
// with ErrConnectionFailed.
func openPool(ctx context.Context, connStr string, config *pgetl.ConnectionConfig, logger pgetl.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse connection config: %w", pgetl.ErrConnectionFailed, err)
	}
	configurePool(poolConfig, logger)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}
	return pool, nil
}

// StandardConnector connects with username/password and retries transient failures.
type StandardConnector struct {
	config        *pgetl.ConnectionConfig
	logger        pgetl.Logger
	retryExecutor *retry.Executor
}

// NewStandardConnector uses the pgetl retry defaults.
func NewStandardConnector(config *pgetl.ConnectionConfig, logger pgetl.Logger) *StandardConnector {
	return &StandardConnector{
		config:        config,
		logger:        logger,
		retryExecutor: newConnectExecutor(logger),
	}
}

// Connect establishes a connection pool using standard authentication with automatic retry.
func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	connStr := BuildConnectionString(c.config)

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		var err error
		pool, err = openPool(ctx, connStr, c.config, c.logger)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// NewConnectorFactory returns a ConnectorFactory that logs through logger.
func NewConnectorFactory(logger pgetl.Logger) ConnectorFactory {
	return func(config *pgetl.ConnectionConfig) (pgetl.Connector, error) {
		return NewConnector(config, logger)
	}
}

// NewConnector selects the Connector for config.AuthMethod.
func NewConnector(config *pgetl.ConnectionConfig, logger pgetl.Logger) (pgetl.Connector, error) {
	switch config.AuthMethod {
	case pgetl.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case pgetl.AuthMethodAWSIAM:
		return newAWSConnector(config, logger)
	case pgetl.AuthMethodGoogleIAM:
		return newGoogleConnector(config, logger)
	case pgetl.AuthMethodAzureEntraID:
		return newAzureConnector(config, logger)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, pgetl.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError adds guidance to raw pgx connection errors. The result
// wraps both ErrConnectionFailed and err.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`%w: connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong host or port

Original error: %w`, pgetl.ErrConnectionFailed, addr, host, port, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`%w: cannot resolve host "%s"

Original error: %w`, pgetl.ErrConnectionFailed, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`%w: password authentication failed for database "%s"

Possible causes:
  - Wrong password (check $PGPASSWORD)
  - Wrong username

Original error: %w`, pgetl.ErrConnectionFailed, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`%w: database "%s" does not exist

To create it and the tables:
  pgetl provision -d %s

Original error: %w`, pgetl.ErrConnectionFailed, database, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`%w: connection timed out to %s

Original error: %w`, pgetl.ErrConnectionFailed, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`%w: SSL/TLS connection error (check --sslmode)

Original error: %w`, pgetl.ErrConnectionFailed, err)

	default:
		return fmt.Errorf("%w: failed to connect to database: %w", pgetl.ErrConnectionFailed, err)
	}
}

func newAWSConnector(config *pgetl.ConnectionConfig, logger pgetl.Logger) (pgetl.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w: %w", err, pgetl.ErrInvalidConfig)
	}

	return NewTokenBasedConnector(config, tokenProvider, "AWS IAM", logger), nil
}

func newGoogleConnector(config *pgetl.ConnectionConfig, logger pgetl.Logger) (pgetl.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", pgetl.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U): %w", pgetl.ErrInvalidConfig)
	}

	return NewGoogleCloudSQLConnector(config, config.GoogleInstance, logger), nil
}

// newAzureConnector uses Service Principal auth when tenant, client and secret
// are all set, and the DefaultAzureCredential chain otherwise.
func newAzureConnector(config *pgetl.ConnectionConfig, logger pgetl.Logger) (pgetl.Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(config.AzureTenantID, config.AzureClientID, config.AzureClientSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
		}
	}

	return NewTokenBasedConnector(config, tokenProvider, "Azure", logger), nil
}
