package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgetl/internal/retry"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

var _ pgetl.Connector = (*TokenBasedConnector)(nil)

// TokenBasedConnector authenticates with a token from a TokenProvider
// (AWS IAM, Azure Entra ID). A fresh token is requested on every attempt.
type TokenBasedConnector struct {
	config        *pgetl.ConnectionConfig
	tokenProvider TokenProvider
	retryExecutor *retry.Executor
	providerName  string
	logger        pgetl.Logger
}

func NewTokenBasedConnector(config *pgetl.ConnectionConfig, tokenProvider TokenProvider, providerName string, logger pgetl.Logger) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		retryExecutor: newConnectExecutor(logger),
		providerName:  providerName,
		logger:        logger,
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("%w: failed to acquire %s token: %w", pgetl.ErrConnectionFailed, c.providerName, err)
		}
		c.logger.Verbose("Acquired token from %s", c.tokenProvider)

		if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
			c.logger.Info("Warning: %s token expires in %v", c.providerName, remaining.Round(time.Second))
		}

		configWithToken := *c.config
		configWithToken.Password = token

		pool, err = openPool(ctx, BuildConnectionString(&configWithToken), c.config, c.logger)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}
