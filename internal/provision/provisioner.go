package provision

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgetl/internal/db"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

type maintenanceConnFunc func(ctx context.Context, connConfig *pgetl.ConnectionConfig, dbName string) (pgetl.DBConnection, func(), error)

// SchemaMigrator applies and drops the target tables.
type SchemaMigrator interface {
	Apply(ctx context.Context, pool *pgxpool.Pool) error
	Drop(ctx context.Context, pool *pgxpool.Pool) error
}

// Service ensures the target database exists and holds the five tables.
// NOT safe for concurrent Provision calls on the same instance.
type Service struct {
	connectorFactory db.ConnectorFactory
	approver         pgetl.Approver
	dbManager        pgetl.DatabaseManager
	schema           SchemaMigrator
	logger           pgetl.Logger
	maintenanceConn  maintenanceConnFunc
}

// NewService panics on nil dependencies.
func NewService(
	connectorFactory db.ConnectorFactory,
	approver pgetl.Approver,
	dbManager pgetl.DatabaseManager,
	schema SchemaMigrator,
	logger pgetl.Logger,
) *Service {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if dbManager == nil {
		panic("dbManager cannot be nil")
	}
	if schema == nil {
		panic("schema cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	svc := &Service{
		connectorFactory: connectorFactory,
		approver:         approver,
		dbManager:        dbManager,
		schema:           schema,
		logger:           logger,
	}
	svc.maintenanceConn = svc.defaultMaintenanceConn
	return svc
}

func (s *Service) defaultMaintenanceConn(ctx context.Context, connConfig *pgetl.ConnectionConfig, dbName string) (pgetl.DBConnection, func(), error) {
	mgmtConfig := *connConfig
	mgmtConfig.Database = dbName

	connector, err := s.connectorFactory(&mgmtConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connector: %w", err)
	}

	pool, err := connector.Connect(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to maintenance database: %w", err)
	}

	return db.NewPoolAdapter(pool), pool.Close, nil
}

// Provision creates the database if missing, then the tables.
// With Reset the tables are dropped first, once the approver agrees.
func (s *Service) Provision(ctx context.Context, config pgetl.ProvisionConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	connConfig := config.Connection
	if connConfig.AppName == "" {
		connConfig.AppName = "pgetl"
	}

	if err := s.ensureDatabaseExists(ctx, &connConfig, config.MaintenanceDatabase); err != nil {
		return fmt.Errorf("failed to ensure database exists: %w", err)
	}

	connector, err := s.connectorFactory(&connConfig)
	if err != nil {
		return fmt.Errorf("failed to create connector: %w", err)
	}
	pool, err := connector.Connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if config.Reset {
		if err := s.reset(ctx, pool, connConfig.Database); err != nil {
			return err
		}
	}

	if err := s.schema.Apply(ctx, pool); err != nil {
		return err
	}

	s.logger.Info("✓ Tables ready in database '%s'", connConfig.Database)
	return nil
}

func (s *Service) reset(ctx context.Context, pool *pgxpool.Pool, dbName string) error {
	s.logger.Verbose("Requesting approval to drop tables in '%s'", dbName)
	approved, err := s.approver.RequestApproval(ctx, dbName)
	if err != nil {
		return fmt.Errorf("approval request failed: %w", err)
	}
	if !approved {
		return pgetl.ErrApprovalDenied
	}

	s.logger.Verbose("Dropping tables in '%s'", dbName)
	if err := s.schema.Drop(ctx, pool); err != nil {
		return err
	}
	s.logger.Info("Dropped tables in '%s'", dbName)
	return nil
}

func (s *Service) ensureDatabaseExists(ctx context.Context, connConfig *pgetl.ConnectionConfig, maintenanceDB string) error {
	if maintenanceDB == "" {
		maintenanceDB = pgetl.DefaultManagementDB
	}
	if strings.EqualFold(connConfig.Database, maintenanceDB) {
		s.logger.Verbose("Target is the maintenance database '%s'; skipping existence check", maintenanceDB)
		return nil
	}

	s.logger.Verbose("Connecting to maintenance database '%s' to check if target database exists", maintenanceDB)
	dbConn, cleanup, err := s.maintenanceConn(ctx, connConfig, maintenanceDB)
	if err != nil {
		return err
	}
	defer cleanup()

	exists, err := s.dbManager.Exists(ctx, dbConn, connConfig.Database)
	if err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		s.logger.Verbose("Database '%s' already exists", connConfig.Database)
		return nil
	}

	s.logger.Info("Database '%s' does not exist. Creating...", connConfig.Database)
	if err := s.dbManager.Create(ctx, dbConn, connConfig.Database); err != nil {
		return fmt.Errorf("%w: %w", pgetl.ErrProvisionFailed, err)
	}
	return nil
}
