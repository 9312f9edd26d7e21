package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/vvka-141/pgetl/internal/db"
	"github.com/vvka-141/pgetl/internal/resolver"
	"github.com/vvka-141/pgetl/internal/store"
	"github.com/vvka-141/pgetl/internal/transform"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

type storeOpenerFunc func(ctx context.Context, connConfig *pgetl.ConnectionConfig) (pgetl.StoreGateway, func(), error)

// Pipeline connects once and runs the catalog pass, then the events pass.
// Events are resolved against catalog rows, so the order is fixed.
// Thread-Safety: NOT safe for concurrent Run calls on the same instance.
type Pipeline struct {
	connectorFactory db.ConnectorFactory
	registry         *store.Registry
	walker           pgetl.FileWalker
	progress         Progress
	logger           pgetl.Logger
	driverOpts       []DriverOption
	openStore        storeOpenerFunc
}

// NewPipeline panics on nil dependencies.
func NewPipeline(
	connectorFactory db.ConnectorFactory,
	registry *store.Registry,
	walker pgetl.FileWalker,
	progress Progress,
	logger pgetl.Logger,
	opts ...DriverOption,
) *Pipeline {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if registry == nil {
		panic("registry cannot be nil")
	}
	if walker == nil {
		panic("walker cannot be nil")
	}
	if progress == nil {
		panic("progress cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	p := &Pipeline{
		connectorFactory: connectorFactory,
		registry:         registry,
		walker:           walker,
		progress:         progress,
		logger:           logger,
		driverOpts:       opts,
	}
	p.openStore = p.defaultOpenStore
	return p
}

func (p *Pipeline) defaultOpenStore(ctx context.Context, connConfig *pgetl.ConnectionConfig) (pgetl.StoreGateway, func(), error) {
	connector, err := p.connectorFactory(connConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connector: %w", err)
	}

	pool, err := connector.Connect(ctx)
	if err != nil {
		return nil, nil, err
	}

	gateway, err := store.Open(ctx, pool, p.registry, p.logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := gateway.Close(context.WithoutCancel(ctx)); err != nil {
			p.logger.Verbose("Failed to close store gateway: %v", err)
		}
		pool.Close()
	}
	return gateway, cleanup, nil
}

// Run returns one report per executed pass. A connection failure wraps
// pgetl.ErrConnectionFailed and nothing is loaded.
func (p *Pipeline) Run(ctx context.Context, config pgetl.LoadConfig) ([]*pgetl.Report, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	connConfig := config.Connection
	if connConfig.AppName == "" {
		connConfig.AppName = "pgetl"
	}

	p.logger.Verbose("Connecting to database '%s'", connConfig.Database)
	gateway, cleanup, err := p.openStore(ctx, &connConfig)
	if err != nil {
		if !errors.Is(err, pgetl.ErrConnectionFailed) {
			err = fmt.Errorf("%w: %w", pgetl.ErrConnectionFailed, err)
		}
		return nil, err
	}
	defer cleanup()

	driver := NewLoadDriver(p.walker, gateway, p.progress, p.logger, p.driverOpts...)

	type pass struct {
		name string
		dir  string
		rule pgetl.Rule
	}
	passes := []pass{
		{pgetl.PassCatalog, dirOrDefault(config.CatalogDir, pgetl.DefaultCatalogDir), transform.NewCatalogRule()},
		{pgetl.PassEvents, dirOrDefault(config.EventsDir, pgetl.DefaultEventsDir),
			transform.NewEventRule(resolver.New(gateway, p.registry.ResolveQuery(), p.logger))},
	}

	var reports []*pgetl.Report
	for _, ps := range passes {
		if !config.RunsPass(ps.name) {
			p.logger.Verbose("Skipping %s pass", ps.name)
			continue
		}

		root := filepath.Join(config.SourcePath, ps.dir)
		p.logger.Verbose("Starting %s pass over %s", ps.name, root)
		report, err := driver.Run(ctx, root, ps.rule)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			return reports, err
		}
		p.logger.Info("%s pass: %d/%d files loaded, %d rows rejected",
			ps.name, report.FilesProcessed, report.FilesTotal, report.TotalRejected())
	}

	return reports, nil
}

func dirOrDefault(dir, def string) string {
	if dir == "" {
		return def
	}
	return dir
}
