package container

import (
	"context"
	"fmt"

	"tablesense/adapters/postgres"
	"tablesense/adapters/sqlstore"
	"tablesense/app"
	"tablesense/domain/core"
	"tablesense/internal"
	"tablesense/internal/chunked"
	"tablesense/internal/config"
	"tablesense/internal/errors"
	"tablesense/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	Projects  *postgres.ProjectRepository
	Templates *app.TemplateService

	// Table access and analysis
	Source   *app.TableSource
	Analyses *app.AnalysisService
	Reports  *app.ReportService

	logger *internal.Logger
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, errors.Configuration("config cannot be nil")
	}

	return &Container{
		Config: cfg,
		logger: internal.DefaultLogger.WithPrefix("Container"),
	}, nil
}

// Open connects to the configured database, migrates it and wires the services
func (c *Container) Open(ctx context.Context) error {
	db, err := sqlx.ConnectContext(ctx, c.Config.Database.Driver, c.Config.Database.URL)
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}
	if c.Config.Database.Driver == "sqlite" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return errors.Wrap(err, "database migration failed")
	}
	return c.InitWithDatabase(db)
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return errors.Configuration("database connection cannot be nil")
	}
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}
	c.DB = db

	scan := chunked.Options{
		MaxEmptyPages: c.Config.Scan.MaxEmptyPages,
		MaxRows:       c.Config.Scan.MaxScanRows,
	}
	reports := app.ReportConfig{
		MaxRows:       c.Config.Report.ReportMaxRows,
		PreviewLimit:  c.Config.Report.PreviewLimit,
		MaxConcurrent: c.Config.Report.MaxConcurrentReports,
	}

	c.Projects = postgres.NewProjectRepository(db)
	c.Source = app.NewTableSource(c.Projects, sqlstore.New(db, c.Config.Scan.PageSize), scan)
	c.Analyses = app.NewAnalysisService(c.Source, c.Config.Report.QuickSampleRows, core.SystemClock)
	c.Reports = app.NewReportService(c.Source, c.Analyses, reports, core.SystemClock)
	c.Templates = app.NewTemplateService(c.Analyses, postgres.NewTemplateRepository(db), core.SystemClock)

	c.logger.Info("container initialized with %s database (page size %d)", c.Config.Database.Driver, c.Config.Scan.PageSize)
	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
