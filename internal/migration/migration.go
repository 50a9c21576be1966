package migration

import (
	"context"

	"tablesense/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations. The DDL sticks to
// types both Postgres and SQLite accept; ids and timestamps are set by the
// repositories, never by column defaults.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createProjectsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create projects table")
	}

	if err := r.createProjectTablesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create project_tables table")
	}

	if err := r.createDashboardTemplatesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create dashboard_templates table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createProjectsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS projects (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			allow_ad_hoc BOOLEAN NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createProjectTablesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS project_tables (
			project_id VARCHAR(64) NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			logical_name VARCHAR(63) NOT NULL,
			physical_name VARCHAR(63) NOT NULL,
			PRIMARY KEY (project_id, logical_name)
		)
	`)
	return err
}

func (r *MigrationRunner) createDashboardTemplatesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS dashboard_templates (
			id VARCHAR(64) PRIMARY KEY,
			project_id VARCHAR(64) NOT NULL,
			table_name VARCHAR(63) NOT NULL,
			name VARCHAR(255) NOT NULL,
			is_default BOOLEAN NOT NULL,
			field_selection JSONB NOT NULL,
			filters_config JSONB NOT NULL,
			cards_config JSONB NOT NULL,
			table_config JSONB NOT NULL,
			charts_config JSONB NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_dashboard_templates_project ON dashboard_templates(project_id, table_name)`,
		`CREATE INDEX IF NOT EXISTS idx_project_tables_physical ON project_tables(project_id, physical_name)`,
	}

	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Reset drops the application tables in reverse dependency order. Tables the
// projects point at are left alone.
func (r *MigrationRunner) Reset(ctx context.Context, db *sqlx.DB) error {
	for _, table := range []string{"dashboard_templates", "project_tables", "projects"} {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return errors.Wrapf(err, "failed to drop table %s", table)
		}
	}
	return nil
}
