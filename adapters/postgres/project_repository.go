package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tablesense/domain/core"
	"tablesense/domain/project"

	"github.com/jmoiron/sqlx"
)

// ProjectRepository stores projects and their logical→physical table map.
// It satisfies ports.ProjectResolver.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a project and its table map in one transaction
func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO projects (id, name, allow_ad_hoc, created_at) VALUES (?, ?, ?, ?)`),
		p.ID.String(), p.Name, p.AllowAdHocTable, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	insertTable := tx.Rebind(`INSERT INTO project_tables (project_id, logical_name, physical_name) VALUES (?, ?, ?)`)
	for logical, physical := range p.Tables {
		if _, err := tx.ExecContext(ctx, insertTable, p.ID.String(), logical, physical); err != nil {
			return fmt.Errorf("failed to add table %s: %w", logical, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit project: %w", err)
	}
	return nil
}

// Resolve loads a project with its table map
func (r *ProjectRepository) Resolve(ctx context.Context, id core.ProjectID) (*project.Project, error) {
	var p project.Project
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT id, name, allow_ad_hoc FROM projects WHERE id = ?`), id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", core.ErrProjectNotFound, id)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(`SELECT logical_name, physical_name FROM project_tables WHERE project_id = ?`), id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query project tables: %w", err)
	}
	defer rows.Close()

	p.Tables = make(map[string]string)
	for rows.Next() {
		var logical, physical string
		if err := rows.Scan(&logical, &physical); err != nil {
			return nil, fmt.Errorf("failed to scan project table: %w", err)
		}
		p.Tables[logical] = physical
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read project tables: %w", err)
	}
	return &p, nil
}
