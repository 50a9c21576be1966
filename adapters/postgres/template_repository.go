package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"tablesense/domain/core"
	"tablesense/domain/dashboard"
	"tablesense/ports"

	"github.com/jmoiron/sqlx"
)

// templateRepository implements the TemplateRepository interface. Queries
// use "?" placeholders rebound for the driver so the same repository runs
// against Postgres and SQLite.
type templateRepository struct {
	db *sqlx.DB
}

// NewTemplateRepository creates a new dashboard template repository
func NewTemplateRepository(db *sqlx.DB) ports.TemplateRepository {
	return &templateRepository{db: db}
}

// templateRow is the stored shape; config columns hold JSON text
type templateRow struct {
	ID             string    `db:"id"`
	ProjectID      string    `db:"project_id"`
	TableName      string    `db:"table_name"`
	Name           string    `db:"name"`
	IsDefault      bool      `db:"is_default"`
	FieldSelection string    `db:"field_selection"`
	FiltersConfig  string    `db:"filters_config"`
	CardsConfig    string    `db:"cards_config"`
	TableConfig    string    `db:"table_config"`
	ChartsConfig   string    `db:"charts_config"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

const templateColumns = `id, project_id, table_name, name, is_default,
	field_selection, filters_config, cards_config, table_config, charts_config,
	created_at, updated_at`

// Create inserts a new template into the database
func (r *templateRepository) Create(ctx context.Context, tpl *dashboard.Template) error {
	row, err := toRow(tpl)
	if err != nil {
		return err
	}

	query := r.db.Rebind(`INSERT INTO dashboard_templates (` + templateColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err = r.db.ExecContext(ctx, query,
		row.ID, row.ProjectID, row.TableName, row.Name, row.IsDefault,
		row.FieldSelection, row.FiltersConfig, row.CardsConfig, row.TableConfig, row.ChartsConfig,
		row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

// GetByID retrieves a template by its ID
func (r *templateRepository) GetByID(ctx context.Context, id core.TemplateID) (*dashboard.Template, error) {
	query := r.db.Rebind(`SELECT ` + templateColumns + ` FROM dashboard_templates WHERE id = ?`)

	var row templateRow
	if err := r.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", core.ErrTemplateNotFound, id)
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return row.toTemplate()
}

// ListByProject retrieves the templates of a project, optionally for one table
func (r *templateRepository) ListByProject(ctx context.Context, projectID core.ProjectID, tableName string) ([]*dashboard.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM dashboard_templates WHERE project_id = ?`
	args := []interface{}{projectID.String()}
	if tableName != "" {
		query += ` AND table_name = ?`
		args = append(args, tableName)
	}
	query += ` ORDER BY is_default DESC, created_at DESC`

	var rows []templateRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}

	templates := make([]*dashboard.Template, 0, len(rows))
	for i := range rows {
		tpl, err := rows[i].toTemplate()
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return templates, nil
}

// Update modifies an existing template's content fields
func (r *templateRepository) Update(ctx context.Context, tpl *dashboard.Template) error {
	row, err := toRow(tpl)
	if err != nil {
		return err
	}

	query := r.db.Rebind(`UPDATE dashboard_templates SET
		name = ?, is_default = ?, field_selection = ?, filters_config = ?,
		cards_config = ?, table_config = ?, charts_config = ?, updated_at = ?
	WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query,
		row.Name, row.IsDefault, row.FieldSelection, row.FiltersConfig,
		row.CardsConfig, row.TableConfig, row.ChartsConfig, row.UpdatedAt,
		row.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", core.ErrTemplateNotFound, tpl.ID)
	}
	return nil
}

// Delete removes a template from the database
func (r *templateRepository) Delete(ctx context.Context, id core.TemplateID) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM dashboard_templates WHERE id = ?`), id.String())
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", core.ErrTemplateNotFound, id)
	}
	return nil
}

func toRow(tpl *dashboard.Template) (*templateRow, error) {
	row := &templateRow{
		ID:        tpl.ID.String(),
		ProjectID: tpl.ProjectID.String(),
		TableName: tpl.TableName,
		Name:      tpl.Name,
		IsDefault: tpl.IsDefault,
		CreatedAt: tpl.CreatedAt,
		UpdatedAt: tpl.UpdatedAt,
	}

	fields := []struct {
		dst  *string
		src  interface{}
		name string
	}{
		{&row.FieldSelection, nonNil(tpl.FieldSelection), "field selection"},
		{&row.FiltersConfig, nonNil(tpl.FiltersConfig), "filters config"},
		{&row.CardsConfig, nonNil(tpl.CardsConfig), "cards config"},
		{&row.TableConfig, tpl.TableConfig, "table config"},
		{&row.ChartsConfig, nonNil(tpl.ChartsConfig), "charts config"},
	}
	for _, f := range fields {
		data, err := json.Marshal(f.src)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", f.name, err)
		}
		*f.dst = string(data)
	}
	return row, nil
}

func (row *templateRow) toTemplate() (*dashboard.Template, error) {
	tpl := &dashboard.Template{
		ID:        core.TemplateID(row.ID),
		ProjectID: core.ProjectID(row.ProjectID),
		TableName: row.TableName,
		Name:      row.Name,
		IsDefault: row.IsDefault,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}

	fields := []struct {
		src  string
		dst  interface{}
		name string
	}{
		{row.FieldSelection, &tpl.FieldSelection, "field selection"},
		{row.FiltersConfig, &tpl.FiltersConfig, "filters config"},
		{row.CardsConfig, &tpl.CardsConfig, "cards config"},
		{row.TableConfig, &tpl.TableConfig, "table config"},
		{row.ChartsConfig, &tpl.ChartsConfig, "charts config"},
	}
	for _, f := range fields {
		if f.src == "" {
			continue
		}
		if err := json.Unmarshal([]byte(f.src), f.dst); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", f.name, err)
		}
	}
	return tpl, nil
}

// nonNil stores empty lists as [] rather than null
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
