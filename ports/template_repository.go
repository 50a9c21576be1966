package ports

import (
	"context"

	"tablesense/domain/core"
	"tablesense/domain/dashboard"
)

// TemplateRepository defines the interface for dashboard template storage
type TemplateRepository interface {
	Create(ctx context.Context, tpl *dashboard.Template) error
	GetByID(ctx context.Context, id core.TemplateID) (*dashboard.Template, error)
	ListByProject(ctx context.Context, projectID core.ProjectID, tableName string) ([]*dashboard.Template, error)
	Update(ctx context.Context, tpl *dashboard.Template) error
	Delete(ctx context.Context, id core.TemplateID) error
}
