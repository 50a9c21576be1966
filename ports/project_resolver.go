package ports

import (
	"context"

	"tablesense/domain/core"
	"tablesense/domain/project"
)

// ProjectResolver resolves a logical project to its table map
type ProjectResolver interface {
	Resolve(ctx context.Context, id core.ProjectID) (*project.Project, error)
}
