// Package static resolves projects from a fixed in-process map. The CLI uses
// it for file-backed runs where there is no project database.
package static

import (
	"context"
	"fmt"

	"tablesense/domain/core"
	"tablesense/domain/project"
)

// Resolver serves a fixed set of projects
type Resolver struct {
	projects map[core.ProjectID]*project.Project
}

// NewResolver creates a resolver over the given projects
func NewResolver(projects ...*project.Project) *Resolver {
	r := &Resolver{projects: make(map[core.ProjectID]*project.Project, len(projects))}
	for _, p := range projects {
		r.projects[p.ID] = p
	}
	return r
}

// AdHoc returns a resolver with a single project that accepts any table
func AdHoc(id core.ProjectID) *Resolver {
	return NewResolver(&project.Project{ID: id, Name: id.String(), Tables: map[string]string{}, AllowAdHocTable: true})
}

// Resolve returns a copy of the project so callers cannot edit the shared map
func (r *Resolver) Resolve(ctx context.Context, id core.ProjectID) (*project.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrProjectNotFound, id)
	}
	cp := *p
	cp.Tables = make(map[string]string, len(p.Tables))
	for k, v := range p.Tables {
		cp.Tables[k] = v
	}
	return &cp, nil
}
