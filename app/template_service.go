package app

import (
	"context"
	"strings"

	"tablesense/domain/core"
	"tablesense/domain/dashboard"
	"tablesense/internal"
	builder "tablesense/internal/dashboard"
	"tablesense/internal/errors"
	"tablesense/ports"
)

// TemplateService creates default dashboard templates and manages stored ones
type TemplateService struct {
	analyses *AnalysisService
	repo     ports.TemplateRepository
	clock    core.Clock
	logger   *internal.Logger
}

// NewTemplateService creates a template service
func NewTemplateService(analyses *AnalysisService, repo ports.TemplateRepository, clock core.Clock) *TemplateService {
	if clock == nil {
		clock = core.SystemClock
	}
	return &TemplateService{
		analyses: analyses,
		repo:     repo,
		clock:    clock,
		logger:   internal.DefaultLogger.WithPrefix("TemplateService"),
	}
}

// CreateDefault analyzes a table, derives its default template and stores it
func (s *TemplateService) CreateDefault(ctx context.Context, projectID core.ProjectID, tableName string) (*dashboard.Template, error) {
	if s.repo == nil {
		return nil, errors.Configuration("template service has no repository")
	}

	a, err := s.analyses.Analyze(ctx, projectID, tableName)
	if err != nil {
		return nil, err
	}

	tpl := builder.BuildDefault(a)
	now := s.clock()
	tpl.ID = core.NewTemplateID()
	tpl.ProjectID = projectID
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	if err := s.repo.Create(ctx, &tpl); err != nil {
		return nil, storeError(err, "failed to store template")
	}
	s.logger.Info("created default template %s for %s/%s", tpl.ID, projectID, tpl.TableName)
	return &tpl, nil
}

// Get loads one template
func (s *TemplateService) Get(ctx context.Context, id core.TemplateID) (*dashboard.Template, error) {
	if s.repo == nil {
		return nil, errors.Configuration("template service has no repository")
	}
	tpl, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "failed to load template")
	}
	return tpl, nil
}

// List returns a project's templates, optionally for one table
func (s *TemplateService) List(ctx context.Context, projectID core.ProjectID, tableName string) ([]*dashboard.Template, error) {
	if s.repo == nil {
		return nil, errors.Configuration("template service has no repository")
	}
	templates, err := s.repo.ListByProject(ctx, projectID, tableName)
	if err != nil {
		return nil, storeError(err, "failed to list templates")
	}
	return templates, nil
}

// Update replaces the editable content of a stored template. The envelope
// (project, table, creation time) is kept from the stored copy.
func (s *TemplateService) Update(ctx context.Context, id core.TemplateID, edit *dashboard.Template) (*dashboard.Template, error) {
	if err := validateEdit(edit); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	current.Name = strings.TrimSpace(edit.Name)
	current.IsDefault = edit.IsDefault
	current.FieldSelection = edit.FieldSelection
	current.FiltersConfig = edit.FiltersConfig
	current.CardsConfig = edit.CardsConfig
	current.TableConfig = edit.TableConfig
	current.ChartsConfig = edit.ChartsConfig
	current.UpdatedAt = s.clock()

	if err := s.repo.Update(ctx, current); err != nil {
		return nil, storeError(err, "failed to update template")
	}
	return current, nil
}

// Delete removes a stored template
func (s *TemplateService) Delete(ctx context.Context, id core.TemplateID) error {
	if s.repo == nil {
		return errors.Configuration("template service has no repository")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete template")
	}
	return nil
}

func validateEdit(edit *dashboard.Template) error {
	if edit == nil {
		return errors.InvalidInput("template body is required")
	}
	if strings.TrimSpace(edit.Name) == "" {
		return errors.InvalidInput("template name is required")
	}
	if edit.TableConfig.PageSize <= 0 {
		return errors.InvalidInput("tableConfig.pageSize must be positive")
	}
	for _, f := range edit.FieldSelection {
		if strings.TrimSpace(f.Name) == "" {
			return errors.InvalidInput("field selection entries need a name")
		}
	}
	return nil
}
