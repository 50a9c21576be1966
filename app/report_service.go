package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"tablesense/domain/analysis"
	"tablesense/domain/core"
	"tablesense/domain/report"
	"tablesense/domain/table"
	"tablesense/internal"
	"tablesense/internal/aggregation"
	"tablesense/internal/errors"
)

// ReportConfig bounds full-table reports
type ReportConfig struct {
	MaxRows       int
	PreviewLimit  int
	MaxConcurrent int
}

// DefaultReportConfig returns the production report caps
func DefaultReportConfig() ReportConfig {
	return ReportConfig{MaxRows: 50000, PreviewLimit: aggregation.DefaultPreviewLimit, MaxConcurrent: 4}
}

// ReportOptions selects what one report covers
type ReportOptions struct {
	// View names a fixed-schema view; empty picks a matching view or the dynamic path
	View       string
	Predicates []table.Predicate
	SortKey    string
}

// ReportResult pairs a report with the analysis that shaped it
type ReportResult struct {
	Analysis *analysis.DataAnalysis `json:"analysis"`
	Report   *report.Report         `json:"report"`
}

// ReportService builds aggregated reports over whole tables
type ReportService struct {
	source   *TableSource
	analyses *AnalysisService
	config   ReportConfig
	sem      *semaphore.Weighted
	clock    core.Clock
	logger   *internal.Logger
}

// NewReportService creates a report service; zero config fields take their defaults
func NewReportService(source *TableSource, analyses *AnalysisService, config ReportConfig, clock core.Clock) *ReportService {
	def := DefaultReportConfig()
	if config.MaxRows <= 0 {
		config.MaxRows = def.MaxRows
	}
	if config.PreviewLimit <= 0 {
		config.PreviewLimit = def.PreviewLimit
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = def.MaxConcurrent
	}
	if clock == nil {
		clock = core.SystemClock
	}
	return &ReportService{
		source:   source,
		analyses: analyses,
		config:   config,
		sem:      semaphore.NewWeighted(int64(config.MaxConcurrent)),
		clock:    clock,
		logger:   internal.DefaultLogger.WithPrefix("ReportService"),
	}
}

// Build reads up to MaxRows rows of a table and aggregates them. A read that
// stops short still produces a report, flagged partial.
func (s *ReportService) Build(ctx context.Context, projectID core.ProjectID, tableName string, opts ReportOptions) (*ReportResult, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	loaded, err := s.source.Load(ctx, projectID, tableName, ReadOptions{
		Predicates: opts.Predicates,
		SortKey:    opts.SortKey,
		Limit:      s.config.MaxRows,
	})
	if err != nil {
		return nil, err
	}

	a := s.analyses.Engine().Analyze(loaded.Name, loaded.Total, loaded.Rows)

	spec, err := s.spec(a, opts.View)
	if err != nil {
		return nil, err
	}
	spec.TableName = loaded.Name
	spec.TotalRows = loaded.Total
	spec.PreviewLimit = s.config.PreviewLimit
	spec.Now = s.clock()

	rep := aggregation.Build(loaded.Rows, spec)
	if loaded.Read.Partial {
		rep.Partial = true
		if loaded.Read.Warning != nil {
			rep.Warning = loaded.Read.Warning.Error()
		}
	} else if loaded.Read.Truncated {
		rep.Truncated = true
		rep.Warning = fmt.Sprintf("scan ceiling reached: aggregated the first %d of %d rows", len(loaded.Rows), loaded.Total)
	}
	if loaded.Total > s.config.MaxRows {
		s.logger.Info("report on %s capped at %d of %d rows", loaded.Name, s.config.MaxRows, loaded.Total)
	}

	return &ReportResult{Analysis: a, Report: rep}, nil
}

// TableName resolves a caller-supplied table name to the display name reports carry
func (s *ReportService) TableName(ctx context.Context, projectID core.ProjectID, name string) (string, error) {
	_, display, err := s.source.Resolve(ctx, projectID, name)
	return display, err
}

// spec picks the named view, else the first registered view the columns
// support, else the dynamic aggregation derived from the analysis
func (s *ReportService) spec(a *analysis.DataAnalysis, viewName string) (aggregation.Spec, error) {
	columns := make([]string, len(a.Columns))
	for i, c := range a.Columns {
		columns[i] = c.Name
	}

	if viewName != "" {
		v, ok := aggregation.LookupView(viewName)
		if !ok {
			return aggregation.Spec{}, errors.InvalidInput(fmt.Sprintf("unknown view %q", viewName))
		}
		if !v.Supports(columns) {
			return aggregation.Spec{}, errors.InvalidInput(fmt.Sprintf("table %s lacks the columns of view %s", a.TableName, viewName))
		}
		return v.Spec(), nil
	}

	for _, name := range aggregation.ViewNames() {
		if v, _ := aggregation.LookupView(name); v.Supports(columns) {
			return v.Spec(), nil
		}
	}
	return aggregation.DynamicSpec(a), nil
}

// Overview analyzes several tables of one project concurrently. Each table
// has its own cursor; the first failure cancels the rest.
func (s *ReportService) Overview(ctx context.Context, projectID core.ProjectID, tables []string) ([]*analysis.DataAnalysis, error) {
	if len(tables) == 0 {
		return nil, errors.InvalidInput("at least one table is required")
	}

	results := make([]*analysis.DataAnalysis, len(tables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrent)

	for i, name := range tables {
		i, name := i, name
		g.Go(func() error {
			a, err := s.analyses.Analyze(gctx, projectID, name)
			if err != nil {
				return errors.Wrapf(err, "overview of %s failed", name)
			}
			results[i] = a
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
