package app

import (
	"context"

	"tablesense/domain/analysis"
	"tablesense/domain/core"
	"tablesense/internal/inference"
)

// AnalysisService runs quick-sample schema inference on project tables
type AnalysisService struct {
	source     *TableSource
	engine     *inference.Engine
	sampleRows int
}

// NewAnalysisService creates an analysis service reading at most sampleRows rows per table
func NewAnalysisService(source *TableSource, sampleRows int, clock core.Clock) *AnalysisService {
	if sampleRows <= 0 {
		sampleRows = inference.DefaultSampleLimit
	}
	return &AnalysisService{
		source:     source,
		engine:     inference.NewEngine(inference.WithSampleLimit(sampleRows), inference.WithClock(clock)),
		sampleRows: sampleRows,
	}
}

// Analyze profiles the quick sample of a table. TotalRows is the full
// table count even though only the sample is inspected.
func (s *AnalysisService) Analyze(ctx context.Context, projectID core.ProjectID, tableName string) (*analysis.DataAnalysis, error) {
	loaded, err := s.source.Load(ctx, projectID, tableName, ReadOptions{Limit: s.sampleRows})
	if err != nil {
		return nil, err
	}
	return s.engine.Analyze(loaded.Name, loaded.Total, loaded.Rows), nil
}

// Engine exposes the inference engine so callers analyzing already loaded rows share its settings
func (s *AnalysisService) Engine() *inference.Engine {
	return s.engine
}
