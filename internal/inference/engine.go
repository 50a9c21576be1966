// Package inference derives column types, semantic categories and statistics
// from a sample of normalized rows.
package inference

import (
	"sort"

	"tablesense/domain/analysis"
	"tablesense/domain/core"
	"tablesense/domain/table"
	"tablesense/internal"
	"tablesense/internal/scoring"
)

const (
	// DefaultSampleLimit is the row cap of a quick analysis
	DefaultSampleLimit = 1000
	// maxSampleValues caps Column.SampleValues
	maxSampleValues = 5
)

// Engine analyzes row samples. It holds no per-request state.
type Engine struct {
	sampleLimit int
	clock       core.Clock
	logger      *internal.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithSampleLimit caps the rows inspected per analysis
func WithSampleLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.sampleLimit = n
		}
	}
}

// WithClock sets the clock stamped into AnalyzedAt
func WithClock(clock core.Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// NewEngine creates an inference engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		sampleLimit: DefaultSampleLimit,
		clock:       core.SystemClock,
		logger:      internal.DefaultLogger.WithPrefix("Inference"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SampleLimit returns the row cap applied by Analyze
func (e *Engine) SampleLimit() int {
	return e.sampleLimit
}

// Analyze profiles every column of the sample. totalRows is the row count of
// the whole table; statistics only ever describe the sampled rows.
func (e *Engine) Analyze(tableName string, totalRows int, rows []table.Record) *analysis.DataAnalysis {
	if len(rows) > e.sampleLimit {
		rows = rows[:e.sampleLimit]
	}

	names := columnOrder(rows)
	columns := make([]analysis.Column, 0, len(names))
	for _, name := range names {
		columns = append(columns, e.profileColumn(name, rows))
	}

	scoring.Apply(columns)
	scoring.Rank(columns)

	categories := make(map[analysis.Category][]string)
	for _, c := range columns {
		categories[c.Category] = append(categories[c.Category], c.Name)
	}

	result := &analysis.DataAnalysis{
		TableName:         tableName,
		TotalRows:         totalRows,
		SampleSize:        len(rows),
		TotalColumns:      len(columns),
		Columns:           columns,
		Categories:        categories,
		RecommendedFields: scoring.Recommended(columns, scoring.MaxRecommended),
		SampleHash:        core.ComputeSampleHash(rows),
		AnalyzedAt:        e.clock(),
	}

	e.logger.Debug("analyzed %s: %d columns over %d of %d rows, %d recommended",
		tableName, result.TotalColumns, result.SampleSize, totalRows, len(result.RecommendedFields))
	return result
}

func (e *Engine) profileColumn(name string, rows []table.Record) analysis.Column {
	values := make([]interface{}, len(rows))
	for i, row := range rows {
		values[i] = row[name]
	}

	dataType := DetectDataType(values)
	return analysis.Column{
		Name:         name,
		DisplayName:  FormatDisplayName(name),
		DataType:     dataType,
		Category:     DetectCategory(name),
		Stats:        CalculateStats(values, dataType),
		SampleValues: sampleValues(values),
	}
}

// columnOrder lists column names in first-seen order. Keys within one row are
// visited sorted so the order does not depend on map iteration.
func columnOrder(rows []table.Record) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			if _, ok := seen[k]; !ok {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			seen[k] = struct{}{}
			names = append(names, k)
		}
	}
	return names
}

// sampleValues returns up to maxSampleValues distinct non-null values in row order
func sampleValues(values []interface{}) []interface{} {
	out := make([]interface{}, 0, maxSampleValues)
	seen := make(map[string]struct{})
	for _, v := range values {
		if isNull(v) {
			continue
		}
		k := valueKey(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
		if len(out) == maxSampleValues {
			break
		}
	}
	return out
}
