package aggregation

import (
	"sort"
	"time"

	"tablesense/domain/report"
	"tablesense/domain/table"
	"tablesense/internal/inference"
)

const (
	// DefaultPreviewLimit caps Report.Preview
	DefaultPreviewLimit = 100
	// DefaultFilterCap caps the values listed per filter column
	DefaultFilterCap = 200
)

// Spec describes the report to assemble from a row set
type Spec struct {
	TableName string
	View      string
	// TotalRows is the table row count; rows passed to Build may be fewer
	TotalRows      int
	NumericColumns []string
	Breakdowns     []BreakdownSpec
	DateColumn     string
	// ProjectColumn enables the period projection over the current month
	ProjectColumn string
	FilterColumns []string
	FilterCap     int
	PreviewLimit  int
	Now           time.Time
}

// Build assembles a report. It does not modify rows.
func Build(rows []table.Record, spec Spec) *report.Report {
	now := spec.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	r := &report.Report{
		TableName:     spec.TableName,
		View:          spec.View,
		TotalRows:     spec.TotalRows,
		ScannedRows:   len(rows),
		Totals:        Totals(rows, spec.NumericColumns),
		Breakdowns:    make([]report.Breakdown, 0, len(spec.Breakdowns)),
		FilterOptions: FilterOptions(rows, spec.FilterColumns, spec.FilterCap),
		Preview:       preview(rows, spec.PreviewLimit),
		GeneratedAt:   now,
	}

	for _, b := range spec.Breakdowns {
		r.Breakdowns = append(r.Breakdowns, breakdown(rows, b, spec.NumericColumns))
	}

	if spec.DateColumn != "" {
		trend := MonthlyTrend(rows, spec.DateColumn, spec.NumericColumns)
		r.Trend = &trend

		if spec.ProjectColumn != "" {
			projection := ProjectPeriod(now, periodTotal(rows, spec.DateColumn, spec.ProjectColumn, now))
			r.Projection = &projection
		}
	}
	return r
}

func breakdown(rows []table.Record, b BreakdownSpec, numericCols []string) report.Breakdown {
	key := ColumnKey(b.Column)
	if b.ByMonth {
		key = MonthKey(b.Column)
	}
	groups := GroupByKey(rows, key, numericCols)
	Rank(groups, b.SortBy)

	sortBy := b.SortBy
	if sortBy == "" {
		sortBy = SortByCount
	}
	top := Top(groups, b.TopN)
	if b.Latest {
		top = Last(groups, b.TopN)
	}
	return report.Breakdown{
		Label:      b.Label,
		Column:     b.Column,
		SortBy:     sortBy,
		Groups:     groups,
		Top:        top,
		GroupCount: len(groups),
	}
}

// periodTotal sums column over rows dated within the month holding now
func periodTotal(rows []table.Record, dateCol, column string, now time.Time) float64 {
	total := 0.0
	for _, row := range rows {
		t, ok := inference.ParseDate(row[dateCol])
		if !ok || !InPeriod(t, now) {
			continue
		}
		if f, ok := inference.ParseNumber(row[column]); ok {
			total += f
		}
	}
	return total
}

// FilterOptions lists the distinct non-blank values of each column, sorted
// and capped at limit values per column (DefaultFilterCap when limit <= 0).
func FilterOptions(rows []table.Record, columns []string, limit int) map[string][]string {
	if limit <= 0 {
		limit = DefaultFilterCap
	}
	out := make(map[string][]string, len(columns))
	for _, col := range columns {
		seen := make(map[string]struct{})
		values := []string{}
		for _, row := range rows {
			v := groupValue(row[col])
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
		sort.Strings(values)
		if len(values) > limit {
			values = values[:limit]
		}
		out[col] = values
	}
	return out
}

func preview(rows []table.Record, limit int) []table.Record {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	if len(rows) < limit {
		limit = len(rows)
	}
	out := make([]table.Record, limit)
	copy(out, rows[:limit])
	return out
}
