package aggregation

import (
	"sort"

	"tablesense/domain/analysis"
)

// Top-N windows used by breakdowns
const (
	TopSmall  = 10
	TopMedium = 20
	TopLarge  = 30
)

// BreakdownSpec describes one ranked group-by
type BreakdownSpec struct {
	Label  string
	Column string
	// ByMonth groups by the YYYY-MM bucket of Column instead of its raw value
	ByMonth bool
	SortBy  string
	TopN    int
	// Latest keeps the last TopN ranked groups instead of the first
	Latest bool
}

// View is a pre-declared column set with its specialized breakdowns
type View struct {
	Name            string
	RequiredColumns []string
	NumericColumns  []string
	// ValueColumn is the numeric column totals are projected on
	ValueColumn   string
	DateColumn    string
	Breakdowns    []BreakdownSpec
	FilterColumns []string
}

// views is the fixed-schema registry
var views = map[string]View{
	"commissions": {
		Name:            "commissions",
		RequiredColumns: []string{"provider", "branch", "agent", "amount", "payment_date"},
		NumericColumns:  []string{"amount"},
		ValueColumn:     "amount",
		DateColumn:      "payment_date",
		Breakdowns: []BreakdownSpec{
			{Label: "By provider", Column: "provider", SortBy: "amount", TopN: TopSmall},
			{Label: "By branch", Column: "branch", SortBy: "amount", TopN: TopSmall},
			{Label: "By agent", Column: "agent", SortBy: "amount", TopN: TopMedium},
			{Label: "By month", Column: "payment_date", ByMonth: true, SortBy: SortByName, TopN: TopLarge, Latest: true},
		},
		FilterColumns: []string{"provider", "branch", "agent"},
	},
	"pipeline": {
		Name:            "pipeline",
		RequiredColumns: []string{"stage", "owner", "deal_value"},
		NumericColumns:  []string{"deal_value"},
		ValueColumn:     "deal_value",
		DateColumn:      "created_at",
		Breakdowns: []BreakdownSpec{
			{Label: "By stage", Column: "stage", SortBy: "deal_value", TopN: TopSmall},
			{Label: "By owner", Column: "owner", SortBy: "deal_value", TopN: TopMedium},
		},
		FilterColumns: []string{"stage", "owner"},
	},
}

// LookupView returns the registered view with the given name
func LookupView(name string) (View, bool) {
	v, ok := views[name]
	return v, ok
}

// ViewNames lists registered views, sorted
func ViewNames() []string {
	names := make([]string, 0, len(views))
	for n := range views {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Supports reports whether every required column is present
func (v View) Supports(columns []string) bool {
	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[c] = true
	}
	for _, c := range v.RequiredColumns {
		if !have[c] {
			return false
		}
	}
	return true
}

// Spec returns the build spec of the view
func (v View) Spec() Spec {
	return Spec{
		View:           v.Name,
		NumericColumns: v.NumericColumns,
		Breakdowns:     v.Breakdowns,
		DateColumn:     v.DateColumn,
		ProjectColumn:  v.ValueColumn,
		FilterColumns:  v.FilterColumns,
	}
}

// maxDynamicBreakdowns caps the enum-like columns broken down for ad-hoc tables
const maxDynamicBreakdowns = 5

// DynamicSpec derives a build spec from an analysis: every number column is
// summed, the enum-like columns are broken down by count, and the best
// ranked date column drives the trend.
func DynamicSpec(a *analysis.DataAnalysis) Spec {
	spec := Spec{NumericColumns: a.ColumnsOfType(analysis.TypeNumber)}

	for _, c := range a.EnumLikeColumns() {
		spec.FilterColumns = append(spec.FilterColumns, c.Name)
		if len(spec.Breakdowns) < maxDynamicBreakdowns {
			spec.Breakdowns = append(spec.Breakdowns, BreakdownSpec{
				Label:  c.DisplayName,
				Column: c.Name,
				SortBy: SortByCount,
				TopN:   TopSmall,
			})
		}
	}

	if dates := a.ColumnsOfType(analysis.TypeDate); len(dates) > 0 {
		spec.DateColumn = dates[0]
	}
	if spec.DateColumn != "" && len(spec.NumericColumns) > 0 {
		spec.ProjectColumn = spec.NumericColumns[0]
	}
	return spec
}
