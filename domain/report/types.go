// Package report holds the aggregated output handed to the rendering layer.
package report

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"tablesense/domain/table"
)

// UnknownGroup absorbs rows whose group value is missing or blank
const UnknownGroup = "unknown"

// TotalPrefix prefixes per-column sums in serialized group rows
const TotalPrefix = "total_"

// GroupStats is one bucket of a breakdown
type GroupStats struct {
	Name   string
	Count  int
	Totals map[string]float64
}

// Total returns the running sum for a numeric column
func (g GroupStats) Total(column string) float64 {
	return g.Totals[column]
}

// MarshalJSON flattens totals into total_<column> keys next to name and count
func (g GroupStats) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(g.Totals)+2)
	out["name"] = g.Name
	out["count"] = g.Count
	for col, v := range g.Totals {
		out[TotalPrefix+col] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON reverses MarshalJSON
func (g *GroupStats) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.Totals = make(map[string]float64)
	for k, v := range raw {
		switch {
		case k == "name":
			if err := json.Unmarshal(v, &g.Name); err != nil {
				return err
			}
		case k == "count":
			if err := json.Unmarshal(v, &g.Count); err != nil {
				return err
			}
		case strings.HasPrefix(k, TotalPrefix):
			var f float64
			if err := json.Unmarshal(v, &f); err != nil {
				return err
			}
			g.Totals[strings.TrimPrefix(k, TotalPrefix)] = f
		}
	}
	return nil
}

// TotalColumns returns the numeric columns present in Totals, sorted
func (g GroupStats) TotalColumns() []string {
	cols := make([]string, 0, len(g.Totals))
	for c := range g.Totals {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// TrendPoint is one YYYY-MM bucket of a monthly series
type TrendPoint struct {
	Month  string             `json:"month"`
	Count  int                `json:"count"`
	Totals map[string]float64 `json:"totals"`
}

// Trend is a monthly series over one date column
type Trend struct {
	DateColumn string       `json:"dateColumn"`
	Points     []TrendPoint `json:"points"`
	Excluded   int          `json:"excluded"`
}

// Projection estimates the end-of-period total from business days elapsed
type Projection struct {
	PeriodStart           time.Time `json:"periodStart"`
	PeriodEnd             time.Time `json:"periodEnd"`
	BusinessDaysPassed    int       `json:"businessDaysPassed"`
	BusinessDaysRemaining int       `json:"businessDaysRemaining"`
	TotalBusinessDays     int       `json:"totalBusinessDays"`
	CumulativeTotal       float64   `json:"cumulativeTotal"`
	ProjectedTotal        float64   `json:"projectedTotal"`
}

// Breakdown is a ranked group-by over one column
type Breakdown struct {
	Label      string       `json:"label"`
	Column     string       `json:"column"`
	SortBy     string       `json:"sortBy"`
	Groups     []GroupStats `json:"groups"`
	Top        []GroupStats `json:"top"`
	GroupCount int          `json:"groupCount"`
}

// Report is the aggregated view of a table
type Report struct {
	TableName     string              `json:"tableName"`
	View          string              `json:"view,omitempty"`
	TotalRows     int                 `json:"totalRows"`
	ScannedRows   int                 `json:"scannedRows"`
	Partial       bool                `json:"partial"`
	Truncated     bool                `json:"truncated,omitempty"`
	Warning       string              `json:"warning,omitempty"`
	Totals        map[string]float64  `json:"totals"`
	Breakdowns    []Breakdown         `json:"breakdowns"`
	Trend         *Trend              `json:"trend,omitempty"`
	Projection    *Projection         `json:"projection,omitempty"`
	FilterOptions map[string][]string `json:"filterOptions"`
	Preview       []table.Record      `json:"preview"`
	GeneratedAt   time.Time           `json:"generatedAt"`
}

// Breakdown returns the breakdown over the named column
func (r *Report) Breakdown(column string) (Breakdown, bool) {
	for _, b := range r.Breakdowns {
		if b.Column == column {
			return b, true
		}
	}
	return Breakdown{}, false
}
