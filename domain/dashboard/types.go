// Package dashboard holds the editable dashboard configuration derived from an analysis.
package dashboard

import (
	"time"

	"tablesense/domain/core"
)

// FieldSelection is one column shown by the dashboard
type FieldSelection struct {
	Name        string  `json:"name"`
	Order       int     `json:"order"`
	Visible     bool    `json:"visible"`
	CustomLabel *string `json:"customLabel,omitempty"`
}

// FilterConfig is one user-facing filter
type FilterConfig struct {
	Column  string   `json:"column"`
	Label   string   `json:"label"`
	Type    string   `json:"type"`
	Enabled bool     `json:"enabled"`
	Options []string `json:"options"`
}

// CardConfig is one headline number
type CardConfig struct {
	Title       string `json:"title"`
	Column      string `json:"column"`
	Aggregation string `json:"aggregation"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// TableConfig controls the row table widget
type TableConfig struct {
	Columns       []string `json:"columns"`
	PageSize      int      `json:"pageSize"`
	SearchEnabled bool     `json:"searchEnabled"`
	ExportEnabled bool     `json:"exportEnabled"`
}

// ChartConfig is one chart
type ChartConfig struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	GroupBy     string `json:"groupBy"`
	Aggregation string `json:"aggregation"`
}

// Filter and chart type names understood by the rendering layer
const (
	FilterSelect  = "select"
	FilterBoolean = "boolean"

	ChartPie = "pie"
	ChartBar = "bar"

	AggregationSum   = "sum"
	AggregationCount = "count"
)

// Template is a dashboard configuration. The content fields are built by
// the template builder; the envelope fields are owned by persistence.
type Template struct {
	ID        core.TemplateID `json:"id,omitempty"`
	ProjectID core.ProjectID  `json:"projectId,omitempty"`
	TableName string          `json:"tableName"`
	Name      string          `json:"name"`
	IsDefault bool            `json:"isDefault"`

	FieldSelection []FieldSelection `json:"fieldSelection"`
	FiltersConfig  []FilterConfig   `json:"filtersConfig"`
	CardsConfig    []CardConfig     `json:"cardsConfig"`
	TableConfig    TableConfig      `json:"tableConfig"`
	ChartsConfig   []ChartConfig    `json:"chartsConfig"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}
