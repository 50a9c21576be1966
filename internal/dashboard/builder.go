// Package dashboard turns a completed analysis into a default, editable
// dashboard template. Nothing here persists the result.
package dashboard

import (
	"fmt"

	"tablesense/domain/analysis"
	"tablesense/domain/dashboard"
	"tablesense/internal/inference"
)

const (
	maxCards   = 4
	maxFilters = 5
	maxCharts  = 2
	// DefaultPageSize is the row table page size of a new template
	DefaultPageSize = 50
)

var (
	cardIcons  = []string{"dollar-sign", "trending-up", "bar-chart", "pie-chart"}
	cardColors = []string{"blue", "green", "purple", "orange"}
	chartTypes = []string{dashboard.ChartPie, dashboard.ChartBar}
)

// BuildDefault derives the default template of an analysis
func BuildDefault(a *analysis.DataAnalysis) dashboard.Template {
	fields := fieldSelection(a.RecommendedFields)
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	enumLike := a.EnumLikeColumns()

	return dashboard.Template{
		TableName:      a.TableName,
		Name:           inference.FormatDisplayName(a.TableName) + " dashboard",
		IsDefault:      true,
		FieldSelection: fields,
		FiltersConfig:  filters(enumLike),
		CardsConfig:    cards(a),
		TableConfig: dashboard.TableConfig{
			Columns:       columns,
			PageSize:      DefaultPageSize,
			SearchEnabled: true,
			ExportEnabled: true,
		},
		ChartsConfig: charts(enumLike),
	}
}

func fieldSelection(names []string) []dashboard.FieldSelection {
	fields := make([]dashboard.FieldSelection, len(names))
	for i, name := range names {
		fields[i] = dashboard.FieldSelection{Name: name, Order: i, Visible: true}
	}
	return fields
}

func cards(a *analysis.DataAnalysis) []dashboard.CardConfig {
	out := []dashboard.CardConfig{}
	for _, c := range a.Columns {
		if c.DataType != analysis.TypeNumber {
			continue
		}
		i := len(out)
		out = append(out, dashboard.CardConfig{
			Title:       c.DisplayName,
			Column:      c.Name,
			Aggregation: dashboard.AggregationSum,
			Icon:        cardIcons[i%len(cardIcons)],
			Color:       cardColors[i%len(cardColors)],
		})
		if len(out) == maxCards {
			break
		}
	}
	return out
}

func filters(cols []analysis.Column) []dashboard.FilterConfig {
	out := []dashboard.FilterConfig{}
	for _, c := range cols {
		if len(out) == maxFilters {
			break
		}
		kind := dashboard.FilterSelect
		if c.DataType == analysis.TypeBoolean {
			kind = dashboard.FilterBoolean
		}
		options := append([]string{}, c.Stats.UniqueValues...)
		out = append(out, dashboard.FilterConfig{
			Column:  c.Name,
			Label:   c.DisplayName,
			Type:    kind,
			Enabled: true,
			Options: options,
		})
	}
	return out
}

func charts(cols []analysis.Column) []dashboard.ChartConfig {
	out := []dashboard.ChartConfig{}
	for i, c := range cols {
		if i == maxCharts {
			break
		}
		out = append(out, dashboard.ChartConfig{
			Type:        chartTypes[i],
			Title:       fmt.Sprintf("%s distribution", c.DisplayName),
			GroupBy:     c.Name,
			Aggregation: dashboard.AggregationCount,
		})
	}
	return out
}
