package dashboard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablesense/domain/analysis"
	"tablesense/domain/dashboard"
)

func enumColumn(name string, values ...string) analysis.Column {
	return analysis.Column{
		Name:        name,
		DisplayName: name + " label",
		DataType:    analysis.TypeEnum,
		Stats:       analysis.ColumnStats{UniqueCount: len(values), UniqueValues: values},
	}
}

func fixture() *analysis.DataAnalysis {
	cols := []analysis.Column{
		{Name: "amount", DisplayName: "Amount", DataType: analysis.TypeNumber},
		enumColumn("status", "new", "won", "lost"),
		{Name: "fee", DisplayName: "Fee", DataType: analysis.TypeNumber},
		{Name: "vip", DisplayName: "Vip", DataType: analysis.TypeBoolean, Stats: analysis.ColumnStats{UniqueCount: 2, UniqueValues: []string{"true", "false"}}},
		enumColumn("source", "web", "phone"),
		{Name: "notes", DisplayName: "Notes", DataType: analysis.TypeText, Stats: analysis.ColumnStats{UniqueCount: 400}},
	}
	for i := 0; i < 4; i++ {
		cols = append(cols, analysis.Column{Name: fmt.Sprintf("n%d", i), DisplayName: fmt.Sprintf("N%d", i), DataType: analysis.TypeNumber})
		cols = append(cols, enumColumn(fmt.Sprintf("e%d", i), "a", "b"))
	}
	return &analysis.DataAnalysis{
		TableName:         "deal_pipeline",
		Columns:           cols,
		RecommendedFields: []string{"amount", "status", "fee", "vip"},
	}
}

func TestBuildDefault(t *testing.T) {
	tpl := BuildDefault(fixture())

	assert.Equal(t, "deal_pipeline", tpl.TableName)
	assert.Equal(t, "Deal Pipeline dashboard", tpl.Name)
	assert.True(t, tpl.IsDefault)

	require.Len(t, tpl.FieldSelection, 4)
	for i, f := range tpl.FieldSelection {
		assert.Equal(t, i, f.Order)
		assert.True(t, f.Visible)
		assert.Nil(t, f.CustomLabel)
	}
	assert.Equal(t, "amount", tpl.FieldSelection[0].Name)

	require.Len(t, tpl.CardsConfig, 4)
	assert.Equal(t, []string{"amount", "fee", "n0", "n1"}, cardColumns(tpl))
	for _, c := range tpl.CardsConfig {
		assert.Equal(t, dashboard.AggregationSum, c.Aggregation)
	}
	assert.NotEqual(t, tpl.CardsConfig[0].Icon, tpl.CardsConfig[1].Icon)
	assert.NotEqual(t, tpl.CardsConfig[0].Color, tpl.CardsConfig[1].Color)

	require.Len(t, tpl.FiltersConfig, 5)
	assert.Equal(t, "status", tpl.FiltersConfig[0].Column)
	assert.Equal(t, []string{"new", "won", "lost"}, tpl.FiltersConfig[0].Options)
	assert.Equal(t, dashboard.FilterBoolean, tpl.FiltersConfig[1].Type)
	assert.Equal(t, dashboard.FilterSelect, tpl.FiltersConfig[2].Type)
	for _, f := range tpl.FiltersConfig {
		assert.NotEqual(t, "notes", f.Column, "high-cardinality text is not a filter")
	}

	assert.Equal(t, []string{"amount", "status", "fee", "vip"}, tpl.TableConfig.Columns)
	assert.Equal(t, 50, tpl.TableConfig.PageSize)
	assert.True(t, tpl.TableConfig.SearchEnabled)
	assert.True(t, tpl.TableConfig.ExportEnabled)

	require.Len(t, tpl.ChartsConfig, 2)
	assert.Equal(t, dashboard.ChartPie, tpl.ChartsConfig[0].Type)
	assert.Equal(t, "status", tpl.ChartsConfig[0].GroupBy)
	assert.Equal(t, dashboard.ChartBar, tpl.ChartsConfig[1].Type)
	assert.Equal(t, "vip", tpl.ChartsConfig[1].GroupBy)
	assert.Equal(t, dashboard.AggregationCount, tpl.ChartsConfig[1].Aggregation)
}

func TestBuildDefaultIsPure(t *testing.T) {
	a := fixture()
	first := BuildDefault(a)
	first.FiltersConfig[0].Options[0] = "edited"

	second := BuildDefault(a)
	assert.Equal(t, "new", second.FiltersConfig[0].Options[0], "templates do not share the analysis slices")
	assert.Equal(t, "new", a.Columns[1].Stats.UniqueValues[0])
}

func TestBuildDefaultEmptyAnalysis(t *testing.T) {
	tpl := BuildDefault(&analysis.DataAnalysis{TableName: "t"})

	assert.Empty(t, tpl.FieldSelection)
	assert.Empty(t, tpl.CardsConfig)
	assert.Empty(t, tpl.FiltersConfig)
	assert.Empty(t, tpl.ChartsConfig)
	assert.Equal(t, 50, tpl.TableConfig.PageSize)
}

func cardColumns(tpl dashboard.Template) []string {
	var out []string
	for _, c := range tpl.CardsConfig {
		out = append(out, c.Column)
	}
	return out
}
