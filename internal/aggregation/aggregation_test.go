package aggregation

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablesense/domain/analysis"
	"tablesense/domain/report"
	"tablesense/domain/table"
)

func TestTotals(t *testing.T) {
	rows := []table.Record{
		{"amount": "₪1,000", "fee": 10},
		{"amount": 250.5, "fee": "n/a"},
		{"amount": nil},
	}

	totals := Totals(rows, []string{"amount", "fee", "missing"})

	assert.Equal(t, 1250.5, totals["amount"])
	assert.Equal(t, 10.0, totals["fee"])
	assert.Contains(t, totals, "missing")
	assert.Equal(t, 0.0, totals["missing"])
}

func TestGroupByTenThousandRowsFourGroups(t *testing.T) {
	values := []string{"north", "south", "east", "west"}
	rows := make([]table.Record, 10000)
	for i := range rows {
		rows[i] = table.Record{"region": values[i%4], "amount": 1}
	}

	groups := GroupBy(rows, "region", []string{"amount"})

	require.Len(t, groups, 4)
	assert.Equal(t, 10000, CountRows(groups))
	for _, g := range groups {
		assert.Equal(t, 2500, g.Count)
		assert.Equal(t, 2500.0, g.Total("amount"))
	}
}

func TestGroupByUnknownSentinel(t *testing.T) {
	rows := []table.Record{
		{"agent": "Noa"},
		{"agent": ""},
		{"agent": nil},
		{},
		{"agent": "  Noa  "},
	}

	groups := GroupBy(rows, "agent", nil)
	Rank(groups, SortByCount)

	require.Len(t, groups, 2)
	assert.Equal(t, report.GroupStats{Name: report.UnknownGroup, Count: 3, Totals: map[string]float64{}}, groups[0])
	assert.Equal(t, "Noa", groups[1].Name)
	assert.Equal(t, 5, CountRows(groups), "raw groups include the sentinel")

	top := Top(groups, 10)
	require.Len(t, top, 1)
	assert.Equal(t, "Noa", top[0].Name)
}

func TestRank(t *testing.T) {
	groups := []report.GroupStats{
		{Name: "b", Count: 2, Totals: map[string]float64{"value": 500}},
		{Name: "a", Count: 2, Totals: map[string]float64{"value": 100}},
		{Name: "c", Count: 9, Totals: map[string]float64{"value": 300}},
	}

	names := func() []string {
		var out []string
		for _, g := range groups {
			out = append(out, g.Name)
		}
		return out
	}

	Rank(groups, SortByCount)
	assert.Equal(t, []string{"c", "a", "b"}, names(), "count desc, ties by name")

	Rank(groups, "value")
	assert.Equal(t, []string{"b", "c", "a"}, names())

	Rank(groups, SortByName)
	assert.Equal(t, []string{"a", "b", "c"}, names())
}

func TestTopWindow(t *testing.T) {
	var groups []report.GroupStats
	for i := 0; i < 35; i++ {
		groups = append(groups, report.GroupStats{Name: fmt.Sprintf("g%02d", i), Count: 100 - i})
	}
	groups = append(groups[:3], append([]report.GroupStats{{Name: report.UnknownGroup, Count: 1000}}, groups[3:]...)...)

	for _, n := range []int{TopSmall, TopMedium, TopLarge} {
		top := Top(groups, n)
		assert.Len(t, top, n)
		for _, g := range top {
			assert.NotEqual(t, report.UnknownGroup, g.Name)
		}
	}
	assert.Len(t, Top(groups, 0), 35)
}

func TestMonthlyTrend(t *testing.T) {
	rows := []table.Record{
		{"created_at": "2025-03-17", "amount": 100},
		{"created_at": "2025-03-01T08:00:00Z", "amount": 50},
		{"created_at": "2025-01-09", "amount": 10},
		{"created_at": nil, "amount": 7},
		{"created_at": "someday", "amount": 3},
	}

	trend := MonthlyTrend(rows, "created_at", []string{"amount"})

	require.Len(t, trend.Points, 2)
	assert.Equal(t, "2025-01", trend.Points[0].Month)
	assert.Equal(t, "2025-03", trend.Points[1].Month)
	assert.Equal(t, 2, trend.Points[1].Count)
	assert.Equal(t, 150.0, trend.Points[1].Totals["amount"])
	assert.Equal(t, 2, trend.Excluded)

	// excluded rows still count in raw totals
	assert.Equal(t, 170.0, Totals(rows, []string{"amount"})["amount"])
}

func TestMonthOf(t *testing.T) {
	month, ok := MonthOf("2025-03-17")
	assert.True(t, ok)
	assert.Equal(t, "2025-03", month)

	_, ok = MonthOf(nil)
	assert.False(t, ok)

	month, ok = MonthOf(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC))
	assert.True(t, ok)
	assert.Equal(t, "2024-12", month)
}

func TestProjectPeriod(t *testing.T) {
	// March 2025 starts on a Saturday and has 22 Sunday-Thursday days
	now := time.Date(2025, 3, 17, 15, 0, 0, 0, time.UTC)

	p := ProjectPeriod(now, 1200)

	assert.Equal(t, 22, p.TotalBusinessDays)
	assert.Equal(t, 12, p.BusinessDaysPassed)
	assert.Equal(t, 10, p.BusinessDaysRemaining)
	assert.InDelta(t, 2200.0, p.ProjectedTotal, 1e-9)
	assert.Equal(t, "2025-03-01", p.PeriodStart.Format("2006-01-02"))
	assert.Equal(t, "2025-03-31", p.PeriodEnd.Format("2006-01-02"))
}

func TestProjectPeriodNoBusinessDayPassed(t *testing.T) {
	p := ProjectPeriod(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), 500)

	assert.Equal(t, 0, p.BusinessDaysPassed)
	assert.Equal(t, 0.0, p.ProjectedTotal)
	assert.Equal(t, 500.0, p.CumulativeTotal)
}

func TestIsBusinessDay(t *testing.T) {
	assert.False(t, IsBusinessDay(time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC))) // Friday
	assert.False(t, IsBusinessDay(time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC))) // Saturday
	assert.True(t, IsBusinessDay(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)))  // Sunday
	assert.True(t, IsBusinessDay(time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC))) // Thursday
}

func TestFilterOptions(t *testing.T) {
	rows := []table.Record{
		{"status": "won", "owner": "Dana"},
		{"status": "new", "owner": ""},
		{"status": "won", "owner": nil},
		{"status": 3},
	}

	opts := FilterOptions(rows, []string{"status", "owner"}, 0)

	assert.Equal(t, []string{"3", "new", "won"}, opts["status"])
	assert.Equal(t, []string{"Dana"}, opts["owner"])

	capped := FilterOptions(rows, []string{"status"}, 2)
	assert.Len(t, capped["status"], 2)
}

func commissionRows() []table.Record {
	return []table.Record{
		{"provider": "Harel", "branch": "TLV", "agent": "Noa", "amount": "1,000", "payment_date": "2025-03-02"},
		{"provider": "Harel", "branch": "TLV", "agent": "Avi", "amount": "₪500", "payment_date": "2025-03-10"},
		{"provider": "Migdal", "branch": "HFA", "agent": "Noa", "amount": 2500, "payment_date": "2025-02-20"},
		{"provider": "", "branch": "HFA", "agent": "Avi", "amount": 100, "payment_date": nil},
	}
}

func TestBuildCommissionsView(t *testing.T) {
	view, ok := LookupView("commissions")
	require.True(t, ok)
	require.True(t, view.Supports([]string{"id", "provider", "branch", "agent", "amount", "payment_date"}))

	spec := view.Spec()
	spec.TableName = "commissions"
	spec.TotalRows = 4
	spec.Now = time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)

	r := Build(commissionRows(), spec)

	assert.Equal(t, "commissions", r.View)
	assert.Equal(t, 4, r.ScannedRows)
	assert.Equal(t, 4100.0, r.Totals["amount"])

	providers, ok := r.Breakdown("provider")
	require.True(t, ok)
	assert.Equal(t, 3, providers.GroupCount)
	assert.Equal(t, "Migdal", providers.Groups[0].Name, "ranked by amount")
	assert.Equal(t, 2500.0, providers.Groups[0].Total("amount"))
	assert.Len(t, providers.Top, 2, "unknown provider excluded from top")

	months, ok := r.Breakdown("payment_date")
	require.True(t, ok)
	require.Len(t, months.Top, 2)
	assert.Equal(t, "2025-02", months.Top[0].Name)
	assert.Equal(t, "2025-03", months.Top[1].Name)

	require.NotNil(t, r.Trend)
	assert.Equal(t, 1, r.Trend.Excluded)

	require.NotNil(t, r.Projection)
	assert.Equal(t, 1500.0, r.Projection.CumulativeTotal, "only current-month payments")
	assert.InDelta(t, 1500.0/12*22, r.Projection.ProjectedTotal, 1e-9)

	assert.Equal(t, []string{"Harel", "Migdal"}, r.FilterOptions["provider"])
	assert.Len(t, r.Preview, 4)
}

func TestMonthBreakdownKeepsLatestMonths(t *testing.T) {
	view, ok := LookupView("commissions")
	require.True(t, ok)

	var rows []table.Record
	start := time.Date(2022, 1, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 40; i++ {
		rows = append(rows, table.Record{
			"provider":     "Migdal",
			"branch":       "North",
			"agent":        "Dana",
			"amount":       "100",
			"payment_date": start.AddDate(0, i, 0).Format("2006-01-02"),
		})
	}
	rows = append(rows, table.Record{"provider": "Harel", "amount": "5"})

	spec := view.Spec()
	spec.Now = time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	months, ok := Build(rows, spec).Breakdown("payment_date")
	require.True(t, ok)

	assert.Equal(t, 41, months.GroupCount, "40 months plus the undated row")
	require.Len(t, months.Top, TopLarge)
	assert.Equal(t, "2022-11", months.Top[0].Name)
	assert.Equal(t, "2025-04", months.Top[TopLarge-1].Name, "the newest month is kept")
	for _, g := range months.Top {
		assert.NotEqual(t, report.UnknownGroup, g.Name)
	}
}

func TestLast(t *testing.T) {
	groups := []report.GroupStats{{Name: "a"}, {Name: "b"}, {Name: report.UnknownGroup}, {Name: "c"}}

	names := func(gs []report.GroupStats) []string {
		var out []string
		for _, g := range gs {
			out = append(out, g.Name)
		}
		return out
	}
	assert.Equal(t, []string{"b", "c"}, names(Last(groups, 2)))
	assert.Equal(t, []string{"a", "b", "c"}, names(Last(groups, 0)))
	assert.Equal(t, []string{"a", "b", "c"}, names(Last(groups, 10)))
}

func TestViewSupportsRequiresAllColumns(t *testing.T) {
	view, _ := LookupView("pipeline")
	assert.False(t, view.Supports([]string{"stage", "owner"}))
	_, ok := LookupView("nope")
	assert.False(t, ok)
	assert.Equal(t, []string{"commissions", "pipeline"}, ViewNames())
}

func TestDynamicSpec(t *testing.T) {
	a := &analysis.DataAnalysis{
		Columns: []analysis.Column{
			{Name: "amount", DataType: analysis.TypeNumber},
			{Name: "status", DisplayName: "Status", DataType: analysis.TypeEnum, Stats: analysis.ColumnStats{UniqueCount: 3}},
			{Name: "created_at", DataType: analysis.TypeDate},
			{Name: "notes", DataType: analysis.TypeText, Stats: analysis.ColumnStats{UniqueCount: 900}},
		},
	}

	spec := DynamicSpec(a)

	assert.Equal(t, []string{"amount"}, spec.NumericColumns)
	require.Len(t, spec.Breakdowns, 1)
	assert.Equal(t, "status", spec.Breakdowns[0].Column)
	assert.Equal(t, "created_at", spec.DateColumn)
	assert.Equal(t, "amount", spec.ProjectColumn)
	assert.Equal(t, []string{"status"}, spec.FilterColumns)
}

func TestBuildPreviewCapAndNoMutation(t *testing.T) {
	rows := make([]table.Record, 150)
	for i := range rows {
		rows[i] = table.Record{"id": i}
	}

	r := Build(rows, Spec{TableName: "t", TotalRows: 1000, PreviewLimit: 0})

	assert.Len(t, r.Preview, DefaultPreviewLimit)
	assert.Equal(t, 1000, r.TotalRows)
	assert.Equal(t, 150, r.ScannedRows)
	assert.Nil(t, r.Trend)
	assert.Nil(t, r.Projection)
	assert.Len(t, rows, 150)
}
