package aggregation

import (
	"sort"

	"tablesense/domain/report"
	"tablesense/domain/table"
	"tablesense/internal/inference"
)

const monthLayout = "2006-01"

// MonthOf truncates a date-like value to its YYYY-MM bucket
func MonthOf(v interface{}) (string, bool) {
	t, ok := inference.ParseDate(v)
	if !ok {
		return "", false
	}
	return t.Format(monthLayout), true
}

// MonthlyTrend buckets rows by the month of dateCol, ascending. Rows whose
// date is missing or unparseable are left out of the series and counted in
// Excluded; they still count toward any table totals.
func MonthlyTrend(rows []table.Record, dateCol string, numericCols []string) report.Trend {
	trend := report.Trend{DateColumn: dateCol, Points: []report.TrendPoint{}}

	buckets := make(map[string]*report.TrendPoint)
	for _, row := range rows {
		month, ok := MonthOf(row[dateCol])
		if !ok {
			trend.Excluded++
			continue
		}
		p, exists := buckets[month]
		if !exists {
			p = &report.TrendPoint{Month: month, Totals: make(map[string]float64, len(numericCols))}
			for _, col := range numericCols {
				p.Totals[col] = 0
			}
			buckets[month] = p
		}
		p.Count++
		addNumbers(p.Totals, row, numericCols)
	}

	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		trend.Points = append(trend.Points, *buckets[m])
	}
	return trend
}
