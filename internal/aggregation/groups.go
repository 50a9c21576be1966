// Package aggregation computes totals, group breakdowns, monthly trends and
// period projections over normalized rows.
//
// Pipeline per breakdown: group → aggregate → rank → top-N.
package aggregation

import (
	"fmt"
	"sort"
	"strings"

	"tablesense/domain/report"
	"tablesense/domain/table"
	"tablesense/internal/inference"
)

// SortByCount ranks groups by row count; SortByName orders them by name
const (
	SortByCount = "count"
	SortByName  = "name"
)

// KeyFunc derives the group key of a row; an empty key means unknown
type KeyFunc func(row table.Record) string

// ColumnKey groups by the trimmed string form of a column value
func ColumnKey(column string) KeyFunc {
	return func(row table.Record) string {
		return groupValue(row[column])
	}
}

// MonthKey groups by the YYYY-MM bucket of a date column
func MonthKey(column string) KeyFunc {
	return func(row table.Record) string {
		month, _ := MonthOf(row[column])
		return month
	}
}

// Totals sums each numeric column over all rows. Values that do not parse
// as numbers contribute nothing.
func Totals(rows []table.Record, numericCols []string) map[string]float64 {
	totals := make(map[string]float64, len(numericCols))
	for _, col := range numericCols {
		totals[col] = 0
	}
	for _, row := range rows {
		addNumbers(totals, row, numericCols)
	}
	return totals
}

// GroupBy buckets rows by the value of column, counting rows and summing
// numeric columns per group. Missing or blank values land in
// report.UnknownGroup. Groups are returned in first-seen order.
func GroupBy(rows []table.Record, column string, numericCols []string) []report.GroupStats {
	return GroupByKey(rows, ColumnKey(column), numericCols)
}

// GroupByKey buckets rows by a derived key
func GroupByKey(rows []table.Record, key KeyFunc, numericCols []string) []report.GroupStats {
	index := make(map[string]int)
	var groups []report.GroupStats

	for _, row := range rows {
		name := key(row)
		if name == "" {
			name = report.UnknownGroup
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			totals := make(map[string]float64, len(numericCols))
			for _, col := range numericCols {
				totals[col] = 0
			}
			groups = append(groups, report.GroupStats{Name: name, Totals: totals})
		}
		groups[i].Count++
		addNumbers(groups[i].Totals, row, numericCols)
	}
	return groups
}

// Rank sorts groups in place: by count (the default), by name ascending, or
// descending by the total of the numeric column named in sortBy. Ties are
// broken by name.
func Rank(groups []report.GroupStats, sortBy string) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		switch sortBy {
		case "", SortByCount:
			if a.Count != b.Count {
				return a.Count > b.Count
			}
		case SortByName:
		default:
			if a.Total(sortBy) != b.Total(sortBy) {
				return a.Total(sortBy) > b.Total(sortBy)
			}
		}
		return a.Name < b.Name
	})
}

// Top returns the first n ranked groups, leaving out report.UnknownGroup.
// A non-positive n keeps every group.
func Top(groups []report.GroupStats, n int) []report.GroupStats {
	out := make([]report.GroupStats, 0, len(groups))
	for _, g := range groups {
		if g.Name == report.UnknownGroup {
			continue
		}
		if n > 0 && len(out) == n {
			break
		}
		out = append(out, g)
	}
	return out
}

// Last returns the last n ranked groups in ranked order, leaving out
// report.UnknownGroup. A non-positive n keeps every group.
func Last(groups []report.GroupStats, n int) []report.GroupStats {
	known := Top(groups, 0)
	if n > 0 && len(known) > n {
		known = known[len(known)-n:]
	}
	return known
}

// CountRows sums group counts
func CountRows(groups []report.GroupStats) int {
	n := 0
	for _, g := range groups {
		n += g.Count
	}
	return n
}

func addNumbers(totals map[string]float64, row table.Record, numericCols []string) {
	for _, col := range numericCols {
		if f, ok := inference.ParseNumber(row[col]); ok {
			totals[col] += f
		}
	}
}

func groupValue(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case []byte:
		return strings.TrimSpace(string(s))
	case float64:
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
