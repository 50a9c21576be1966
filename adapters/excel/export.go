package excel

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"tablesense/domain/report"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

var sheetNameCleaner = strings.NewReplacer(":", " ", `\`, " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")")

// WriteReport writes a report as a workbook: a summary sheet, one sheet per
// breakdown, the monthly trend and the row preview
func WriteReport(w io.Writer, rep *report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	summary := "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return err
	}
	if err := writeSummary(f, summary, rep); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	used := map[string]bool{"summary": true}
	for _, b := range rep.Breakdowns {
		name := uniqueSheetName(used, b.Label)
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
		if err := writeGroups(f, name, b.Groups); err != nil {
			return fmt.Errorf("failed to write breakdown %s: %w", b.Label, err)
		}
	}

	if rep.Trend != nil && len(rep.Trend.Points) > 0 {
		name := uniqueSheetName(used, "Trend")
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
		if err := writeTrend(f, name, rep.Trend); err != nil {
			return fmt.Errorf("failed to write trend: %w", err)
		}
	}

	if len(rep.Preview) > 0 {
		name := uniqueSheetName(used, "Preview")
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
		if err := writePreview(f, name, rep); err != nil {
			return fmt.Errorf("failed to write preview: %w", err)
		}
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeSummary(f *excelize.File, sheet string, rep *report.Report) error {
	rows := [][]interface{}{
		{"Table", rep.TableName},
		{"Total rows", rep.TotalRows},
		{"Scanned rows", rep.ScannedRows},
		{"Partial", rep.Partial},
	}
	if rep.View != "" {
		rows = append(rows, []interface{}{"View", rep.View})
	}
	if rep.Warning != "" {
		rows = append(rows, []interface{}{"Warning", rep.Warning})
	}
	for _, col := range sortedTotals(rep.Totals) {
		rows = append(rows, []interface{}{"Total " + col, rep.Totals[col]})
	}
	if p := rep.Projection; p != nil {
		rows = append(rows,
			[]interface{}{"Business days passed", p.BusinessDaysPassed},
			[]interface{}{"Business days total", p.TotalBusinessDays},
			[]interface{}{"Period to date", p.CumulativeTotal},
			[]interface{}{"Projected", p.ProjectedTotal},
		)
	}

	for i, r := range rows {
		if err := writeRow(f, sheet, i+1, r); err != nil {
			return err
		}
	}
	return nil
}

func writeGroups(f *excelize.File, sheet string, groups []report.GroupStats) error {
	var cols []string
	if len(groups) > 0 {
		cols = groups[0].TotalColumns()
	}

	header := []interface{}{"Group", "Count"}
	for _, c := range cols {
		header = append(header, c)
	}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, g := range groups {
		row := []interface{}{g.Name, g.Count}
		for _, c := range cols {
			row = append(row, g.Total(c))
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeTrend(f *excelize.File, sheet string, trend *report.Trend) error {
	cols := sortedTotals(trend.Points[0].Totals)

	header := []interface{}{"Month", "Count"}
	for _, c := range cols {
		header = append(header, c)
	}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, p := range trend.Points {
		row := []interface{}{p.Month, p.Count}
		for _, c := range cols {
			row = append(row, p.Totals[c])
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writePreview(f *excelize.File, sheet string, rep *report.Report) error {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range rep.Preview {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)

	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}

	for i, r := range rep.Preview {
		row := make([]interface{}, len(cols))
		for j, c := range cols {
			row[j] = cellValue(r[c])
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowIdx int, values []interface{}) error {
	for c, v := range values {
		cell, err := excelize.CoordinatesToCellName(c+1, rowIdx)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// cellValue flattens nested payload values excelize cannot store directly
func cellValue(v interface{}) interface{} {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		return fmt.Sprint(v)
	}
	return v
}

func uniqueSheetName(used map[string]bool, label string) string {
	base := strings.TrimSpace(sheetNameCleaner.Replace(label))
	if base == "" {
		base = "Sheet"
	}
	base = truncateRunes(base, maxSheetName)
	name := base
	for i := 2; used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf(" %d", i)
		name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func sortedTotals(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
