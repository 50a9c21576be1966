// Package summary renders an analysis and its report as Markdown and HTML.
package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"tablesense/domain/analysis"
	"tablesense/domain/report"
)

// Markdown writes a human readable summary. rep may be nil.
func Markdown(a *analysis.DataAnalysis, rep *report.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", a.TableName)
	fmt.Fprintf(&b, "%d rows, %d columns, %d rows sampled on %s.\n\n",
		a.TotalRows, a.TotalColumns, a.SampleSize, a.AnalyzedAt.Format("2006-01-02 15:04"))

	if len(a.RecommendedFields) > 0 {
		fmt.Fprintf(&b, "**Recommended fields:** %s\n\n", strings.Join(a.RecommendedFields, ", "))
	}

	b.WriteString("## Columns\n\n")
	b.WriteString("| Column | Type | Category | Nulls | Unique | Score |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, c := range a.Columns {
		fmt.Fprintf(&b, "| %s | %s | %s | %d%% | %d | %d |\n",
			escape(c.DisplayName), c.DataType, c.Category, c.Stats.NullPercentage, c.Stats.UniqueCount, c.RecommendationScore)
	}
	b.WriteString("\n")

	if rep != nil {
		writeReport(&b, rep)
	}
	return b.String()
}

func writeReport(b *strings.Builder, rep *report.Report) {
	if rep.Partial {
		fmt.Fprintf(b, "> Partial result: %s\n\n", rep.Warning)
	}

	if len(rep.Totals) > 0 {
		b.WriteString("## Totals\n\n")
		for _, col := range sortedKeys(rep.Totals) {
			fmt.Fprintf(b, "- %s: %.2f\n", escape(col), rep.Totals[col])
		}
		b.WriteString("\n")
	}

	for _, bd := range rep.Breakdowns {
		fmt.Fprintf(b, "## %s\n\n", escape(bd.Label))
		b.WriteString("| Group | Count |\n|---|---|\n")
		for _, g := range bd.Top {
			fmt.Fprintf(b, "| %s | %d |\n", escape(g.Name), g.Count)
		}
		b.WriteString("\n")
	}

	if rep.Trend != nil && len(rep.Trend.Points) > 0 {
		fmt.Fprintf(b, "## Monthly trend (%s)\n\n", escape(rep.Trend.DateColumn))
		b.WriteString("| Month | Count |\n|---|---|\n")
		for _, p := range rep.Trend.Points {
			fmt.Fprintf(b, "| %s | %d |\n", p.Month, p.Count)
		}
		b.WriteString("\n")
	}

	if p := rep.Projection; p != nil {
		fmt.Fprintf(b, "## Projection\n\n%d of %d business days passed, %.2f so far, %.2f projected.\n\n",
			p.BusinessDaysPassed, p.TotalBusinessDays, p.CumulativeTotal, p.ProjectedTotal)
	}
}

// HTML renders the Markdown summary to an HTML fragment
func HTML(a *analysis.DataAnalysis, rep *report.Report) []byte {
	md := []byte(Markdown(a, rep))

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return markdown.ToHTML(md, p, renderer)
}

var mdEscaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return mdEscaper.Replace(s)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
