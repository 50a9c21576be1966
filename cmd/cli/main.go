package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"tablesense/adapters/excel"
	"tablesense/adapters/postgres"
	"tablesense/adapters/static"
	"tablesense/app"
	"tablesense/domain/core"
	"tablesense/domain/table"
	"tablesense/internal"
	"tablesense/internal/chunked"
	"tablesense/internal/migration"
	"tablesense/internal/summary"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

// cliProject is the ad-hoc project every file-backed run lives in
const cliProject core.ProjectID = "local"

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "tablesense",
		Short: "Analyze spreadsheets and build dashboard reports from the command line",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				internal.DefaultLogger.SetLevel(internal.LogLevelDebug)
			}
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newReportCmd(),
		newTemplateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// workspace holds the services wired over one loaded file
type workspace struct {
	table    string
	source   *app.TableSource
	analyses *app.AnalysisService
	reports  *app.ReportService
}

func openWorkspace(path, sheet string) (*workspace, error) {
	data, err := excel.ReadFile(path, sheet)
	if err != nil {
		return nil, err
	}

	store := excel.NewStore(0, data)
	source := app.NewTableSource(static.AdHoc(cliProject), store, chunked.DefaultOptions())
	analyses := app.NewAnalysisService(source, 0, core.SystemClock)
	return &workspace{
		table:    data.Name,
		source:   source,
		analyses: analyses,
		reports:  app.NewReportService(source, analyses, app.DefaultReportConfig(), core.SystemClock),
	}, nil
}

func newAnalyzeCmd() *cobra.Command {
	var sheet, format string

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Infer column types, categories and recommended fields",
		Long: `Analyze a .xlsx or .csv file and print its column analysis.

Example: tablesense analyze leads.xlsx --sheet Leads --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(args[0], sheet)
			if err != nil {
				return err
			}
			a, err := ws.analyses.Analyze(cmd.Context(), cliProject, ws.table)
			if err != nil {
				return err
			}
			if format == "markdown" {
				_, err = io.WriteString(cmd.OutOrStdout(), summary.Markdown(a, nil))
				return err
			}
			return printJSON(cmd.OutOrStdout(), a)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Workbook sheet to read (default: first sheet)")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json|markdown")
	return cmd
}

func newReportCmd() *cobra.Command {
	var sheet, view, sortKey, format, out string
	var filters []string

	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Aggregate a whole table into totals, breakdowns and a trend",
		Long: `Build the aggregated report of a .xlsx or .csv file.

Filters are column=[op:]value with op one of eq, neq, gt, gte, lt, lte.

Example: tablesense report commissions.xlsx --view commissions --filter branch=North --out report.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			preds, err := parseFilters(filters)
			if err != nil {
				return err
			}
			ws, err := openWorkspace(args[0], sheet)
			if err != nil {
				return err
			}
			res, err := ws.reports.Build(cmd.Context(), cliProject, ws.table, app.ReportOptions{
				View:       view,
				Predicates: preds,
				SortKey:    sortKey,
			})
			if err != nil {
				return err
			}

			if out != "" {
				return writeWorkbook(out, res)
			}
			if format == "markdown" {
				_, err = io.WriteString(cmd.OutOrStdout(), summary.Markdown(res.Analysis, res.Report))
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Workbook sheet to read (default: first sheet)")
	cmd.Flags().StringVar(&view, "view", "", "Fixed-schema view to aggregate with (default: auto)")
	cmd.Flags().StringVar(&sortKey, "sort", "", "Column the chunked read orders by (default: id)")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Filter as column=[op:]value; repeatable")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json|markdown")
	cmd.Flags().StringVar(&out, "out", "", "Write the report as a workbook to this path instead of printing")
	return cmd
}

func newTemplateCmd() *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "template [file]",
		Short: "Derive the default dashboard template of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(args[0], sheet)
			if err != nil {
				return err
			}

			db, err := scratchDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			templates := app.NewTemplateService(ws.analyses, postgres.NewTemplateRepository(db), core.SystemClock)
			tpl, err := templates.CreateDefault(cmd.Context(), cliProject, ws.table)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tpl)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Workbook sheet to read (default: first sheet)")
	return cmd
}

// scratchDB is an in-memory template store for one CLI run
func scratchDB(ctx context.Context) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open scratch database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func parseFilters(raw []string) ([]table.Predicate, error) {
	preds := make([]table.Predicate, 0, len(raw))
	for _, f := range raw {
		column, value, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("filter %q must be column=[op:]value", f)
		}
		p, err := table.ParsePredicate(strings.TrimSpace(column), value)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func writeWorkbook(path string, res *app.ReportResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := excel.WriteReport(f, res.Report); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d of %d rows)\n", path, res.Report.ScannedRows, res.Report.TotalRows)
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
