package ui

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tablesense/app"
	"tablesense/domain/analysis"
	"tablesense/domain/core"
	"tablesense/domain/report"
	"tablesense/internal"
	"tablesense/internal/summary"
)

var previewPage = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; margin-bottom: 1.5rem; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.6rem; text-align: left; }
blockquote { border-left: 4px solid #e0a800; margin: 0; padding-left: 1rem; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// App is the read-only preview site
type App struct {
	router   *chi.Mux
	services Services
	logger   *internal.Logger
}

// NewApp creates the preview application
func NewApp(services Services) *App {
	a := &App{
		router:   chi.NewRouter(),
		services: services,
		logger:   internal.DefaultLogger.WithPrefix("Preview"),
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/preview/{project}/{table}", a.handlePreview)
}

// Handler exposes the router, mainly for tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start(addr string) error {
	a.logger.Info("starting preview on http://%s", addr)
	return http.ListenAndServe(addr, a.router)
}

// handlePreview renders the analysis summary; ?report=1 adds the aggregated report
func (a *App) handlePreview(w http.ResponseWriter, r *http.Request) {
	projectID := core.ProjectID(chi.URLParam(r, "project"))
	tableName := chi.URLParam(r, "table")

	var (
		da  *analysis.DataAnalysis
		rep *report.Report
		err error
	)
	if r.URL.Query().Get("report") == "1" {
		var res *app.ReportResult
		if res, err = a.services.Reports.Build(r.Context(), projectID, tableName, app.ReportOptions{}); err == nil {
			da, rep = res.Analysis, res.Report
		}
	} else {
		da, err = a.services.Analyses.Analyze(r.Context(), projectID, tableName)
	}
	if err != nil {
		a.logger.Debug("preview of %s/%s failed: %v", projectID, tableName, err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	data := struct {
		Title string
		Body  template.HTML
	}{
		Title: da.TableName,
		Body:  template.HTML(summary.HTML(da, rep)),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := previewPage.Execute(w, data); err != nil {
		a.logger.Error("template error: %v", err)
	}
}
