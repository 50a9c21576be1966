package ui

import (
	"net/http"
	"time"

	"tablesense/app"
	"tablesense/internal"
	"tablesense/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Services are the application services the HTTP surfaces call
type Services struct {
	Analyses  *app.AnalysisService
	Reports   *app.ReportService
	Templates *app.TemplateService
}

// Server is the JSON API
type Server struct {
	router   *gin.Engine
	services Services
	timeout  time.Duration
	logger   *internal.Logger
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithRequestTimeout bounds each request's context
func WithRequestTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.timeout = d }
}

// NewServer creates the API server and registers its routes
func NewServer(services Services, opts ...ServerOption) *Server {
	s := &Server{
		router:   gin.New(),
		services: services,
		logger:   internal.DefaultLogger.WithPrefix("API"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.Deadline(s.timeout))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")

	tables := api.Group("/projects/:project/tables/:table")
	tables.GET("/analysis", s.handleAnalysis)
	tables.GET("/report", s.handleReport)
	tables.GET("/report.xlsx", s.handleReportExport)
	tables.POST("/templates/default", s.handleCreateDefaultTemplate)

	api.GET("/projects/:project/templates", s.handleListTemplates)
	api.POST("/projects/:project/overview", s.handleOverview)

	api.GET("/templates/:id", s.handleGetTemplate)
	api.PUT("/templates/:id", s.handleUpdateTemplate)
	api.DELETE("/templates/:id", s.handleDeleteTemplate)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves the API until the listener fails
func (s *Server) Start(addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	s.logger.Info("starting API on http://%s", addr)
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
