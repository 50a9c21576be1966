package ui

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"

	"tablesense/adapters/excel"
	"tablesense/app"
	"tablesense/domain/core"
	"tablesense/domain/dashboard"
	"tablesense/domain/table"
	"tablesense/internal/errors"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		s.logger.Debug("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, newErrorBody(err))
}

func projectParam(c *gin.Context) (core.ProjectID, error) {
	id, err := core.ParseProjectID(c.Param("project"))
	if err != nil {
		return "", errors.InvalidInput(err.Error())
	}
	return id, nil
}

func (s *Server) handleAnalysis(c *gin.Context) {
	projectID, err := projectParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	a, err := s.services.Analyses.Analyze(c.Request.Context(), projectID, c.Param("table"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// reportOptions reads ?view=, ?sort= and filter[column]=[op:]value
func reportOptions(c *gin.Context) (app.ReportOptions, error) {
	opts := app.ReportOptions{
		View:    c.Query("view"),
		SortKey: c.Query("sort"),
	}
	filters := c.QueryMap("filter")
	columns := make([]string, 0, len(filters))
	for column := range filters {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	for _, column := range columns {
		p, err := table.ParsePredicate(column, filters[column])
		if err != nil {
			return opts, errors.InvalidInput(fmt.Sprintf("invalid filter column %q", column))
		}
		opts.Predicates = append(opts.Predicates, p)
	}
	return opts, nil
}

func (s *Server) handleReport(c *gin.Context) {
	projectID, err := projectParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	opts, err := reportOptions(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	res, err := s.services.Reports.Build(c.Request.Context(), projectID, c.Param("table"), opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleReportExport streams the report as a workbook. With ?template=<id>
// the template's export switch is honoured.
func (s *Server) handleReportExport(c *gin.Context) {
	projectID, err := projectParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	opts, err := reportOptions(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	if id := c.Query("template"); id != "" {
		tpl, err := s.services.Templates.Get(c.Request.Context(), core.TemplateID(id))
		if err != nil {
			s.fail(c, err)
			return
		}
		display, err := s.services.Reports.TableName(c.Request.Context(), projectID, c.Param("table"))
		if err != nil {
			s.fail(c, err)
			return
		}
		if tpl.ProjectID != projectID || tpl.TableName != display {
			s.fail(c, errors.InvalidInput(fmt.Sprintf("template %s belongs to %s/%s, not %s/%s", id, tpl.ProjectID, tpl.TableName, projectID, display)))
			return
		}
		if !tpl.TableConfig.ExportEnabled {
			s.fail(c, errors.AccessDenied(fmt.Sprintf("export is disabled by template %s", id)))
			return
		}
	}

	res, err := s.services.Reports.Build(c.Request.Context(), projectID, c.Param("table"), opts)
	if err != nil {
		s.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := excel.WriteReport(&buf, res.Report); err != nil {
		s.fail(c, errors.Wrap(err, "failed to write workbook"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, res.Report.TableName))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (s *Server) handleCreateDefaultTemplate(c *gin.Context) {
	projectID, err := projectParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	tpl, err := s.services.Templates.CreateDefault(c.Request.Context(), projectID, c.Param("table"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

func (s *Server) handleListTemplates(c *gin.Context) {
	projectID, err := projectParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	templates, err := s.services.Templates.List(c.Request.Context(), projectID, c.Query("table"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (s *Server) handleGetTemplate(c *gin.Context) {
	tpl, err := s.services.Templates.Get(c.Request.Context(), core.TemplateID(c.Param("id")))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (s *Server) handleUpdateTemplate(c *gin.Context) {
	var edit dashboard.Template
	if err := c.ShouldBindJSON(&edit); err != nil {
		s.fail(c, errors.InvalidInput("invalid template body: "+err.Error()))
		return
	}

	tpl, err := s.services.Templates.Update(c.Request.Context(), core.TemplateID(c.Param("id")), &edit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (s *Server) handleDeleteTemplate(c *gin.Context) {
	if err := s.services.Templates.Delete(c.Request.Context(), core.TemplateID(c.Param("id"))); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type overviewRequest struct {
	Tables []string `json:"tables" binding:"required,min=1"`
}

func (s *Server) handleOverview(c *gin.Context) {
	projectID, err := projectParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	var req overviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.InvalidInput("body must list at least one table"))
		return
	}

	analyses, err := s.services.Reports.Overview(c.Request.Context(), projectID, req.Tables)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tables": analyses})
}
