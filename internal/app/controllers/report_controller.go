package controllers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/middleware"
	"github.com/yigit/gradebook/internal/pkg/excel"
)

// ReportController handles class reports and their spreadsheet exports
type ReportController struct {
	reportService services.ReportService
	logger        zerolog.Logger
}

// NewReportController creates a new ReportController
func NewReportController(reportService services.ReportService, logger zerolog.Logger) *ReportController {
	return &ReportController{
		reportService: reportService,
		logger:        logger,
	}
}

// ListClasses godoc
// @Summary Reportable classes
// @Description Classes the caller may build reports for
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Class}
// @Failure 403 {object} dto.ErrorResponse
// @Router /reports/classes [get]
func (c *ReportController) ListClasses(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}

	classes, err := c.reportService.Classes(ctx.Request.Context(), scope)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, classes)
}

// ClassReport godoc
// @Summary Class report
// @Description Subject averages, top students and absences of a class over a date range, six months by default
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.ClassReportResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /reports/classes/{id} [get]
func (c *ReportController) ClassReport(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	classID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ReportRangeRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}

	report, err := c.reportService.ClassReport(ctx.Request.Context(), scope, classID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, report)
}

// Export godoc
// @Summary Export class report
// @Description Builds the class report as an Excel workbook and stores it
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 201 {object} dto.APIResponse{data=dto.ExportResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /reports/classes/{id}/export [post]
func (c *ReportController) Export(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	classID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ReportRangeRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}

	export, err := c.reportService.Export(ctx.Request.Context(), scope, classID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, export)
}

// Download godoc
// @Summary Download report
// @Description Streams a stored report workbook
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param key query string true "Storage key returned by export"
// @Success 200 {file} file
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /reports/download [get]
func (c *ReportController) Download(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var req dto.ReportFileRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}

	rc, fileName, err := c.reportService.Download(ctx.Request.Context(), scope, req.Key)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer rc.Close()

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	ctx.Header("Content-Type", excel.ContentType)
	ctx.Status(http.StatusOK)
	if _, err := io.Copy(ctx.Writer, rc); err != nil {
		c.logger.Warn().Err(err).Str("key", req.Key).Msg("Report download interrupted")
	}
}

// DeleteExport godoc
// @Summary Delete report
// @Tags reports
// @Security BearerAuth
// @Param key query string true "Storage key"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /reports/files [delete]
func (c *ReportController) DeleteExport(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var req dto.ReportFileRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}

	if err := c.reportService.DeleteExport(ctx.Request.Context(), scope, req.Key); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
