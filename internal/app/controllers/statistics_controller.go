package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/middleware"
)

// StatisticsController serves scoped grade and attendance statistics
type StatisticsController struct {
	statisticsService services.StatisticsService
	logger            zerolog.Logger
}

// NewStatisticsController creates a new StatisticsController
func NewStatisticsController(statisticsService services.StatisticsService, logger zerolog.Logger) *StatisticsController {
	return &StatisticsController{
		statisticsService: statisticsService,
		logger:            logger,
	}
}

// Overview godoc
// @Summary Statistics overview
// @Description Role-dependent overview: school-wide for admins, assigned classes for teachers, own results for students
// @Tags statistics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.StatisticsResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Router /statistics [get]
func (c *StatisticsController) Overview(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}

	stats, err := c.statisticsService.Overview(ctx.Request.Context(), scope)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, stats)
}

// ClassAverage godoc
// @Summary Class average
// @Tags statistics
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Param subjectId query int false "Subject ID"
// @Param subjectIds query []int false "Subject IDs" collectionFormat(multi)
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.ClassAverageResponse}
// @Failure 403 {object} dto.ErrorResponse "Class outside caller scope"
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /statistics/classes/{id}/average [get]
func (c *StatisticsController) ClassAverage(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	classID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var q dto.StatsQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	avg, err := c.statisticsService.ClassAverage(ctx.Request.Context(), scope, classID, &q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, avg)
}

// Rankings godoc
// @Summary Student rankings
// @Description Students ordered by average grade within the caller's scope
// @Tags statistics
// @Produce json
// @Security BearerAuth
// @Param classId query int false "Class ID"
// @Param subjectId query int false "Subject ID"
// @Param subjectIds query []int false "Subject IDs" collectionFormat(multi)
// @Param limit query int false "Maximum rows"
// @Param direction query string false "top or bottom" Enums(top, bottom)
// @Success 200 {object} dto.APIResponse{data=[]dto.StudentRankResponse}
// @Router /statistics/rankings [get]
func (c *StatisticsController) Rankings(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var q dto.StatsQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	rows, err := c.statisticsService.Rankings(ctx.Request.Context(), scope, &q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, rows)
}

// Position godoc
// @Summary Student class position
// @Tags statistics
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.PositionResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /statistics/students/{id}/position [get]
func (c *StatisticsController) Position(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	studentID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	pos, err := c.statisticsService.Position(ctx.Request.Context(), scope, studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, pos)
}

// Series godoc
// @Summary Monthly average series
// @Tags statistics
// @Produce json
// @Security BearerAuth
// @Param classId query int false "Class ID"
// @Param subjectId query int false "Subject ID"
// @Param subjectIds query []int false "Subject IDs" collectionFormat(multi)
// @Param limit query int false "Number of months"
// @Success 200 {object} dto.APIResponse{data=[]dto.MonthPointResponse}
// @Router /statistics/series [get]
func (c *StatisticsController) Series(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var q dto.StatsQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	points, err := c.statisticsService.Series(ctx.Request.Context(), scope, &q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, points)
}

// Absences godoc
// @Summary Absence statistics
// @Tags statistics
// @Produce json
// @Security BearerAuth
// @Param classId query int false "Class ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.AbsenceStatsResponse}
// @Router /statistics/absences [get]
func (c *StatisticsController) Absences(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var q dto.StatsQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	stats, err := c.statisticsService.Absences(ctx.Request.Context(), scope, &q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, stats)
}

// SubjectAverages godoc
// @Summary Subject averages
// @Tags statistics
// @Produce json
// @Security BearerAuth
// @Param classId query int false "Class ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.SubjectAverageResponse}
// @Router /statistics/subjects [get]
func (c *StatisticsController) SubjectAverages(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var q dto.StatsQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	rows, err := c.statisticsService.SubjectAverages(ctx.Request.Context(), scope, &q)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, rows)
}
