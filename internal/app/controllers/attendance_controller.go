package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/middleware"
)

// AttendanceController handles attendance CRUD
type AttendanceController struct {
	attendanceService services.AttendanceService
	logger       zerolog.Logger
}

// NewAttendanceController creates a new AttendanceController
func NewAttendanceController(attendanceService services.AttendanceService, logger zerolog.Logger) *AttendanceController {
	return &AttendanceController{
		attendanceService: attendanceService,
		logger:       logger,
	}
}

// ListAttendance godoc
// @Summary List attendance
// @Description Absences, late arrivals and excused absences visible to the caller, newest first
// @Tags attendances
// @Produce json
// @Security BearerAuth
// @Param classId query int false "Class ID"
// @Param subjectId query int false "Subject ID"
// @Param studentId query int false "Student ID"
// @Param status query string false "Status" Enums(Absent, Late, Excused)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(50)
// @Success 200 {object} dto.APIResponse{data=dto.AttendanceListResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Router /attendances [get]
func (c *AttendanceController) ListAttendance(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var req dto.AttendanceFilterRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}

	records, err := c.attendanceService.ListAttendance(ctx.Request.Context(), scope, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, records)
}

// GetAttendance godoc
// @Summary Get attendance
// @Tags attendances
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attendance ID"
// @Success 200 {object} dto.APIResponse{data=dto.AttendanceResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /attendances/{id} [get]
func (c *AttendanceController) GetAttendance(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	record, err := c.attendanceService.GetAttendance(ctx.Request.Context(), scope, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, record)
}

// CreateAttendance godoc
// @Summary Create attendance
// @Description Records an absence, late arrival or excused absence; one row per student, subject and date
// @Tags attendances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAttendanceRequest true "Attendance"
// @Success 201 {object} dto.APIResponse{data=dto.AttendanceResponse}
// @Failure 400 {object} dto.ErrorResponse "Unknown status"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Already recorded"
// @Router /attendances [post]
func (c *AttendanceController) CreateAttendance(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var req dto.CreateAttendanceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	record, err := c.attendanceService.CreateAttendance(ctx.Request.Context(), scope, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, record)
}

// UpdateAttendance godoc
// @Summary Update attendance
// @Tags attendances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Attendance ID"
// @Param request body dto.UpdateAttendanceRequest true "Attendance"
// @Success 200 {object} dto.APIResponse{data=dto.AttendanceResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /attendances/{id} [put]
func (c *AttendanceController) UpdateAttendance(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateAttendanceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	record, err := c.attendanceService.UpdateAttendance(ctx.Request.Context(), scope, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, record)
}

// DeleteAttendance godoc
// @Summary Delete attendance
// @Tags attendances
// @Security BearerAuth
// @Param id path int true "Attendance ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /attendances/{id} [delete]
func (c *AttendanceController) DeleteAttendance(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.attendanceService.DeleteAttendance(ctx.Request.Context(), scope, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
