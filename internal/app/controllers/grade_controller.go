package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/middleware"
)

// GradeController handles grade CRUD
type GradeController struct {
	gradeService services.GradeService
	logger       zerolog.Logger
}

// NewGradeController creates a new GradeController
func NewGradeController(gradeService services.GradeService, logger zerolog.Logger) *GradeController {
	return &GradeController{
		gradeService: gradeService,
		logger:       logger,
	}
}

// ListGrades godoc
// @Summary List grades
// @Description Grades visible to the caller, newest first
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Param classId query int false "Class ID"
// @Param subjectId query int false "Subject ID"
// @Param studentId query int false "Student ID"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(50)
// @Success 200 {object} dto.APIResponse{data=dto.GradeListResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Router /grades [get]
func (c *GradeController) ListGrades(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var req dto.GradeFilterRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}

	grades, err := c.gradeService.ListGrades(ctx.Request.Context(), scope, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, grades)
}

// GetGrade godoc
// @Summary Get grade
// @Tags grades
// @Produce json
// @Security BearerAuth
// @Param id path int true "Grade ID"
// @Success 200 {object} dto.APIResponse{data=dto.GradeResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /grades/{id} [get]
func (c *GradeController) GetGrade(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	grade, err := c.gradeService.GetGrade(ctx.Request.Context(), scope, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, grade)
}

// CreateGrade godoc
// @Summary Create grade
// @Description Teachers may grade only the class and subject pairs assigned to them
// @Tags grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateGradeRequest true "Grade"
// @Success 201 {object} dto.APIResponse{data=dto.GradeResponse}
// @Failure 400 {object} dto.ErrorResponse "Value outside 2.00 to 6.00"
// @Failure 403 {object} dto.ErrorResponse
// @Router /grades [post]
func (c *GradeController) CreateGrade(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var req dto.CreateGradeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	grade, err := c.gradeService.CreateGrade(ctx.Request.Context(), scope, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, grade)
}

// UpdateGrade godoc
// @Summary Update grade
// @Tags grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Grade ID"
// @Param request body dto.UpdateGradeRequest true "Grade"
// @Success 200 {object} dto.APIResponse{data=dto.GradeResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /grades/{id} [put]
func (c *GradeController) UpdateGrade(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateGradeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	grade, err := c.gradeService.UpdateGrade(ctx.Request.Context(), scope, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, grade)
}

// DeleteGrade godoc
// @Summary Delete grade
// @Tags grades
// @Security BearerAuth
// @Param id path int true "Grade ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /grades/{id} [delete]
func (c *GradeController) DeleteGrade(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.gradeService.DeleteGrade(ctx.Request.Context(), scope, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
