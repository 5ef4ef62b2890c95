package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/middleware"
)

// LessonController handles a teacher conducting lessons
type LessonController struct {
	lessonService services.LessonService
	logger        zerolog.Logger
}

// NewLessonController creates a new LessonController
func NewLessonController(lessonService services.LessonService, logger zerolog.Logger) *LessonController {
	return &LessonController{
		lessonService: lessonService,
		logger:        logger,
	}
}

// Today godoc
// @Summary Today's lessons
// @Description The caller's timetable slots for the current weekday
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.TodayLessonsResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Router /lessons/today [get]
func (c *LessonController) Today(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}

	today, err := c.lessonService.Today(ctx.Request.Context(), scope)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, today)
}

// Start godoc
// @Summary Start lesson
// @Description The class roster with today's attendance and grades for the subject
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param classId query int true "Class ID"
// @Param subjectId query int true "Subject ID"
// @Success 200 {object} dto.APIResponse{data=dto.LessonStartResponse}
// @Failure 403 {object} dto.ErrorResponse "Subject not taught by the caller in this class"
// @Router /lessons/start [get]
func (c *LessonController) Start(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var req dto.LessonTargetRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}

	lesson, err := c.lessonService.Start(ctx.Request.Context(), scope, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, lesson)
}

// Save godoc
// @Summary Save lesson
// @Description Records the lesson with its attendance and grades in one transaction
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SaveLessonRequest true "Lesson"
// @Success 201 {object} dto.APIResponse{data=dto.SaveLessonResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /lessons [post]
func (c *LessonController) Save(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var req dto.SaveLessonRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	saved, err := c.lessonService.Save(ctx.Request.Context(), scope, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, saved)
}

// History godoc
// @Summary Lesson history
// @Tags lessons
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum lessons" default(50)
// @Success 200 {object} dto.APIResponse{data=[]dto.LessonResponse}
// @Router /lessons/history [get]
func (c *LessonController) History(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var req dto.LessonHistoryRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}

	lessons, err := c.lessonService.History(ctx.Request.Context(), scope, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, lessons)
}
