package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/middleware"
)

// ScheduleController handles the weekly timetable
type ScheduleController struct {
	scheduleService services.ScheduleService
	logger          zerolog.Logger
}

// NewScheduleController creates a new ScheduleController
func NewScheduleController(scheduleService services.ScheduleService, logger zerolog.Logger) *ScheduleController {
	return &ScheduleController{
		scheduleService: scheduleService,
		logger:          logger,
	}
}

// GetSchedule godoc
// @Summary Weekly schedule
// @Description Teachers see their own lessons, students their class, admins any class or the whole school
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Param classId query int false "Class ID"
// @Success 200 {object} dto.APIResponse{data=dto.ScheduleResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Router /schedule [get]
func (c *ScheduleController) GetSchedule(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var req dto.ScheduleFilterRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}

	schedule, err := c.scheduleService.GetSchedule(ctx.Request.Context(), scope, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, schedule)
}

// Conflicts godoc
// @Summary Teacher double bookings
// @Description Teachers booked in more than one class in the same period
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.TeacherConflictResponse}
// @Router /schedule/conflicts [get]
func (c *ScheduleController) Conflicts(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}

	conflicts, err := c.scheduleService.Conflicts(ctx.Request.Context(), scope)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, conflicts)
}

// CreateSlot godoc
// @Summary Create schedule slot
// @Description The response lists any double booking the new slot causes
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ScheduleSlotRequest true "Slot"
// @Success 201 {object} dto.APIResponse{data=dto.SaveSlotResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Class period already taken"
// @Router /schedule [post]
func (c *ScheduleController) CreateSlot(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var req dto.ScheduleSlotRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	saved, err := c.scheduleService.CreateSlot(ctx.Request.Context(), scope, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if len(saved.Conflicts) > 0 {
		c.logger.Warn().Int64("slotID", saved.Slot.ID).Int("conflicts", len(saved.Conflicts)).Msg("Schedule slot double-books a teacher")
	}
	respond(ctx, http.StatusCreated, saved)
}

// UpdateSlot godoc
// @Summary Update schedule slot
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Slot ID"
// @Param request body dto.ScheduleSlotRequest true "Slot"
// @Success 200 {object} dto.APIResponse{data=dto.SaveSlotResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /schedule/{id} [put]
func (c *ScheduleController) UpdateSlot(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ScheduleSlotRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	saved, err := c.scheduleService.UpdateSlot(ctx.Request.Context(), scope, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, saved)
}

// DeleteSlot godoc
// @Summary Delete schedule slot
// @Tags schedule
// @Security BearerAuth
// @Param id path int true "Slot ID"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse
// @Router /schedule/{id} [delete]
func (c *ScheduleController) DeleteSlot(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.scheduleService.DeleteSlot(ctx.Request.Context(), scope, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
