package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/middleware"
)

// RosterController handles classes, subjects, teachers, students and subject assignments.
// Reads are open to any authenticated user; writes require an administrator.
type RosterController struct {
	rosterService services.RosterService
	logger        zerolog.Logger
}

// NewRosterController creates a new RosterController
func NewRosterController(rosterService services.RosterService, logger zerolog.Logger) *RosterController {
	return &RosterController{
		rosterService: rosterService,
		logger:        logger,
	}
}

// ListClasses godoc
// @Summary List classs
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Class}
// @Router /classes [get]
func (c *RosterController) ListClasses(ctx *gin.Context) {
	rows, err := c.rosterService.ListClasses(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, rows)
}

// GetClass godoc
// @Summary Get class
// @Tags classes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 200 {object} dto.APIResponse{data=models.Class}
// @Failure 404 {object} dto.ErrorResponse
// @Router /classes/{id} [get]
func (c *RosterController) GetClass(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	row, err := c.rosterService.GetClass(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, row)
}

// CreateClass godoc
// @Summary Create class
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ClassRequest true "Class"
// @Success 201 {object} dto.APIResponse{data=models.Class}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 409 {object} dto.ErrorResponse "Class name already exists"
// @Router /classes [post]
func (c *RosterController) CreateClass(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var req dto.ClassRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	row, err := c.rosterService.CreateClass(ctx.Request.Context(), scope, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, row)
}

// UpdateClass godoc
// @Summary Update class
// @Tags classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Param request body dto.ClassRequest true "Class"
// @Success 200 {object} dto.APIResponse{data=models.Class}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Class name already exists"
// @Router /classes/{id} [put]
func (c *RosterController) UpdateClass(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ClassRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	row, err := c.rosterService.UpdateClass(ctx.Request.Context(), scope, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, row)
}

// DeleteClass godoc
// @Summary Delete class
// @Tags classes
// @Security BearerAuth
// @Param id path int true "Class ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 404 {object} dto.ErrorResponse
// @Router /classes/{id} [delete]
func (c *RosterController) DeleteClass(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.rosterService.DeleteClass(ctx.Request.Context(), scope, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ListSubjects godoc
// @Summary List subjects
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Subject}
// @Router /subjects [get]
func (c *RosterController) ListSubjects(ctx *gin.Context) {
	rows, err := c.rosterService.ListSubjects(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, rows)
}

// GetSubject godoc
// @Summary Get subject
// @Tags subjects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subject ID"
// @Success 200 {object} dto.APIResponse{data=models.Subject}
// @Failure 404 {object} dto.ErrorResponse
// @Router /subjects/{id} [get]
func (c *RosterController) GetSubject(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	row, err := c.rosterService.GetSubject(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, row)
}

// CreateSubject godoc
// @Summary Create subject
// @Tags subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubjectRequest true "Subject"
// @Success 201 {object} dto.APIResponse{data=models.Subject}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 409 {object} dto.ErrorResponse "Subject name already exists"
// @Router /subjects [post]
func (c *RosterController) CreateSubject(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var req dto.SubjectRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	row, err := c.rosterService.CreateSubject(ctx.Request.Context(), scope, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, row)
}

// UpdateSubject godoc
// @Summary Update subject
// @Tags subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subject ID"
// @Param request body dto.SubjectRequest true "Subject"
// @Success 200 {object} dto.APIResponse{data=models.Subject}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Subject name already exists"
// @Router /subjects/{id} [put]
func (c *RosterController) UpdateSubject(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.SubjectRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	row, err := c.rosterService.UpdateSubject(ctx.Request.Context(), scope, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, row)
}

// DeleteSubject godoc
// @Summary Delete subject
// @Tags subjects
// @Security BearerAuth
// @Param id path int true "Subject ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 404 {object} dto.ErrorResponse
// @Router /subjects/{id} [delete]
func (c *RosterController) DeleteSubject(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.rosterService.DeleteSubject(ctx.Request.Context(), scope, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ListTeachers godoc
// @Summary List teachers
// @Tags teachers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Teacher}
// @Router /teachers [get]
func (c *RosterController) ListTeachers(ctx *gin.Context) {
	rows, err := c.rosterService.ListTeachers(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, rows)
}

// GetTeacher godoc
// @Summary Get teacher
// @Tags teachers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Success 200 {object} dto.APIResponse{data=models.Teacher}
// @Failure 404 {object} dto.ErrorResponse
// @Router /teachers/{id} [get]
func (c *RosterController) GetTeacher(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	row, err := c.rosterService.GetTeacher(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, row)
}

// CreateTeacher godoc
// @Summary Create teacher
// @Tags teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.TeacherRequest true "Teacher"
// @Success 201 {object} dto.APIResponse{data=models.Teacher}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 409 {object} dto.ErrorResponse "User already linked to a teacher"
// @Router /teachers [post]
func (c *RosterController) CreateTeacher(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var req dto.TeacherRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	row, err := c.rosterService.CreateTeacher(ctx.Request.Context(), scope, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, row)
}

// UpdateTeacher godoc
// @Summary Update teacher
// @Tags teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Param request body dto.TeacherRequest true "Teacher"
// @Success 200 {object} dto.APIResponse{data=models.Teacher}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "User already linked to a teacher"
// @Router /teachers/{id} [put]
func (c *RosterController) UpdateTeacher(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.TeacherRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	row, err := c.rosterService.UpdateTeacher(ctx.Request.Context(), scope, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, row)
}

// DeleteTeacher godoc
// @Summary Delete teacher
// @Tags teachers
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 404 {object} dto.ErrorResponse
// @Router /teachers/{id} [delete]
func (c *RosterController) DeleteTeacher(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.rosterService.DeleteTeacher(ctx.Request.Context(), scope, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ListStudents godoc
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param classId query int false "Class ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Student}
// @Router /students [get]
func (c *RosterController) ListStudents(ctx *gin.Context) {
	var req dto.StudentFilterRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}

	rows, err := c.rosterService.ListStudents(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, rows)
}

// GetStudent godoc
// @Summary Get student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 404 {object} dto.ErrorResponse
// @Router /students/{id} [get]
func (c *RosterController) GetStudent(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	row, err := c.rosterService.GetStudent(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, row)
}

// CreateStudent godoc
// @Summary Create student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StudentRequest true "Student"
// @Success 201 {object} dto.APIResponse{data=models.Student}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Router /students [post]
func (c *RosterController) CreateStudent(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var req dto.StudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	row, err := c.rosterService.CreateStudent(ctx.Request.Context(), scope, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, row)
}

// UpdateStudent godoc
// @Summary Update student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.StudentRequest true "Student"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 404 {object} dto.ErrorResponse
// @Router /students/{id} [put]
func (c *RosterController) UpdateStudent(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.StudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	row, err := c.rosterService.UpdateStudent(ctx.Request.Context(), scope, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, row)
}

// DeleteStudent godoc
// @Summary Delete student
// @Tags students
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 404 {object} dto.ErrorResponse
// @Router /students/{id} [delete]
func (c *RosterController) DeleteStudent(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.rosterService.DeleteStudent(ctx.Request.Context(), scope, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ListClassSubjects godoc
// @Summary List class subjects
// @Tags class-subjects
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ClassSubject}
// @Router /class-subjects [get]
func (c *RosterController) ListClassSubjects(ctx *gin.Context) {
	rows, err := c.rosterService.ListClassSubjects(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, rows)
}

// GetClassSubject godoc
// @Summary Get class subject
// @Tags class-subjects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class subject ID"
// @Success 200 {object} dto.APIResponse{data=models.ClassSubject}
// @Failure 404 {object} dto.ErrorResponse
// @Router /class-subjects/{id} [get]
func (c *RosterController) GetClassSubject(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	row, err := c.rosterService.GetClassSubject(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, row)
}

// CreateClassSubject godoc
// @Summary Create class subject
// @Tags class-subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ClassSubjectRequest true "Class subject"
// @Success 201 {object} dto.APIResponse{data=models.ClassSubject}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 409 {object} dto.ErrorResponse "Subject already assigned to the class"
// @Router /class-subjects [post]
func (c *RosterController) CreateClassSubject(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	var req dto.ClassSubjectRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	row, err := c.rosterService.CreateClassSubject(ctx.Request.Context(), scope, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, row)
}

// UpdateClassSubject godoc
// @Summary Update class subject
// @Tags class-subjects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Class subject ID"
// @Param request body dto.ClassSubjectRequest true "Class subject"
// @Success 200 {object} dto.APIResponse{data=models.ClassSubject}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Subject already assigned to the class"
// @Router /class-subjects/{id} [put]
func (c *RosterController) UpdateClassSubject(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ClassSubjectRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	row, err := c.rosterService.UpdateClassSubject(ctx.Request.Context(), scope, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, row)
}

// DeleteClassSubject godoc
// @Summary Delete class subject
// @Tags class-subjects
// @Security BearerAuth
// @Param id path int true "Class subject ID"
// @Success 204 "No Content"
// @Failure 403 {object} dto.ErrorResponse "Admin only"
// @Failure 404 {object} dto.ErrorResponse
// @Router /class-subjects/{id} [delete]
func (c *RosterController) DeleteClassSubject(ctx *gin.Context) {
	scope, ok := middleware.MustScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.rosterService.DeleteClassSubject(ctx.Request.Context(), scope, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
