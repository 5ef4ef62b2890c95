package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/gradebook/internal/app/controllers"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/middleware"
	"github.com/yigit/gradebook/internal/pkg/websocket"
)

// Controllers groups every HTTP handler set the router mounts
type Controllers struct {
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Message    *controllers.MessageController
	Statistics *controllers.StatisticsController
	Dashboard  *controllers.DashboardController
	Grade      *controllers.GradeController
	Attendance *controllers.AttendanceController
	Schedule   *controllers.ScheduleController
	Lesson     *controllers.LessonController
	Search     *controllers.SearchController
	Report     *controllers.ReportController
	Roster     *controllers.RosterController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl *Controllers,
	wsHandler *websocket.Handler,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", ctrl.Auth.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	adminOnly := authMiddleware.RoleRequired(models.RoleAdmin)
	staffOnly := authMiddleware.RoleRequired(models.RoleAdmin, models.RoleTeacher)
	teacherOnly := authMiddleware.RoleRequired(models.RoleTeacher)

	authenticated.GET("/auth/me", ctrl.Auth.Me)
	authenticated.POST("/users", adminOnly, ctrl.User.CreateUser)

	// Real-time relay
	authenticated.GET("/ws", wsHandler.HandleConnection)

	messages := authenticated.Group("/messages")
	{
		messages.GET("/contacts", ctrl.Message.ListContacts)
		messages.GET("/unread-count", ctrl.Message.UnreadCount)
		messages.GET("/recipients", ctrl.Message.ListRecipients)
		messages.GET("/conversations/:userId", ctrl.Message.GetConversation)
		messages.POST("/conversations/:userId/read", ctrl.Message.MarkRead)
		messages.POST("", ctrl.Message.SendMessage)
	}

	statistics := authenticated.Group("/statistics")
	{
		statistics.GET("", ctrl.Statistics.Overview)
		statistics.GET("/classes/:id/average", ctrl.Statistics.ClassAverage)
		statistics.GET("/rankings", ctrl.Statistics.Rankings)
		statistics.GET("/students/:id/position", ctrl.Statistics.Position)
		statistics.GET("/series", ctrl.Statistics.Series)
		statistics.GET("/absences", ctrl.Statistics.Absences)
		statistics.GET("/subjects", ctrl.Statistics.SubjectAverages)
	}

	authenticated.GET("/dashboard", ctrl.Dashboard.GetDashboard)

	grades := authenticated.Group("/grades")
	{
		grades.GET("", ctrl.Grade.ListGrades)
		grades.GET("/:id", ctrl.Grade.GetGrade)
		grades.POST("", staffOnly, ctrl.Grade.CreateGrade)
		grades.PUT("/:id", staffOnly, ctrl.Grade.UpdateGrade)
		grades.DELETE("/:id", staffOnly, ctrl.Grade.DeleteGrade)
	}

	attendances := authenticated.Group("/attendances")
	{
		attendances.GET("", ctrl.Attendance.ListAttendance)
		attendances.GET("/:id", ctrl.Attendance.GetAttendance)
		attendances.POST("", staffOnly, ctrl.Attendance.CreateAttendance)
		attendances.PUT("/:id", staffOnly, ctrl.Attendance.UpdateAttendance)
		attendances.DELETE("/:id", staffOnly, ctrl.Attendance.DeleteAttendance)
	}

	schedule := authenticated.Group("/schedule")
	{
		schedule.GET("", ctrl.Schedule.GetSchedule)
		schedule.GET("/conflicts", adminOnly, ctrl.Schedule.Conflicts)
		schedule.POST("", adminOnly, ctrl.Schedule.CreateSlot)
		schedule.PUT("/:id", adminOnly, ctrl.Schedule.UpdateSlot)
		schedule.DELETE("/:id", adminOnly, ctrl.Schedule.DeleteSlot)
	}

	lessons := authenticated.Group("/lessons")
	lessons.Use(teacherOnly)
	{
		lessons.GET("/today", ctrl.Lesson.Today)
		lessons.GET("/start", ctrl.Lesson.Start)
		lessons.GET("/history", ctrl.Lesson.History)
		lessons.POST("", ctrl.Lesson.Save)
	}

	search := authenticated.Group("/search")
	{
		search.GET("", ctrl.Search.Search)
		search.GET("/live", ctrl.Search.Live)
	}

	reports := authenticated.Group("/reports")
	reports.Use(staffOnly)
	{
		reports.GET("/classes", ctrl.Report.ListClasses)
		reports.GET("/classes/:id", ctrl.Report.ClassReport)
		reports.POST("/classes/:id/export", ctrl.Report.Export)
		reports.GET("/download", ctrl.Report.Download)
		reports.DELETE("/files", adminOnly, ctrl.Report.DeleteExport)
	}

	setupRosterRoutes(authenticated, ctrl.Roster, adminOnly)
}

func setupRosterRoutes(group *gin.RouterGroup, roster *controllers.RosterController, adminOnly gin.HandlerFunc) {
	classes := group.Group("/classes")
	{
		classes.GET("", roster.ListClasses)
		classes.GET("/:id", roster.GetClass)
		classes.POST("", adminOnly, roster.CreateClass)
		classes.PUT("/:id", adminOnly, roster.UpdateClass)
		classes.DELETE("/:id", adminOnly, roster.DeleteClass)
	}

	subjects := group.Group("/subjects")
	{
		subjects.GET("", roster.ListSubjects)
		subjects.GET("/:id", roster.GetSubject)
		subjects.POST("", adminOnly, roster.CreateSubject)
		subjects.PUT("/:id", adminOnly, roster.UpdateSubject)
		subjects.DELETE("/:id", adminOnly, roster.DeleteSubject)
	}

	teachers := group.Group("/teachers")
	{
		teachers.GET("", roster.ListTeachers)
		teachers.GET("/:id", roster.GetTeacher)
		teachers.POST("", adminOnly, roster.CreateTeacher)
		teachers.PUT("/:id", adminOnly, roster.UpdateTeacher)
		teachers.DELETE("/:id", adminOnly, roster.DeleteTeacher)
	}

	students := group.Group("/students")
	{
		students.GET("", roster.ListStudents)
		students.GET("/:id", roster.GetStudent)
		students.POST("", adminOnly, roster.CreateStudent)
		students.PUT("/:id", adminOnly, roster.UpdateStudent)
		students.DELETE("/:id", adminOnly, roster.DeleteStudent)
	}

	classSubjects := group.Group("/class-subjects")
	{
		classSubjects.GET("", roster.ListClassSubjects)
		classSubjects.GET("/:id", roster.GetClassSubject)
		classSubjects.POST("", adminOnly, roster.CreateClassSubject)
		classSubjects.PUT("/:id", adminOnly, roster.UpdateClassSubject)
		classSubjects.DELETE("/:id", adminOnly, roster.DeleteClassSubject)
	}
}
