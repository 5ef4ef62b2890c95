package services

import (
	"github.com/rs/zerolog"

	appauth "github.com/yigit/gradebook/internal/app/auth"
	"github.com/yigit/gradebook/internal/app/repositories"
	"github.com/yigit/gradebook/internal/pkg/auth"
	"github.com/yigit/gradebook/internal/pkg/cache"
	"github.com/yigit/gradebook/internal/pkg/filestorage"
	"github.com/yigit/gradebook/internal/pkg/websocket"
)

// Dependencies are the infrastructure pieces services are built on
type Dependencies struct {
	JWT      *auth.JWTService
	Cache    cache.Cache
	Storage  filestorage.Storage
	Notifier websocket.Notifier
	Logger   zerolog.Logger
}

// Services holds all the service instances
type Services struct {
	Resolver          *appauth.ScopeResolver
	AuthService       AuthService
	MessageService    MessageService
	StatisticsService StatisticsService
	DashboardService  DashboardService
	GradeService      GradeService
	AttendanceService AttendanceService
	ScheduleService   ScheduleService
	LessonService     LessonService
	SearchService     SearchService
	ReportService     ReportService
	RosterService     RosterService
}

// NewServices initializes all services
func NewServices(repos *repositories.Repositories, deps Dependencies) *Services {
	log := deps.Logger
	resolver := appauth.NewScopeResolver(
		repos.UserRepository,
		repos.TeacherRepository,
		repos.StudentRepository,
		repos.ClassSubjectRepository,
		log.With().Str("component", "scope").Logger(),
	)

	return &Services{
		Resolver: resolver,
		AuthService: NewAuthService(
			repos.UserRepository,
			repos.TeacherRepository,
			repos.StudentRepository,
			resolver,
			deps.JWT,
			log.With().Str("service", "auth").Logger(),
		),
		MessageService: NewMessageService(
			repos.MessageRepository,
			repos.UserRepository,
			deps.Notifier,
			log.With().Str("service", "messages").Logger(),
		),
		StatisticsService: NewStatisticsService(
			repos.StatsRepository,
			repos.ClassRepository,
			repos.StudentRepository,
			deps.Cache,
			log.With().Str("service", "statistics").Logger(),
		),
		DashboardService: NewDashboardService(
			repos.StatsRepository,
			repos.GradeRepository,
			repos.StudentRepository,
			repos.TeacherRepository,
			repos.ClassSubjectRepository,
			repos.ScheduleRepository,
			log.With().Str("service", "dashboard").Logger(),
		),
		GradeService: NewGradeService(
			repos.GradeRepository,
			repos.StudentRepository,
			deps.Cache,
			log.With().Str("service", "grades").Logger(),
		),
		AttendanceService: NewAttendanceService(
			repos.AttendanceRepository,
			repos.StudentRepository,
			deps.Cache,
			log.With().Str("service", "attendance").Logger(),
		),
		ScheduleService: NewScheduleService(
			repos.ScheduleRepository,
			log.With().Str("service", "schedule").Logger(),
		),
		LessonService: NewLessonService(
			repos.LessonRepository,
			repos.ScheduleRepository,
			repos.ClassRepository,
			repos.SubjectRepository,
			repos.StudentRepository,
			deps.Cache,
			log.With().Str("service", "lessons").Logger(),
		),
		SearchService: NewSearchService(
			repos.SearchRepository,
			log.With().Str("service", "search").Logger(),
		),
		ReportService: NewReportService(
			repos.StatsRepository,
			repos.ClassRepository,
			repos.StudentRepository,
			deps.Storage,
			log.With().Str("service", "reports").Logger(),
		),
		RosterService: NewRosterService(
			repos.ClassRepository,
			repos.SubjectRepository,
			repos.TeacherRepository,
			repos.StudentRepository,
			repos.ClassSubjectRepository,
			deps.Cache,
			log.With().Str("service", "roster").Logger(),
		),
	}
}
