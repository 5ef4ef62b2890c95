package services

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yigit/gradebook/internal/app/aggregation"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/repositories"
)

// Dashboard list sizes
const (
	AdminTopStudents    = 10
	AdminTopSubjects    = 5
	AdminRecentGrades   = 5
	TeacherRecentGrades = 8
	StudentSchoolTop    = 10
	StudentGradesShown  = 100
)

// DashboardService builds the landing page of each role
type DashboardService interface {
	GetDashboard(ctx context.Context, scope *models.Scope) (*dto.DashboardResponse, error)
}

type dashboardServiceImpl struct {
	statsRepo        repositories.IStatsRepository
	gradeRepo        repositories.IGradeRepository
	studentRepo      repositories.IStudentRepository
	teacherRepo      repositories.ITeacherRepository
	classSubjectRepo repositories.IClassSubjectRepository
	scheduleRepo     repositories.IScheduleRepository
	logger           zerolog.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	statsRepo repositories.IStatsRepository,
	gradeRepo repositories.IGradeRepository,
	studentRepo repositories.IStudentRepository,
	teacherRepo repositories.ITeacherRepository,
	classSubjectRepo repositories.IClassSubjectRepository,
	scheduleRepo repositories.IScheduleRepository,
	logger zerolog.Logger,
) DashboardService {
	return &dashboardServiceImpl{
		statsRepo:        statsRepo,
		gradeRepo:        gradeRepo,
		studentRepo:      studentRepo,
		teacherRepo:      teacherRepo,
		classSubjectRepo: classSubjectRepo,
		scheduleRepo:     scheduleRepo,
		logger:           logger,
	}
}

// GetDashboard returns the dashboard matching the caller's role
func (s *dashboardServiceImpl) GetDashboard(ctx context.Context, scope *models.Scope) (*dto.DashboardResponse, error) {
	resp := &dto.DashboardResponse{Role: string(scope.Role)}
	var err error
	switch {
	case scope.IsAdmin():
		resp.Admin, err = s.admin(ctx)
	case scope.IsTeacher():
		resp.Teacher, err = s.teacher(ctx, scope)
	default:
		resp.Student, err = s.student(ctx, scope)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *dashboardServiceImpl) admin(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	all := models.FactFilter{}
	var (
		students, grades int64
		facts            []models.GradeFact
		att              []models.AttendanceFact
		recent           []models.Grade
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		students, err = s.studentRepo.Count(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		grades, err = s.gradeRepo.Count(gctx, all)
		return err
	})
	g.Go(func() (err error) {
		facts, err = s.statsRepo.GradeFacts(gctx, all)
		return err
	})
	g.Go(func() (err error) {
		att, err = s.statsRepo.AttendanceFacts(gctx, all)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.statsRepo.RecentGrades(gctx, all, AdminRecentGrades)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	subjects := aggregation.SubjectAverages(facts)
	if len(subjects) > AdminTopSubjects {
		subjects = subjects[:AdminTopSubjects]
	}
	return &dto.AdminDashboardResponse{
		TotalStudents:  students,
		TotalGrades:    grades,
		TotalAbsences:  int64(aggregation.CountStatus(att, models.AttendanceAbsent)),
		TotalLates:     int64(aggregation.CountStatus(att, models.AttendanceLate)),
		OverallAverage: aggregation.Float(aggregation.Average(facts)),
		TopStudents:    dto.ToStudentRanks(aggregation.RankStudents(facts, AdminTopStudents, aggregation.Top)),
		TopSubjects:    dto.ToSubjectAverages(subjects),
		RecentGrades:   dto.ToGradeResponses(recent),
	}, nil
}

func (s *dashboardServiceImpl) teacher(ctx context.Context, scope *models.Scope) (*dto.TeacherDashboardResponse, error) {
	resp := &dto.TeacherDashboardResponse{
		ClassSubjects: []models.ClassSubject{},
		RecentGrades:  []dto.GradeResponse{},
		Schedule:      dto.GroupByDay(nil),
	}
	if scope.TeacherID == nil {
		return resp, nil
	}
	tid := *scope.TeacherID
	filter := scope.GradeFilter()

	var (
		teacher *models.Teacher
		recent  []models.Grade
		slots   []models.ScheduleSlot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		teacher, err = s.teacherRepo.GetByID(gctx, tid)
		return err
	})
	g.Go(func() (err error) {
		resp.ClassSubjects, err = s.classSubjectRepo.List(gctx, &tid)
		return err
	})
	g.Go(func() (err error) {
		resp.StudentCount, err = s.studentRepo.Count(gctx, scopeClassIDs(scope))
		return err
	})
	g.Go(func() (err error) {
		resp.GradeCount, err = s.gradeRepo.Count(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.statsRepo.RecentGrades(gctx, filter, TeacherRecentGrades)
		return err
	})
	g.Go(func() (err error) {
		slots, err = s.scheduleRepo.List(gctx, scheduleQuery(scope, nil))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp.TeacherID = teacher.ID
	resp.TeacherName = teacher.FullName()
	resp.RecentGrades = dto.ToGradeResponses(recent)
	resp.Schedule = dto.GroupByDay(slots)
	return resp, nil
}

func (s *dashboardServiceImpl) student(ctx context.Context, scope *models.Scope) (*dto.StudentDashboardResponse, error) {
	resp := &dto.StudentDashboardResponse{
		Grades:      []dto.GradeResponse{},
		SchoolTop:   []dto.StudentRankResponse{},
		DailySeries: []dto.DayPointResponse{},
	}
	if scope.StudentID == nil {
		return resp, nil
	}
	student, err := s.studentRepo.GetByID(ctx, *scope.StudentID)
	if err != nil {
		return nil, err
	}
	own := models.FactFilter{StudentIDs: []int64{student.ID}}

	var (
		classFacts  []models.GradeFact
		schoolFacts []models.GradeFact
		att         []models.AttendanceFact
		grades      []models.Grade
		classSize   int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		classFacts, err = s.statsRepo.GradeFacts(gctx, models.FactFilter{ClassIDs: []int64{student.ClassID}})
		return err
	})
	g.Go(func() (err error) {
		schoolFacts, err = s.statsRepo.GradeFacts(gctx, models.FactFilter{})
		return err
	})
	g.Go(func() (err error) {
		att, err = s.statsRepo.AttendanceFacts(gctx, own)
		return err
	})
	g.Go(func() (err error) {
		grades, err = s.statsRepo.RecentGrades(gctx, own, StudentGradesShown)
		return err
	})
	g.Go(func() (err error) {
		classSize, err = s.studentRepo.Count(gctx, []int64{student.ClassID})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mine := aggregation.Filter(classFacts, aggregation.GradeFilter{StudentID: student.ID})
	pos := aggregation.ClassPosition(classFacts, student.ID, student.ClassID)

	resp.StudentID = student.ID
	resp.StudentName = student.FullName()
	resp.ClassName = student.ClassName
	resp.Grades = dto.ToGradeResponses(grades)
	resp.Average = aggregation.Float(aggregation.Average(mine))
	resp.Position = pos.Position
	resp.ClassSize = int(classSize)
	resp.SchoolTop = dto.ToStudentRanks(aggregation.RankStudents(schoolFacts, StudentSchoolTop, aggregation.Top))
	resp.DailySeries = dto.ToDayPoints(aggregation.DailySeries(mine))
	resp.AbsenceCount = aggregation.CountStatus(att, models.AttendanceAbsent)
	return resp, nil
}
