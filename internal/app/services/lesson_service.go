package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	appauth "github.com/yigit/gradebook/internal/app/auth"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/repositories"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/cache"
	"github.com/yigit/gradebook/internal/pkg/helpers"
	"github.com/yigit/gradebook/internal/pkg/validation"
)

// DefaultHistoryLimit is the number of past lessons returned without an explicit limit
const DefaultHistoryLimit = 50

// LessonService runs a teacher's lessons of the current day
type LessonService interface {
	Today(ctx context.Context, scope *models.Scope) (*dto.TodayLessonsResponse, error)
	Start(ctx context.Context, scope *models.Scope, req *dto.LessonTargetRequest) (*dto.LessonStartResponse, error)
	Save(ctx context.Context, scope *models.Scope, req *dto.SaveLessonRequest) (*dto.SaveLessonResponse, error)
	History(ctx context.Context, scope *models.Scope, req *dto.LessonHistoryRequest) ([]dto.LessonResponse, error)
}

type lessonServiceImpl struct {
	lessonRepo   repositories.ILessonRepository
	scheduleRepo repositories.IScheduleRepository
	classRepo    repositories.IClassRepository
	subjectRepo  repositories.ISubjectRepository
	studentRepo  repositories.IStudentRepository
	cache        cache.Cache
	logger       zerolog.Logger
}

// NewLessonService creates a new LessonService
func NewLessonService(
	lessonRepo repositories.ILessonRepository,
	scheduleRepo repositories.IScheduleRepository,
	classRepo repositories.IClassRepository,
	subjectRepo repositories.ISubjectRepository,
	studentRepo repositories.IStudentRepository,
	c cache.Cache,
	logger zerolog.Logger,
) LessonService {
	if c == nil {
		c = cache.Noop{}
	}
	return &lessonServiceImpl{
		lessonRepo:   lessonRepo,
		scheduleRepo: scheduleRepo,
		classRepo:    classRepo,
		subjectRepo:  subjectRepo,
		studentRepo:  studentRepo,
		cache:        c,
		logger:       logger,
	}
}

func teacherID(scope *models.Scope) (int64, error) {
	if !scope.IsTeacher() || scope.TeacherID == nil {
		return 0, apperrors.NewForbiddenError("only teachers can conduct lessons")
	}
	return *scope.TeacherID, nil
}

func requireTeaches(scope *models.Scope, classID, subjectID int64) (int64, error) {
	id, err := teacherID(scope)
	if err != nil {
		return 0, err
	}
	if err := appauth.Require(scope.Teaches(classID, subjectID),
		"you do not teach subject %d in class %d", subjectID, classID); err != nil {
		return 0, err
	}
	return id, nil
}

// Today lists the teacher's timetable slots for the current weekday and the lessons already recorded
func (s *lessonServiceImpl) Today(ctx context.Context, scope *models.Scope) (*dto.TodayLessonsResponse, error) {
	tid, err := teacherID(scope)
	if err != nil {
		return nil, err
	}
	now := timeNow()
	day := helpers.StartOfDay(now)

	pairs := scope.Pairs
	if pairs == nil {
		pairs = []models.ClassSubjectPair{}
	}
	slots, err := s.scheduleRepo.List(ctx, repositories.ScheduleQuery{Pairs: pairs, Day: helpers.WeekdayName(now)})
	if err != nil {
		return nil, err
	}
	lessons, err := s.lessonRepo.ListOnDate(ctx, tid, day)
	if err != nil {
		return nil, err
	}

	recorded := make(map[models.ClassSubjectPair]int64, len(lessons))
	resp := &dto.TodayLessonsResponse{
		Date:    day.Format(helpers.DateLayout),
		Day:     helpers.WeekdayName(now),
		Slots:   make([]dto.TodaySlotResponse, 0, len(slots)),
		Lessons: make([]dto.LessonResponse, 0, len(lessons)),
	}
	for i := range lessons {
		l := &lessons[i]
		recorded[models.ClassSubjectPair{ClassID: l.ClassID, SubjectID: l.SubjectID}] = l.ID
		resp.Lessons = append(resp.Lessons, dto.ToLessonResponse(&l.Lesson, l.GradeCount, l.AttendanceCount))
	}
	for _, slot := range slots {
		ts := dto.TodaySlotResponse{ScheduleSlot: slot}
		if id, ok := recorded[models.ClassSubjectPair{ClassID: slot.ClassID, SubjectID: slot.SubjectID}]; ok {
			id := id
			ts.LessonID = &id
		}
		resp.Slots = append(resp.Slots, ts)
	}
	return resp, nil
}

// Start returns the class roster with today's attendance and grades for the subject
func (s *lessonServiceImpl) Start(ctx context.Context, scope *models.Scope, req *dto.LessonTargetRequest) (*dto.LessonStartResponse, error) {
	tid, err := requireTeaches(scope, req.ClassID, req.SubjectID)
	if err != nil {
		return nil, err
	}
	day := helpers.StartOfDay(timeNow())

	class, err := s.classRepo.GetByID(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}
	subject, err := s.subjectRepo.GetByID(ctx, req.SubjectID)
	if err != nil {
		return nil, err
	}
	students, err := s.studentRepo.List(ctx, []int64{req.ClassID})
	if err != nil {
		return nil, err
	}
	grades, err := s.lessonRepo.DayGrades(ctx, req.ClassID, req.SubjectID, day)
	if err != nil {
		return nil, err
	}
	attendance, err := s.lessonRepo.DayAttendance(ctx, req.ClassID, req.SubjectID, day)
	if err != nil {
		return nil, err
	}

	resp := &dto.LessonStartResponse{
		ClassID:     class.ID,
		ClassName:   class.Name,
		SubjectID:   subject.ID,
		SubjectName: subject.Name,
		Date:        day.Format(helpers.DateLayout),
		Students:    make([]dto.LessonStudentResponse, 0, len(students)),
	}

	lesson, err := s.lessonRepo.Find(ctx, tid, req.ClassID, req.SubjectID, day)
	switch {
	case err == nil:
		lr := dto.ToLessonResponse(lesson, len(grades), len(attendance))
		resp.Lesson = &lr
	case !apperrors.Is(err, apperrors.ErrResourceNotFound):
		return nil, err
	}

	status := make(map[int64]string, len(attendance))
	for _, a := range attendance {
		status[a.StudentID] = string(a.Status)
	}
	values := make(map[int64][]float64)
	for _, g := range grades {
		values[g.StudentID] = append(values[g.StudentID], g.Value.Round(2).InexactFloat64())
	}
	for i := range students {
		st := &students[i]
		row := dto.LessonStudentResponse{StudentID: st.ID, Name: st.FullName(), Grades: values[st.ID]}
		if row.Grades == nil {
			row.Grades = []float64{}
		}
		if v, ok := status[st.ID]; ok {
			v := v
			row.Status = &v
		}
		resp.Students = append(resp.Students, row)
	}
	return resp, nil
}

// Save records today's lesson. Only absences and lates are stored; zero grades are ignored.
func (s *lessonServiceImpl) Save(ctx context.Context, scope *models.Scope, req *dto.SaveLessonRequest) (*dto.SaveLessonResponse, error) {
	tid, err := requireTeaches(scope, req.ClassID, req.SubjectID)
	if err != nil {
		return nil, err
	}

	roster, err := s.studentRepo.List(ctx, []int64{req.ClassID})
	if err != nil {
		return nil, err
	}
	inClass := make(map[int64]bool, len(roster))
	for _, st := range roster {
		inClass[st.ID] = true
	}

	now := timeNow()
	rec := &models.LessonRecord{
		TeacherID: tid,
		ClassID:   req.ClassID,
		SubjectID: req.SubjectID,
		Date:      helpers.StartOfDay(now),
		Topic:     strings.TrimSpace(req.Topic),
	}
	for _, a := range req.Attendance {
		if !inClass[a.StudentID] {
			return nil, apperrors.NewValidationError("student %d is not in class %d", a.StudentID, req.ClassID)
		}
		if a.Status != models.AttendanceAbsent && a.Status != models.AttendanceLate {
			return nil, apperrors.NewValidationError("lesson attendance must be Absent or Late, got %q", a.Status)
		}
		rec.Attendance = append(rec.Attendance, models.Attendance{StudentID: a.StudentID, Status: a.Status})
	}
	for _, g := range req.Grades {
		if !g.Value.IsPositive() {
			continue
		}
		if !inClass[g.StudentID] {
			return nil, apperrors.NewValidationError("student %d is not in class %d", g.StudentID, req.ClassID)
		}
		if !validation.ValidGrade(g.Value) {
			return nil, apperrors.NewValidationError("grade %s for student %d is outside the 2-6 scale", g.Value, g.StudentID)
		}
		rec.Grades = append(rec.Grades, models.Grade{StudentID: g.StudentID, Value: g.Value, Type: gradeType(g.Type), GradedAt: now})
	}

	res, err := s.lessonRepo.Save(ctx, rec)
	if err != nil {
		return nil, err
	}
	invalidateStats(ctx, s.cache, s.logger)

	s.logger.Info().
		Int64("lessonID", res.LessonID).
		Int64("teacherID", tid).
		Int("attendanceSaved", res.AttendanceSaved).
		Int("attendanceSkipped", res.AttendanceSkipped).
		Int("gradesSaved", res.GradesSaved).
		Msg("Lesson saved")

	return &dto.SaveLessonResponse{
		LessonID:          res.LessonID,
		Created:           res.Created,
		AttendanceSaved:   res.AttendanceSaved,
		AttendanceSkipped: res.AttendanceSkipped,
		GradesSaved:       res.GradesSaved,
	}, nil
}

// History returns the teacher's recorded lessons, newest first
func (s *lessonServiceImpl) History(ctx context.Context, scope *models.Scope, req *dto.LessonHistoryRequest) ([]dto.LessonResponse, error) {
	tid, err := teacherID(scope)
	if err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	lessons, err := s.lessonRepo.History(ctx, tid, uint64(limit))
	if err != nil {
		return nil, err
	}
	out := make([]dto.LessonResponse, 0, len(lessons))
	for i := range lessons {
		out = append(out, dto.ToLessonResponse(&lessons[i].Lesson, lessons[i].GradeCount, lessons[i].AttendanceCount))
	}
	return out, nil
}
