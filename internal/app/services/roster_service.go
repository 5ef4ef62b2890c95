package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/gradebook/internal/app/aggregation"
	appauth "github.com/yigit/gradebook/internal/app/auth"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/repositories"
	"github.com/yigit/gradebook/internal/pkg/cache"
)

// RosterService manages classes, subjects, teachers, students and their assignments.
// Reads are open to every authenticated user; writes need an administrator.
type RosterService interface {
	ListClasses(ctx context.Context) ([]models.Class, error)
	GetClass(ctx context.Context, id int64) (*models.Class, error)
	CreateClass(ctx context.Context, scope *models.Scope, req *dto.ClassRequest) (*models.Class, error)
	UpdateClass(ctx context.Context, scope *models.Scope, id int64, req *dto.ClassRequest) (*models.Class, error)
	DeleteClass(ctx context.Context, scope *models.Scope, id int64) error

	ListSubjects(ctx context.Context) ([]models.Subject, error)
	GetSubject(ctx context.Context, id int64) (*models.Subject, error)
	CreateSubject(ctx context.Context, scope *models.Scope, req *dto.SubjectRequest) (*models.Subject, error)
	UpdateSubject(ctx context.Context, scope *models.Scope, id int64, req *dto.SubjectRequest) (*models.Subject, error)
	DeleteSubject(ctx context.Context, scope *models.Scope, id int64) error

	ListTeachers(ctx context.Context) ([]models.Teacher, error)
	GetTeacher(ctx context.Context, id int64) (*models.Teacher, error)
	CreateTeacher(ctx context.Context, scope *models.Scope, req *dto.TeacherRequest) (*models.Teacher, error)
	UpdateTeacher(ctx context.Context, scope *models.Scope, id int64, req *dto.TeacherRequest) (*models.Teacher, error)
	DeleteTeacher(ctx context.Context, scope *models.Scope, id int64) error

	ListStudents(ctx context.Context, req *dto.StudentFilterRequest) ([]models.Student, error)
	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	CreateStudent(ctx context.Context, scope *models.Scope, req *dto.StudentRequest) (*models.Student, error)
	UpdateStudent(ctx context.Context, scope *models.Scope, id int64, req *dto.StudentRequest) (*models.Student, error)
	DeleteStudent(ctx context.Context, scope *models.Scope, id int64) error

	ListClassSubjects(ctx context.Context) ([]models.ClassSubject, error)
	GetClassSubject(ctx context.Context, id int64) (*models.ClassSubject, error)
	CreateClassSubject(ctx context.Context, scope *models.Scope, req *dto.ClassSubjectRequest) (*models.ClassSubject, error)
	UpdateClassSubject(ctx context.Context, scope *models.Scope, id int64, req *dto.ClassSubjectRequest) (*models.ClassSubject, error)
	DeleteClassSubject(ctx context.Context, scope *models.Scope, id int64) error
}

type rosterServiceImpl struct {
	classRepo        repositories.IClassRepository
	subjectRepo      repositories.ISubjectRepository
	teacherRepo      repositories.ITeacherRepository
	studentRepo      repositories.IStudentRepository
	classSubjectRepo repositories.IClassSubjectRepository
	cache            cache.Cache
	logger           zerolog.Logger
}

// NewRosterService creates a new RosterService
func NewRosterService(
	classRepo repositories.IClassRepository,
	subjectRepo repositories.ISubjectRepository,
	teacherRepo repositories.ITeacherRepository,
	studentRepo repositories.IStudentRepository,
	classSubjectRepo repositories.IClassSubjectRepository,
	c cache.Cache,
	logger zerolog.Logger,
) RosterService {
	if c == nil {
		c = cache.Noop{}
	}
	return &rosterServiceImpl{
		classRepo:        classRepo,
		subjectRepo:      subjectRepo,
		teacherRepo:      teacherRepo,
		studentRepo:      studentRepo,
		classSubjectRepo: classSubjectRepo,
		cache:            c,
		logger:           logger,
	}
}

func requireManage(scope *models.Scope) error {
	return appauth.Require(appauth.CanManage(scope), "only administrators can change the roster")
}

// changed logs a roster write and drops cached statistics
func (s *rosterServiceImpl) changed(ctx context.Context, action, entity string, id int64) {
	s.logger.Info().Str("action", action).Str("entity", entity).Int64("id", id).Msg("Roster changed")
	invalidateStats(ctx, s.cache, s.logger)
}

// Classes

func (s *rosterServiceImpl) ListClasses(ctx context.Context) ([]models.Class, error) {
	classes, err := s.classRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	aggregation.SortClasses(classes)
	return classes, nil
}

func (s *rosterServiceImpl) GetClass(ctx context.Context, id int64) (*models.Class, error) {
	return s.classRepo.GetByID(ctx, id)
}

func (s *rosterServiceImpl) CreateClass(ctx context.Context, scope *models.Scope, req *dto.ClassRequest) (*models.Class, error) {
	if err := requireManage(scope); err != nil {
		return nil, err
	}
	class := &models.Class{Name: strings.TrimSpace(req.Name)}
	if err := s.classRepo.Create(ctx, class); err != nil {
		return nil, err
	}
	s.changed(ctx, "create", "class", class.ID)
	return class, nil
}

func (s *rosterServiceImpl) UpdateClass(ctx context.Context, scope *models.Scope, id int64, req *dto.ClassRequest) (*models.Class, error) {
	if err := requireManage(scope); err != nil {
		return nil, err
	}
	class := &models.Class{ID: id, Name: strings.TrimSpace(req.Name)}
	if err := s.classRepo.Update(ctx, class); err != nil {
		return nil, err
	}
	s.changed(ctx, "update", "class", id)
	return class, nil
}

// DeleteClass removes a class together with its students and their records
func (s *rosterServiceImpl) DeleteClass(ctx context.Context, scope *models.Scope, id int64) error {
	if err := requireManage(scope); err != nil {
		return err
	}
	if err := s.classRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "delete", "class", id)
	return nil
}

// Subjects

func (s *rosterServiceImpl) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	return s.subjectRepo.List(ctx)
}

func (s *rosterServiceImpl) GetSubject(ctx context.Context, id int64) (*models.Subject, error) {
	return s.subjectRepo.GetByID(ctx, id)
}

func subjectFromRequest(id int64, req *dto.SubjectRequest) *models.Subject {
	sub := &models.Subject{ID: id, Name: strings.TrimSpace(req.Name)}
	if req.ShortName != nil {
		if short := strings.TrimSpace(*req.ShortName); short != "" {
			sub.ShortName = &short
		}
	}
	return sub
}

func (s *rosterServiceImpl) CreateSubject(ctx context.Context, scope *models.Scope, req *dto.SubjectRequest) (*models.Subject, error) {
	if err := requireManage(scope); err != nil {
		return nil, err
	}
	sub := subjectFromRequest(0, req)
	if err := s.subjectRepo.Create(ctx, sub); err != nil {
		return nil, err
	}
	s.changed(ctx, "create", "subject", sub.ID)
	return sub, nil
}

func (s *rosterServiceImpl) UpdateSubject(ctx context.Context, scope *models.Scope, id int64, req *dto.SubjectRequest) (*models.Subject, error) {
	if err := requireManage(scope); err != nil {
		return nil, err
	}
	sub := subjectFromRequest(id, req)
	if err := s.subjectRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	s.changed(ctx, "update", "subject", id)
	return sub, nil
}

func (s *rosterServiceImpl) DeleteSubject(ctx context.Context, scope *models.Scope, id int64) error {
	if err := requireManage(scope); err != nil {
		return err
	}
	if err := s.subjectRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "delete", "subject", id)
	return nil
}

// Teachers

func (s *rosterServiceImpl) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	return s.teacherRepo.List(ctx)
}

func (s *rosterServiceImpl) GetTeacher(ctx context.Context, id int64) (*models.Teacher, error) {
	return s.teacherRepo.GetByID(ctx, id)
}

func (s *rosterServiceImpl) CreateTeacher(ctx context.Context, scope *models.Scope, req *dto.TeacherRequest) (*models.Teacher, error) {
	if err := requireManage(scope); err != nil {
		return nil, err
	}
	t := &models.Teacher{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		UserID:    req.UserID,
	}
	if err := s.teacherRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.changed(ctx, "create", "teacher", t.ID)
	return t, nil
}

func (s *rosterServiceImpl) UpdateTeacher(ctx context.Context, scope *models.Scope, id int64, req *dto.TeacherRequest) (*models.Teacher, error) {
	if err := requireManage(scope); err != nil {
		return nil, err
	}
	t := &models.Teacher{
		ID:        id,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		UserID:    req.UserID,
	}
	if err := s.teacherRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.changed(ctx, "update", "teacher", id)
	return t, nil
}

// DeleteTeacher removes a teacher; their class subjects become unassigned
func (s *rosterServiceImpl) DeleteTeacher(ctx context.Context, scope *models.Scope, id int64) error {
	if err := requireManage(scope); err != nil {
		return err
	}
	if err := s.teacherRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "delete", "teacher", id)
	return nil
}

// Students

func (s *rosterServiceImpl) ListStudents(ctx context.Context, req *dto.StudentFilterRequest) ([]models.Student, error) {
	return s.studentRepo.List(ctx, narrowIDs(nil, req.ClassID))
}

func (s *rosterServiceImpl) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

func (s *rosterServiceImpl) CreateStudent(ctx context.Context, scope *models.Scope, req *dto.StudentRequest) (*models.Student, error) {
	if err := requireManage(scope); err != nil {
		return nil, err
	}
	st := &models.Student{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		ClassID:   req.ClassID,
	}
	if err := s.studentRepo.Create(ctx, st); err != nil {
		return nil, err
	}
	s.changed(ctx, "create", "student", st.ID)
	return s.studentRepo.GetByID(ctx, st.ID)
}

func (s *rosterServiceImpl) UpdateStudent(ctx context.Context, scope *models.Scope, id int64, req *dto.StudentRequest) (*models.Student, error) {
	if err := requireManage(scope); err != nil {
		return nil, err
	}
	st := &models.Student{
		ID:        id,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		ClassID:   req.ClassID,
	}
	if err := s.studentRepo.Update(ctx, st); err != nil {
		return nil, err
	}
	s.changed(ctx, "update", "student", id)
	return s.studentRepo.GetByID(ctx, id)
}

func (s *rosterServiceImpl) DeleteStudent(ctx context.Context, scope *models.Scope, id int64) error {
	if err := requireManage(scope); err != nil {
		return err
	}
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "delete", "student", id)
	return nil
}

// Class subjects

func (s *rosterServiceImpl) ListClassSubjects(ctx context.Context) ([]models.ClassSubject, error) {
	return s.classSubjectRepo.List(ctx, nil)
}

func (s *rosterServiceImpl) GetClassSubject(ctx context.Context, id int64) (*models.ClassSubject, error) {
	return s.classSubjectRepo.GetByID(ctx, id)
}

func (s *rosterServiceImpl) CreateClassSubject(ctx context.Context, scope *models.Scope, req *dto.ClassSubjectRequest) (*models.ClassSubject, error) {
	if err := requireManage(scope); err != nil {
		return nil, err
	}
	cs := &models.ClassSubject{ClassID: req.ClassID, SubjectID: req.SubjectID, TeacherID: req.TeacherID}
	if err := s.classSubjectRepo.Create(ctx, cs); err != nil {
		return nil, err
	}
	s.changed(ctx, "create", "class subject", cs.ID)
	return s.classSubjectRepo.GetByID(ctx, cs.ID)
}

func (s *rosterServiceImpl) UpdateClassSubject(ctx context.Context, scope *models.Scope, id int64, req *dto.ClassSubjectRequest) (*models.ClassSubject, error) {
	if err := requireManage(scope); err != nil {
		return nil, err
	}
	cs := &models.ClassSubject{ID: id, ClassID: req.ClassID, SubjectID: req.SubjectID, TeacherID: req.TeacherID}
	if err := s.classSubjectRepo.Update(ctx, cs); err != nil {
		return nil, err
	}
	s.changed(ctx, "update", "class subject", id)
	return s.classSubjectRepo.GetByID(ctx, id)
}

func (s *rosterServiceImpl) DeleteClassSubject(ctx context.Context, scope *models.Scope, id int64) error {
	if err := requireManage(scope); err != nil {
		return err
	}
	if err := s.classSubjectRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, "delete", "class subject", id)
	return nil
}
