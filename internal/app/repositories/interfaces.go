package repositories

import (
	"context"
	"time"

	"github.com/yigit/gradebook/internal/app/models"
)

// IUserRepository defines the interface for account storage
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByRole(ctx context.Context, role models.RoleType) (bool, error)
	ListExcept(ctx context.Context, userID int64) ([]models.User, error)
}

// IClassRepository defines the interface for class storage
type IClassRepository interface {
	List(ctx context.Context, ids []int64) ([]models.Class, error)
	GetByID(ctx context.Context, id int64) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id int64) error
}

// ISubjectRepository defines the interface for subject storage
type ISubjectRepository interface {
	List(ctx context.Context) ([]models.Subject, error)
	GetByID(ctx context.Context, id int64) (*models.Subject, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id int64) error
}

// ITeacherRepository defines the interface for teacher storage
type ITeacherRepository interface {
	List(ctx context.Context) ([]models.Teacher, error)
	GetByID(ctx context.Context, id int64) (*models.Teacher, error)
	GetByUserID(ctx context.Context, userID int64) (*models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id int64) error
}

// IStudentRepository defines the interface for student storage
type IStudentRepository interface {
	List(ctx context.Context, classIDs []int64) ([]models.Student, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	Count(ctx context.Context, classIDs []int64) (int64, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
}

// IClassSubjectRepository defines the interface for class-subject assignments
type IClassSubjectRepository interface {
	List(ctx context.Context, teacherID *int64) ([]models.ClassSubject, error)
	GetByID(ctx context.Context, id int64) (*models.ClassSubject, error)
	Find(ctx context.Context, classID, subjectID int64) (*models.ClassSubject, error)
	Create(ctx context.Context, cs *models.ClassSubject) error
	Update(ctx context.Context, cs *models.ClassSubject) error
	Delete(ctx context.Context, id int64) error
}

// GradeQuery selects one page of grades
type GradeQuery struct {
	Scope  models.FactFilter
	Offset uint64
	Limit  uint64
}

// IGradeRepository defines the interface for grade storage
type IGradeRepository interface {
	List(ctx context.Context, q GradeQuery) ([]models.Grade, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context, f models.FactFilter) (int64, error)
}

// AttendanceQuery selects one page of attendance rows
type AttendanceQuery struct {
	Scope  models.FactFilter
	Status models.AttendanceStatus
	Offset uint64
	Limit  uint64
}

// IAttendanceRepository defines the interface for attendance storage
type IAttendanceRepository interface {
	List(ctx context.Context, q AttendanceQuery) ([]models.Attendance, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Attendance, error)
	Create(ctx context.Context, a *models.Attendance) error
	UpdateStatus(ctx context.Context, id int64, status models.AttendanceStatus) error
	Delete(ctx context.Context, id int64) error
}

// ScheduleQuery selects timetable slots; nil fields are unrestricted
type ScheduleQuery struct {
	ClassIDs []int64
	Pairs    []models.ClassSubjectPair
	Day      string
}

// IScheduleRepository defines the interface for timetable storage
type IScheduleRepository interface {
	List(ctx context.Context, q ScheduleQuery) ([]models.ScheduleSlot, error)
	GetByID(ctx context.Context, id int64) (*models.ScheduleSlot, error)
	Create(ctx context.Context, slot *models.ScheduleSlot) error
	Update(ctx context.Context, slot *models.ScheduleSlot) error
	Delete(ctx context.Context, id int64) error
	TeacherSlots(ctx context.Context) ([]models.TeacherSlot, error)
}

// ILessonRepository defines the interface for lesson storage
type ILessonRepository interface {
	Find(ctx context.Context, teacherID, classID, subjectID int64, day time.Time) (*models.Lesson, error)
	ListOnDate(ctx context.Context, teacherID int64, day time.Time) ([]models.LessonSummary, error)
	History(ctx context.Context, teacherID int64, limit uint64) ([]models.LessonSummary, error)
	DayGrades(ctx context.Context, classID, subjectID int64, day time.Time) ([]models.Grade, error)
	DayAttendance(ctx context.Context, classID, subjectID int64, day time.Time) ([]models.Attendance, error)
	Save(ctx context.Context, rec *models.LessonRecord) (*models.LessonRecordResult, error)
}

// IMessageRepository defines the interface for message storage
type IMessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	Contacts(ctx context.Context, userID int64) ([]models.Contact, error)
	Conversation(ctx context.Context, userID, otherID int64) ([]models.Message, error)
	MarkRead(ctx context.Context, userID, otherID int64) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

// IStatsRepository loads denormalised facts for aggregation
type IStatsRepository interface {
	GradeFacts(ctx context.Context, f models.FactFilter) ([]models.GradeFact, error)
	AttendanceFacts(ctx context.Context, f models.FactFilter) ([]models.AttendanceFact, error)
	RecentGrades(ctx context.Context, f models.FactFilter, limit uint64) ([]models.Grade, error)
}

// ISearchRepository finds entities by free text
type ISearchRepository interface {
	Students(ctx context.Context, q string, classIDs []int64, limit uint64) ([]models.Student, error)
	Teachers(ctx context.Context, q string, limit uint64) ([]models.Teacher, error)
	Subjects(ctx context.Context, q string, limit uint64) ([]models.Subject, error)
}
