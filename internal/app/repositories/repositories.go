package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	ClassRepository        *ClassRepository
	SubjectRepository      *SubjectRepository
	TeacherRepository      *TeacherRepository
	StudentRepository      *StudentRepository
	ClassSubjectRepository *ClassSubjectRepository
	GradeRepository        *GradeRepository
	AttendanceRepository   *AttendanceRepository
	ScheduleRepository     *ScheduleRepository
	LessonRepository       *LessonRepository
	MessageRepository      *MessageRepository
	StatsRepository        *StatsRepository
	SearchRepository       *SearchRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		ClassRepository:        NewClassRepository(db),
		SubjectRepository:      NewSubjectRepository(db),
		TeacherRepository:      NewTeacherRepository(db),
		StudentRepository:      NewStudentRepository(db),
		ClassSubjectRepository: NewClassSubjectRepository(db),
		GradeRepository:        NewGradeRepository(db),
		AttendanceRepository:   NewAttendanceRepository(db),
		ScheduleRepository:     NewScheduleRepository(db),
		LessonRepository:       NewLessonRepository(db),
		MessageRepository:      NewMessageRepository(db),
		StatsRepository:        NewStatsRepository(db),
		SearchRepository:       NewSearchRepository(db),
	}
}
