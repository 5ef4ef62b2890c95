package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/db"
	"github.com/yigit/gradebook/internal/pkg/dberrors"
	"github.com/yigit/gradebook/internal/pkg/helpers"
)

// LessonRepository handles database operations for lessons
type LessonRepository struct {
	db db.Querier
	tx db.TxBeginner
	sb squirrel.StatementBuilderType
}

// NewLessonRepository creates a new LessonRepository
func NewLessonRepository(pool *pgxpool.Pool) *LessonRepository {
	return &LessonRepository{
		db: pool,
		tx: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ ILessonRepository = (*LessonRepository)(nil)

const (
	lessonGradeCount = `(SELECT COUNT(*) FROM grades g JOIN students s ON s.id = g.student_id
		WHERE s.class_id = l.class_id AND g.subject_id = l.subject_id AND g.graded_at::date = l.lesson_date)`
	lessonAttendanceCount = `(SELECT COUNT(*) FROM attendances a JOIN students s ON s.id = a.student_id
		WHERE s.class_id = l.class_id AND a.subject_id = l.subject_id AND a.date = l.lesson_date)`
)

func (r *LessonRepository) selectLessons(withCounts bool) squirrel.SelectBuilder {
	cols := []string{"l.id", "l.class_id", "l.subject_id", "l.teacher_id", "l.lesson_date", "l.topic", "l.created_at", "c.name", "sub.name"}
	if withCounts {
		cols = append(cols, lessonGradeCount, lessonAttendanceCount)
	}
	return r.sb.Select(cols...).
		From("lessons l").
		Join("classes c ON c.id = l.class_id").
		Join("subjects sub ON sub.id = l.subject_id")
}

func lessonDest(l *models.Lesson) []interface{} {
	return []interface{}{&l.ID, &l.ClassID, &l.SubjectID, &l.TeacherID, &l.LessonDate, &l.Topic, &l.CreatedAt, &l.ClassName, &l.SubjectName}
}

func (r *LessonRepository) summaries(ctx context.Context, b squirrel.SelectBuilder) ([]models.LessonSummary, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build lessons query: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing lessons: %w", err)
	}
	defer rows.Close()

	out := []models.LessonSummary{}
	for rows.Next() {
		var ls models.LessonSummary
		dest := append(lessonDest(&ls.Lesson), &ls.GradeCount, &ls.AttendanceCount)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning lesson: %w", err)
		}
		out = append(out, ls)
	}
	return out, rows.Err()
}

// Find retrieves the lesson a teacher recorded for a class and subject on a day
func (r *LessonRepository) Find(ctx context.Context, teacherID, classID, subjectID int64, day time.Time) (*models.Lesson, error) {
	query, args, err := r.selectLessons(false).
		Where(squirrel.Eq{"l.teacher_id": teacherID, "l.class_id": classID, "l.subject_id": subjectID}).
		Where("l.lesson_date = ?::date", day).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build lesson query: %w", err)
	}
	var l models.Lesson
	if err := r.db.QueryRow(ctx, query, args...).Scan(lessonDest(&l)...); err != nil {
		return nil, dberrors.Translate(err, "lesson")
	}
	return &l, nil
}

// ListOnDate returns the lessons a teacher recorded on a day
func (r *LessonRepository) ListOnDate(ctx context.Context, teacherID int64, day time.Time) ([]models.LessonSummary, error) {
	return r.summaries(ctx, r.selectLessons(true).
		Where(squirrel.Eq{"l.teacher_id": teacherID}).
		Where("l.lesson_date = ?::date", day).
		OrderBy("l.created_at", "l.id"))
}

// History returns a teacher's lessons, newest first
func (r *LessonRepository) History(ctx context.Context, teacherID int64, limit uint64) ([]models.LessonSummary, error) {
	return r.summaries(ctx, r.selectLessons(true).
		Where(squirrel.Eq{"l.teacher_id": teacherID}).
		OrderBy("l.lesson_date DESC", "l.id DESC").
		Limit(limit))
}

// DayGrades returns the grades given to a class in a subject on a day
func (r *LessonRepository) DayGrades(ctx context.Context, classID, subjectID int64, day time.Time) ([]models.Grade, error) {
	return queryGrades(ctx, r.db, dayGradesQuery(r.sb, classID, subjectID, day))
}

// dayGradesQuery bounds graded_at by day's midnights in day's own location
func dayGradesQuery(sb squirrel.StatementBuilderType, classID, subjectID int64, day time.Time) squirrel.SelectBuilder {
	return selectGrades(sb).
		Where(squirrel.Eq{"s.class_id": classID, "g.subject_id": subjectID}).
		Where(squirrel.GtOrEq{"g.graded_at": helpers.StartOfDay(day)}).
		Where(squirrel.LtOrEq{"g.graded_at": helpers.EndOfDay(day)}).
		OrderBy("g.id")
}

// DayAttendance returns the attendance rows of a class in a subject on a day
func (r *LessonRepository) DayAttendance(ctx context.Context, classID, subjectID int64, day time.Time) ([]models.Attendance, error) {
	return queryAttendance(ctx, r.db, selectAttendance(r.sb).
		Where(squirrel.Eq{"s.class_id": classID, "a.subject_id": subjectID}).
		Where("a.date = ?::date", day).
		OrderBy("a.id"))
}

// Save upserts the lesson and inserts its attendance and grades in one transaction.
// Attendance rows that already exist for the day are skipped, not overwritten.
func (r *LessonRepository) Save(ctx context.Context, rec *models.LessonRecord) (*models.LessonRecordResult, error) {
	res := &models.LessonRecordResult{}
	err := db.RunInTx(ctx, r.tx, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO lessons (class_id, subject_id, teacher_id, lesson_date, topic)
			VALUES ($1, $2, $3, $4::date, $5)
			ON CONFLICT (teacher_id, class_id, subject_id, lesson_date) DO UPDATE SET topic = EXCLUDED.topic
			RETURNING id, (xmax = 0)`,
			rec.ClassID, rec.SubjectID, rec.TeacherID, rec.Date, rec.Topic,
		).Scan(&res.LessonID, &res.Created)
		if err != nil {
			return dberrors.Translate(err, "lesson")
		}

		for _, a := range rec.Attendance {
			tag, err := tx.Exec(ctx, `
				INSERT INTO attendances (student_id, subject_id, date, status)
				VALUES ($1, $2, $3::date, $4)
				ON CONFLICT (student_id, subject_id, date) DO NOTHING`,
				a.StudentID, rec.SubjectID, rec.Date, a.Status)
			if err != nil {
				return dberrors.Translate(err, "attendance")
			}
			if tag.RowsAffected() == 0 {
				res.AttendanceSkipped++
			} else {
				res.AttendanceSaved++
			}
		}

		for _, g := range rec.Grades {
			_, err := tx.Exec(ctx, `
				INSERT INTO grades (student_id, subject_id, value, type, graded_at)
				VALUES ($1, $2, $3, $4, $5)`,
				g.StudentID, rec.SubjectID, g.Value, g.Type, g.GradedAt)
			if err != nil {
				return dberrors.Translate(err, "grade")
			}
			res.GradesSaved++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
