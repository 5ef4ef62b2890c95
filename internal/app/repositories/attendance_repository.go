package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/db"
	"github.com/yigit/gradebook/internal/pkg/dberrors"
)

// AttendanceRepository handles database operations for attendance rows
type AttendanceRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewAttendanceRepository creates a new AttendanceRepository
func NewAttendanceRepository(pool *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ IAttendanceRepository = (*AttendanceRepository)(nil)

func selectAttendance(sb squirrel.StatementBuilderType) squirrel.SelectBuilder {
	return sb.Select(
		"a.id", "a.student_id", "a.subject_id", "a.date", "a.status",
		"s.class_id", "s.first_name || ' ' || s.last_name", "c.name", "sub.name",
	).
		From("attendances a").
		Join("students s ON s.id = a.student_id").
		Join("classes c ON c.id = s.class_id").
		Join("subjects sub ON sub.id = a.subject_id")
}

func scanAttendance(row pgx.Row) (*models.Attendance, error) {
	var a models.Attendance
	err := row.Scan(&a.ID, &a.StudentID, &a.SubjectID, &a.Date, &a.Status,
		&a.ClassID, &a.StudentName, &a.ClassName, &a.SubjectName)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func queryAttendance(ctx context.Context, q db.Querier, b squirrel.SelectBuilder) ([]models.Attendance, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build attendance query: %w", err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing attendance: %w", err)
	}
	defer rows.Close()

	out := []models.Attendance{}
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning attendance: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// List returns one page of attendance rows in scope, newest first, with the total count
func (r *AttendanceRepository) List(ctx context.Context, q AttendanceQuery) ([]models.Attendance, int64, error) {
	if q.Scope.MatchesNothing() {
		return []models.Attendance{}, 0, nil
	}

	countQ := applyFactFilter(r.sb.Select("COUNT(*)").From("attendances a").Join("students s ON s.id = a.student_id"), q.Scope, attendanceColumns)
	listQ := applyFactFilter(selectAttendance(r.sb), q.Scope, attendanceColumns)
	if q.Status != "" {
		countQ = countQ.Where(squirrel.Eq{"a.status": q.Status})
		listQ = listQ.Where(squirrel.Eq{"a.status": q.Status})
	}

	query, args, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count attendance query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting attendance: %w", err)
	}

	listQ = listQ.OrderBy("a.date DESC", "a.id DESC").Offset(q.Offset)
	if q.Limit > 0 {
		listQ = listQ.Limit(q.Limit)
	}
	rows, err := queryAttendance(ctx, r.db, listQ)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// GetByID retrieves an attendance row with display names
func (r *AttendanceRepository) GetByID(ctx context.Context, id int64) (*models.Attendance, error) {
	query, args, err := selectAttendance(r.sb).Where(squirrel.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build attendance query: %w", err)
	}
	a, err := scanAttendance(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, dberrors.Translate(err, "attendance")
	}
	return a, nil
}

// Create inserts an attendance row. A second row for the same student, subject and day is a conflict.
func (r *AttendanceRepository) Create(ctx context.Context, a *models.Attendance) error {
	query, args, err := r.sb.Insert("attendances").
		Columns("student_id", "subject_id", "date", "status").
		Values(a.StudentID, a.SubjectID, a.Date, a.Status).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create attendance query: %w", err)
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&a.ID); err != nil {
		return dberrors.Translate(err, "attendance")
	}
	return nil
}

// UpdateStatus changes the status of an attendance row
func (r *AttendanceRepository) UpdateStatus(ctx context.Context, id int64, status models.AttendanceStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE attendances SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return dberrors.Translate(err, "attendance")
	}
	if tag.RowsAffected() == 0 {
		return dberrors.Translate(pgx.ErrNoRows, "attendance")
	}
	return nil
}

// Delete deletes an attendance row
func (r *AttendanceRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM attendances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dberrors.Translate(pgx.ErrNoRows, "attendance")
	}
	return nil
}
