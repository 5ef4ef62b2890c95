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

// GradeRepository handles database operations for grades
type GradeRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewGradeRepository creates a new GradeRepository
func NewGradeRepository(pool *pgxpool.Pool) *GradeRepository {
	return &GradeRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ IGradeRepository = (*GradeRepository)(nil)

func selectGrades(sb squirrel.StatementBuilderType) squirrel.SelectBuilder {
	return sb.Select(
		"g.id", "g.student_id", "g.subject_id", "g.value", "g.type", "g.graded_at", "g.comment",
		"s.class_id", "s.first_name || ' ' || s.last_name", "c.name", "sub.name",
	).
		From("grades g").
		Join("students s ON s.id = g.student_id").
		Join("classes c ON c.id = s.class_id").
		Join("subjects sub ON sub.id = g.subject_id")
}

func scanGrade(row pgx.Row) (*models.Grade, error) {
	var g models.Grade
	err := row.Scan(&g.ID, &g.StudentID, &g.SubjectID, &g.Value, &g.Type, &g.GradedAt, &g.Comment,
		&g.ClassID, &g.StudentName, &g.ClassName, &g.SubjectName)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func queryGrades(ctx context.Context, q db.Querier, b squirrel.SelectBuilder) ([]models.Grade, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build grades query: %w", err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing grades: %w", err)
	}
	defer rows.Close()

	grades := []models.Grade{}
	for rows.Next() {
		g, err := scanGrade(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning grade: %w", err)
		}
		grades = append(grades, *g)
	}
	return grades, rows.Err()
}

// List returns one page of grades in scope, newest first, with the total count
func (r *GradeRepository) List(ctx context.Context, q GradeQuery) ([]models.Grade, int64, error) {
	if q.Scope.MatchesNothing() {
		return []models.Grade{}, 0, nil
	}

	total, err := r.Count(ctx, q.Scope)
	if err != nil {
		return nil, 0, err
	}

	b := applyFactFilter(selectGrades(r.sb), q.Scope, gradeColumns).
		OrderBy("g.graded_at DESC", "g.id DESC").
		Offset(q.Offset)
	if q.Limit > 0 {
		b = b.Limit(q.Limit)
	}
	grades, err := queryGrades(ctx, r.db, b)
	if err != nil {
		return nil, 0, err
	}
	return grades, total, nil
}

// Count counts grades in scope
func (r *GradeRepository) Count(ctx context.Context, f models.FactFilter) (int64, error) {
	if f.MatchesNothing() {
		return 0, nil
	}
	b := applyFactFilter(r.sb.Select("COUNT(*)").From("grades g").Join("students s ON s.id = g.student_id"), f, gradeColumns)
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count grades query: %w", err)
	}
	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting grades: %w", err)
	}
	return n, nil
}

// GetByID retrieves a grade with display names
func (r *GradeRepository) GetByID(ctx context.Context, id int64) (*models.Grade, error) {
	query, args, err := selectGrades(r.sb).Where(squirrel.Eq{"g.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build grade query: %w", err)
	}
	g, err := scanGrade(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, dberrors.Translate(err, "grade")
	}
	return g, nil
}

// Create inserts a grade; a zero GradedAt takes the database time
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	cols := []string{"student_id", "subject_id", "value", "type", "comment"}
	vals := []interface{}{grade.StudentID, grade.SubjectID, grade.Value, grade.Type, grade.Comment}
	if !grade.GradedAt.IsZero() {
		cols = append(cols, "graded_at")
		vals = append(vals, grade.GradedAt)
	}
	query, args, err := r.sb.Insert("grades").Columns(cols...).Values(vals...).
		Suffix("RETURNING id, graded_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create grade query: %w", err)
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&grade.ID, &grade.GradedAt); err != nil {
		return dberrors.Translate(err, "grade")
	}
	return nil
}

// Update changes the value, type and comment of a grade
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	query, args, err := r.sb.Update("grades").
		Set("value", grade.Value).
		Set("type", grade.Type).
		Set("comment", grade.Comment).
		Where(squirrel.Eq{"id": grade.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update grade query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return dberrors.Translate(err, "grade")
	}
	if tag.RowsAffected() == 0 {
		return dberrors.Translate(pgx.ErrNoRows, "grade")
	}
	return nil
}

// Delete deletes a grade
func (r *GradeRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM grades WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting grade: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dberrors.Translate(pgx.ErrNoRows, "grade")
	}
	return nil
}
