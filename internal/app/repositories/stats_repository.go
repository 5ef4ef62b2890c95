package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/db"
)

// StatsRepository loads the fact rows statistics are computed from
type StatsRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ IStatsRepository = (*StatsRepository)(nil)

// GradeFacts returns every grade matching f with the names aggregation needs
func (r *StatsRepository) GradeFacts(ctx context.Context, f models.FactFilter) ([]models.GradeFact, error) {
	if f.MatchesNothing() {
		return []models.GradeFact{}, nil
	}

	b := r.sb.Select(
		"g.id", "g.student_id", "s.first_name || ' ' || s.last_name", "s.class_id", "c.name",
		"g.subject_id", "sub.name", "COALESCE(sub.short_name, '')", "g.value", "g.type", "g.graded_at",
	).
		From("grades g").
		Join("students s ON s.id = g.student_id").
		Join("classes c ON c.id = s.class_id").
		Join("subjects sub ON sub.id = g.subject_id").
		OrderBy("g.student_id", "g.graded_at", "g.id")
	query, args, err := applyFactFilter(b, f, gradeColumns).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build grade facts query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error loading grade facts: %w", err)
	}
	defer rows.Close()

	facts := []models.GradeFact{}
	for rows.Next() {
		var g models.GradeFact
		if err := rows.Scan(&g.GradeID, &g.StudentID, &g.StudentName, &g.ClassID, &g.ClassName,
			&g.SubjectID, &g.SubjectName, &g.SubjectShortName, &g.Value, &g.Type, &g.GradedAt); err != nil {
			return nil, fmt.Errorf("error scanning grade fact: %w", err)
		}
		facts = append(facts, g)
	}
	return facts, rows.Err()
}

// AttendanceFacts returns every attendance row matching f with the names aggregation needs
func (r *StatsRepository) AttendanceFacts(ctx context.Context, f models.FactFilter) ([]models.AttendanceFact, error) {
	if f.MatchesNothing() {
		return []models.AttendanceFact{}, nil
	}

	b := r.sb.Select(
		"a.student_id", "s.first_name || ' ' || s.last_name", "s.class_id", "c.name",
		"a.subject_id", "sub.name", "a.date", "a.status",
	).
		From("attendances a").
		Join("students s ON s.id = a.student_id").
		Join("classes c ON c.id = s.class_id").
		Join("subjects sub ON sub.id = a.subject_id").
		OrderBy("a.date", "a.id")
	query, args, err := applyFactFilter(b, f, attendanceColumns).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build attendance facts query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error loading attendance facts: %w", err)
	}
	defer rows.Close()

	facts := []models.AttendanceFact{}
	for rows.Next() {
		var a models.AttendanceFact
		if err := rows.Scan(&a.StudentID, &a.StudentName, &a.ClassID, &a.ClassName,
			&a.SubjectID, &a.SubjectName, &a.Date, &a.Status); err != nil {
			return nil, fmt.Errorf("error scanning attendance fact: %w", err)
		}
		facts = append(facts, a)
	}
	return facts, rows.Err()
}

// RecentGrades returns the newest grades matching f
func (r *StatsRepository) RecentGrades(ctx context.Context, f models.FactFilter, limit uint64) ([]models.Grade, error) {
	if f.MatchesNothing() {
		return []models.Grade{}, nil
	}
	return queryGrades(ctx, r.db, applyFactFilter(selectGrades(r.sb), f, gradeColumns).
		OrderBy("g.graded_at DESC", "g.id DESC").
		Limit(limit))
}
