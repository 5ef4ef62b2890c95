package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/db"
	"github.com/yigit/gradebook/internal/pkg/helpers"
)

// SearchRepository runs case-insensitive substring searches
type SearchRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewSearchRepository creates a new SearchRepository
func NewSearchRepository(pool *pgxpool.Pool) *SearchRepository {
	return &SearchRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ ISearchRepository = (*SearchRepository)(nil)

// Students matches full name or class name, restricted to classIDs unless nil
func (r *SearchRepository) Students(ctx context.Context, q string, classIDs []int64, limit uint64) ([]models.Student, error) {
	if classIDs != nil && len(classIDs) == 0 {
		return []models.Student{}, nil
	}
	b := r.sb.Select("s.id", "s.first_name", "s.last_name", "s.class_id", "c.name").
		From("students s").
		Join("classes c ON c.id = s.class_id").
		Where(helpers.ILikeAny(q, "s.first_name || ' ' || s.last_name", "c.name")).
		OrderBy("s.first_name", "s.last_name", "s.id").
		Limit(limit)
	query, args, err := idFilter(b, "s.class_id", classIDs).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build student search: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error searching students: %w", err)
	}
	defer rows.Close()

	out := []models.Student{}
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.ClassID, &s.ClassName); err != nil {
			return nil, fmt.Errorf("error scanning student: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Teachers matches full name
func (r *SearchRepository) Teachers(ctx context.Context, q string, limit uint64) ([]models.Teacher, error) {
	query, args, err := r.sb.Select("id", "first_name", "last_name", "user_id").
		From("teachers").
		Where(helpers.ILikeAny(q, "first_name || ' ' || last_name")).
		OrderBy("first_name", "last_name", "id").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build teacher search: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error searching teachers: %w", err)
	}
	defer rows.Close()

	out := []models.Teacher{}
	for rows.Next() {
		var t models.Teacher
		if err := rows.Scan(&t.ID, &t.FirstName, &t.LastName, &t.UserID); err != nil {
			return nil, fmt.Errorf("error scanning teacher: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Subjects matches name or short name
func (r *SearchRepository) Subjects(ctx context.Context, q string, limit uint64) ([]models.Subject, error) {
	query, args, err := r.sb.Select("id", "name", "short_name").
		From("subjects").
		Where(helpers.ILikeAny(q, "name", "COALESCE(short_name, '')")).
		OrderBy("name").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build subject search: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error searching subjects: %w", err)
	}
	defer rows.Close()

	out := []models.Subject{}
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.ShortName); err != nil {
			return nil, fmt.Errorf("error scanning subject: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
