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
	"github.com/yigit/gradebook/internal/pkg/helpers"
)

// ScheduleRepository handles database operations for timetable slots
type ScheduleRepository struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

// NewScheduleRepository creates a new ScheduleRepository
func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ IScheduleRepository = (*ScheduleRepository)(nil)

var slotColumns = []string{
	"ss.id", "ss.class_id", "ss.subject_id", "ss.day_of_week", "ss.period_number", "ss.start_time", "ss.end_time",
	"c.name", "sub.name",
}

func (r *ScheduleRepository) selectSlots(extra ...string) squirrel.SelectBuilder {
	return r.sb.Select(append(append([]string{}, slotColumns...), extra...)...).
		From("schedule_slots ss").
		Join("classes c ON c.id = ss.class_id").
		Join("subjects sub ON sub.id = ss.subject_id")
}

func slotDest(s *models.ScheduleSlot) []interface{} {
	return []interface{}{&s.ID, &s.ClassID, &s.SubjectID, &s.DayOfWeek, &s.PeriodNumber, &s.StartTime, &s.EndTime, &s.ClassName, &s.SubjectName}
}

// List returns slots ordered by period and class; grouping by day is left to the caller
func (r *ScheduleRepository) List(ctx context.Context, q ScheduleQuery) ([]models.ScheduleSlot, error) {
	if (q.ClassIDs != nil && len(q.ClassIDs) == 0) || (q.Pairs != nil && len(q.Pairs) == 0) {
		return []models.ScheduleSlot{}, nil
	}

	b := idFilter(r.selectSlots(), "ss.class_id", q.ClassIDs)
	if q.Pairs != nil {
		b = b.Where(helpers.PairsIn("ss.class_id", "ss.subject_id", pairKeys(q.Pairs)))
	}
	if q.Day != "" {
		b = b.Where(squirrel.Eq{"ss.day_of_week": q.Day})
	}
	query, args, err := b.OrderBy("ss.period_number", "c.name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build schedule query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing schedule: %w", err)
	}
	defer rows.Close()

	slots := []models.ScheduleSlot{}
	for rows.Next() {
		var s models.ScheduleSlot
		if err := rows.Scan(slotDest(&s)...); err != nil {
			return nil, fmt.Errorf("error scanning schedule slot: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// GetByID retrieves a slot by ID
func (r *ScheduleRepository) GetByID(ctx context.Context, id int64) (*models.ScheduleSlot, error) {
	query, args, err := r.selectSlots().Where(squirrel.Eq{"ss.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build schedule slot query: %w", err)
	}
	var s models.ScheduleSlot
	if err := r.db.QueryRow(ctx, query, args...).Scan(slotDest(&s)...); err != nil {
		return nil, dberrors.Translate(err, "schedule slot")
	}
	return &s, nil
}

// Create inserts a slot. A second slot in the same class, day and period is a conflict.
func (r *ScheduleRepository) Create(ctx context.Context, slot *models.ScheduleSlot) error {
	query, args, err := r.sb.Insert("schedule_slots").
		Columns("class_id", "subject_id", "day_of_week", "period_number", "start_time", "end_time").
		Values(slot.ClassID, slot.SubjectID, slot.DayOfWeek, slot.PeriodNumber, slot.StartTime, slot.EndTime).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create slot query: %w", err)
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&slot.ID); err != nil {
		return dberrors.Translate(err, "schedule slot")
	}
	return nil
}

// Update replaces a slot
func (r *ScheduleRepository) Update(ctx context.Context, slot *models.ScheduleSlot) error {
	query, args, err := r.sb.Update("schedule_slots").
		Set("class_id", slot.ClassID).
		Set("subject_id", slot.SubjectID).
		Set("day_of_week", slot.DayOfWeek).
		Set("period_number", slot.PeriodNumber).
		Set("start_time", slot.StartTime).
		Set("end_time", slot.EndTime).
		Where(squirrel.Eq{"id": slot.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update slot query: %w", err)
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return dberrors.Translate(err, "schedule slot")
	}
	if tag.RowsAffected() == 0 {
		return dberrors.Translate(pgx.ErrNoRows, "schedule slot")
	}
	return nil
}

// Delete deletes a slot
func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM schedule_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting schedule slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dberrors.Translate(pgx.ErrNoRows, "schedule slot")
	}
	return nil
}

// TeacherSlots returns every slot whose class subject has a teacher, with that teacher
func (r *ScheduleRepository) TeacherSlots(ctx context.Context) ([]models.TeacherSlot, error) {
	query, args, err := r.selectSlots("t.id", "t.first_name || ' ' || t.last_name").
		Join("class_subjects cs ON cs.class_id = ss.class_id AND cs.subject_id = ss.subject_id").
		Join("teachers t ON t.id = cs.teacher_id").
		OrderBy("t.id", "ss.day_of_week", "ss.period_number", "ss.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build teacher slots query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing teacher slots: %w", err)
	}
	defer rows.Close()

	var out []models.TeacherSlot
	for rows.Next() {
		var ts models.TeacherSlot
		dest := append(slotDest(&ts.Slot), &ts.TeacherID, &ts.TeacherName)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("error scanning teacher slot: %w", err)
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}
