package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/db"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/dberrors"
)

type rosterBase struct {
	db db.Querier
	sb squirrel.StatementBuilderType
}

func newRosterBase(pool *pgxpool.Pool) rosterBase {
	return rosterBase{db: pool, sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)}
}

// exec runs a write and reports a missing row as not found
func (b rosterBase) exec(ctx context.Context, q squirrel.Sqlizer, entity string) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s query: %w", entity, err)
	}
	tag, err := b.db.Exec(ctx, query, args...)
	if err != nil {
		return dberrors.Translate(err, entity)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("%s not found", entity)
	}
	return nil
}

// insert runs an INSERT ... RETURNING id
func (b rosterBase) insert(ctx context.Context, q squirrel.InsertBuilder, entity string, id *int64) error {
	query, args, err := q.Suffix("RETURNING id").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s insert: %w", entity, err)
	}
	if err := b.db.QueryRow(ctx, query, args...).Scan(id); err != nil {
		return dberrors.Translate(err, entity)
	}
	return nil
}

// ClassRepository handles database operations for classes
type ClassRepository struct{ rosterBase }

// NewClassRepository creates a new ClassRepository
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{newRosterBase(pool)}
}

var _ IClassRepository = (*ClassRepository)(nil)

// List returns classes, restricted to ids unless ids is nil
func (r *ClassRepository) List(ctx context.Context, ids []int64) ([]models.Class, error) {
	query, args, err := idFilter(r.sb.Select("id", "name").From("classes"), "id", ids).OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list classes query: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing classes: %w", err)
	}
	defer rows.Close()

	classes := []models.Class{}
	for rows.Next() {
		var c models.Class
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("error scanning class: %w", err)
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// GetByID retrieves a class by ID
func (r *ClassRepository) GetByID(ctx context.Context, id int64) (*models.Class, error) {
	var c models.Class
	err := r.db.QueryRow(ctx, `SELECT id, name FROM classes WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, dberrors.Translate(err, "class")
	}
	return &c, nil
}

// Create creates a new class
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	return r.insert(ctx, r.sb.Insert("classes").Columns("name").Values(class.Name), "class", &class.ID)
}

// Update renames a class
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	return r.exec(ctx, r.sb.Update("classes").Set("name", class.Name).Where(squirrel.Eq{"id": class.ID}), "class")
}

// Delete deletes a class with its students and timetable
func (r *ClassRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, r.sb.Delete("classes").Where(squirrel.Eq{"id": id}), "class")
}

// SubjectRepository handles database operations for subjects
type SubjectRepository struct{ rosterBase }

// NewSubjectRepository creates a new SubjectRepository
func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{newRosterBase(pool)}
}

var _ ISubjectRepository = (*SubjectRepository)(nil)

// List returns every subject ordered by name
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, short_name FROM subjects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error listing subjects: %w", err)
	}
	defer rows.Close()

	subjects := []models.Subject{}
	for rows.Next() {
		var s models.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.ShortName); err != nil {
			return nil, fmt.Errorf("error scanning subject: %w", err)
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}

// GetByID retrieves a subject by ID
func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*models.Subject, error) {
	var s models.Subject
	err := r.db.QueryRow(ctx, `SELECT id, name, short_name FROM subjects WHERE id = $1`, id).Scan(&s.ID, &s.Name, &s.ShortName)
	if err != nil {
		return nil, dberrors.Translate(err, "subject")
	}
	return &s, nil
}

// Create creates a new subject
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	return r.insert(ctx, r.sb.Insert("subjects").Columns("name", "short_name").Values(subject.Name, subject.ShortName), "subject", &subject.ID)
}

// Update updates a subject's names
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	return r.exec(ctx, r.sb.Update("subjects").
		Set("name", subject.Name).
		Set("short_name", subject.ShortName).
		Where(squirrel.Eq{"id": subject.ID}), "subject")
}

// Delete deletes a subject
func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, r.sb.Delete("subjects").Where(squirrel.Eq{"id": id}), "subject")
}

// TeacherRepository handles database operations for teachers
type TeacherRepository struct{ rosterBase }

// NewTeacherRepository creates a new TeacherRepository
func NewTeacherRepository(pool *pgxpool.Pool) *TeacherRepository {
	return &TeacherRepository{newRosterBase(pool)}
}

var _ ITeacherRepository = (*TeacherRepository)(nil)

func (r *TeacherRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.Teacher, error) {
	query, args, err := r.sb.Select("id", "first_name", "last_name", "user_id").From("teachers").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build teacher query: %w", err)
	}
	var t models.Teacher
	if err := r.db.QueryRow(ctx, query, args...).Scan(&t.ID, &t.FirstName, &t.LastName, &t.UserID); err != nil {
		return nil, dberrors.Translate(err, "teacher")
	}
	return &t, nil
}

// List returns every teacher ordered by name
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	rows, err := r.db.Query(ctx, `SELECT id, first_name, last_name, user_id FROM teachers ORDER BY first_name, last_name, id`)
	if err != nil {
		return nil, fmt.Errorf("error listing teachers: %w", err)
	}
	defer rows.Close()

	teachers := []models.Teacher{}
	for rows.Next() {
		var t models.Teacher
		if err := rows.Scan(&t.ID, &t.FirstName, &t.LastName, &t.UserID); err != nil {
			return nil, fmt.Errorf("error scanning teacher: %w", err)
		}
		teachers = append(teachers, t)
	}
	return teachers, rows.Err()
}

// GetByID retrieves a teacher by ID
func (r *TeacherRepository) GetByID(ctx context.Context, id int64) (*models.Teacher, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByUserID retrieves the teacher linked to an account
func (r *TeacherRepository) GetByUserID(ctx context.Context, userID int64) (*models.Teacher, error) {
	return r.getOne(ctx, squirrel.Eq{"user_id": userID})
}

// Create creates a new teacher
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	return r.insert(ctx, r.sb.Insert("teachers").
		Columns("first_name", "last_name", "user_id").
		Values(teacher.FirstName, teacher.LastName, teacher.UserID), "teacher", &teacher.ID)
}

// Update updates a teacher
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	return r.exec(ctx, r.sb.Update("teachers").
		Set("first_name", teacher.FirstName).
		Set("last_name", teacher.LastName).
		Set("user_id", teacher.UserID).
		Where(squirrel.Eq{"id": teacher.ID}), "teacher")
}

// Delete deletes a teacher
func (r *TeacherRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, r.sb.Delete("teachers").Where(squirrel.Eq{"id": id}), "teacher")
}

// StudentRepository handles database operations for students
type StudentRepository struct{ rosterBase }

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{newRosterBase(pool)}
}

var _ IStudentRepository = (*StudentRepository)(nil)

func (r *StudentRepository) selectStudents() squirrel.SelectBuilder {
	return r.sb.Select("s.id", "s.first_name", "s.last_name", "s.class_id", "c.name").
		From("students s").
		Join("classes c ON c.id = s.class_id")
}

// List returns students ordered by first name, restricted to classIDs unless nil
func (r *StudentRepository) List(ctx context.Context, classIDs []int64) ([]models.Student, error) {
	query, args, err := idFilter(r.selectStudents(), "s.class_id", classIDs).
		OrderBy("s.first_name", "s.last_name", "s.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.ClassID, &s.ClassName); err != nil {
			return nil, fmt.Errorf("error scanning student: %w", err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// GetByID retrieves a student with its class name
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	query, args, err := r.selectStudents().Where(squirrel.Eq{"s.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build student query: %w", err)
	}
	var s models.Student
	if err := r.db.QueryRow(ctx, query, args...).Scan(&s.ID, &s.FirstName, &s.LastName, &s.ClassID, &s.ClassName); err != nil {
		return nil, dberrors.Translate(err, "student")
	}
	return &s, nil
}

// Count counts students, restricted to classIDs unless nil
func (r *StudentRepository) Count(ctx context.Context, classIDs []int64) (int64, error) {
	query, args, err := idFilter(r.sb.Select("COUNT(*)").From("students"), "class_id", classIDs).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count students query: %w", err)
	}
	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting students: %w", err)
	}
	return n, nil
}

// Create creates a new student
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.insert(ctx, r.sb.Insert("students").
		Columns("first_name", "last_name", "class_id").
		Values(student.FirstName, student.LastName, student.ClassID), "student", &student.ID)
}

// Update updates a student
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.exec(ctx, r.sb.Update("students").
		Set("first_name", student.FirstName).
		Set("last_name", student.LastName).
		Set("class_id", student.ClassID).
		Where(squirrel.Eq{"id": student.ID}), "student")
}

// Delete deletes a student with their grades and attendance
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, r.sb.Delete("students").Where(squirrel.Eq{"id": id}), "student")
}

// ClassSubjectRepository handles class-subject-teacher assignments
type ClassSubjectRepository struct{ rosterBase }

// NewClassSubjectRepository creates a new ClassSubjectRepository
func NewClassSubjectRepository(pool *pgxpool.Pool) *ClassSubjectRepository {
	return &ClassSubjectRepository{newRosterBase(pool)}
}

var _ IClassSubjectRepository = (*ClassSubjectRepository)(nil)

func (r *ClassSubjectRepository) selectAssignments() squirrel.SelectBuilder {
	return r.sb.Select("cs.id", "cs.class_id", "cs.subject_id", "cs.teacher_id", "c.name", "sub.name",
		"CASE WHEN t.id IS NULL THEN NULL ELSE t.first_name || ' ' || t.last_name END").
		From("class_subjects cs").
		Join("classes c ON c.id = cs.class_id").
		Join("subjects sub ON sub.id = cs.subject_id").
		LeftJoin("teachers t ON t.id = cs.teacher_id")
}

func (r *ClassSubjectRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]models.ClassSubject, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build class subject query: %w", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing class subjects: %w", err)
	}
	defer rows.Close()

	out := []models.ClassSubject{}
	for rows.Next() {
		var cs models.ClassSubject
		if err := rows.Scan(&cs.ID, &cs.ClassID, &cs.SubjectID, &cs.TeacherID, &cs.ClassName, &cs.SubjectName, &cs.TeacherName); err != nil {
			return nil, fmt.Errorf("error scanning class subject: %w", err)
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

// List returns assignments, only those of teacherID when it is set
func (r *ClassSubjectRepository) List(ctx context.Context, teacherID *int64) ([]models.ClassSubject, error) {
	q := r.selectAssignments().OrderBy("c.name", "sub.name")
	if teacherID != nil {
		q = q.Where(squirrel.Eq{"cs.teacher_id": *teacherID})
	}
	return r.query(ctx, q)
}

func (r *ClassSubjectRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.ClassSubject, error) {
	rows, err := r.query(ctx, r.selectAssignments().Where(where))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewResourceNotFoundError("class subject not found")
	}
	return &rows[0], nil
}

// GetByID retrieves an assignment by ID
func (r *ClassSubjectRepository) GetByID(ctx context.Context, id int64) (*models.ClassSubject, error) {
	return r.getOne(ctx, squirrel.Eq{"cs.id": id})
}

// Find retrieves the assignment of a subject to a class
func (r *ClassSubjectRepository) Find(ctx context.Context, classID, subjectID int64) (*models.ClassSubject, error) {
	return r.getOne(ctx, squirrel.Eq{"cs.class_id": classID, "cs.subject_id": subjectID})
}

// Create creates a new assignment
func (r *ClassSubjectRepository) Create(ctx context.Context, cs *models.ClassSubject) error {
	return r.insert(ctx, r.sb.Insert("class_subjects").
		Columns("class_id", "subject_id", "teacher_id").
		Values(cs.ClassID, cs.SubjectID, cs.TeacherID), "class subject", &cs.ID)
}

// Update changes an assignment
func (r *ClassSubjectRepository) Update(ctx context.Context, cs *models.ClassSubject) error {
	return r.exec(ctx, r.sb.Update("class_subjects").
		Set("class_id", cs.ClassID).
		Set("subject_id", cs.SubjectID).
		Set("teacher_id", cs.TeacherID).
		Where(squirrel.Eq{"id": cs.ID}), "class subject")
}

// Delete removes an assignment
func (r *ClassSubjectRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, r.sb.Delete("class_subjects").Where(squirrel.Eq{"id": id}), "class subject")
}
