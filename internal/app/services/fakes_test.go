package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/repositories"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
	"github.com/yigit/gradebook/internal/pkg/websocket"
)

func ptr(v int64) *int64 { return &v }

var (
	adminScope = &models.Scope{Role: models.RoleAdmin, UserID: 1}

	teacherScope = &models.Scope{
		Role:       models.RoleTeacher,
		UserID:     2,
		TeacherID:  ptr(20),
		ClassIDs:   []int64{8},
		SubjectIDs: []int64{1},
		Pairs:      []models.ClassSubjectPair{{ClassID: 8, SubjectID: 1}},
	}

	studentScope = &models.Scope{
		Role:           models.RoleStudent,
		UserID:         3,
		StudentID:      ptr(30),
		StudentClassID: ptr(8),
	}
)

type fakeUsers struct {
	repositories.IUserRepository
	users map[int64]*models.User
	err   error
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.NewResourceNotFoundError("user not found")
}

func (f *fakeUsers) ListExcept(_ context.Context, userID int64) ([]models.User, error) {
	var out []models.User
	for id, u := range f.users {
		if id != userID {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeStudents struct {
	repositories.IStudentRepository
	byID map[int64]*models.Student
}

func (f *fakeStudents) GetByID(_ context.Context, id int64) (*models.Student, error) {
	if s, ok := f.byID[id]; ok {
		return s, nil
	}
	return nil, apperrors.NewResourceNotFoundError("student not found")
}

func (f *fakeStudents) List(_ context.Context, classIDs []int64) ([]models.Student, error) {
	out := []models.Student{}
	for _, s := range f.byID {
		if classIDs == nil || containsInt(classIDs, s.ClassID) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStudents) Count(ctx context.Context, classIDs []int64) (int64, error) {
	rows, _ := f.List(ctx, classIDs)
	return int64(len(rows)), nil
}

func containsInt(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// school is the roster shared by most tests: class 8 has students 30 and 31, class 9 has 40
func school() *fakeStudents {
	return &fakeStudents{byID: map[int64]*models.Student{
		30: {ID: 30, FirstName: "Ana", LastName: "Petrova", ClassID: 8, ClassName: "8A"},
		31: {ID: 31, FirstName: "Boris", LastName: "Ivanov", ClassID: 8, ClassName: "8A"},
		40: {ID: 40, FirstName: "Vera", LastName: "Koleva", ClassID: 9, ClassName: "9A"},
	}}
}

type fakeCache struct {
	mu          sync.Mutex
	gen         int64
	entries     map[string][]byte
	invalidated int
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string][]byte{}} }

func (c *fakeCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *fakeCache) Get(_ context.Context, gen int64, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[fmt.Sprintf("%d:%s", gen, key)]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(v, dest)
}

func (c *fakeCache) Set(_ context.Context, gen int64, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fmt.Sprintf("%d:%s", gen, key)] = data
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.invalidated++
	return nil
}

type notification struct {
	userID int64
	event  websocket.Event
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *fakeNotifier) Notify(_ context.Context, userID int64, event websocket.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{userID: userID, event: event})
	return nil
}

// fakeMessages stamps each message one minute after the previous, starting at 14:05
type fakeMessages struct {
	repositories.IMessageRepository
	rows  []models.Message
	names map[int64]string
}

func (f *fakeMessages) Create(_ context.Context, msg *models.Message) error {
	msg.ID = int64(len(f.rows) + 1)
	msg.SentAt = time.Date(2024, time.January, 10, 14, 5, 0, 0, time.UTC).Add(time.Duration(len(f.rows)) * time.Minute)
	f.rows = append(f.rows, *msg)
	return nil
}

func (f *fakeMessages) Contacts(_ context.Context, userID int64) ([]models.Contact, error) {
	byOther := map[int64]*models.Contact{}
	for _, m := range f.rows {
		if m.SenderID != userID && m.ReceiverID != userID {
			continue
		}
		other := m.OtherParty(userID)
		c, ok := byOther[other]
		if !ok {
			c = &models.Contact{UserID: other, Name: f.names[other]}
			byOther[other] = c
		}
		if !m.SentAt.Before(c.LastAt) {
			c.LastText, c.LastAt = m.Text, m.SentAt
		}
		if m.ReceiverID == userID && m.SenderID == other && !m.IsRead {
			c.Unread++
		}
	}

	out := make([]models.Contact, 0, len(byOther))
	for _, c := range byOther {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastAt.After(out[j].LastAt) })
	return out, nil
}

func (f *fakeMessages) Conversation(_ context.Context, userID, otherID int64) ([]models.Message, error) {
	out := []models.Message{}
	for _, m := range f.rows {
		if (m.SenderID == userID && m.ReceiverID == otherID) || (m.SenderID == otherID && m.ReceiverID == userID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessages) MarkRead(_ context.Context, userID, otherID int64) (int64, error) {
	var n int64
	for i := range f.rows {
		m := &f.rows[i]
		if m.ReceiverID == userID && m.SenderID == otherID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (f *fakeMessages) UnreadCount(_ context.Context, userID int64) (int, error) {
	n := 0
	for _, m := range f.rows {
		if m.ReceiverID == userID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

type fakeGrades struct {
	repositories.IGradeRepository
	byID    map[int64]*models.Grade
	lastQry repositories.GradeQuery
	deleted []int64
}

func (f *fakeGrades) List(_ context.Context, q repositories.GradeQuery) ([]models.Grade, int64, error) {
	f.lastQry = q
	return []models.Grade{}, 0, nil
}

func (f *fakeGrades) GetByID(_ context.Context, id int64) (*models.Grade, error) {
	if g, ok := f.byID[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, apperrors.NewResourceNotFoundError("grade not found")
}

func (f *fakeGrades) Create(_ context.Context, g *models.Grade) error {
	g.ID = int64(len(f.byID) + 100)
	cp := *g
	cp.ClassID = 8
	f.byID[g.ID] = &cp
	return nil
}

func (f *fakeGrades) Update(_ context.Context, g *models.Grade) error {
	cp := *g
	f.byID[g.ID] = &cp
	return nil
}

func (f *fakeGrades) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	delete(f.byID, id)
	return nil
}

type fakeAttendance struct {
	repositories.IAttendanceRepository
	byID map[int64]*models.Attendance
}

func (f *fakeAttendance) GetByID(_ context.Context, id int64) (*models.Attendance, error) {
	if a, ok := f.byID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, apperrors.NewResourceNotFoundError("attendance not found")
}

func (f *fakeAttendance) Create(_ context.Context, a *models.Attendance) error {
	for _, e := range f.byID {
		if e.StudentID == a.StudentID && e.SubjectID == a.SubjectID && e.Date.Equal(a.Date) {
			return apperrors.NewConflictError("attendance already exists")
		}
	}
	a.ID = int64(len(f.byID) + 1)
	cp := *a
	cp.ClassID = 8
	f.byID[a.ID] = &cp
	return nil
}

type fakeLessons struct {
	repositories.ILessonRepository
	saved []*models.LessonRecord
}

func (f *fakeLessons) Save(_ context.Context, rec *models.LessonRecord) (*models.LessonRecordResult, error) {
	f.saved = append(f.saved, rec)
	return &models.LessonRecordResult{
		LessonID:        7,
		Created:         len(f.saved) == 1,
		AttendanceSaved: len(rec.Attendance),
		GradesSaved:     len(rec.Grades),
	}, nil
}

type fakeStats struct {
	repositories.IStatsRepository
	grades  []models.GradeFact
	filters []models.FactFilter
}

func (f *fakeStats) GradeFacts(_ context.Context, flt models.FactFilter) ([]models.GradeFact, error) {
	f.filters = append(f.filters, flt)
	return f.grades, nil
}

func (f *fakeStats) AttendanceFacts(context.Context, models.FactFilter) ([]models.AttendanceFact, error) {
	return []models.AttendanceFact{}, nil
}

type fakeClasses struct {
	repositories.IClassRepository
	rows []models.Class
}

func (f *fakeClasses) List(_ context.Context, ids []int64) ([]models.Class, error) {
	out := []models.Class{}
	for _, c := range f.rows {
		if ids == nil || containsInt(ids, c.ID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeClasses) GetByID(_ context.Context, id int64) (*models.Class, error) {
	for _, c := range f.rows {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("class not found")
}
