package services

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	appauth "github.com/yigit/gradebook/internal/app/auth"
	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/models/dto"
	"github.com/yigit/gradebook/internal/app/repositories"
	"github.com/yigit/gradebook/internal/pkg/apperrors"
)

// ScheduleService defines the interface for timetable operations
type ScheduleService interface {
	GetSchedule(ctx context.Context, scope *models.Scope, req *dto.ScheduleFilterRequest) (*dto.ScheduleResponse, error)
	CreateSlot(ctx context.Context, scope *models.Scope, req *dto.ScheduleSlotRequest) (*dto.SaveSlotResponse, error)
	UpdateSlot(ctx context.Context, scope *models.Scope, id int64, req *dto.ScheduleSlotRequest) (*dto.SaveSlotResponse, error)
	DeleteSlot(ctx context.Context, scope *models.Scope, id int64) error
	Conflicts(ctx context.Context, scope *models.Scope) ([]dto.TeacherConflictResponse, error)
}

type scheduleServiceImpl struct {
	scheduleRepo repositories.IScheduleRepository
	logger       zerolog.Logger
}

// NewScheduleService creates a new ScheduleService
func NewScheduleService(scheduleRepo repositories.IScheduleRepository, logger zerolog.Logger) ScheduleService {
	return &scheduleServiceImpl{
		scheduleRepo: scheduleRepo,
		logger:       logger,
	}
}

// scheduleQuery limits the timetable to what the caller may see
func scheduleQuery(scope *models.Scope, classID *int64) repositories.ScheduleQuery {
	q := repositories.ScheduleQuery{ClassIDs: narrowIDs(scopeClassIDs(scope), classID)}
	if scope.IsTeacher() {
		q.Pairs = scope.Pairs
		if q.Pairs == nil {
			q.Pairs = []models.ClassSubjectPair{}
		}
	}
	return q
}

// GetSchedule returns the weekly timetable grouped Monday to Friday
func (s *scheduleServiceImpl) GetSchedule(ctx context.Context, scope *models.Scope, req *dto.ScheduleFilterRequest) (*dto.ScheduleResponse, error) {
	slots, err := s.scheduleRepo.List(ctx, scheduleQuery(scope, req.ClassID))
	if err != nil {
		return nil, err
	}
	resp := dto.GroupByDay(slots)
	return &resp, nil
}

func slotFromRequest(req *dto.ScheduleSlotRequest) (*models.ScheduleSlot, error) {
	day := models.WeekdayIndex(req.DayOfWeek)
	if day < 0 {
		return nil, apperrors.NewValidationError("dayOfWeek must be Monday to Friday")
	}
	// HH:MM strings order lexically
	if req.StartTime >= req.EndTime {
		return nil, apperrors.NewValidationError("startTime must be before endTime")
	}
	return &models.ScheduleSlot{
		ClassID:      req.ClassID,
		SubjectID:    req.SubjectID,
		DayOfWeek:    models.Weekdays[day],
		PeriodNumber: req.PeriodNumber,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
	}, nil
}

// CreateSlot adds a timetable slot and reports teacher double-bookings it causes
func (s *scheduleServiceImpl) CreateSlot(ctx context.Context, scope *models.Scope, req *dto.ScheduleSlotRequest) (*dto.SaveSlotResponse, error) {
	if err := appauth.Require(appauth.CanManage(scope), "only administrators can edit the timetable"); err != nil {
		return nil, err
	}
	slot, err := slotFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.scheduleRepo.Create(ctx, slot); err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewConflictError("class %d already has a lesson on %s period %d",
				slot.ClassID, slot.DayOfWeek, slot.PeriodNumber)
		}
		return nil, err
	}
	s.logger.Info().Int64("slotID", slot.ID).Int64("classID", slot.ClassID).Msg("Schedule slot created")
	return s.saved(ctx, slot.ID)
}

// UpdateSlot replaces a timetable slot
func (s *scheduleServiceImpl) UpdateSlot(ctx context.Context, scope *models.Scope, id int64, req *dto.ScheduleSlotRequest) (*dto.SaveSlotResponse, error) {
	if err := appauth.Require(appauth.CanManage(scope), "only administrators can edit the timetable"); err != nil {
		return nil, err
	}
	slot, err := slotFromRequest(req)
	if err != nil {
		return nil, err
	}
	slot.ID = id
	if err := s.scheduleRepo.Update(ctx, slot); err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewConflictError("class %d already has a lesson on %s period %d",
				slot.ClassID, slot.DayOfWeek, slot.PeriodNumber)
		}
		return nil, err
	}
	return s.saved(ctx, id)
}

// DeleteSlot removes a timetable slot
func (s *scheduleServiceImpl) DeleteSlot(ctx context.Context, scope *models.Scope, id int64) error {
	if err := appauth.Require(appauth.CanManage(scope), "only administrators can edit the timetable"); err != nil {
		return err
	}
	if err := s.scheduleRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("slotID", id).Msg("Schedule slot deleted")
	return nil
}

func (s *scheduleServiceImpl) saved(ctx context.Context, id int64) (*dto.SaveSlotResponse, error) {
	slot, err := s.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	all, err := s.scheduleRepo.TeacherSlots(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.SaveSlotResponse{Slot: *slot, Conflicts: []dto.TeacherConflictResponse{}}
	for _, c := range detectConflicts(all) {
		for _, cs := range c.Slots {
			if cs.ID == id {
				resp.Conflicts = append(resp.Conflicts, c)
				break
			}
		}
	}
	if len(resp.Conflicts) > 0 {
		s.logger.Warn().Int64("slotID", id).Int("conflicts", len(resp.Conflicts)).Msg("Teacher double-booked")
	}
	return resp, nil
}

// Conflicts lists teachers booked into more than one class in the same period.
// Teachers only see their own conflicts.
func (s *scheduleServiceImpl) Conflicts(ctx context.Context, scope *models.Scope) ([]dto.TeacherConflictResponse, error) {
	if err := appauth.Require(!scope.IsStudent(), "students cannot view timetable conflicts"); err != nil {
		return nil, err
	}
	all, err := s.scheduleRepo.TeacherSlots(ctx)
	if err != nil {
		return nil, err
	}
	conflicts := detectConflicts(all)
	if scope.IsAdmin() {
		return conflicts, nil
	}

	out := []dto.TeacherConflictResponse{}
	for _, c := range conflicts {
		if scope.TeacherID != nil && c.TeacherID == *scope.TeacherID {
			out = append(out, c)
		}
	}
	return out, nil
}

type bookingKey struct {
	teacherID int64
	day       int
	period    int
}

// detectConflicts groups slots by teacher, day and period and keeps groups spanning several classes.
// Output is ordered by teacher, day and period.
func detectConflicts(slots []models.TeacherSlot) []dto.TeacherConflictResponse {
	groups := make(map[bookingKey]*dto.TeacherConflictResponse)
	classes := make(map[bookingKey]map[int64]bool)
	var keys []bookingKey

	for _, ts := range slots {
		k := bookingKey{teacherID: ts.TeacherID, day: models.WeekdayIndex(ts.Slot.DayOfWeek), period: ts.Slot.PeriodNumber}
		g, ok := groups[k]
		if !ok {
			g = &dto.TeacherConflictResponse{
				TeacherID:    ts.TeacherID,
				TeacherName:  ts.TeacherName,
				DayOfWeek:    ts.Slot.DayOfWeek,
				PeriodNumber: ts.Slot.PeriodNumber,
			}
			groups[k] = g
			classes[k] = make(map[int64]bool)
			keys = append(keys, k)
		}
		g.Slots = append(g.Slots, ts.Slot)
		classes[k][ts.Slot.ClassID] = true
	}

	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.teacherID != b.teacherID {
			return a.teacherID < b.teacherID
		}
		if a.day != b.day {
			return a.day < b.day
		}
		return a.period < b.period
	})

	out := []dto.TeacherConflictResponse{}
	for _, k := range keys {
		if len(classes[k]) > 1 {
			out = append(out, *groups[k])
		}
	}
	return out
}
