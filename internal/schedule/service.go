package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nikifmak/hospital/internal/model"
)

var (
	ErrNotFound      = errors.New("schedule not found")
	ErrAlreadyExists = errors.New("schedule already exists for that day")
	ErrInvalidWindow = errors.New("end time must be after start time")
)

// Store persists weekly working-hours windows. Create must fail with
// ErrAlreadyExists when a window for the (doctor, weekday) pair exists; the
// uniqueness constraint lives in the store. ReplaceWeek swaps a doctor's whole
// week atomically.
type Store interface {
	ListByDoctor(ctx context.Context, doctorID int) ([]model.Schedule, error)
	Create(ctx context.Context, s model.Schedule) (model.Schedule, error)
	Update(ctx context.Context, s model.Schedule) (model.Schedule, error)
	ReplaceWeek(ctx context.Context, doctorID int, windows []model.Schedule) ([]model.Schedule, error)
}

// Service is the schedule-management surface: plain upserts guarded by the
// window invariant. The booking core only ever reads what this writes.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) GetByDoctor(ctx context.Context, doctorID int) ([]model.Schedule, error) {
	windows, err := s.store.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, ErrNotFound
	}
	return windows, nil
}

func (s *Service) Create(ctx context.Context, window model.Schedule) (model.Schedule, error) {
	if err := validateWindow(window); err != nil {
		return model.Schedule{}, err
	}
	created, err := s.store.Create(ctx, window)
	if err != nil {
		return model.Schedule{}, err
	}
	s.logger.Info("schedule created", "doctor_id", created.DoctorID, "day", created.Day, "start", created.StartTime, "end", created.EndTime)
	return created, nil
}

func (s *Service) Update(ctx context.Context, window model.Schedule) (model.Schedule, error) {
	if err := validateWindow(window); err != nil {
		return model.Schedule{}, err
	}
	updated, err := s.store.Update(ctx, window)
	if err != nil {
		return model.Schedule{}, err
	}
	s.logger.Info("schedule updated", "doctor_id", updated.DoctorID, "day", updated.Day, "start", updated.StartTime, "end", updated.EndTime)
	return updated, nil
}

// ReplaceWeek drops the doctor's existing windows and installs the given list
// in one transaction. Duplicate weekdays in the input are rejected up front
// rather than left for the unique constraint to trip mid-replace.
func (s *Service) ReplaceWeek(ctx context.Context, doctorID int, windows []model.Schedule) ([]model.Schedule, error) {
	seen := make(map[model.DayOfWeek]bool, len(windows))
	for i := range windows {
		windows[i].DoctorID = doctorID
		if err := validateWindow(windows[i]); err != nil {
			return nil, err
		}
		if seen[windows[i].Day] {
			return nil, fmt.Errorf("%w: duplicate day %s", ErrAlreadyExists, windows[i].Day)
		}
		seen[windows[i].Day] = true
	}

	replaced, err := s.store.ReplaceWeek(ctx, doctorID, windows)
	if err != nil {
		return nil, err
	}
	s.logger.Info("schedule replaced", "doctor_id", doctorID, "windows", len(replaced))
	return replaced, nil
}

func validateWindow(w model.Schedule) error {
	if w.EndTime <= w.StartTime {
		return ErrInvalidWindow
	}
	return nil
}
