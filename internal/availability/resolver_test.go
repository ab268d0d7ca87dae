package availability

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/nikifmak/hospital/internal/model"
)

type fakeScheduleStore struct {
	windows map[model.DayOfWeek]model.Schedule
	err     error
}

func (s *fakeScheduleStore) GetWindow(_ context.Context, _ int, day model.DayOfWeek) (model.Schedule, bool, error) {
	if s.err != nil {
		return model.Schedule{}, false, s.err
	}
	window, ok := s.windows[day]
	return window, ok, nil
}

func newTestResolver(store ScheduleStore) *Resolver {
	return NewResolver(store, slog.New(slog.DiscardHandler))
}

func mondayWindow(start, end model.TimeOfDay) *fakeScheduleStore {
	return &fakeScheduleStore{windows: map[model.DayOfWeek]model.Schedule{
		model.Monday: {ID: 1, DoctorID: 1, Day: model.Monday, StartTime: start, EndTime: end},
	}}
}

func TestResolve_MatchesWeekdayAcrossWeeks(t *testing.T) {
	r := newTestResolver(mondayWindow(model.ClockTime(9, 0), model.ClockTime(13, 0)))

	// Mondays in different weeks and years all hit the same window.
	for _, date := range []time.Time{
		time.Date(2023, 3, 6, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 3, 13, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 9, 0, 0, 0, 0, time.UTC),
	} {
		window, err := r.Resolve(context.Background(), 1, date, model.ClockTime(10, 0))
		if err != nil {
			t.Fatalf("Resolve(%s) failed: %v", date.Format("2006-01-02"), err)
		}
		if window.Day != model.Monday {
			t.Fatalf("expected MONDAY window, got %s", window.Day)
		}
	}
}

func TestResolve_NoWindowForWeekday(t *testing.T) {
	r := newTestResolver(mondayWindow(model.ClockTime(9, 0), model.ClockTime(13, 0)))

	tuesday := time.Date(2023, 3, 7, 0, 0, 0, 0, time.UTC)
	_, err := r.Resolve(context.Background(), 1, tuesday, model.ClockTime(10, 0))
	if !errors.Is(err, ErrDoctorUnavailable) {
		t.Fatalf("expected ErrDoctorUnavailable, got %v", err)
	}
}

func TestResolve_OutsideWorkingHours(t *testing.T) {
	r := newTestResolver(mondayWindow(model.ClockTime(9, 0), model.ClockTime(13, 0)))
	monday := time.Date(2023, 3, 6, 0, 0, 0, 0, time.UTC)

	for _, start := range []model.TimeOfDay{
		model.ClockTime(8, 0),  // before the window
		model.ClockTime(13, 0), // window end is exclusive
		model.ClockTime(14, 0), // after the window
	} {
		_, err := r.Resolve(context.Background(), 1, monday, start)
		if !errors.Is(err, ErrDoctorUnavailable) {
			t.Fatalf("start %s: expected ErrDoctorUnavailable, got %v", start, err)
		}
	}
}

func TestResolve_MisalignedStart(t *testing.T) {
	r := newTestResolver(mondayWindow(model.ClockTime(13, 0), model.ClockTime(22, 0)))
	monday := time.Date(2023, 3, 6, 0, 0, 0, 0, time.UTC)

	_, err := r.Resolve(context.Background(), 1, monday, model.ClockTime(13, 15))
	if !errors.Is(err, ErrSlotNotBookable) {
		t.Fatalf("expected ErrSlotNotBookable, got %v", err)
	}
}

func TestResolve_AlignedStartReturnsWindow(t *testing.T) {
	r := newTestResolver(mondayWindow(model.ClockTime(13, 0), model.ClockTime(22, 0)))
	monday := time.Date(2023, 3, 6, 0, 0, 0, 0, time.UTC)

	window, err := r.Resolve(context.Background(), 1, monday, model.ClockTime(21, 0))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if window.EndTime != model.ClockTime(22, 0) {
		t.Fatalf("expected window end 22:00, got %s", window.EndTime)
	}
}

func TestResolve_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("connection refused")
	r := newTestResolver(&fakeScheduleStore{err: storeErr})
	monday := time.Date(2023, 3, 6, 0, 0, 0, 0, time.UTC)

	_, err := r.Resolve(context.Background(), 1, monday, model.ClockTime(10, 0))
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
}
