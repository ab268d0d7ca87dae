package availability

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nikifmak/hospital/internal/model"
)

var (
	// ErrDoctorUnavailable means the doctor has no working-hours window on
	// the requested weekday, or the requested time falls outside it.
	ErrDoctorUnavailable = errors.New("doctor is not available at the requested time")

	// ErrSlotNotBookable means the requested time is inside working hours but
	// not aligned to a slot boundary.
	ErrSlotNotBookable = errors.New("requested time is not a bookable slot")
)

// ScheduleStore looks up a doctor's recurring window for one weekday.
type ScheduleStore interface {
	GetWindow(ctx context.Context, doctorID int, day model.DayOfWeek) (model.Schedule, bool, error)
}

// Resolver maps a calendar date onto a doctor's weekly schedule and checks
// that a requested start time is a valid slot of the matching window.
type Resolver struct {
	store  ScheduleStore
	logger *slog.Logger
}

func NewResolver(store ScheduleStore, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// Resolve returns the window admitting the request. Only the weekday of date
// matters: a MONDAY window admits any Monday regardless of week or year.
// Rejections come out in a fixed order: no window or out-of-hours first
// (ErrDoctorUnavailable), then slot misalignment (ErrSlotNotBookable).
func (r *Resolver) Resolve(ctx context.Context, doctorID int, date time.Time, start model.TimeOfDay) (model.Schedule, error) {
	day := model.DayOfWeekOf(date.Weekday())

	window, ok, err := r.store.GetWindow(ctx, doctorID, day)
	if err != nil {
		return model.Schedule{}, err
	}
	if !ok {
		r.logger.Info("doctor not working that day", "doctor_id", doctorID, "date", model.FormatDate(date), "day", day)
		return model.Schedule{}, ErrDoctorUnavailable
	}

	// Half-open window: start == EndTime is already outside working hours.
	if start < window.StartTime || start >= window.EndTime {
		r.logger.Info("requested time outside working hours",
			"doctor_id", doctorID,
			"date", model.FormatDate(date),
			"start", start,
			"window_start", window.StartTime,
			"window_end", window.EndTime,
		)
		return model.Schedule{}, ErrDoctorUnavailable
	}

	for _, slot := range Slots(window) {
		if slot == start {
			return window, nil
		}
	}

	r.logger.Info("requested time not on slot boundary", "doctor_id", doctorID, "date", model.FormatDate(date), "start", start)
	return model.Schedule{}, ErrSlotNotBookable
}
