package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nikifmak/hospital/internal/availability"
	"github.com/nikifmak/hospital/internal/model"
)

// ErrSlotAlreadyBooked means another appointment holds the requested slot. A
// caller cannot tell whether it was booked before the request arrived or a
// concurrent request won the commit race; both are terminal for this request.
var ErrSlotAlreadyBooked = errors.New("slot is already booked")

// Ledger is the persisted set of committed appointments.
//
// TryCommit must be atomic per (doctor, date, start time) key: across any
// number of concurrent callers, at most one insert for a key succeeds and the
// rest fail with ErrSlotAlreadyBooked. There must be no window between the
// existence check and the write; implementations back this with a unique
// constraint or an equivalent exclusive primitive. Commits for different
// start times on the same doctor and day must not contend with each other.
type Ledger interface {
	ListForDay(ctx context.Context, doctorID int, date time.Time) ([]model.Appointment, error)
	TryCommit(ctx context.Context, appt model.Appointment) (model.Appointment, error)
}

// Request is one booking attempt for a single fixed-duration slot.
type Request struct {
	DoctorID  int
	PatientID int
	Date      time.Time
	StartTime model.TimeOfDay
}

// Coordinator owns the accept/reject decision for booking requests and the
// commit that must happen exactly once per slot.
type Coordinator struct {
	resolver *availability.Resolver
	ledger   Ledger
	logger   *slog.Logger
}

func NewCoordinator(resolver *availability.Resolver, ledger Ledger, logger *slog.Logger) *Coordinator {
	return &Coordinator{resolver: resolver, ledger: ledger, logger: logger}
}

// Book validates and commits one appointment. Validation steps run in a fixed
// order and the first failure wins: availability, slot alignment, conflict
// pre-check, then the atomic commit itself. The pre-check only exists to fail
// fast before write work; the commit would catch the conflict regardless.
// A lost commit race surfaces as ErrSlotAlreadyBooked with no retry.
func (c *Coordinator) Book(ctx context.Context, req Request) (model.Appointment, error) {
	window, err := c.resolver.Resolve(ctx, req.DoctorID, req.Date, req.StartTime)
	if err != nil {
		return model.Appointment{}, err
	}

	if err := c.checkFree(ctx, req); err != nil {
		return model.Appointment{}, err
	}

	end := req.StartTime.Add(availability.SlotDuration)
	if end > window.EndTime {
		end = window.EndTime
	}

	appt, err := c.ledger.TryCommit(ctx, model.Appointment{
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   end,
	})
	if err != nil {
		if errors.Is(err, ErrSlotAlreadyBooked) {
			c.logger.Info("lost commit race for slot",
				"doctor_id", req.DoctorID,
				"date", model.FormatDate(req.Date),
				"start", req.StartTime,
			)
		}
		return model.Appointment{}, err
	}

	c.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"doctor_id", appt.DoctorID,
		"patient_id", appt.PatientID,
		"date", model.FormatDate(appt.Date),
		"start", appt.StartTime,
		"end", appt.EndTime,
	)
	return appt, nil
}

// checkFree is a point-in-time read of the day's appointments. It can miss a
// commit that lands immediately after it returns, which is why correctness
// rests on TryCommit, not here.
func (c *Coordinator) checkFree(ctx context.Context, req Request) error {
	existing, err := c.ledger.ListForDay(ctx, req.DoctorID, req.Date)
	if err != nil {
		return err
	}
	for _, appt := range existing {
		if appt.StartTime == req.StartTime {
			return ErrSlotAlreadyBooked
		}
	}
	return nil
}
