package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nikifmak/hospital/internal/booking"
	"github.com/nikifmak/hospital/internal/model"
	"github.com/nikifmak/hospital/internal/outbox"
	"github.com/nikifmak/hospital/libs/db"
)

// AppointmentRepository is the booking ledger. The unique index on
// (doctor_id, date, start_time) is what makes TryCommit a true conditional
// insert rather than a check-then-write.
type AppointmentRepository struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewAppointmentRepository(pool *db.Pool, outboxRepo *outbox.Repository) *AppointmentRepository {
	return &AppointmentRepository{pool: pool, outbox: outboxRepo}
}

func (r *AppointmentRepository) ListForDay(ctx context.Context, doctorID int, date time.Time) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, patient_id, date, start_time, end_time, created_at
		FROM appointment
		WHERE doctor_id = $1 AND date = $2
		ORDER BY start_time
	`, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		var (
			appt  model.Appointment
			start pgtype.Time
			end   pgtype.Time
		)
		if err := rows.Scan(&appt.ID, &appt.DoctorID, &appt.PatientID, &appt.Date, &start, &end, &appt.CreatedAt); err != nil {
			return nil, err
		}
		appt.StartTime = timeOfDay(start)
		appt.EndTime = timeOfDay(end)
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

// TryCommit inserts the appointment if and only if its slot key is still
// free. ON CONFLICT DO NOTHING turns a lost race into zero returned rows
// instead of an error, so exactly one concurrent caller ever sees a row come
// back. The booked event rides the same transaction; a rejected insert leaves
// no event behind. Foreign-key failures (unknown doctor or patient) propagate
// for the caller to classify.
func (r *AppointmentRepository) TryCommit(ctx context.Context, appt model.Appointment) (model.Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO appointment (doctor_id, patient_id, date, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (doctor_id, date, start_time) DO NOTHING
		RETURNING id, created_at
	`, appt.DoctorID, appt.PatientID, appt.Date, pgTime(appt.StartTime), pgTime(appt.EndTime)).Scan(&appt.ID, &appt.CreatedAt)
	if err != nil {
		if IsNotFound(err) {
			return model.Appointment{}, booking.ErrSlotAlreadyBooked
		}
		return model.Appointment{}, err
	}

	evt, err := outbox.AppointmentBooked(appt)
	if err != nil {
		return model.Appointment{}, err
	}
	if err := r.outbox.Insert(ctx, tx, evt); err != nil {
		return model.Appointment{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}
