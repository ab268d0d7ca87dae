package storage

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nikifmak/hospital/internal/model"
	"github.com/nikifmak/hospital/internal/schedule"
	"github.com/nikifmak/hospital/libs/db"
)

// ScheduleRepository persists weekly working-hours windows. It backs both the
// schedule-management service and the availability resolver's read path.
type ScheduleRepository struct {
	pool *db.Pool
}

func NewScheduleRepository(pool *db.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

// GetWindow returns the doctor's window for one weekday, if any. The unique
// constraint on (doctor_id, day_of_week) guarantees at most one row.
func (r *ScheduleRepository) GetWindow(ctx context.Context, doctorID int, day model.DayOfWeek) (model.Schedule, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, doctor_id, day_of_week, start_time, end_time
		FROM schedule
		WHERE doctor_id = $1 AND day_of_week = $2
	`, doctorID, day.String())

	window, err := scanSchedule(row)
	if err != nil {
		if IsNotFound(err) {
			return model.Schedule{}, false, nil
		}
		return model.Schedule{}, false, err
	}
	return window, true, nil
}

func (r *ScheduleRepository) ListByDoctor(ctx context.Context, doctorID int) ([]model.Schedule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, day_of_week, start_time, end_time
		FROM schedule
		WHERE doctor_id = $1
		ORDER BY id
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []model.Schedule
	for rows.Next() {
		window, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		windows = append(windows, window)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return windows, nil
}

func (r *ScheduleRepository) Create(ctx context.Context, s model.Schedule) (model.Schedule, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO schedule (doctor_id, day_of_week, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, s.DoctorID, s.Day.String(), pgTime(s.StartTime), pgTime(s.EndTime)).Scan(&s.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return model.Schedule{}, schedule.ErrAlreadyExists
		}
		return model.Schedule{}, err
	}
	return s, nil
}

func (r *ScheduleRepository) Update(ctx context.Context, s model.Schedule) (model.Schedule, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE schedule
		SET start_time = $3, end_time = $4
		WHERE doctor_id = $1 AND day_of_week = $2
		RETURNING id
	`, s.DoctorID, s.Day.String(), pgTime(s.StartTime), pgTime(s.EndTime)).Scan(&s.ID)
	if err != nil {
		if IsNotFound(err) {
			return model.Schedule{}, schedule.ErrNotFound
		}
		return model.Schedule{}, err
	}
	return s, nil
}

// ReplaceWeek swaps the doctor's whole week in one transaction so readers
// never observe a half-replaced schedule.
func (r *ScheduleRepository) ReplaceWeek(ctx context.Context, doctorID int, windows []model.Schedule) ([]model.Schedule, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM schedule WHERE doctor_id = $1`, doctorID); err != nil {
		return nil, err
	}

	replaced := make([]model.Schedule, 0, len(windows))
	for _, w := range windows {
		w.DoctorID = doctorID
		err := tx.QueryRow(ctx, `
			INSERT INTO schedule (doctor_id, day_of_week, start_time, end_time)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, w.DoctorID, w.Day.String(), pgTime(w.StartTime), pgTime(w.EndTime)).Scan(&w.ID)
		if err != nil {
			return nil, err
		}
		replaced = append(replaced, w)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return replaced, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (model.Schedule, error) {
	var (
		s       model.Schedule
		dayName string
		start   pgtype.Time
		end     pgtype.Time
	)
	if err := row.Scan(&s.ID, &s.DoctorID, &dayName, &start, &end); err != nil {
		return model.Schedule{}, err
	}
	day, err := model.ParseDayOfWeek(dayName)
	if err != nil {
		return model.Schedule{}, err
	}
	s.Day = day
	s.StartTime = timeOfDay(start)
	s.EndTime = timeOfDay(end)
	return s, nil
}
