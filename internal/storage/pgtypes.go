package storage

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nikifmak/hospital/internal/model"
)

const microsPerMinute = 60 * 1_000_000

// Postgres TIME columns travel as pgtype.Time (microseconds since midnight);
// the domain works in whole minutes.

func pgTime(t model.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t) * microsPerMinute, Valid: true}
}

func timeOfDay(t pgtype.Time) model.TimeOfDay {
	return model.TimeOfDay(t.Microseconds / microsPerMinute)
}
