package model

import "time"

// Schedule is a doctor's recurring working-hours window for one weekday.
// At most one row exists per (doctor, weekday); the window is half-open,
// [StartTime, EndTime), and StartTime < EndTime always holds.
type Schedule struct {
	ID        int
	DoctorID  int
	Day       DayOfWeek
	StartTime TimeOfDay
	EndTime   TimeOfDay
}

// Appointment is a committed booking. Rows are immutable once written and
// unique per (doctor, date, start time).
type Appointment struct {
	ID        int
	DoctorID  int
	PatientID int
	Date      time.Time
	StartTime TimeOfDay
	EndTime   TimeOfDay
	CreatedAt time.Time
}

type Doctor struct {
	ID   int
	Name string
}

type Patient struct {
	ID   int
	Name string
}
