package outbox

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/nikifmak/hospital/internal/model"
)

// Event is the domain event envelope written to the outbox table. The Kafka
// topic name equals EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

const AppointmentBookedType = "hospital.appointment.booked.v1"

// AppointmentBooked builds the event emitted when a booking commits. It is
// written in the same transaction as the appointment row, so an event exists
// exactly when the booking does.
func AppointmentBooked(appt model.Appointment) (Event, error) {
	payload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"doctor_id":      appt.DoctorID,
		"patient_id":     appt.PatientID,
		"date":           model.FormatDate(appt.Date),
		"start_time":     appt.StartTime.String(),
		"end_time":       appt.EndTime.String(),
		"created_at":     appt.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: "appointment",
		AggregateID:   strconv.Itoa(appt.ID),
		EventType:     AppointmentBookedType,
		Payload:       payload,
	}, nil
}
