package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nikifmak/hospital/internal/availability"
	"github.com/nikifmak/hospital/internal/booking"
	"github.com/nikifmak/hospital/internal/model"
)

type fakeBooker struct {
	appt model.Appointment
	err  error

	gotReq booking.Request
}

func (b *fakeBooker) Book(_ context.Context, req booking.Request) (model.Appointment, error) {
	b.gotReq = req
	if b.err != nil {
		return model.Appointment{}, b.err
	}
	return b.appt, nil
}

type fakeReader struct {
	appts []model.Appointment
	err   error
}

func (r *fakeReader) ListForDay(context.Context, int, time.Time) ([]model.Appointment, error) {
	return r.appts, r.err
}

func newAppointmentServer(booker Booker, reader AppointmentReader) *http.ServeMux {
	h := NewAppointmentHandler(booker, reader, slog.New(slog.DiscardHandler))
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/doctors/{doctorID}/appointments", h.Create)
	mux.HandleFunc("GET /v1/doctors/{doctorID}/appointments", h.List)
	return mux
}

func postBooking(t *testing.T, mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rw := httptest.NewRecorder()
	mux.ServeHTTP(rw, req)
	return rw
}

func TestCreateAppointment_Created(t *testing.T) {
	booker := &fakeBooker{appt: model.Appointment{
		ID:        42,
		DoctorID:  1,
		PatientID: 7,
		Date:      time.Date(2023, 3, 6, 0, 0, 0, 0, time.UTC),
		StartTime: model.ClockTime(14, 0),
		EndTime:   model.ClockTime(15, 0),
		CreatedAt: time.Date(2023, 3, 1, 10, 30, 0, 0, time.UTC),
	}}
	mux := newAppointmentServer(booker, &fakeReader{})

	rw := postBooking(t, mux, "/v1/doctors/1/appointments",
		`{"patient_id":7,"date":"2023-03-06","start_time":"14:00"}`)

	if rw.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rw.Code, rw.Body.String())
	}
	var resp appointmentResponse
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.ID != 42 || resp.StartTime != "14:00" || resp.EndTime != "15:00" || resp.Date != "2023-03-06" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if booker.gotReq.DoctorID != 1 || booker.gotReq.PatientID != 7 {
		t.Fatalf("unexpected booking request: %+v", booker.gotReq)
	}
}

func TestCreateAppointment_RejectionsMapToConflict(t *testing.T) {
	cases := map[string]error{
		"doctor unavailable":  availability.ErrDoctorUnavailable,
		"slot not bookable":   availability.ErrSlotNotBookable,
		"slot already booked": booking.ErrSlotAlreadyBooked,
		"unknown references":  &pgconn.PgError{Code: "23503"},
	}
	for name, bookErr := range cases {
		t.Run(name, func(t *testing.T) {
			mux := newAppointmentServer(&fakeBooker{err: bookErr}, &fakeReader{})
			rw := postBooking(t, mux, "/v1/doctors/1/appointments",
				`{"patient_id":7,"date":"2023-03-06","start_time":"14:00"}`)
			if rw.Code != http.StatusConflict {
				t.Fatalf("expected 409, got %d", rw.Code)
			}
		})
	}
}

func TestCreateAppointment_BadInput(t *testing.T) {
	mux := newAppointmentServer(&fakeBooker{}, &fakeReader{})

	cases := map[string]struct {
		path string
		body string
	}{
		"malformed json":  {"/v1/doctors/1/appointments", `{"patient_id":`},
		"missing patient": {"/v1/doctors/1/appointments", `{"date":"2023-03-06","start_time":"14:00"}`},
		"bad date":        {"/v1/doctors/1/appointments", `{"patient_id":7,"date":"06-03-2023","start_time":"14:00"}`},
		"bad time":        {"/v1/doctors/1/appointments", `{"patient_id":7,"date":"2023-03-06","start_time":"2pm"}`},
		"bad doctor id":   {"/v1/doctors/zero/appointments", `{"patient_id":7,"date":"2023-03-06","start_time":"14:00"}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rw := postBooking(t, mux, tc.path, tc.body)
			if rw.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rw.Code)
			}
		})
	}
}

func TestCreateAppointment_InfrastructureError(t *testing.T) {
	mux := newAppointmentServer(&fakeBooker{err: context.DeadlineExceeded}, &fakeReader{})
	rw := postBooking(t, mux, "/v1/doctors/1/appointments",
		`{"patient_id":7,"date":"2023-03-06","start_time":"14:00"}`)
	if rw.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rw.Code)
	}
}

func TestListAppointments(t *testing.T) {
	reader := &fakeReader{appts: []model.Appointment{
		{
			ID: 1, DoctorID: 1, PatientID: 7,
			Date:      time.Date(2023, 3, 6, 0, 0, 0, 0, time.UTC),
			StartTime: model.ClockTime(9, 0), EndTime: model.ClockTime(10, 0),
			CreatedAt: time.Now().UTC(),
		},
	}}
	mux := newAppointmentServer(&fakeBooker{}, reader)

	req := httptest.NewRequest(http.MethodGet, "/v1/doctors/1/appointments?date=2023-03-06", nil)
	rw := httptest.NewRecorder()
	mux.ServeHTTP(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	var items []appointmentResponse
	if err := json.Unmarshal(rw.Body.Bytes(), &items); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(items) != 1 || items[0].StartTime != "09:00" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestListAppointments_RequiresDate(t *testing.T) {
	mux := newAppointmentServer(&fakeBooker{}, &fakeReader{})
	req := httptest.NewRequest(http.MethodGet, "/v1/doctors/1/appointments", nil)
	rw := httptest.NewRecorder()
	mux.ServeHTTP(rw, req)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}
