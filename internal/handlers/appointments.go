package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nikifmak/hospital/internal/availability"
	"github.com/nikifmak/hospital/internal/booking"
	"github.com/nikifmak/hospital/internal/model"
	"github.com/nikifmak/hospital/internal/storage"
)

// Booker is the single operation the booking core exposes to transport.
type Booker interface {
	Book(ctx context.Context, req booking.Request) (model.Appointment, error)
}

type AppointmentReader interface {
	ListForDay(ctx context.Context, doctorID int, date time.Time) ([]model.Appointment, error)
}

type AppointmentHandler struct {
	booker Booker
	reader AppointmentReader
	logger *slog.Logger
}

func NewAppointmentHandler(booker Booker, reader AppointmentReader, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{booker: booker, reader: reader, logger: logger}
}

type createAppointmentRequest struct {
	PatientID int    `json:"patient_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
}

type appointmentResponse struct {
	ID        int    `json:"id"`
	DoctorID  int    `json:"doctor_id"`
	PatientID int    `json:"patient_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	CreatedAt string `json:"created_at"`
}

// Create handles POST /v1/doctors/{doctorID}/appointments. All three booking
// rejections map to 409 so a caller retries with different input, never the
// same request.
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := doctorIDFromPath(w, r)
	if !ok {
		return
	}

	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.PatientID <= 0 {
		http.Error(w, "patient_id required", http.StatusBadRequest)
		return
	}
	date, err := model.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	start, err := model.ParseTimeOfDay(strings.TrimSpace(req.StartTime))
	if err != nil {
		http.Error(w, "invalid start_time", http.StatusBadRequest)
		return
	}

	appt, err := h.booker.Book(r.Context(), booking.Request{
		DoctorID:  doctorID,
		PatientID: req.PatientID,
		Date:      date,
		StartTime: start,
	})
	if err != nil {
		h.writeBookingError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
}

// List handles GET /v1/doctors/{doctorID}/appointments?date=2006-01-02.
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := doctorIDFromPath(w, r)
	if !ok {
		return
	}
	date, err := model.ParseDate(strings.TrimSpace(r.URL.Query().Get("date")))
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	appts, err := h.reader.ListForDay(r.Context(), doctorID, date)
	if err != nil {
		h.logger.Error("failed to list appointments", "err", err, "doctor_id", doctorID)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	items := make([]appointmentResponse, 0, len(appts))
	for _, appt := range appts {
		items = append(items, toAppointmentResponse(appt))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AppointmentHandler) writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, availability.ErrDoctorUnavailable):
		http.Error(w, "doctor is not available on this day", http.StatusConflict)
	case errors.Is(err, availability.ErrSlotNotBookable):
		http.Error(w, "slot is not bookable", http.StatusConflict)
	case errors.Is(err, booking.ErrSlotAlreadyBooked):
		http.Error(w, "slot is already booked", http.StatusConflict)
	case storage.IsForeignKeyViolation(err):
		// Referential lookups fail the same way as business conflicts here.
		http.Error(w, "unknown doctor or patient", http.StatusConflict)
	default:
		h.logger.Error("booking failed", "err", err)
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
	}
}

func toAppointmentResponse(appt model.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:        appt.ID,
		DoctorID:  appt.DoctorID,
		PatientID: appt.PatientID,
		Date:      model.FormatDate(appt.Date),
		StartTime: appt.StartTime.String(),
		EndTime:   appt.EndTime.String(),
		CreatedAt: appt.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func doctorIDFromPath(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("doctorID"))
	if err != nil || id <= 0 {
		http.Error(w, "invalid doctor id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
