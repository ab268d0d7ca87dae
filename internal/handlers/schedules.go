package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nikifmak/hospital/internal/model"
	"github.com/nikifmak/hospital/internal/schedule"
	"github.com/nikifmak/hospital/internal/storage"
)

type ScheduleService interface {
	GetByDoctor(ctx context.Context, doctorID int) ([]model.Schedule, error)
	Create(ctx context.Context, window model.Schedule) (model.Schedule, error)
	Update(ctx context.Context, window model.Schedule) (model.Schedule, error)
	ReplaceWeek(ctx context.Context, doctorID int, windows []model.Schedule) ([]model.Schedule, error)
}

type ScheduleHandler struct {
	service ScheduleService
	logger  *slog.Logger
}

func NewScheduleHandler(service ScheduleService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{service: service, logger: logger}
}

type scheduleRequest struct {
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type scheduleResponse struct {
	ID        int    `json:"id"`
	DoctorID  int    `json:"doctor_id"`
	DayOfWeek string `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Get handles GET /v1/doctors/{doctorID}/schedule.
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := doctorIDFromPath(w, r)
	if !ok {
		return
	}

	windows, err := h.service.GetByDoctor(r.Context(), doctorID)
	if err != nil {
		h.writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponses(windows))
}

// Create handles POST /v1/doctors/{doctorID}/schedule.
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := doctorIDFromPath(w, r)
	if !ok {
		return
	}
	window, ok := h.decodeWindow(w, r, doctorID)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), window)
	if err != nil {
		h.writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toScheduleResponse(created))
}

// Update handles PUT /v1/doctors/{doctorID}/schedule.
func (h *ScheduleHandler) Update(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := doctorIDFromPath(w, r)
	if !ok {
		return
	}
	window, ok := h.decodeWindow(w, r, doctorID)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), window)
	if err != nil {
		h.writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(updated))
}

// ReplaceWeek handles PUT /v1/doctors/{doctorID}/schedule/week with the full
// list of windows for the doctor's week.
func (h *ScheduleHandler) ReplaceWeek(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := doctorIDFromPath(w, r)
	if !ok {
		return
	}

	var reqs []scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if len(reqs) == 0 {
		http.Error(w, "at least one schedule entry required", http.StatusBadRequest)
		return
	}

	windows := make([]model.Schedule, 0, len(reqs))
	for _, req := range reqs {
		window, err := parseWindow(req, doctorID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		windows = append(windows, window)
	}

	replaced, err := h.service.ReplaceWeek(r.Context(), doctorID, windows)
	if err != nil {
		h.writeScheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponses(replaced))
}

func (h *ScheduleHandler) decodeWindow(w http.ResponseWriter, r *http.Request, doctorID int) (model.Schedule, bool) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return model.Schedule{}, false
	}
	window, err := parseWindow(req, doctorID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return model.Schedule{}, false
	}
	return window, true
}

func parseWindow(req scheduleRequest, doctorID int) (model.Schedule, error) {
	day, err := model.ParseDayOfWeek(req.DayOfWeek)
	if err != nil {
		return model.Schedule{}, err
	}
	start, err := model.ParseTimeOfDay(strings.TrimSpace(req.StartTime))
	if err != nil {
		return model.Schedule{}, err
	}
	end, err := model.ParseTimeOfDay(strings.TrimSpace(req.EndTime))
	if err != nil {
		return model.Schedule{}, err
	}
	return model.Schedule{
		DoctorID:  doctorID,
		Day:       day,
		StartTime: start,
		EndTime:   end,
	}, nil
}

func (h *ScheduleHandler) writeScheduleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schedule.ErrInvalidWindow):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, schedule.ErrNotFound):
		http.Error(w, "schedule not found", http.StatusNotFound)
	case errors.Is(err, schedule.ErrAlreadyExists):
		http.Error(w, "resource already exists", http.StatusConflict)
	case storage.IsForeignKeyViolation(err):
		http.Error(w, "unknown doctor", http.StatusConflict)
	default:
		h.logger.Error("schedule operation failed", "err", err)
		http.Error(w, "schedule operation failed", http.StatusInternalServerError)
	}
}

func toScheduleResponse(s model.Schedule) scheduleResponse {
	return scheduleResponse{
		ID:        s.ID,
		DoctorID:  s.DoctorID,
		DayOfWeek: s.Day.String(),
		StartTime: s.StartTime.String(),
		EndTime:   s.EndTime.String(),
	}
}

func toScheduleResponses(windows []model.Schedule) []scheduleResponse {
	items := make([]scheduleResponse, 0, len(windows))
	for _, w := range windows {
		items = append(items, toScheduleResponse(w))
	}
	return items
}
