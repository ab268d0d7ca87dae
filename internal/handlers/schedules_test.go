package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nikifmak/hospital/internal/model"
	"github.com/nikifmak/hospital/internal/schedule"
)

type fakeScheduleService struct {
	windows []model.Schedule
	err     error
}

func (s *fakeScheduleService) GetByDoctor(context.Context, int) ([]model.Schedule, error) {
	return s.windows, s.err
}

func (s *fakeScheduleService) Create(_ context.Context, window model.Schedule) (model.Schedule, error) {
	if s.err != nil {
		return model.Schedule{}, s.err
	}
	window.ID = 1
	return window, nil
}

func (s *fakeScheduleService) Update(_ context.Context, window model.Schedule) (model.Schedule, error) {
	if s.err != nil {
		return model.Schedule{}, s.err
	}
	window.ID = 1
	return window, nil
}

func (s *fakeScheduleService) ReplaceWeek(_ context.Context, _ int, windows []model.Schedule) ([]model.Schedule, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range windows {
		windows[i].ID = i + 1
	}
	return windows, nil
}

func newScheduleServer(svc ScheduleService) *http.ServeMux {
	h := NewScheduleHandler(svc, slog.New(slog.DiscardHandler))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/doctors/{doctorID}/schedule", h.Get)
	mux.HandleFunc("POST /v1/doctors/{doctorID}/schedule", h.Create)
	mux.HandleFunc("PUT /v1/doctors/{doctorID}/schedule", h.Update)
	mux.HandleFunc("PUT /v1/doctors/{doctorID}/schedule/week", h.ReplaceWeek)
	return mux
}

func doScheduleRequest(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rw := httptest.NewRecorder()
	mux.ServeHTTP(rw, req)
	return rw
}

func TestGetSchedule(t *testing.T) {
	svc := &fakeScheduleService{windows: []model.Schedule{
		{ID: 1, DoctorID: 1, Day: model.Monday, StartTime: model.ClockTime(9, 0), EndTime: model.ClockTime(17, 0)},
	}}
	mux := newScheduleServer(svc)

	rw := doScheduleRequest(t, mux, http.MethodGet, "/v1/doctors/1/schedule", "")
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	var items []scheduleResponse
	if err := json.Unmarshal(rw.Body.Bytes(), &items); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(items) != 1 || items[0].DayOfWeek != "MONDAY" || items[0].StartTime != "09:00" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestGetSchedule_NotFound(t *testing.T) {
	mux := newScheduleServer(&fakeScheduleService{err: schedule.ErrNotFound})
	rw := doScheduleRequest(t, mux, http.MethodGet, "/v1/doctors/1/schedule", "")
	if rw.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rw.Code)
	}
}

func TestCreateSchedule_Created(t *testing.T) {
	mux := newScheduleServer(&fakeScheduleService{})
	rw := doScheduleRequest(t, mux, http.MethodPost, "/v1/doctors/1/schedule",
		`{"day_of_week":"MONDAY","start_time":"09:00","end_time":"17:00"}`)
	if rw.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rw.Code, rw.Body.String())
	}
	var resp scheduleResponse
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.ID != 1 || resp.DoctorID != 1 || resp.EndTime != "17:00" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCreateSchedule_Errors(t *testing.T) {
	cases := map[string]struct {
		svcErr error
		body   string
		want   int
	}{
		"duplicate day":  {schedule.ErrAlreadyExists, `{"day_of_week":"MONDAY","start_time":"09:00","end_time":"17:00"}`, http.StatusConflict},
		"invalid window": {schedule.ErrInvalidWindow, `{"day_of_week":"MONDAY","start_time":"17:00","end_time":"09:00"}`, http.StatusBadRequest},
		"bad weekday":    {nil, `{"day_of_week":"FUNDAY","start_time":"09:00","end_time":"17:00"}`, http.StatusBadRequest},
		"bad time":       {nil, `{"day_of_week":"MONDAY","start_time":"nine","end_time":"17:00"}`, http.StatusBadRequest},
		"malformed json": {nil, `{"day_of_week":`, http.StatusBadRequest},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			mux := newScheduleServer(&fakeScheduleService{err: tc.svcErr})
			rw := doScheduleRequest(t, mux, http.MethodPost, "/v1/doctors/1/schedule", tc.body)
			if rw.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rw.Code)
			}
		})
	}
}

func TestUpdateSchedule_NotFound(t *testing.T) {
	mux := newScheduleServer(&fakeScheduleService{err: schedule.ErrNotFound})
	rw := doScheduleRequest(t, mux, http.MethodPut, "/v1/doctors/1/schedule",
		`{"day_of_week":"MONDAY","start_time":"10:00","end_time":"18:00"}`)
	if rw.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rw.Code)
	}
}

func TestReplaceWeek(t *testing.T) {
	mux := newScheduleServer(&fakeScheduleService{})
	rw := doScheduleRequest(t, mux, http.MethodPut, "/v1/doctors/1/schedule/week",
		`[{"day_of_week":"MONDAY","start_time":"09:00","end_time":"17:00"},
		  {"day_of_week":"TUESDAY","start_time":"10:00","end_time":"14:00"}]`)
	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rw.Code, rw.Body.String())
	}
	var items []scheduleResponse
	if err := json.Unmarshal(rw.Body.Bytes(), &items); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(items) != 2 || items[1].DayOfWeek != "TUESDAY" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestReplaceWeek_EmptyBody(t *testing.T) {
	mux := newScheduleServer(&fakeScheduleService{})
	rw := doScheduleRequest(t, mux, http.MethodPut, "/v1/doctors/1/schedule/week", `[]`)
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rw.Code)
	}
}
