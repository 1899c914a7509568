package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/teemow/meetsched/internal/logging"
	"github.com/teemow/meetsched/internal/schedule"
)

type statusResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Connected bool   `json:"connected"`
	SetupURL  string `json:"setupUrl,omitempty"`
}

type configResponse struct {
	MeetingDuration  int    `json:"meetingDuration"`
	MaxDaysInAdvance int    `json:"maxDaysInAdvance"`
	MinHoursNotice   int    `json:"minHoursNotice"`
	OwnerName        string `json:"ownerName"`
}

type datesResponse struct {
	Dates []string `json:"dates"`
}

type availabilityResponse struct {
	Slots []schedule.SlotOffer `json:"slots"`
	Date  string               `json:"date"`
}

type checkSlotRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type checkSlotResponse struct {
	Available bool `json:"available"`
}

type bookRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Start string `json:"start"`
	End   string `json:"end"`
	Notes string `json:"notes"`
}

type bookResponse struct {
	Success    bool   `json:"success"`
	MeetLink   string `json:"meetLink"`
	EventID    string `json:"eventId"`
	ICSContent string `json:"icsContent"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status:    "ok",
		Service:   "meetsched",
		Connected: s.auth.Connected(),
	}
	if !resp.Connected {
		resp.SetupURL = "/auth/setup"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	policy := s.engine.Policy()
	writeJSON(w, http.StatusOK, configResponse{
		MeetingDuration:  policy.MeetingDuration,
		MaxDaysInAdvance: policy.MaxDaysInAdvance,
		MinHoursNotice:   policy.MinHoursNotice,
		OwnerName:        s.engine.Owner().Name,
	})
}

func (s *Server) handleAvailableDates(w http.ResponseWriter, r *http.Request) {
	if !s.auth.Connected() {
		writeError(w, http.StatusServiceUnavailable, "Calendar not connected")
		return
	}

	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "Valid month required")
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1 {
		writeError(w, http.StatusBadRequest, "Valid year required")
		return
	}

	dates := s.engine.AvailableDates(year, time.Month(month))
	if dates == nil {
		dates = []string{}
	}
	writeJSON(w, http.StatusOK, datesResponse{Dates: dates})
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		writeError(w, http.StatusBadRequest, "Date required")
		return
	}
	date, err := schedule.ParseDate(dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	slots, err := s.engine.AvailableSlots(r.Context(), date)
	if err != nil {
		s.writeEngineError(w, r, "availability", err)
		return
	}
	if slots == nil {
		slots = []schedule.SlotOffer{}
	}
	writeJSON(w, http.StatusOK, availabilityResponse{Slots: slots, Date: date.String()})
}

func (s *Server) handleCheckSlot(w http.ResponseWriter, r *http.Request) {
	var req checkSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Valid start time required")
		return
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Valid end time required")
		return
	}

	available, err := s.engine.CheckSlot(r.Context(), start, end)
	if err != nil {
		s.writeEngineError(w, r, "check-slot", err)
		return
	}
	writeJSON(w, http.StatusOK, checkSlotResponse{Available: available})
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" || req.Start == "" || req.End == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Valid start time required")
		return
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Valid end time required")
		return
	}

	booking := schedule.Request{
		Name:  req.Name,
		Email: req.Email,
		Start: start,
		End:   end,
		Notes: req.Notes,
	}

	conf, err := s.engine.Book(r.Context(), booking)
	if err != nil {
		s.writeEngineError(w, r, "book", err)
		return
	}

	icsContent, err := s.formatter.Render(conf, booking, s.engine.Owner().Name, s.engine.Owner().Email)
	if err != nil {
		// The booking is already committed; a formatting failure must not
		// look like a failed booking.
		s.logger.Error("failed to render invite", logging.Err(err), "event_id", conf.EventID)
		icsContent = ""
	}

	writeJSON(w, http.StatusOK, bookResponse{
		Success:    true,
		MeetLink:   conf.MeetLink,
		EventID:    conf.EventID,
		ICSContent: icsContent,
	})
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses.
func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger := logging.WithOperation(s.logger, op)

	switch {
	case errors.Is(err, schedule.ErrNotConnected):
		writeError(w, http.StatusServiceUnavailable, "Calendar not connected")
		return
	case errors.Is(err, schedule.ErrSlotTaken):
		writeError(w, http.StatusConflict, "Slot no longer available")
		return
	}

	var verr *schedule.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Error())
		return
	}

	var perr *schedule.ProviderError
	if errors.As(err, &perr) {
		logger.Error("provider call failed", logging.Err(err))
		writeError(w, http.StatusBadGateway, "Calendar provider error")
		return
	}

	logger.Error("request failed", logging.Err(err))
	writeError(w, http.StatusInternalServerError, "Internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
