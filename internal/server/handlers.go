package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/calvinschedulo/schedulo/internal/chat"
	"github.com/calvinschedulo/schedulo/internal/event"
	"github.com/calvinschedulo/schedulo/internal/extract"
	"github.com/calvinschedulo/schedulo/internal/schedule"
)

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	// Check database connectivity
	if err := s.db.Ping(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	status := map[string]interface{}{
		"status": "healthy",
		"gcal":   "disconnected",
		"canvas": "unconfigured",
	}

	if s.gcalClient != nil && s.gcalClient.IsAuthenticated() {
		status["gcal"] = "connected"
	}
	if s.assignments != nil && s.assignments.IsConfigured() {
		status["canvas"] = "configured"
	}

	respondJSON(w, http.StatusOK, status)
}

// handlePromptCalvin runs one conversation turn. A normal turn returns the
// assistant's reply; the trigger phrase finalizes the plan and returns the
// synthesis result instead.
func (s *Server) handlePromptCalvin(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("input")
	if input == "" {
		respondError(w, http.StatusBadRequest, "Input parameter is required")
		return
	}

	userID := r.URL.Query().Get("user")
	if userID == "" {
		userID = "default"
	}

	// Best effort: a fresh session still works without the calendar
	// framing, just without color continuity.
	hint, err := s.planner.CalendarHint(r.Context())
	if err != nil {
		fmt.Printf("Calvin: calendar hint unavailable: %v\n", err)
		hint = "No upcoming events."
	}

	reply, err := s.chatService.Send(r.Context(), userID, input, hint)
	if errors.Is(err, chat.ErrEmptyInput) {
		respondError(w, http.StatusBadRequest, "Input parameter is required")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !reply.Finalized {
		respondJSON(w, http.StatusOK, reply)
		return
	}

	result, err := s.planner.Synthesize(r.Context(), reply.Text)
	if err != nil {
		var extractErr *extract.ExtractionError
		switch {
		case errors.Is(err, schedule.ErrEmptyBatch):
			respondError(w, http.StatusUnprocessableEntity, "no valid events in the finalized plan")
		case errors.As(err, &extractErr):
			respondError(w, http.StatusBadGateway, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "days must be a non-negative integer")
			return
		}
		days = parsed
	}

	events, err := s.planner.Upcoming(r.Context(), days)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if events == nil {
		events = []event.Record{}
	}

	respondJSON(w, http.StatusOK, events)
}

func (s *Server) handleCreateEvents(w http.ResponseWriter, r *http.Request) {
	var drafts []event.Record
	if err := json.NewDecoder(r.Body).Decode(&drafts); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := s.planner.CreateEvents(r.Context(), drafts)
	if err != nil {
		if errors.Is(err, schedule.ErrEmptyBatch) {
			respondError(w, http.StatusBadRequest, "no valid events in request")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleDeleteEvents removes previously synthesized events, scoped either
// to one assignment (course + assignment) or to everything with a title.
// Hand-created calendar entries are never touched.
func (s *Server) handleDeleteEvents(w http.ResponseWriter, r *http.Request) {
	course := r.URL.Query().Get("course")
	assignment := r.URL.Query().Get("assignment")
	name := r.URL.Query().Get("name")

	var (
		deleted int
		err     error
	)
	switch {
	case course != "" && assignment != "":
		deleted, err = s.cleaner.DeleteByAssignment(r.Context(), course, assignment)
	case name != "":
		deleted, err = s.cleaner.DeleteByName(r.Context(), name)
	default:
		respondError(w, http.StatusBadRequest, "provide course and assignment, or name")
		return
	}

	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":   err.Error(),
			"deleted": deleted,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	if s.assignments == nil || !s.assignments.IsConfigured() {
		respondError(w, http.StatusServiceUnavailable, "Canvas not configured. Set CANVAS_BASE_URL and CANVAS_API_TOKEN.")
		return
	}

	assignments, err := s.assignments.AllUnsubmitted(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, assignments)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		fmt.Printf("Error encoding JSON response: %v\n", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
