package server

import (
	"net/http"
)

// Google Calendar API
func (s *Server) handleGCalStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"connected": false,
		"message":   "Not configured",
	}

	if s.gcalClient == nil {
		status["message"] = "Google Calendar client not initialized. Check credentials.json."
		respondJSON(w, http.StatusOK, status)
		return
	}

	if s.gcalClient.IsAuthenticated() {
		status["connected"] = true
		status["message"] = "Connected"
	} else {
		status["message"] = "Not authenticated. Connect Google Calendar to get started."
	}

	respondJSON(w, http.StatusOK, status)
}

// handleGCalConnect hands the frontend the Google consent URL. The grant
// comes back on /oauth/callback.
func (s *Server) handleGCalConnect(w http.ResponseWriter, r *http.Request) {
	if s.gcalClient == nil {
		respondError(w, http.StatusServiceUnavailable, "Google Calendar not configured. Check credentials.json.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"auth_url": s.gcalClient.GetAuthURL(),
	})
}

// handleOAuthCallback exchanges the authorization code Google redirected
// back with for a calendar token.
func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "No authorization code received")
		return
	}

	if s.gcalClient == nil {
		respondError(w, http.StatusServiceUnavailable, "Google Calendar not configured")
		return
	}

	if err := s.gcalClient.ExchangeCode(r.Context(), code); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to exchange code: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "connected"})
}
