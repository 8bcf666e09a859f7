package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"deskhand/license"
	"deskhand/storage"
)

// handleConfig returns a sanitized view of the configuration
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg := s.GetConfig()

	// Hide the access key, expose only whether one is set
	sanitized := struct {
		ToggleShortcut string `json:"toggleShortcut"`
		WebPort        int    `json:"webPort"`
		AudioDevice    string `json:"audioDevice"`
		Model          string `json:"model"`
		Endpoint       string `json:"endpoint"`
		HasAccessKey   bool   `json:"hasAccessKey"`
	}{
		ToggleShortcut: cfg.Shortcuts.ToggleVisibility,
		WebPort:        cfg.Web.Port,
		AudioDevice:    cfg.Audio.Device,
		Model:          cfg.API.Model,
		Endpoint:       cfg.API.Endpoint,
		HasAccessKey:   cfg.API.AccessKey != "",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sanitized)
}

// handleStatus returns the current agent status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	status := s.status
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// handleStats returns action statistics for the specified time range
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	daysStr := r.URL.Query().Get("days")
	days := 7 // default to 7 days
	if daysStr != "" {
		if d, err := strconv.Atoi(daysStr); err == nil && d > 0 {
			days = d
		}
	}

	overall, err := s.db.GetOverallStats(days)
	if err != nil {
		slog.Error("Failed to get overall stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	kinds, err := s.db.GetKindStats(days)
	if err != nil {
		slog.Error("Failed to get kind stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"overall": overall,
		"kinds":   kinds,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleHistory returns the paginated action log
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	offset := 0

	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		offset = o
	}

	actions, err := s.db.GetActions(limit, offset)
	if err != nil {
		slog.Error("Failed to get actions", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	total, err := s.db.GetActionCount()
	if err != nil {
		slog.Error("Failed to get action count", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	if actions == nil {
		actions = []storage.Action{}
	}

	response := map[string]interface{}{
		"actions": actions,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleLicense reports the stored license, masked for display
func (s *Server) handleLicense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key, err := s.license.StoredKey()
	if err != nil {
		slog.Error("Failed to read stored license", "error", err)
		http.Error(w, "Failed to read license", http.StatusInternalServerError)
		return
	}

	response := struct {
		Activated bool   `json:"activated"`
		MaskedKey string `json:"maskedKey,omitempty"`
	}{
		Activated: key != "",
		MaskedKey: license.MaskKey(key),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleLicenseActivate activates a license key
func (s *Server) handleLicenseActivate(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req struct {
		LicenseKey string `json:"license_key"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.LicenseKey == "" {
		http.Error(w, "license_key is required", http.StatusBadRequest)
		return
	}

	resp, err := s.license.Activate(r.Context(), req.LicenseKey)
	if err != nil {
		slog.Error("License activation failed", "error", err)
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleLicenseCheckout returns the hosted checkout page URL
func (s *Server) handleLicenseCheckout(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	resp, err := s.license.CheckoutURL(r.Context())
	if err != nil {
		slog.Error("Checkout request failed", "error", err)
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
