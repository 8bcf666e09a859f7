package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"deskhand/computeruse"
	"deskhand/storage"
)

// Every control endpoint responds with {"message": ...} on success and
// {"error": ...} otherwise, and appends the outcome to the action log.

func (s *Server) respondMessage(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// logAction records the outcome in the database and notifies clients
func (s *Server) logAction(kind, detail string, start time.Time, opErr error) {
	action := &storage.Action{
		Kind:       kind,
		Detail:     detail,
		DurationMs: time.Since(start).Milliseconds(),
		Success:    opErr == nil,
	}
	if opErr != nil {
		action.ErrorMessage = opErr.Error()
	}

	if err := s.db.SaveAction(action); err != nil {
		slog.Error("Failed to log action", "kind", kind, "error", err)
		return
	}
	action.Timestamp = time.Now()
	s.BroadcastAction(action)
}

func (s *Server) handleMouseMove(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	start := time.Now()
	err := s.controller.MouseMove(req.X, req.Y)
	s.logAction("mouse_move", fmt.Sprintf("(%d,%d)", req.X, req.Y), start, err)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondMessage(w, "Mouse moved successfully")
}

func (s *Server) handleMouseClick(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req struct {
		X      int    `json:"x"`
		Y      int    `json:"y"`
		Button string `json:"button"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	button := computeruse.ParseButton(req.Button)

	start := time.Now()
	err := s.controller.MouseClick(req.X, req.Y, button)
	s.logAction("mouse_click", fmt.Sprintf("%s @ (%d,%d)", buttonName(button), req.X, req.Y), start, err)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondMessage(w, "Mouse clicked successfully")
}

func (s *Server) handleMouseDoubleClick(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	start := time.Now()
	err := s.controller.MouseDoubleClick(req.X, req.Y)
	s.logAction("mouse_double_click", fmt.Sprintf("(%d,%d)", req.X, req.Y), start, err)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondMessage(w, "Mouse double-clicked successfully")
}

func (s *Server) handleMouseDrag(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req struct {
		FromX int `json:"from_x"`
		FromY int `json:"from_y"`
		ToX   int `json:"to_x"`
		ToY   int `json:"to_y"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	start := time.Now()
	err := s.controller.MouseDrag(req.FromX, req.FromY, req.ToX, req.ToY)
	s.logAction("mouse_drag", fmt.Sprintf("(%d,%d) -> (%d,%d)", req.FromX, req.FromY, req.ToX, req.ToY), start, err)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondMessage(w, "Mouse drag completed successfully")
}

func (s *Server) handleMouseScroll(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req struct {
		X       int `json:"x"`
		Y       int `json:"y"`
		ScrollX int `json:"scroll_x"`
		ScrollY int `json:"scroll_y"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	start := time.Now()
	err := s.controller.MouseScroll(req.X, req.Y, req.ScrollX, req.ScrollY)
	s.logAction("mouse_scroll", fmt.Sprintf("dx=%d dy=%d", req.ScrollX, req.ScrollY), start, err)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondMessage(w, "Mouse scroll completed successfully")
}

func (s *Server) handleKeyboardType(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	start := time.Now()
	err := s.controller.KeyboardType(req.Text)
	s.logAction("keyboard_type", req.Text, start, err)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondMessage(w, fmt.Sprintf("Typed text: %s", req.Text))
}

func (s *Server) handleKeyboardKey(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req struct {
		Key string `json:"key"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	start := time.Now()
	err := s.controller.KeyboardKey(req.Key)
	s.logAction("keyboard_key", req.Key, start, err)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondMessage(w, fmt.Sprintf("Pressed key: %s", req.Key))
}

func (s *Server) handleScreenSize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	size, err := s.controller.ScreenSize()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(size)
}

func buttonName(b computeruse.MouseButton) string {
	switch b {
	case computeruse.ButtonRight:
		return "right"
	case computeruse.ButtonMiddle:
		return "middle"
	default:
		return "left"
	}
}
