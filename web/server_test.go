package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"deskhand/computeruse"
	"deskhand/config"
	"deskhand/license"
	"deskhand/storage"
)

// fakeController records calls and can fail on demand
type fakeController struct {
	calls   []string
	failAll bool
}

func (f *fakeController) record(call string) error {
	f.calls = append(f.calls, call)
	if f.failAll {
		return fmt.Errorf("injected failure")
	}
	return nil
}

func (f *fakeController) MouseMove(x, y int) error {
	return f.record(fmt.Sprintf("move %d,%d", x, y))
}

func (f *fakeController) MouseClick(x, y int, button computeruse.MouseButton) error {
	return f.record(fmt.Sprintf("click %d,%d %d", x, y, button))
}

func (f *fakeController) MouseDoubleClick(x, y int) error {
	return f.record(fmt.Sprintf("double %d,%d", x, y))
}

func (f *fakeController) MouseDrag(fromX, fromY, toX, toY int) error {
	return f.record(fmt.Sprintf("drag %d,%d %d,%d", fromX, fromY, toX, toY))
}

func (f *fakeController) MouseScroll(x, y, scrollX, scrollY int) error {
	return f.record(fmt.Sprintf("scroll %d %d", scrollX, scrollY))
}

func (f *fakeController) KeyboardType(text string) error {
	return f.record("type " + text)
}

func (f *fakeController) KeyboardKey(spec string) error {
	if spec == "unknownkey" {
		return fmt.Errorf("Unknown key: %s", spec)
	}
	return f.record("key " + spec)
}

func (f *fakeController) ScreenSize() (computeruse.ScreenSize, error) {
	return computeruse.ScreenSize{Width: 1920, Height: 1080}, nil
}

func newTestServer(t *testing.T) (*Server, *fakeController) {
	t.Helper()

	db, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	fake := &fakeController{}
	cfg := &config.Config{
		Shortcuts: config.ShortcutsConfig{ToggleVisibility: "ctrl+shift+space"},
		Web:       config.WebConfig{Port: 0},
		API:       config.APIConfig{Endpoint: "https://api.example.com", Model: "gpt-4o-mini"},
	}
	lic := license.NewClient("", "", db)

	return NewServer(db, cfg, fake, lic, 0), fake
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var m map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestMouseMove(t *testing.T) {
	s, fake := newTestServer(t)
	h := s.Handler()

	rec := postJSON(t, h, "/api/computer/mouse/move", map[string]int{"x": 100, "y": 200})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decodeMap(t, rec)["message"]; got != "Mouse moved successfully" {
		t.Errorf("message = %q", got)
	}
	if len(fake.calls) != 1 || fake.calls[0] != "move 100,200" {
		t.Errorf("calls = %v", fake.calls)
	}
}

func TestMouseClickButton(t *testing.T) {
	s, fake := newTestServer(t)
	h := s.Handler()

	rec := postJSON(t, h, "/api/computer/mouse/click", map[string]any{"x": 5, "y": 6, "button": "right"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeMap(t, rec)["message"]; got != "Mouse clicked successfully" {
		t.Errorf("message = %q", got)
	}
	want := fmt.Sprintf("click 5,6 %d", computeruse.ButtonRight)
	if len(fake.calls) != 1 || fake.calls[0] != want {
		t.Errorf("calls = %v, want [%s]", fake.calls, want)
	}
}

func TestMouseClickDefaultsLeft(t *testing.T) {
	s, fake := newTestServer(t)
	h := s.Handler()

	postJSON(t, h, "/api/computer/mouse/click", map[string]int{"x": 1, "y": 2})
	want := fmt.Sprintf("click 1,2 %d", computeruse.ButtonLeft)
	if len(fake.calls) != 1 || fake.calls[0] != want {
		t.Errorf("calls = %v, want [%s]", fake.calls, want)
	}
}

func TestMouseDragAndScroll(t *testing.T) {
	s, fake := newTestServer(t)
	h := s.Handler()

	rec := postJSON(t, h, "/api/computer/mouse/drag",
		map[string]int{"from_x": 1, "from_y": 2, "to_x": 3, "to_y": 4})
	if got := decodeMap(t, rec)["message"]; got != "Mouse drag completed successfully" {
		t.Errorf("drag message = %q", got)
	}

	rec = postJSON(t, h, "/api/computer/mouse/scroll",
		map[string]int{"x": 0, "y": 0, "scroll_x": 0, "scroll_y": 3})
	if got := decodeMap(t, rec)["message"]; got != "Mouse scroll completed successfully" {
		t.Errorf("scroll message = %q", got)
	}

	if len(fake.calls) != 2 || fake.calls[0] != "drag 1,2 3,4" || fake.calls[1] != "scroll 0 3" {
		t.Errorf("calls = %v", fake.calls)
	}
}

func TestKeyboardType(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := postJSON(t, h, "/api/computer/keyboard/type", map[string]string{"text": "hello"})
	if got := decodeMap(t, rec)["message"]; got != "Typed text: hello" {
		t.Errorf("message = %q", got)
	}
}

func TestKeyboardKeyUnknown(t *testing.T) {
	s, fake := newTestServer(t)
	h := s.Handler()

	rec := postJSON(t, h, "/api/computer/keyboard/key", map[string]string{"key": "unknownkey"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeMap(t, rec)["error"]; got != "Unknown key: unknownkey" {
		t.Errorf("error = %q", got)
	}
	if len(fake.calls) != 0 {
		t.Errorf("native calls made for unknown key: %v", fake.calls)
	}

	// Failure lands in the action log
	actions, err := s.db.GetActions(10, 0)
	if err != nil {
		t.Fatalf("GetActions: %v", err)
	}
	if len(actions) != 1 || actions[0].Success || actions[0].ErrorMessage != "Unknown key: unknownkey" {
		t.Errorf("actions = %+v", actions)
	}
}

func TestKeyboardKey(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := postJSON(t, h, "/api/computer/keyboard/key", map[string]string{"key": "enter"})
	if got := decodeMap(t, rec)["message"]; got != "Pressed key: enter" {
		t.Errorf("message = %q", got)
	}
}

func TestScreenSize(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/computer/screen_size", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var size computeruse.ScreenSize
	if err := json.Unmarshal(rec.Body.Bytes(), &size); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if size.Width != 1920 || size.Height != 1080 {
		t.Errorf("size = %+v", size)
	}
}

func TestControllerFailureLogged(t *testing.T) {
	s, fake := newTestServer(t)
	fake.failAll = true
	h := s.Handler()

	rec := postJSON(t, h, "/api/computer/mouse/move", map[string]int{"x": 1, "y": 1})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}

	actions, err := s.db.GetActions(10, 0)
	if err != nil {
		t.Fatalf("GetActions: %v", err)
	}
	if len(actions) != 1 || actions[0].Success {
		t.Errorf("actions = %+v", actions)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/computer/mouse/move", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHistoryAndStats(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	postJSON(t, h, "/api/computer/mouse/move", map[string]int{"x": 1, "y": 1})
	postJSON(t, h, "/api/computer/keyboard/type", map[string]string{"text": "hi"})

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var hist struct {
		Actions []storage.Action `json:"actions"`
		Total   int              `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if hist.Total != 2 || len(hist.Actions) != 2 {
		t.Errorf("history = %+v", hist)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/stats?days=7", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("stats status = %d", rec.Code)
	}
}

func TestConfigSanitized(t *testing.T) {
	s, _ := newTestServer(t)
	s.config.API.AccessKey = "secret"
	h := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	body := rec.Body.String()
	if bytes.Contains([]byte(body), []byte("secret")) {
		t.Errorf("access key leaked: %s", body)
	}

	var cfg struct {
		HasAccessKey bool `json:"hasAccessKey"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !cfg.HasAccessKey {
		t.Error("hasAccessKey = false")
	}
}

func TestLicenseEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	if err := s.db.SecureSet(storage.KeyLicenseKey, "ABCD-EFGH-IJKL"); err != nil {
		t.Fatalf("SecureSet: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/license", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp struct {
		Activated bool   `json:"activated"`
		MaskedKey string `json:"maskedKey"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Activated || resp.MaskedKey != "ABCD******IJKL" {
		t.Errorf("resp = %+v", resp)
	}
}
