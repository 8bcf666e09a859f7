package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTranscribeAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("auth = %q", got)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
		} else {
			file.Close()
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "hello world"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	text, err := c.TranscribeAudio(context.Background(), []byte("RIFFfake"))
	if err != nil {
		t.Fatalf("TranscribeAudio: %v", err)
	}
	if text != "hello world" {
		t.Errorf("text = %q", text)
	}
}

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string    `json:"model"`
			Messages []Message `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != "gpt-4o-mini" || len(req.Messages) != 1 {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]string{"reply": "hi"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	reply, err := c.Chat(context.Background(), "gpt-4o-mini", []Message{{Role: "user", Content: "hello"}})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "hi" {
		t.Errorf("reply = %q", reply)
	}
}

func TestChatBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "quota exceeded"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	if _, err := c.Chat(context.Background(), "m", nil); err == nil {
		t.Error("expected error")
	}
}

func TestFetchModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" || r.URL.Path != "/models" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string][]Model{
			"models": {{ID: "a", Name: "Model A"}, {ID: "b", Name: "Model B"}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	models, err := c.FetchModels(context.Background())
	if err != nil {
		t.Fatalf("FetchModels: %v", err)
	}
	if len(models) != 2 || models[0].ID != "a" {
		t.Errorf("models = %+v", models)
	}
}

func TestCheckLicenseStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			LicenseKey string `json:"license_key"`
			InstanceID string `json:"instance_id"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(LicenseStatus{Valid: req.LicenseKey == "good"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key")
	status, err := c.CheckLicenseStatus(context.Background(), "good", "inst-1")
	if err != nil {
		t.Fatalf("CheckLicenseStatus: %v", err)
	}
	if !status.Valid {
		t.Error("expected valid license")
	}
}

func TestHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "bad")
	if _, err := c.FetchModels(context.Background()); err == nil {
		t.Error("expected error on 401")
	}
}
