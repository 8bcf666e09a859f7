package license

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"deskhand/storage"
)

func TestMaskKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"short", "*****"},
		{"12345678", "********"},
		{"ABCD-EFGH-IJKL", "ABCD******IJKL"},
	}
	for _, tt := range tests {
		if got := MaskKey(tt.in); got != tt.want {
			t.Errorf("MaskKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestActivateStoresKey(t *testing.T) {
	var gotAuth string
	var gotReq struct {
		LicenseKey   string `json:"license_key"`
		InstanceName string `json:"instance_name"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/activate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ActivationResponse{
			Activated: true,
			Instance:  &InstanceInfo{ID: "inst-1", Name: gotReq.InstanceName},
		})
	}))
	defer srv.Close()

	db, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	defer db.Close()

	c := NewClient(srv.URL, "access-key", db)
	resp, err := c.Activate(context.Background(), "ABCD-EFGH-IJKL")
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if !resp.Activated {
		t.Error("not activated")
	}
	if gotAuth != "Bearer access-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotReq.LicenseKey != "ABCD-EFGH-IJKL" {
		t.Errorf("license key = %q", gotReq.LicenseKey)
	}
	if gotReq.InstanceName == "" {
		t.Error("instance name missing")
	}

	key, err := c.StoredKey()
	if err != nil {
		t.Fatalf("StoredKey: %v", err)
	}
	if key != "ABCD-EFGH-IJKL" {
		t.Errorf("stored key = %q", key)
	}
	id, err := db.SecureGet(storage.KeyInstanceID)
	if err != nil {
		t.Fatalf("SecureGet instance: %v", err)
	}
	if id != "inst-1" {
		t.Errorf("instance ID = %q", id)
	}
}

func TestActivateRejectedNotStored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ActivationResponse{Activated: false, Error: "invalid key"})
	}))
	defer srv.Close()

	db, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	defer db.Close()

	c := NewClient(srv.URL, "access-key", db)
	resp, err := c.Activate(context.Background(), "bogus")
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if resp.Activated {
		t.Error("activated with invalid key")
	}

	key, err := c.StoredKey()
	if err != nil {
		t.Fatalf("StoredKey: %v", err)
	}
	if key != "" {
		t.Errorf("stored key = %q, want empty", key)
	}
}

func TestCheckoutURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/checkout" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(CheckoutResponse{Success: true, CheckoutURL: "https://pay.example.com/c/1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "access-key", nil)
	resp, err := c.CheckoutURL(context.Background())
	if err != nil {
		t.Fatalf("CheckoutURL: %v", err)
	}
	if resp.CheckoutURL != "https://pay.example.com/c/1" {
		t.Errorf("checkout URL = %q", resp.CheckoutURL)
	}
}

func TestMissingConfig(t *testing.T) {
	c := NewClient("", "", nil)
	if _, err := c.Activate(context.Background(), "k"); err == nil {
		t.Error("Activate succeeded without endpoint")
	}
	if _, err := c.CheckoutURL(context.Background()); err == nil {
		t.Error("CheckoutURL succeeded without endpoint")
	}
}
