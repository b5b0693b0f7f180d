package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestBookingsList(t *testing.T) {
	var gotUser string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = r.Header.Get("X-User-ID")
		if r.URL.Path != "/api/v1/bookings/me" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":        []map[string]any{{"booking_id": "b1", "status": "PENDING"}},
			"total_count": 1,
		})
	}))
	defer server.Close()

	out, err := execute(t, "bookings", "list", "--api-url", server.URL, "--user", "u1")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if gotUser != "u1" {
		t.Errorf("X-User-ID = %q, want u1", gotUser)
	}
	if !strings.Contains(out, `"booking_id": "b1"`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestBookingsCancel_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "Booking can no longer be cancelled", "code": "INVALID_STATE"})
	}))
	defer server.Close()

	_, err := execute(t, "bookings", "cancel", "b1", "--api-url", server.URL, "--user", "u1")
	if err == nil || !strings.Contains(err.Error(), "409") {
		t.Errorf("expected 409 api error, got %v", err)
	}
}

func TestBookingsRequiresUser(t *testing.T) {
	_, err := execute(t, "bookings", "list", "--api-url", "http://127.0.0.1:1")
	if err == nil || !strings.Contains(err.Error(), "--user") {
		t.Errorf("expected missing user error, got %v", err)
	}
}

func TestSweepOnce_NothingToDo(t *testing.T) {
	_, err := execute(t, "sweep", "once", "--transitions=false", "--retention=false")
	if err == nil {
		t.Error("expected error when every sweep is disabled")
	}
}
