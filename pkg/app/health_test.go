package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hallbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(_ context.Context, _ *readpref.ReadPref) error {
	return f.err
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		pingErr    error
		wantStatus int
		wantBody   string
	}{
		{name: "health", path: "/health", wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "ready", path: "/ready", wantStatus: http.StatusOK, wantBody: "ready"},
		{name: "not ready", path: "/ready", pingErr: errors.New("no primary"), wantStatus: http.StatusServiceUnavailable, wantBody: "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := httprouter.New()
			NewHealthHandler(fakePinger{err: tt.pingErr}, logger.Discard()).RegisterRoutes(router)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp HealthResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if resp.Status != tt.wantBody {
				t.Errorf("status field = %q, want %q", resp.Status, tt.wantBody)
			}
		})
	}
}
