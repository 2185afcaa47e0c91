package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bust-order-backend/internal/config"
	"bust-order-backend/internal/handlers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type fakeProber struct{ err error }

func (p fakeProber) ProbeOrders(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		db       handlers.Pinger
		wantCode int
		wantBody string
	}{
		{name: "no database", db: nil, wantCode: http.StatusOK, wantBody: `{"status":"ok"}`},
		{name: "database up", db: fakePinger{}, wantCode: http.StatusOK, wantBody: `{"status":"ok","database":"ok"}`},
		{name: "database down", db: fakePinger{err: errors.New("refused")}, wantCode: http.StatusServiceUnavailable, wantBody: `{"status":"degraded","database":"unreachable"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/health", handlers.NewHealthHandler(tt.db).Health)

			req, _ := http.NewRequest("GET", "/health", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestDebugHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{SupabaseURL: "https://proj.supabase.co", SupabaseServiceRoleKey: "key", Environment: "test"}

	tests := []struct {
		name      string
		probe     handlers.OrdersProber
		reachable bool
		probeErr  string
	}{
		{name: "reachable", probe: fakeProber{}, reachable: true},
		{name: "probe fails", probe: fakeProber{err: errors.New("permission denied")}, probeErr: "permission denied"},
		{name: "no client", probe: nil, probeErr: "supabase client not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/debug/supabase", handlers.NewDebugHandler(cfg, tt.probe).Supabase)

			req, _ := http.NewRequest("GET", "/debug/supabase", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			body := decode(t, w)
			assert.Equal(t, "https://proj.supabase.co", body["supabase_url"])
			assert.Equal(t, true, body["has_service_role_key"])
			assert.Equal(t, tt.reachable, body["orders_reachable"])
			if tt.probeErr != "" {
				assert.Equal(t, tt.probeErr, body["probe_error"])
			}
		})
	}
}
