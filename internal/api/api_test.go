package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/callvox/painel/backend/internal/auth"
	"github.com/callvox/painel/backend/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func withClaims(req *http.Request, claims *auth.Claims) *http.Request {
	ctx := context.WithValue(req.Context(), auth.UserContextKey, claims)
	return req.WithContext(ctx)
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAdmin(next)

	tests := []struct {
		name   string
		claims *auth.Claims
		want   int
	}{
		{"no claims", nil, http.StatusForbidden},
		{"viewer", &auth.Claims{Role: "viewer"}, http.StatusForbidden},
		{"supervisor", &auth.Claims{Role: "supervisor"}, http.StatusForbidden},
		{"admin", &auth.Claims{Role: "admin"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/history/wipe", nil)
			if tt.claims != nil {
				req = withClaims(req, tt.claims)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestRequireSupervisorOrAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireSupervisorOrAdmin(next)

	tests := []struct {
		role string
		want int
	}{
		{"viewer", http.StatusForbidden},
		{"supervisor", http.StatusOK},
		{"admin", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			req := withClaims(httptest.NewRequest(http.MethodPost, "/api/queues/refresh", nil), &auth.Claims{Role: tt.role})
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("role %s: expected status %d, got %d", tt.role, tt.want, rec.Code)
			}
		})
	}
}

func TestAgentHistoryHandler(t *testing.T) {
	logger := zerolog.Nop()
	h := NewAgentHistoryHandler(storage.NewNoopStore(), logger)

	r := chi.NewRouter()
	r.Get("/api/agents/{login}/history", h.GetHistory)

	t.Run("empty history is an empty array", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/agents/ana/history?date=2026-08-30", nil)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
			t.Errorf("expected empty JSON array, got %s", body)
		}
	})

	t.Run("malformed date is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/agents/ana/history?date=30-08-2026", nil)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestAdminWipeHistory(t *testing.T) {
	logger := zerolog.Nop()
	h := NewAdminHandler(storage.NewNoopStore(), logger)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/history/wipe", nil)
	rec := httptest.NewRecorder()

	h.WipeHistory(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "truncated") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
