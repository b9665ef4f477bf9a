package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joaosp7/teste-principia-backend/internal/storage"
)

type failingPinger struct {
	err error
}

func (p failingPinger) Ping(context.Context) error { return p.err }

// failingStore is a repository whose liveness probe always fails.
type failingStore struct {
	*storage.MemoryRepository
	err error
}

func (s failingStore) Ping(context.Context) error { return s.err }

func TestHealthDBReportsUp(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health/db", nil)
	rec := httptest.NewRecorder()
	handler.HealthDB(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != "ok" || body.Infos["db"] != "up" {
		t.Fatalf("unexpected health payload: %+v", body)
	}
}

func TestHealthDBHidesBackendFailureDetail(t *testing.T) {
	handler, _ := newTestHandler(t)
	handler.Store = failingStore{err: errors.New("connection refused: 10.0.0.12:5432")}

	req := httptest.NewRequest(http.MethodGet, "/health/db", nil)
	rec := httptest.NewRecorder()
	handler.HealthDB(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Message != "Internal Server Error" {
		t.Fatalf("backend detail leaked: %q", body.Message)
	}
}

func TestHealthDBChecksRateLimitStore(t *testing.T) {
	handler, _ := newTestHandler(t)
	handler.RateLimiter = failingPinger{err: errors.New("redis down")}

	req := httptest.NewRequest(http.MethodGet, "/health/db", nil)
	rec := httptest.NewRecorder()
	handler.HealthDB(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when the rate-limit store is down, got %d", rec.Code)
	}
}

func TestHealthDBRejectsOtherMethods(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/health/db", nil)
	rec := httptest.NewRecorder()
	handler.HealthDB(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET" {
		t.Fatalf("expected Allow GET, got %q", allow)
	}
}
