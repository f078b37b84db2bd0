package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const sampleCatalog = `[
  {"id": "a", "title": "Jazz Night", "city": "Lima", "priceFrom": 50, "currency": "PEN", "stock": 2, "datetime": "2026-09-12T20:00:00Z"},
  {"id": "b", "title": "Rock Fest", "city": "Bogota", "priceFrom": 35.5, "currency": "COP", "stock": 10, "datetime": "2026-10-01T21:00:00Z"}
]`

func TestFetchAll_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o644); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	repo := NewRepository(path, nil)
	events, err := repo.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Id != "a" || events[1].Id != "b" {
		t.Fatalf("unexpected events: %+v", events)
	}
	if events[0].PriceFrom.String() != "50" {
		t.Fatalf("unexpected price: %s", events[0].PriceFrom)
	}
}

func TestFetchAll_FromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleCatalog))
	}))
	defer server.Close()

	repo := NewRepository(server.URL+"/events.json", server.Client())
	events, err := repo.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
}

func TestFetchAll_MalformedFileIsHardFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	repo := NewRepository(path, nil)
	if _, err := repo.FetchAll(context.Background()); err == nil {
		t.Fatal("expected error for malformed file")
	}
}

func TestFetchAll_MissingFileIsHardFailure(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "missing.json"), nil)
	if _, err := repo.FetchAll(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFetchAll_EventWithoutIdRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	if err := os.WriteFile(path, []byte(`[{"title": "No Id"}]`), 0o644); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	repo := NewRepository(path, nil)
	if _, err := repo.FetchAll(context.Background()); err == nil {
		t.Fatal("expected error for record without id")
	}
}

func TestGetJSON_RetriesTransientServerErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		current := atomic.AddInt32(&attempts, 1)
		if current < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("retry later"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleCatalog))
	}))
	defer server.Close()

	repo := NewRepository(server.URL, server.Client())
	repo.retryBase = time.Millisecond
	repo.retryCap = 2 * time.Millisecond

	events, err := repo.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
}

func TestGetJSON_DoesNotRetryOnClientErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("nothing here"))
	}))
	defer server.Close()

	repo := NewRepository(server.URL, server.Client())
	repo.retryBase = time.Millisecond
	repo.retryCap = 2 * time.Millisecond

	_, err := repo.FetchAll(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if !strings.Contains(err.Error(), "nothing here") {
		t.Fatalf("expected body snippet in error, got %v", err)
	}
}
