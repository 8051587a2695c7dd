package handlers

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"empty", "", ""},
		{"bearer", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"wrong scheme", "Basic abc123", ""},
		{"no token", "Bearer", ""},
		{"extra whitespace", "Bearer   abc123  ", "abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractBearerToken(tt.header))
		})
	}
}

func TestPaginationParams(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantLimit int64
		wantSkip  int64
	}{
		{"defaults", "", 20, 0},
		{"explicit", "?limit=5&skip=10", 5, 10},
		{"zero limit ignored", "?limit=0", 20, 0},
		{"negative skip ignored", "?skip=-3", 20, 0},
		{"garbage ignored", "?limit=abc&skip=xyz", 20, 0},
		{"oversized limit clamped", "?limit=9999999", maxPageSize, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/nutrition"+tt.query, nil)
			limit, skip := paginationParams(r)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantSkip, skip)
		})
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, 400, "bad input")

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":false,"message":"bad input"}`, w.Body.String())
}

func TestWatchSessionCancelsWhenSessionDies(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Valid on the first check, dead on the second
	results := make(chan bool, 2)
	results <- true
	results <- false

	go watchSession(ctx, cancel, time.Millisecond, func() bool { return <-results })

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription context was not cancelled after the session died")
	}
}

func TestWatchSessionStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		watchSession(ctx, cancel, time.Millisecond, func() bool { return true })
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher kept running after the subscription ended")
	}
}
