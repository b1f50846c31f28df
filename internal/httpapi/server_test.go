package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ibchat/game-scout-sub001/internal/db"
	"github.com/ibchat/game-scout-sub001/internal/emerging"
)

type stubMetricsStore struct {
	snapshots []db.MetricsSnapshot
}

func (s *stubMetricsStore) ListMetricsSnapshots(_ context.Context, _ int) ([]db.MetricsSnapshot, error) {
	return s.snapshots, nil
}

func testServer(snapshots ...db.MetricsSnapshot) *Server {
	thresholds := emerging.Thresholds{
		MinRecentReviews30D: 30,
		MinPositiveRatio:    0.70,
		EvergreenYears:      3,
		EvergreenReviews:    50000,
		EmergingScoreMin:    2.0,
	}
	svc := emerging.NewServiceWithStore(&stubMetricsStore{snapshots: snapshots}, thresholds, zerolog.Nop())
	return &Server{emerging: svc, logger: zerolog.Nop()}
}

func doRequest(t *testing.T, s *Server, target string) (*httptest.ResponseRecorder, jsendResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.buildEcho().ServeHTTP(rec, req)

	var body jsendResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return rec, body
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	rec, body := doRequest(t, testServer(), "/api/v1/health")
	if rec.Code != http.StatusOK || body.Status != "success" {
		t.Fatalf("unexpected health response: %d %+v", rec.Code, body)
	}
}

func TestHandleEmerging(t *testing.T) {
	t.Parallel()

	recent := int64(50)
	ratio := 0.85
	s := testServer(db.MetricsSnapshot{
		SteamAppID:            1,
		Name:                  "Rising Star",
		RecentReviewsCount30D: &recent,
		AllPositiveRatio:      &ratio,
	})

	rec, body := doRequest(t, s, "/api/v1/emerging?passed_only=true")
	if rec.Code != http.StatusOK || body.Status != "success" {
		t.Fatalf("unexpected response: %d %+v", rec.Code, body)
	}

	data, ok := body.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data shape: %T", body.Data)
	}
	if data["emerging"] != float64(1) {
		t.Fatalf("expected one emerging app, got %v", data["emerging"])
	}
}

func TestHandleEmerging_RejectsBadLimit(t *testing.T) {
	t.Parallel()

	rec, body := doRequest(t, testServer(), "/api/v1/emerging?limit=nope")
	if rec.Code != http.StatusBadRequest || body.Status != "fail" {
		t.Fatalf("expected validation failure, got %d %+v", rec.Code, body)
	}
}

func TestHandleWorkerLiveness_NoMonitorIsUnknown(t *testing.T) {
	t.Parallel()

	rec, body := doRequest(t, testServer(), "/api/v1/workers/collector/liveness")
	if rec.Code != http.StatusOK || body.Status != "success" {
		t.Fatalf("unexpected response: %d %+v", rec.Code, body)
	}
	data, ok := body.Data.(map[string]any)
	if !ok || data["status"] != "unknown" {
		t.Fatalf("expected unknown liveness without a monitor, got %+v", body.Data)
	}
}

func TestParsePositiveInt(t *testing.T) {
	t.Parallel()

	if got, err := parsePositiveInt("", 25, 1, 100); err != nil || got != 25 {
		t.Fatalf("expected fallback 25, got %d err=%v", got, err)
	}
	if got, err := parsePositiveInt("40", 25, 1, 100); err != nil || got != 40 {
		t.Fatalf("expected 40, got %d err=%v", got, err)
	}
	if _, err := parsePositiveInt("101", 25, 1, 100); err == nil {
		t.Fatalf("expected range error")
	}
	if _, err := parsePositiveInt("abc", 25, 1, 100); err == nil {
		t.Fatalf("expected parse error")
	}
}
