package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"quickactions/internal/core"
)

type stubStatus struct {
	status core.Status
}

func (s *stubStatus) Snapshot() core.Status {
	return s.status
}

func testConfig() *core.ServerConfig {
	return &core.ServerConfig{
		Enabled:      true,
		Host:         "127.0.0.1",
		Port:         8081,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

func newTestServer(t *testing.T, status StatusProvider) (*httptest.Server, *Metrics) {
	t.Helper()
	metrics := NewMetrics()
	server := NewServer(testConfig(), metrics, status, zap.NewNop())
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts, metrics
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, http.NoBody)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Reading body failed: %v", err)
	}
	return resp, string(body)
}

func TestNewServer_Addr(t *testing.T) {
	server := NewServer(testConfig(), NewMetrics(), nil, zap.NewNop())
	if server.Addr() != "127.0.0.1:8081" {
		t.Errorf("Addr() = %q, expected %q", server.Addr(), "127.0.0.1:8081")
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, body := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/healthz returned status %d", resp.StatusCode)
	}
	if contentType := resp.Header.Get("Content-Type"); contentType != "application/json" {
		t.Errorf("/healthz Content-Type = %q", contentType)
	}
	if !strings.Contains(body, `"status":"ok"`) {
		t.Errorf("/healthz body = %q", body)
	}
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name         string
		authRequired bool
		wantStatus   int
	}{
		{"Signed in", false, http.StatusOK},
		{"Sign-in required", true, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := newTestServer(t, &stubStatus{status: core.Status{AuthRequired: tt.authRequired}})

			resp, _ := get(t, ts.URL+"/readyz")
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("/readyz returned %d, expected %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	status := &stubStatus{status: core.Status{
		CurrentTrack: &core.TrackRef{ID: "abc", Title: "Song", Artist: "Artist", DisplayName: "Song - Artist"},
		LastOutcome: &core.ActionOutcome{
			Status:   core.OutcomeVerified,
			Kind:     core.ActionLike,
			Attempts: 2,
		},
		ActionsInFlight: 1,
		HistorySize:     3,
	}}
	ts, _ := newTestServer(t, status)

	resp, body := get(t, ts.URL+"/status")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/status returned %d", resp.StatusCode)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		t.Fatalf("Invalid JSON %q: %v", body, err)
	}
	track, ok := decoded["currentTrack"].(map[string]any)
	if !ok || track["displayName"] != "Song - Artist" {
		t.Errorf("Unexpected currentTrack in %s", body)
	}
	outcome, ok := decoded["lastOutcome"].(map[string]any)
	if !ok || outcome["status"] != "verified" || outcome["kind"] != "like" {
		t.Errorf("Unexpected lastOutcome in %s", body)
	}
	if decoded["actionsInFlight"] != float64(1) {
		t.Errorf("Unexpected actionsInFlight in %s", body)
	}
}

func TestStatus_WithoutProvider(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, body := get(t, ts.URL+"/status")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"authRequired":false`) {
		t.Errorf("Unexpected /status response %d %q", resp.StatusCode, body)
	}
}

func TestIndex(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, body := get(t, ts.URL+"/")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/ returned %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Spotify Quick Actions") {
		t.Error("Index page missing title")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts, metrics := newTestServer(t, nil)

	metrics.RecordTrigger("hotkey", "like", "accepted")
	metrics.RecordOutcome("like", "verified", 2, 1500*time.Millisecond)
	metrics.RecordTokenRefresh("ok")
	metrics.SetActionsInFlight(1)

	resp, body := get(t, ts.URL+"/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/metrics returned %d", resp.StatusCode)
	}

	for _, want := range []string{
		`quickactions_triggers_total{kind="like",source="hotkey",status="accepted"} 1`,
		`quickactions_actions_total{kind="like",outcome="verified"} 1`,
		`quickactions_token_refreshes_total{status="ok"} 1`,
		`quickactions_actions_in_flight 1`,
		`quickactions_verify_attempts_count{kind="like"} 1`,
		`go_goroutines`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("/metrics missing %q", want)
		}
	}
}

func TestMetrics_Record(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordTrigger("tray", "unlike", "debounced")
	metrics.RecordTrigger("tray", "unlike", "debounced")
	metrics.RecordOutcome("unlike", "gave_up", 8, 20*time.Second)
	metrics.SetActionsInFlight(3)
	metrics.SetActionsInFlight(0)

	if got := testutil.ToFloat64(metrics.TriggersTotal.WithLabelValues("tray", "unlike", "debounced")); got != 2 {
		t.Errorf("Expected 2 debounced triggers, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.ActionsTotal.WithLabelValues("unlike", "gave_up")); got != 1 {
		t.Errorf("Expected 1 gave_up action, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.ActionsInFlight); got != 0 {
		t.Errorf("Expected in-flight gauge reset, got %v", got)
	}
}

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	first := NewMetrics()
	second := NewMetrics()

	first.RecordTokenRefresh("error")

	if got := testutil.ToFloat64(second.TokenRefreshTotal.WithLabelValues("error")); got != 0 {
		t.Errorf("Registries share state: %v", got)
	}
}

func TestStart_ShutsDownOnCancel(t *testing.T) {
	config := testConfig()
	config.Port = 0
	server := NewServer(config, NewMetrics(), nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned error after shutdown: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not stop after cancel")
	}
}
