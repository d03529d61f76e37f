package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return string(body)
}

func TestHandlerExposesChatMetrics(t *testing.T) {
	ObserveTurn(true, "backend", 200*time.Millisecond)
	ObserveTurn(false, "transport", time.Second)
	TurnRejected("in_flight")
	SessionCreated(true)
	SessionCreated(false)
	SessionReconciled(true)

	body := scrape(t)
	for _, want := range []string{
		`agent_chat_turns_total{fault="none",outcome="ok"}`,
		`agent_chat_turns_total{fault="transport",outcome="error"}`,
		`agent_chat_turn_duration_seconds_bucket{outcome="ok",le="0.25"}`,
		`agent_chat_turns_rejected_total{reason="in_flight"}`,
		`agent_chat_sessions_created_total{result="fallback"}`,
		`agent_chat_sessions_reconciled_total{result="rebound"}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape missing %s", want)
		}
	}
}

func TestMustRegisterIsIdempotent(t *testing.T) {
	MustRegister()
	MustRegister()
}

func TestNorm(t *testing.T) {
	tests := map[string]string{
		"":         "unknown",
		"  ":       "unknown",
		"Backend ": "backend",
	}
	for in, want := range tests {
		if got := norm(in); got != want {
			t.Errorf("norm(%q) = %q, want %q", in, got, want)
		}
	}
}
