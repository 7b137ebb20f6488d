package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMetrics_HandlerExposesCounters(t *testing.T) {
	m := New()
	m.Commit("saved")
	m.Commit("saved")
	m.RelayAttempt("sheets", "failed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	text := string(body)
	if !strings.Contains(text, `bcasco_content_commits_total{outcome="saved"} 2`) {
		t.Fatalf("commit counter missing:\n%s", text)
	}
	if !strings.Contains(text, `bcasco_relay_delivery_attempts_total{action="sheets",outcome="failed"} 1`) {
		t.Fatalf("relay counter missing:\n%s", text)
	}
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.Commit("saved")
	m.FormSubmitted("question")
	if m.Registry() != nil {
		t.Fatalf("nil metrics should have nil registry")
	}
}
