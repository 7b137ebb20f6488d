package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rahaft/bcasco-site/internal/domain/relay"
	"github.com/rahaft/bcasco-site/internal/platform/httpclient"
)

type staticURL struct {
	url string
	err error
}

func (s staticURL) WebAppURL(context.Context) (string, error) { return s.url, s.err }

const questionPayload = `{"type":"question","eventId":"e1","name":"Ann","submittedAt":{"seconds":1767985200}}`

func TestExecutor_PostsPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected request %s %s", r.Method, r.Header.Get("Content-Type"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	x := NewExecutor(httpclient.New(time.Second), staticURL{url: srv.URL}, "")
	if err := x.Execute(context.Background(), questionPayload); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got["type"] != "question" || got["eventId"] != "e1" {
		t.Fatalf("unexpected body %#v", got)
	}
}

func TestExecutor_FallsBackToConfiguredURL(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	x := NewExecutor(httpclient.New(time.Second), staticURL{}, srv.URL)
	if err := x.Execute(context.Background(), questionPayload); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected 1 hit, got %d", hits)
	}
}

func TestExecutor_MissingURLIsPermanent(t *testing.T) {
	x := NewExecutor(httpclient.New(time.Second), staticURL{}, "")
	if err := x.Execute(context.Background(), questionPayload); !errors.Is(err, relay.ErrPermanent) {
		t.Fatalf("expected ErrPermanent, got %v", err)
	}
}

func TestExecutor_UpstreamErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	x := NewExecutor(httpclient.New(time.Second), staticURL{url: srv.URL}, "")
	err := x.Execute(context.Background(), questionPayload)
	if err == nil || errors.Is(err, relay.ErrPermanent) {
		t.Fatalf("expected retryable error, got %v", err)
	}
	var httpErr *httpclient.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected HTTPError 502, got %v", err)
	}
}

func TestExecutor_RejectsUnknownType(t *testing.T) {
	x := NewExecutor(httpclient.New(time.Second), staticURL{url: "http://127.0.0.1:1"}, "")
	if err := x.Execute(context.Background(), `{"type":"other"}`); !errors.Is(err, relay.ErrPermanent) {
		t.Fatalf("expected ErrPermanent, got %v", err)
	}
}
