package publishers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/samvad-hq/samvad-api-probe/internal/domain"
)

func newTestHTTPPublisher(t *testing.T, httpCfg HTTPPublisherConfig) Publisher {
	t.Helper()
	cfg := normalizePublisherConfig(PublisherConfig{ID: "hook", Type: TypeHTTP, HTTP: &httpCfg})
	pub, err := newHTTPPublisher(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("newHTTPPublisher: %v", err)
	}
	return pub
}

func TestHTTPPublisherDeliversOutcomeEvent(t *testing.T) {
	type request struct {
		method      string
		trace       string
		contentType string
		event       map[string]any
	}
	got := make(chan request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		got <- request{
			method:      r.Method,
			trace:       r.Header.Get("X-Trace"),
			contentType: r.Header.Get("Content-Type"),
			event:       body,
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	pub := newTestHTTPPublisher(t, HTTPPublisherConfig{
		URL:     srv.URL,
		Method:  "put",
		Headers: map[string]string{"X-Trace": "run-1"},
	})

	evt := NewEvent("probe", domain.Outcome{
		ID:         "o1",
		URL:        "http://localhost:8080/test_db",
		Kind:       "status",
		Error:      "network response was not ok: Not Found",
		StatusCode: http.StatusNotFound,
		Status:     "Not Found",
	})
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	req := <-got
	if req.method != http.MethodPut {
		t.Fatalf("configured method ignored, got %s", req.method)
	}
	if req.trace != "run-1" {
		t.Fatalf("configured header missing, got %q", req.trace)
	}
	if req.contentType != "application/json" {
		t.Fatalf("unexpected content type %q", req.contentType)
	}
	if req.event["source"] != "probe" {
		t.Fatalf("unexpected source %#v", req.event["source"])
	}
	outcome, ok := req.event["outcome"].(map[string]any)
	if !ok {
		t.Fatalf("missing outcome in %#v", req.event)
	}
	if outcome["kind"] != "status" || outcome["status_code"] != float64(http.StatusNotFound) || outcome["success"] != false {
		t.Fatalf("unexpected outcome payload %#v", outcome)
	}
	if _, ok := req.event["published_at"].(string); !ok {
		t.Fatalf("missing published_at in %#v", req.event)
	}
}

func TestHTTPPublisherErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "sink unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	pub := newTestHTTPPublisher(t, HTTPPublisherConfig{URL: srv.URL, TimeoutSeconds: 1})

	err := pub.Publish(context.Background(), NewEvent("probe", domain.Outcome{ID: "o2", Success: true}))
	if err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
	if want := "sink unavailable"; !strings.Contains(err.Error(), want) {
		t.Fatalf("error should carry the response snippet, got %q", err.Error())
	}
}
