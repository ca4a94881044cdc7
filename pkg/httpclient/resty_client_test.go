package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRestyClientGetSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("missing content-type header, got %q", got)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, err := NewRestyClient(0).Get(context.Background(), srv.URL, map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != http.StatusOK || resp.Status() != "OK" {
		t.Fatalf("unexpected status %d %q", resp.StatusCode(), resp.Status())
	}
	if string(resp.Body()) != `{"ok":true}` {
		t.Fatalf("unexpected body %q", resp.Body())
	}
}

func TestRestyClientReturnsNon2xxWithoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	resp, err := NewRestyClient(0).Get(context.Background(), srv.URL, nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != http.StatusNotFound || resp.Status() != "Not Found" {
		t.Fatalf("unexpected status %d %q", resp.StatusCode(), resp.Status())
	}
}

func TestStatusText(t *testing.T) {
	cases := []struct {
		code int
		raw  string
		want string
	}{
		{404, "404 Not Found", "Not Found"},
		{418, "418 Custom Teapot", "Custom Teapot"},
		{503, "", "Service Unavailable"},
		{500, "500", "Internal Server Error"},
	}
	for _, tc := range cases {
		if got := StatusText(tc.code, tc.raw); got != tc.want {
			t.Fatalf("StatusText(%d, %q) = %q, want %q", tc.code, tc.raw, got, tc.want)
		}
	}
}
