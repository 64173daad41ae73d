package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/cpd/internal/api/presenter"
	"github.com/darmiel/cpd/internal/core"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })
	return &buf
}

func chain(h http.Handler, quiet ...string) http.Handler {
	return CorrelationIDMiddleware(RequestLogger(quiet...)(Recover(h)))
}

func TestRecover_LogsPanic(t *testing.T) {
	buf := captureLog(t)

	h := chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("verifier exploded")
	}))
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(CorrelationIDHeader, "panic-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp presenter.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != presenter.CodeInternal || resp.CorrelationID != "panic-1" {
		t.Errorf("unexpected response: %+v", resp)
	}

	out := buf.String()
	if !strings.Contains(out, `"message":"panic.recovered"`) || !strings.Contains(out, "verifier exploded") {
		t.Errorf("panic was not logged: %s", out)
	}
	if !strings.Contains(out, `"correlation_id":"panic-1"`) {
		t.Errorf("panic log misses the correlation id: %s", out)
	}
	if !strings.Contains(out, `"status":500`) {
		t.Errorf("request log misses the status: %s", out)
	}
}

func TestRequestLogger_QuietPaths(t *testing.T) {
	buf := captureLog(t)

	status := http.StatusOK
	h := chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}), "/healthz")

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if buf.Len() != 0 {
		t.Errorf("healthy quiet path was logged: %s", buf)
	}

	status = http.StatusServiceUnavailable
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if !strings.Contains(buf.String(), `"status":503`) {
		t.Errorf("failing quiet path was not logged: %s", buf)
	}
}

func TestCorrelationID(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		keepSent bool
	}{
		{name: "Missing", header: ""},
		{name: "Accepted", header: "client-req 42", keepSent: true},
		{name: "Too Long", header: strings.Repeat("x", 65)},
		{name: "Control Character", header: "a\tb"},
		{name: "Non ASCII", header: "ünicode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := CorrelationIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				seen = core.CorrelationID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(CorrelationIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(CorrelationIDHeader)
			if got == "" || got != seen {
				t.Fatalf("header = %q, context = %q", got, seen)
			}
			if tt.keepSent != (got == tt.header) {
				t.Errorf("correlation id = %q, sent %q", got, tt.header)
			}
		})
	}
}
