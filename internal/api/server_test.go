package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/cpd/internal/api/middleware"
	"github.com/darmiel/cpd/internal/api/presenter"
	"github.com/darmiel/cpd/internal/audit"
	"github.com/darmiel/cpd/internal/config"
	"github.com/darmiel/cpd/internal/core"
	"github.com/darmiel/cpd/internal/service"
	"github.com/darmiel/cpd/internal/sites"
)

var adminKey = []byte("admin-signing-key")

const validOKKey = "ok18cf0c41b7f77e988568a05deac2fba8-42-abc"

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	cfgs := []config.SiteConfig{
		{Site: "ok", Config: map[string]any{"secret": "s3cr3t"}},
		{Site: "mm", Config: map[string]any{"secret": "k"}},
	}
	resolver, err := sites.BuildResolver(cfgs)
	if err != nil {
		t.Fatal(err)
	}
	policy, err := service.NewAcceptPolicy(cfgs)
	if err != nil {
		t.Fatal(err)
	}
	auditor := audit.NewInMemoryAuditor()
	srv := NewServer(service.NewIdentityService(resolver, policy, auditor), auditor)
	return srv.Routes(adminKey)
}

func adminToken(t *testing.T, key []byte, roles ...string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.AdminClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func do(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIdentify(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, IdentifyRoute, `{"key":"`+validOKKey+`"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var identity core.ClientIdentity
	if err := json.NewDecoder(rec.Body).Decode(&identity); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(core.ClientIdentity{Site: core.SiteOK, ExternalID: "42"}, identity); diff != "" {
		t.Errorf("identity mismatch (-want +got):\n%s", diff)
	}
	if rec.Header().Get(middleware.CorrelationIDHeader) == "" {
		t.Error("expected correlation id header")
	}
}

func TestIdentify_Failures(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "Bad Signature", body: `{"key":"ok` + strings.Repeat("0", 32) + `-42-abc"}`, status: http.StatusUnauthorized},
		{name: "Unknown Site", body: `{"key":"zz123"}`, status: http.StatusUnauthorized},
		{name: "Short Key", body: `{"key":"ok"}`, status: http.StatusUnauthorized},
		{name: "Missing Key", body: `{}`, status: http.StatusBadRequest},
		{name: "Empty Body", body: ``, status: http.StatusBadRequest},
		{name: "Unknown Field", body: `{"key":"x","site":"ok"}`, status: http.StatusBadRequest},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, IdentifyRoute, tt.body, map[string]string{
				middleware.CorrelationIDHeader: "corr-" + tt.name,
			})
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
			var resp presenter.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.CorrelationID != "corr-"+tt.name {
				t.Errorf("correlation id = %q", resp.CorrelationID)
			}
			if tt.status == http.StatusUnauthorized {
				messages = append(messages, resp.Error)
				if resp.Code != presenter.CodeKeyRejected {
					t.Errorf("code = %q, want %q", resp.Code, presenter.CodeKeyRejected)
				}
			}
		})
	}

	// rejected keys must be indistinguishable
	for _, m := range messages[1:] {
		if m != messages[0] {
			t.Errorf("rejection messages differ: %q vs %q", m, messages[0])
		}
	}
}

func TestSites(t *testing.T) {
	rec := do(t, newTestHandler(t), http.MethodGet, SitesRoute, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"sites":["ok","mm"]}` {
		t.Errorf("body = %s", got)
	}
}

func TestHealthAndAbout(t *testing.T) {
	h := newTestHandler(t)
	if rec := do(t, h, http.MethodGet, HealthCheckRoute, "", nil); rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("health: %d %s", rec.Code, rec.Body)
	}

	rec := do(t, h, http.MethodGet, AboutRoute, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("about: %d", rec.Code)
	}
	var about AboutResponse
	if err := json.NewDecoder(rec.Body).Decode(&about); err != nil {
		t.Fatal(err)
	}
	if about.Service != "cpd" {
		t.Errorf("about.Service = %q", about.Service)
	}
	if diff := cmp.Diff([]core.SiteCode{core.SiteOK, core.SiteMM}, about.Sites); diff != "" {
		t.Errorf("about.Sites mismatch (-want +got):\n%s", diff)
	}
}

func TestHealth_NoSitesBound(t *testing.T) {
	resolver, err := sites.BuildResolver(nil)
	if err != nil {
		t.Fatal(err)
	}
	srv := NewServer(service.NewIdentityService(resolver, nil, nil), nil)

	rec := do(t, srv.Routes(nil), http.MethodGet, HealthCheckRoute, "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var resp presenter.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != presenter.CodeNotReady {
		t.Errorf("code = %q, want %q", resp.Code, presenter.CodeNotReady)
	}
}

func TestRequestLogIncludesResolvedSite(t *testing.T) {
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })

	h := newTestHandler(t)
	do(t, h, http.MethodPost, IdentifyRoute, `{"key":"`+validOKKey+`"}`, map[string]string{
		middleware.CorrelationIDHeader: "logged",
	})

	var line map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			t.Fatalf("invalid log line %q: %v", raw, err)
		}
		if entry["message"] == "request.handled" {
			line = entry
		}
	}
	if line == nil {
		t.Fatalf("no request.handled line in %s", buf.String())
	}
	want := map[string]any{"correlation_id": "logged", "site": "ok", "external_id": "42", "status": float64(200)}
	for k, v := range want {
		if line[k] != v {
			t.Errorf("log field %s = %v, want %v", k, line[k], v)
		}
	}
}

func TestAdminAudit(t *testing.T) {
	h := newTestHandler(t)

	do(t, h, http.MethodPost, IdentifyRoute, `{"key":"`+validOKKey+`"}`, map[string]string{
		middleware.CorrelationIDHeader: "good",
	})
	do(t, h, http.MethodPost, IdentifyRoute, `{"key":"zz123"}`, map[string]string{
		middleware.CorrelationIDHeader: "bad",
	})
	do(t, h, http.MethodPost, IdentifyRoute, `{"key":"ok`+strings.Repeat("0", 32)+`-42-abc"}`, map[string]string{
		middleware.CorrelationIDHeader: "bad-ok",
	})

	tests := []struct {
		name    string
		path    string
		token   string
		status  int
		wantIDs []string
	}{
		{name: "No Token", path: ListAuditsRoute, status: http.StatusUnauthorized},
		{name: "Wrong Key", path: ListAuditsRoute, token: adminToken(t, []byte("other"), "admin"), status: http.StatusUnauthorized},
		{name: "Missing Role", path: ListAuditsRoute, token: adminToken(t, adminKey, "viewer"), status: http.StatusForbidden},
		{name: "All", path: ListAuditsRoute, token: adminToken(t, adminKey, "admin"), status: http.StatusOK, wantIDs: []string{"good", "bad", "bad-ok"}},
		{name: "By Site", path: ListAuditsRoute + "?site=ok", token: adminToken(t, adminKey, "admin"), status: http.StatusOK, wantIDs: []string{"good", "bad-ok"}},
		{name: "By Unknown Site", path: ListAuditsRoute + "?site=zz", token: adminToken(t, adminKey, "admin"), status: http.StatusOK, wantIDs: []string{"bad"}},
		{name: "By External ID", path: ListAuditsRoute + "?external_id=43", token: adminToken(t, adminKey, "admin"), status: http.StatusOK, wantIDs: []string{}},
		{name: "Limit", path: ListAuditsRoute + "?limit=1", token: adminToken(t, adminKey, "admin"), status: http.StatusOK, wantIDs: []string{"bad-ok"}},
		{name: "Bad Limit", path: ListAuditsRoute + "?limit=x", token: adminToken(t, adminKey, "admin"), status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := map[string]string{}
			if tt.token != "" {
				header["Authorization"] = "Bearer " + tt.token
			}
			rec := do(t, h, http.MethodGet, tt.path, "", header)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body)
			}
			if tt.wantIDs == nil {
				return
			}
			var entries []core.AuditEntry
			if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
				t.Fatal(err)
			}
			ids := make([]string, 0, len(entries))
			for _, e := range entries {
				ids = append(ids, e.ID)
			}
			if diff := cmp.Diff(tt.wantIDs, ids); diff != "" {
				t.Errorf("audit ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAdminRoutesDisabledWithoutKey(t *testing.T) {
	resolver, err := sites.BuildResolver(nil)
	if err != nil {
		t.Fatal(err)
	}
	srv := NewServer(service.NewIdentityService(resolver, nil, nil), audit.NewInMemoryAuditor())

	rec := do(t, srv.Routes(nil), http.MethodGet, ListAuditsRoute, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
