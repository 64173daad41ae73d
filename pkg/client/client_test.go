package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/darmiel/cpd/internal/api"
	"github.com/darmiel/cpd/internal/audit"
	"github.com/darmiel/cpd/internal/config"
	"github.com/darmiel/cpd/internal/core"
	"github.com/darmiel/cpd/internal/service"
	"github.com/darmiel/cpd/internal/sites"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfgs := []config.SiteConfig{
		{Site: "vk", Config: map[string]any{"secret": "secret"}},
	}
	resolver, err := sites.BuildResolver(cfgs)
	if err != nil {
		t.Fatal(err)
	}
	auditor := audit.NewInMemoryAuditor()
	srv := api.NewServer(service.NewIdentityService(resolver, nil, auditor), auditor)

	ts := httptest.NewServer(srv.Routes([]byte("key")))
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_Identify(t *testing.T) {
	ts := newTestServer(t)
	cli := New(ts.URL + "/")

	identity, correlation, err := cli.Identify(context.Background(), "vk3bd2fecc7dc7e37f5d01f03f48ab3a56-app1-viewer9")
	if err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if correlation == "" {
		t.Error("expected correlation id")
	}
	if *identity != (core.ClientIdentity{Site: core.SiteVK, ExternalID: "viewer9"}) {
		t.Errorf("Identify() = %+v", identity)
	}

	_, correlation, err = cli.Identify(context.Background(), "vk00000000000000000000000000000000-app1-viewer9")
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.CorrelationID != correlation {
		t.Errorf("unexpected APIError: %+v (correlation %q)", apiErr, correlation)
	}
	if !errors.Is(err, ErrKeyRejected) {
		t.Errorf("expected ErrKeyRejected, got %v", err)
	}
}

func TestClient_SitesAndInfo(t *testing.T) {
	cli := New(newTestServer(t).URL)

	got, _, err := cli.Sites(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != core.SiteVK {
		t.Errorf("Sites() = %v", got)
	}

	info, _, err := cli.Info(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if info.Service != "cpd" {
		t.Errorf("Info().Service = %q", info.Service)
	}
	if len(info.Sites) != 1 || info.Sites[0] != core.SiteVK {
		t.Errorf("Info().Sites = %v", info.Sites)
	}
}

func TestClient_ListAudits_InvalidSession(t *testing.T) {
	cli := New(newTestServer(t).URL, WithAuthToken("not-a-jwt"))

	_, _, err := cli.ListAudits(context.Background(), ListAuditsOpts{Limit: 5})
	if !errors.Is(err, ErrInvalidSession) {
		t.Errorf("ListAudits() error = %v, want ErrInvalidSession", err)
	}

	cli = New(newTestServer(t).URL)
	_, _, err = cli.ListAudits(context.Background(), ListAuditsOpts{})
	if !errors.Is(err, ErrLoginRequired) {
		t.Errorf("ListAudits() error = %v, want ErrLoginRequired", err)
	}
}

func TestURLBuilder(t *testing.T) {
	cli := New("http://localhost:8080/")
	got := cli.url().setPath(api.ListAuditsRoute).addQueryParam("limit", 5).addQueryParam("site", "ok").build()
	if want := "http://localhost:8080/v1/admin/audits?limit=5&site=ok"; got != want {
		t.Errorf("build() = %q, want %q", got, want)
	}
}
