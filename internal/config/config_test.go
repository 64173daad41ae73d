package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/darmiel/cpd/internal/core"
)

func TestParse(t *testing.T) {
	data := []byte(`
sites:
  - site: ok
    secret: s3cr3t
    accept: 'len(external_id) <= 32'
  - site: MM
    secret_env: CPD_MM_SECRET
admin:
  signing_key: admin-key
audit:
  enabled: true
  type: memory
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(cfg.Sites) != 2 {
		t.Fatalf("expected 2 sites, got %d", len(cfg.Sites))
	}

	code, err := cfg.Sites[1].Code()
	if err != nil {
		t.Fatal(err)
	}
	if code != core.SiteMM {
		t.Errorf("site[1] = %v, want MM", code)
	}
	if cfg.Sites[0].Accept == "" {
		t.Error("expected accept expression to be parsed")
	}
	if cfg.Sites[0].Config["secret"] != "s3cr3t" {
		t.Errorf("inline secret = %v", cfg.Sites[0].Config["secret"])
	}
	if string(cfg.Admin.Key()) != "admin-key" {
		t.Errorf("admin key = %q", cfg.Admin.Key())
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "Missing Site",
			input:   "sites:\n  - secret: x\n",
			wantErr: "missing 'site'",
		},
		{
			name:    "Unknown Site",
			input:   "sites:\n  - site: zz\n    secret: x\n",
			wantErr: "unknown site",
		},
		{
			name:    "Duplicate Site",
			input:   "sites:\n  - site: vk\n    secret: a\n  - site: vk\n    secret: b\n",
			wantErr: "more than once",
		},
		{
			name:    "File Audit Without Path",
			input:   "audit:\n  enabled: true\n  type: file\n",
			wantErr: "requires a path",
		},
		{
			name:    "Unknown Audit Type",
			input:   "audit:\n  enabled: true\n  type: kafka\n",
			wantErr: "unknown audit type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpd.yaml")
	if err := os.WriteFile(path, []byte("sites:\n  - site: vk\n    secret: x\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Sites) != 1 {
		t.Errorf("expected 1 site, got %d", len(cfg.Sites))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestAdminConfig_KeyFromEnv(t *testing.T) {
	t.Setenv("CPD_TEST_ADMIN_KEY", "from-env")

	a := AdminConfig{SigningKey: "inline", SigningKeyEnv: "CPD_TEST_ADMIN_KEY"}
	if string(a.Key()) != "from-env" {
		t.Errorf("Key() = %q, want from-env", a.Key())
	}
	if (AdminConfig{}).Key() != nil {
		t.Error("expected nil key when nothing is configured")
	}
}

func TestLoad_Example(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "cpd.example.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Sites) != 3 {
		t.Errorf("expected 3 sites, got %d", len(cfg.Sites))
	}
	if !cfg.Audit.Enabled || cfg.Audit.Type != "file" {
		t.Errorf("unexpected audit config: %+v", cfg.Audit)
	}
}
