package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Host.URL != "http://localhost:8080" {
		t.Fatalf("unexpected host url %q", cfg.Host.URL)
	}
	if cfg.API.Rest2 != "api/v2/" {
		t.Fatalf("unexpected rest2 path %q", cfg.API.Rest2)
	}
	if cfg.HTTP.TimeoutSeconds != 30 {
		t.Fatalf("unexpected timeout %d", cfg.HTTP.TimeoutSeconds)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcmd.yaml")
	content := `
host:
  url: https://molgenis.example.org
auth:
  username: henk
  password: s3cret
http:
  timeout_seconds: 5
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Host.URL != "https://molgenis.example.org" {
		t.Fatalf("host url not overridden: %q", cfg.Host.URL)
	}
	if cfg.Auth.Username != "henk" || cfg.Auth.Password != "s3cret" {
		t.Fatalf("auth not overridden: %+v", cfg.Auth)
	}
	if cfg.HTTP.TimeoutSeconds != 5 {
		t.Fatalf("timeout not overridden: %d", cfg.HTTP.TimeoutSeconds)
	}
	// untouched keys keep their defaults
	if cfg.API.Login != "api/v1/login" {
		t.Fatalf("login path lost its default: %q", cfg.API.Login)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcmd.yaml")
	content := `
host:
  url: ""
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for empty host url")
	}

	content = `
host:
  url: molgenis.example.org
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "scheme") {
		t.Fatalf("expected scheme error, got %v", err)
	}
}

func TestEndpointURLJoining(t *testing.T) {
	cfg := Config{Host: HostConfig{URL: "https://example.org/"}}
	if got := cfg.EndpointURL("/api/v2/"); got != "https://example.org/api/v2/" {
		t.Fatalf("unexpected url %q", got)
	}

	cfg.API.Member = "api/plugin/security/group/%s/member"
	if got := cfg.MemberURL("biobank"); got != "https://example.org/api/plugin/security/group/biobank/member" {
		t.Fatalf("unexpected member url %q", got)
	}
}

func TestWriteDefaultRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcmd.yaml")

	written, err := WriteDefault(path, false)
	if err != nil {
		t.Fatalf("write default: %v", err)
	}
	if written != path {
		t.Fatalf("unexpected path %q", written)
	}

	if _, err := WriteDefault(path, false); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if _, err := WriteDefault(path, true); err != nil {
		t.Fatalf("forced overwrite: %v", err)
	}

	// the starter file must load cleanly
	if _, err := Load(path); err != nil {
		t.Fatalf("load written default: %v", err)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("MCMD_TEST_HOME", "/data/mcmd")
	if got := expandEnv("$MCMD_TEST_HOME/scripts"); got != "/data/mcmd/scripts" {
		t.Fatalf("unexpected expansion %q", got)
	}
	if got := expandEnv("$MCMD_TEST_UNSET/scripts"); got != "$MCMD_TEST_UNSET/scripts" {
		t.Fatalf("unset vars must stay literal: %q", got)
	}
}
