package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gzhole/llmgate/internal/model"
	"github.com/gzhole/llmgate/internal/security"
)

func TestLoadCreatesConfigDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "llmgate")

	cfg, err := Load(dir, "", "")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("config dir should exist: %v", err)
	}
	if cfg.ScopesPath != filepath.Join(dir, DefaultScopesFile) {
		t.Errorf("unexpected scopes path %s", cfg.ScopesPath)
	}
	if cfg.LogPath != filepath.Join(dir, DefaultLogFile) {
		t.Errorf("unexpected log path %s", cfg.LogPath)
	}
}

func TestLoadHonorsOverrides(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir, "/tmp/custom-scopes.yaml", "/tmp/custom.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ScopesPath != "/tmp/custom-scopes.yaml" {
		t.Errorf("explicit scopes path ignored: %s", cfg.ScopesPath)
	}
	if cfg.LogPath != "/tmp/custom.jsonl" {
		t.Errorf("explicit log path ignored: %s", cfg.LogPath)
	}
}

func TestLoadScopesMissingFileUsesDefaults(t *testing.T) {
	scopes, err := LoadScopes(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	def := security.DefaultScope()
	if len(scopes.Global.Commands.Whitelist) != len(def.Commands.Whitelist) {
		t.Error("missing file should fall back to the default scope")
	}
}

func TestScopesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scopes.yaml")

	override := security.DefaultScope()
	override.FileSystem.ReadPaths = []string{"/workspace/**"}
	in := &ScopesFile{
		Global:    security.DefaultScope(),
		Overrides: map[string]security.Scope{"agent-1": override},
	}
	if err := SaveScopes(path, in); err != nil {
		t.Fatal(err)
	}

	out, err := LoadScopes(path)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := out.Overrides["agent-1"]
	if !ok {
		t.Fatal("override lost in round trip")
	}
	if len(got.FileSystem.ReadPaths) != 1 || got.FileSystem.ReadPaths[0] != "/workspace/**" {
		t.Errorf("unexpected override read paths: %v", got.FileSystem.ReadPaths)
	}
}

func TestLoadScopesRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scopes.yaml")
	bad := &ScopesFile{Global: security.DefaultScope()}
	bad.Global.Resources.MaxCPUPercent = 300
	if err := SaveScopes(path, bad); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadScopes(path); err == nil {
		t.Error("expected validation error for cpu > 100")
	}
}

func TestLoadBackends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backends.yaml")
	manifest := `backends:
  - id: local-llama
    kind: local
    capabilities: [code, general]
    model_name: llama-3.1-8b
    max_context: 8192
    loaded: true
  - id: claude-main
    kind: claude
    capabilities: [code, analysis, creative, general]
    model_name: claude-sonnet
    max_context: 200000
`
	if err := os.WriteFile(path, []byte(manifest), 0600); err != nil {
		t.Fatal(err)
	}

	backends, err := LoadBackends(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(backends) != 2 {
		t.Fatalf("expected 2 backends, got %d", len(backends))
	}
	if backends[0].Kind != model.ProviderLocal || !backends[0].Loaded {
		t.Errorf("unexpected first backend: %+v", backends[0])
	}
	if backends[1].MaxContext != 200000 {
		t.Errorf("unexpected second backend: %+v", backends[1])
	}
}

func TestLoadBackendsMissingFile(t *testing.T) {
	backends, err := LoadBackends(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if backends != nil {
		t.Errorf("missing manifest should be empty, got %v", backends)
	}
}

func TestLoadBackendsRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backends.yaml")
	manifest := `backends:
  - id: broken
    kind: local
    capabilities: []
    model_name: x
    max_context: 0
`
	if err := os.WriteFile(path, []byte(manifest), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadBackends(path); err == nil {
		t.Error("expected validation error for empty capabilities")
	}
}

func TestLoadReleaseTokenHash(t *testing.T) {
	dir := t.TempDir()

	hash, err := LoadReleaseTokenHash(dir)
	if err != nil {
		t.Fatal(err)
	}
	if hash != nil {
		t.Error("missing hash file should yield nil")
	}

	want := []byte("$2a$10$fakehashfortesting")
	if err := os.WriteFile(filepath.Join(dir, DefaultTokenHashFile), want, 0600); err != nil {
		t.Fatal(err)
	}
	hash, err = LoadReleaseTokenHash(dir)
	if err != nil {
		t.Fatal(err)
	}
	if string(hash) != string(want) {
		t.Errorf("unexpected hash %q", hash)
	}
}
