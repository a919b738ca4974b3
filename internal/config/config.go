// Package config resolves the llmgate configuration directory and
// loads scope and backend manifests.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gzhole/llmgate/internal/model"
	"github.com/gzhole/llmgate/internal/security"
)

const (
	DefaultConfigDir     = ".llmgate"
	DefaultScopesFile    = "scopes.yaml"
	DefaultBackendsFile  = "backends.yaml"
	DefaultLogFile       = "audit.jsonl"
	DefaultTokenHashFile = "release_token.hash"
)

// Config carries the resolved file locations.
type Config struct {
	ConfigDir    string
	ScopesPath   string
	BackendsPath string
	LogPath      string
}

// Load resolves the config directory (creating it when absent) and the
// effective file paths, honoring explicit overrides.
func Load(configDir, scopesPath, logPath string) (*Config, error) {
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, DefaultConfigDir)
	}

	if err := ensureDir(configDir); err != nil {
		return nil, err
	}

	cfg := &Config{ConfigDir: configDir}

	if scopesPath != "" {
		cfg.ScopesPath = scopesPath
	} else {
		cfg.ScopesPath = filepath.Join(configDir, DefaultScopesFile)
	}

	if logPath != "" {
		cfg.LogPath = logPath
	} else {
		cfg.LogPath = filepath.Join(configDir, DefaultLogFile)
	}

	cfg.BackendsPath = filepath.Join(configDir, DefaultBackendsFile)
	return cfg, nil
}

func ensureDir(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, 0700)
	}
	return nil
}

// ScopesFile is the on-disk shape of the permission configuration.
// Overrides fully replace the global scope for their actor.
type ScopesFile struct {
	Global    security.Scope            `yaml:"global"`
	Overrides map[string]security.Scope `yaml:"overrides,omitempty"`
}

// LoadScopes reads the scope configuration, falling back to the
// built-in defaults when the file does not exist.
func LoadScopes(path string) (*ScopesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ScopesFile{Global: security.DefaultScope()}, nil
		}
		return nil, err
	}

	var scopes ScopesFile
	if err := yaml.Unmarshal(data, &scopes); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := scopes.Global.Validate(); err != nil {
		return nil, fmt.Errorf("global scope in %s: %w", path, err)
	}
	for id, scope := range scopes.Overrides {
		if err := scope.Validate(); err != nil {
			return nil, fmt.Errorf("override scope for %s in %s: %w", id, path, err)
		}
	}

	return &scopes, nil
}

// SaveScopes writes the scope configuration back to disk.
func SaveScopes(path string, scopes *ScopesFile) error {
	data, err := yaml.Marshal(scopes)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

var validate = validator.New()

// LoadBackends reads the backend manifest. A missing file is an empty
// manifest, not an error.
func LoadBackends(path string) ([]model.BackendInstance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var manifest struct {
		Backends []model.BackendInstance `yaml:"backends"`
	}
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for i := range manifest.Backends {
		if err := validate.Struct(&manifest.Backends[i]); err != nil {
			return nil, fmt.Errorf("backend %d in %s: %w", i, path, err)
		}
	}

	return manifest.Backends, nil
}

// LoadReleaseTokenHash reads the bcrypt hash verified on lockdown
// release. A missing file yields nil, which leaves the engine in its
// development fallback (any non-empty token).
func LoadReleaseTokenHash(configDir string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(configDir, DefaultTokenHashFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}
