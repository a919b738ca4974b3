package security

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Scope describes what an actor may do. Exactly one global scope always
// exists; a per-actor override, when present, fully replaces the global
// scope for that actor's checks.
type Scope struct {
	FileSystem FileSystemScope `yaml:"file_system" validate:"required"`
	Network    NetworkScope    `yaml:"network"`
	Commands   CommandScope    `yaml:"commands"`
	Resources  ResourceLimits  `yaml:"resources" validate:"required"`
}

// FileSystemScope lists glob patterns for permitted paths.
type FileSystemScope struct {
	ReadPaths    []string `yaml:"read_paths"`
	WritePaths   []string `yaml:"write_paths"`
	ExecutePaths []string `yaml:"execute_paths"`
}

// NetworkScope controls network reachability. URLs matching a
// RequireApproval pattern are only granted when the request carries an
// explanation.
type NetworkScope struct {
	Inbound         bool     `yaml:"inbound"`
	Outbound        bool     `yaml:"outbound"`
	RequireApproval []string `yaml:"require_approval"`
}

// CommandScope whitelists exact binary names and blacklists command
// substrings. The blacklist is an unconditional veto.
type CommandScope struct {
	Whitelist          []string `yaml:"whitelist"`
	Blacklist          []string `yaml:"blacklist"`
	RequireExplanation bool     `yaml:"require_explanation"`
}

// ResourceLimits caps resource-increase requests.
type ResourceLimits struct {
	MaxCPUPercent float64 `yaml:"max_cpu_percent" validate:"gte=0,lte=100"`
	MaxMemoryGB   float64 `yaml:"max_memory_gb" validate:"gte=0"`
	MaxDiskGB     float64 `yaml:"max_disk_gb" validate:"gte=0"`
}

// DefaultScope returns the seed global scope: downloads and RAG roots,
// a small command whitelist, destructive commands vetoed, network open
// but with every URL requiring approval.
func DefaultScope() Scope {
	return Scope{
		FileSystem: FileSystemScope{
			ReadPaths:    []string{"/home/*/downloads/**", "/rag/**"},
			WritePaths:   []string{"/home/*/downloads/**"},
			ExecutePaths: []string{},
		},
		Network: NetworkScope{
			Inbound:         true,
			Outbound:        true,
			RequireApproval: []string{"*"},
		},
		Commands: CommandScope{
			Whitelist:          []string{"git", "npm", "python", "cargo", "ls", "cat"},
			Blacklist:          []string{"rm -rf /", "sudo", "dd", "mkfs"},
			RequireExplanation: true,
		},
		Resources: ResourceLimits{
			MaxCPUPercent: 80.0,
			MaxMemoryGB:   8.0,
			MaxDiskGB:     50.0,
		},
	}
}

var validate = validator.New()

// Validate checks structural constraints on the scope.
func (s *Scope) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScope, err)
	}
	return nil
}

// MatchPath reports whether path matches the glob pattern. A trailing
// "/**" matches the prefix directory and everything below it; any other
// pattern is matched segment-wise, so "*" never crosses a "/".
func MatchPath(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		if strings.ContainsAny(prefix, "*?[") {
			return matchPrefixGlob(prefix, path)
		}
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	return matched
}

// matchPrefixGlob matches a glob prefix (e.g. "/home/*/downloads")
// against the leading segments of path, admitting anything below it.
func matchPrefixGlob(prefix, path string) bool {
	want := strings.Split(strings.Trim(prefix, "/"), "/")
	have := strings.Split(strings.Trim(path, "/"), "/")
	if len(have) < len(want) {
		return false
	}
	for i, seg := range want {
		ok, err := filepath.Match(seg, have[i])
		if err != nil || !ok {
			return false
		}
	}
	return true
}

// matchAnyPath reports whether path matches at least one pattern.
func matchAnyPath(patterns []string, path string) bool {
	for _, p := range patterns {
		if MatchPath(p, path) {
			return true
		}
	}
	return false
}
