package cli

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gzhole/llmgate/internal/config"
	"github.com/gzhole/llmgate/internal/security"
)

var (
	configDir  string
	scopesPath string
	logPath    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "llmgate",
	Short: "llmgate - policy-gated coordination for LLM backends",
	Long: `llmgate coordinates access to interchangeable language-model backends
under an explicit security policy: every privileged action passes a
permission check, every check is audited, and repeated denials or
detected threats escalate the system into lockdown. A capability
router picks which backend handles a given task.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (default: ~/.llmgate)")
	rootCmd.PersistentFlags().StringVar(&scopesPath, "scopes", "", "Path to scopes YAML file (default: <config-dir>/scopes.yaml)")
	rootCmd.PersistentFlags().StringVar(&logPath, "audit-log", "", "Path to audit log file (default: <config-dir>/audit.jsonl)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the diagnostic logger honoring --verbose.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildEngine constructs a security engine from the on-disk
// configuration: scopes, release-token hash, audit sink and any
// persisted lockdown state.
func buildEngine() (*security.Engine, *config.Config, error) {
	cfg, err := config.Load(configDir, scopesPath, logPath)
	if err != nil {
		return nil, nil, err
	}

	scopes, err := config.LoadScopes(cfg.ScopesPath)
	if err != nil {
		return nil, nil, err
	}

	hash, err := config.LoadReleaseTokenHash(cfg.ConfigDir)
	if err != nil {
		return nil, nil, err
	}

	audit := security.NewAuditLog()
	if f, err := os.OpenFile(cfg.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600); err == nil {
		audit.SetSink(f)
	}

	opts := []security.Option{
		security.WithLogger(newLogger()),
		security.WithAuditLog(audit),
	}
	if len(hash) > 0 {
		opts = append(opts, security.WithReleaseTokenHash(hash))
	}

	engine := security.NewEngine(opts...)
	engine.Permissions().SetGlobalScope(scopes.Global)
	for id, scope := range scopes.Overrides {
		engine.Permissions().SetActorScope(id, scope)
	}

	// Lockdown state outlives a single invocation via the state file.
	switch loadPersistedState(cfg.ConfigDir) {
	case security.StateLocked:
		engine.TriggerLockdown(security.UserPanicButton{})
	case security.StateReadOnly:
		engine.TriggerReadOnly(security.UserPanicButton{})
	}

	return engine, cfg, nil
}

const stateFileName = "lockdown.state"

func loadPersistedState(dir string) security.LockdownState {
	data, err := os.ReadFile(filepath.Join(dir, stateFileName))
	if err != nil {
		return security.StateNormal
	}
	switch security.LockdownState(string(data)) {
	case security.StateLocked:
		return security.StateLocked
	case security.StateReadOnly:
		return security.StateReadOnly
	default:
		return security.StateNormal
	}
}

func persistState(dir string, state security.LockdownState) error {
	return os.WriteFile(filepath.Join(dir, stateFileName), []byte(state), 0600)
}
