package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/gzhole/llmgate/internal/config"
	"github.com/gzhole/llmgate/internal/security"
)

var (
	lockdownReason string
	releaseToken   string
	readOnly       bool
)

var lockdownCmd = &cobra.Command{
	Use:   "lockdown",
	Short: "Inspect or change the lockdown state",
	RunE:  lockdownStatusCommand,
}

var lockdownTriggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Move the system into lockdown (or read-only with --read-only)",
	RunE:  lockdownTriggerCommand,
}

var lockdownReleaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Release the lockdown after token verification",
	RunE:  lockdownReleaseCommand,
}

var lockdownSetTokenCmd = &cobra.Command{
	Use:   "set-token",
	Short: "Store the bcrypt hash of the release token",
	RunE:  lockdownSetTokenCommand,
}

func init() {
	lockdownTriggerCmd.Flags().StringVar(&lockdownReason, "reason", "", "Why the lockdown is triggered")
	lockdownTriggerCmd.Flags().BoolVar(&readOnly, "read-only", false, "Enter read-only mode instead of a full lockdown")
	lockdownReleaseCmd.Flags().StringVar(&releaseToken, "token", "", "Release token (prompted when omitted)")
	lockdownCmd.AddCommand(lockdownTriggerCmd, lockdownReleaseCmd, lockdownSetTokenCmd)
	rootCmd.AddCommand(lockdownCmd)
}

func lockdownStatusCommand(cmd *cobra.Command, args []string) error {
	engine, _, err := buildEngine()
	if err != nil {
		return err
	}
	fmt.Printf("lockdown state: %s\n", engine.State())
	return nil
}

func lockdownTriggerCommand(cmd *cobra.Command, args []string) error {
	engine, cfg, err := buildEngine()
	if err != nil {
		return err
	}

	var reason security.Reason = security.UserPanicButton{}
	if lockdownReason != "" {
		reason = security.PolicyViolation{Details: lockdownReason}
	}

	if readOnly {
		engine.TriggerReadOnly(reason)
	} else {
		engine.TriggerLockdown(reason)
	}
	if err := persistState(cfg.ConfigDir, engine.State()); err != nil {
		return err
	}
	fmt.Printf("lockdown state: %s\n", engine.State())
	return nil
}

func lockdownReleaseCommand(cmd *cobra.Command, args []string) error {
	engine, cfg, err := buildEngine()
	if err != nil {
		return err
	}

	token := releaseToken
	if token == "" {
		fmt.Fprint(os.Stderr, "release token: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return err
		}
		token = string(raw)
	}

	if err := engine.ReleaseLockdown(token); err != nil {
		return err
	}
	if err := persistState(cfg.ConfigDir, engine.State()); err != nil {
		return err
	}
	fmt.Println("lockdown released")
	return nil
}

func lockdownSetTokenCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir, scopesPath, logPath)
	if err != nil {
		return err
	}

	fmt.Fprint(os.Stderr, "new release token: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return fmt.Errorf("refusing to set an empty release token")
	}

	hash, err := bcrypt.GenerateFromPassword(raw, bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.ConfigDir, config.DefaultTokenHashFile)
	if err := os.WriteFile(path, hash, 0600); err != nil {
		return err
	}
	fmt.Printf("release token hash stored at %s\n", path)
	return nil
}
