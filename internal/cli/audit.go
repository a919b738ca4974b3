package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gzhole/llmgate/internal/config"
	"github.com/gzhole/llmgate/internal/security"
)

var (
	auditDenied bool
	auditActor  string
	auditCount  int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the persisted audit trail",
	Long: `Read the JSONL audit stream and print recorded decisions, newest
last. Entries are never mutated; 'audit clear' is the only destructive
operation.

  llmgate audit
  llmgate audit --denied
  llmgate audit --actor local-llama -n 20`,
	RunE: auditListCommand,
}

var auditClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Destructively clear the persisted audit trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configDir, scopesPath, logPath)
		if err != nil {
			return err
		}
		if err := os.Truncate(cfg.LogPath, 0); err != nil && !os.IsNotExist(err) {
			return err
		}
		fmt.Println("audit log cleared")
		return nil
	},
}

func init() {
	auditCmd.Flags().BoolVar(&auditDenied, "denied", false, "Only show denied entries")
	auditCmd.Flags().StringVar(&auditActor, "actor", "", "Only show entries for one actor")
	auditCmd.Flags().IntVarP(&auditCount, "count", "n", 0, "Limit to the last N entries")
	auditCmd.AddCommand(auditClearCmd)
	rootCmd.AddCommand(auditCmd)
}

func auditListCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir, scopesPath, logPath)
	if err != nil {
		return err
	}

	f, err := os.Open(cfg.LogPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("no audit entries recorded yet")
			return nil
		}
		return err
	}
	defer f.Close()

	var entries []security.AuditEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var entry security.AuditEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if auditDenied && entry.Approved {
			continue
		}
		if auditActor != "" && entry.ActorID != auditActor {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if auditCount > 0 && len(entries) > auditCount {
		entries = entries[len(entries)-auditCount:]
	}

	for _, e := range entries {
		verdict := "DENIED "
		if e.Approved {
			verdict = "allowed"
		}
		actor := e.ActorID
		if actor == "" {
			actor = "-"
		}
		fmt.Printf("%s  %s  %-12s  %s", e.Timestamp.Format("2006-01-02 15:04:05"), verdict, actor, e.Action)
		if e.Reason != "" {
			fmt.Printf("  (%s)", e.Reason)
		}
		fmt.Println()
	}
	fmt.Printf("%d entries\n", len(entries))
	return nil
}
