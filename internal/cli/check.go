package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gzhole/llmgate/internal/security"
)

var (
	checkExplanation string
	checkAmount      float64
)

var checkCmd = &cobra.Command{
	Use:   "check <actor> <kind> <target>",
	Short: "Run a permission check for an actor",
	Long: `Evaluate one privileged action against the actor's effective scope.
Kinds: file_read, file_write, file_execute, command, network, resource.
For resource checks the target is the resource name (cpu, memory, disk)
and --amount carries the requested value.

  llmgate check local-llama file_read /home/alice/downloads/report.pdf
  llmgate check local-llama command "git status"
  llmgate check local-llama resource memory --amount 4`,
	Args: cobra.ExactArgs(3),
	RunE: checkCommand,
}

func init() {
	checkCmd.Flags().StringVar(&checkExplanation, "explanation", "", "Why the actor needs this access")
	checkCmd.Flags().Float64Var(&checkAmount, "amount", 0, "Requested amount for resource checks")
	rootCmd.AddCommand(checkCmd)
}

func checkCommand(cmd *cobra.Command, args []string) error {
	engine, _, err := buildEngine()
	if err != nil {
		return err
	}

	actor, kind, target := args[0], args[1], args[2]

	var req security.Request
	switch kind {
	case "file_read":
		req = security.FileRead{Path: target}
	case "file_write":
		req = security.FileWrite{Path: target}
	case "file_execute":
		req = security.FileExecute{Path: target}
	case "command":
		req = security.Command{Command: target}
	case "network":
		req = security.NetworkAccess{URL: target}
	case "resource":
		req = security.ResourceIncrease{Resource: target, Amount: checkAmount}
	default:
		return fmt.Errorf("unknown request kind %q", kind)
	}

	if engine.CheckPermission(actor, req, checkExplanation) {
		fmt.Println("granted")
		return nil
	}

	// Internal rule detail stays in the audit log; callers only see
	// the refusal.
	fmt.Println("request refused")
	return nil
}
