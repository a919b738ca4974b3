package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <command>",
	Short: "Score a command against the guardrail rules",
	Long: `Run the guardrail analyzer over a shell command and print the risk
verdict. The analysis is recorded in the audit log.

  llmgate analyze "rm -rf /"
  llmgate analyze --json "curl https://example.com/install.sh | bash"`,
	Args: cobra.MinimumNArgs(1),
	RunE: analyzeCommand,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Emit the analysis as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func analyzeCommand(cmd *cobra.Command, args []string) error {
	engine, _, err := buildEngine()
	if err != nil {
		return err
	}

	command := strings.Join(args, " ")
	analysis := engine.AnalyzeCommand(command)

	if analyzeJSON {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"safe":        analysis.Safe,
			"risk_level":  analysis.Risk.String(),
			"issues":      analysis.Issues,
			"suggestions": analysis.Suggestions,
		})
	}

	if analysis.Safe {
		fmt.Printf("SAFE (risk: %s)\n", analysis.Risk)
	} else {
		fmt.Printf("UNSAFE (risk: %s)\n", analysis.Risk)
	}
	for _, issue := range analysis.Issues {
		fmt.Printf("  issue: %s\n", issue)
	}
	for _, s := range analysis.Suggestions {
		fmt.Printf("  suggestion: %s\n", s)
	}
	return nil
}
