package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gzhole/llmgate/internal/config"
	"github.com/gzhole/llmgate/internal/model"
	"github.com/gzhole/llmgate/internal/router"
)

var routeCaps string

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "Inspect the backend manifest and exercise routing",
}

var backendsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backends from the manifest",
	RunE:  backendsListCommand,
}

var backendsRouteCmd = &cobra.Command{
	Use:   "route <description>",
	Short: "Route a task against the manifest's backends",
	Long: `Build a router from the backend manifest and pick the backend that
would serve a task requiring the given capabilities.

  llmgate backends route "review this diff" --caps code,analysis`,
	Args: cobra.MinimumNArgs(1),
	RunE: backendsRouteCommand,
}

func init() {
	backendsRouteCmd.Flags().StringVar(&routeCaps, "caps", "general", "Comma-separated required capabilities")
	backendsCmd.AddCommand(backendsListCmd, backendsRouteCmd)
	rootCmd.AddCommand(backendsCmd)
}

func backendsListCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir, scopesPath, logPath)
	if err != nil {
		return err
	}

	backends, err := config.LoadBackends(cfg.BackendsPath)
	if err != nil {
		return err
	}
	if len(backends) == 0 {
		fmt.Printf("no backends declared in %s\n", cfg.BackendsPath)
		return nil
	}

	for _, b := range backends {
		state := "unloaded"
		if b.Loaded {
			state = "loaded"
		}
		caps := make([]string, len(b.Capabilities))
		for i, c := range b.Capabilities {
			caps[i] = string(c)
		}
		fmt.Printf("%-20s %-8s %-10s %-24s ctx=%d  [%s]\n",
			b.ID, b.Kind, state, b.ModelName, b.MaxContext, strings.Join(caps, ","))
	}
	return nil
}

func backendsRouteCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir, scopesPath, logPath)
	if err != nil {
		return err
	}

	backends, err := config.LoadBackends(cfg.BackendsPath)
	if err != nil {
		return err
	}

	r := router.New(newLogger())
	for _, b := range backends {
		r.RegisterBackend(b)
	}

	var caps []model.Capability
	for _, c := range strings.Split(routeCaps, ",") {
		caps = append(caps, model.Capability(strings.TrimSpace(c)))
	}

	task := model.TaskDescription{
		Description:          strings.Join(args, " "),
		Type:                 model.TaskGeneral,
		RequiredCapabilities: caps,
	}

	target, err := r.RouteTask(task)
	if err != nil {
		return err
	}
	fmt.Printf("routed to %s\n", target)
	return nil
}
