package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gzhole/llmgate/internal/bus"
	"github.com/gzhole/llmgate/internal/config"
	"github.com/gzhole/llmgate/internal/orchestrator"
	"github.com/gzhole/llmgate/internal/pool"
	"github.com/gzhole/llmgate/internal/router"
)

var healthInterval time.Duration

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the orchestrator event loop",
	Long: `Start the message bus, register the manifest's backends, and run
the orchestrator until interrupted. Inference adapters are external;
the loop coordinates policy decisions and routing.`,
	RunE: runCommand,
}

func init() {
	runCmd.Flags().DurationVar(&healthInterval, "health-interval", 30*time.Second, "Backend health probe interval")
	rootCmd.AddCommand(runCmd)
}

func runCommand(cmd *cobra.Command, args []string) error {
	log := newLogger()

	engine, cfg, err := buildEngine()
	if err != nil {
		return err
	}

	backends, err := config.LoadBackends(cfg.BackendsPath)
	if err != nil {
		return err
	}

	p := pool.New(log)
	r := router.New(log)
	for _, b := range backends {
		p.Register(b, nil)
		r.RegisterBackend(b)
	}

	b := bus.New(bus.WithLogger(log))
	orch := orchestrator.New(b, r, engine, orchestrator.WithLogger(log))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return orch.Run(ctx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(healthInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				for id, healthy := range p.HealthCheckAll(ctx) {
					if !healthy {
						log.Warn("backend unhealthy", "id", id)
					}
				}
			}
		}
	})

	stats := p.Stats()
	fmt.Printf("llmgate running: %d backends (%d loaded), state=%s\n",
		stats.Total, stats.Loaded, engine.State())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
