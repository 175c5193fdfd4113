package commands

import (
	"context"
	"fmt"
	"io"

	"tsp/internal/complexity"
	"tsp/internal/discovery"
	"tsp/internal/domain"
	"tsp/internal/planner"
	"tsp/internal/shard"
	"tsp/internal/storage"
	"tsp/internal/ui"
	"tsp/internal/weight"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// PlanCommand handles the plan command
type PlanCommand struct {
	app *App
}

// NewPlanCommand creates a new PlanCommand
func NewPlanCommand(app *App) *PlanCommand {
	return &PlanCommand{app: app}
}

// Execute runs the command
func (pc *PlanCommand) Execute(cmd *cobra.Command, args []string) error {
	asJSON := pc.app.Config.Flags.JSON

	plan, err := pc.app.buildPlan(cmd.Context(), args, !asJSON)
	if err != nil {
		return err
	}

	if asJSON {
		return pc.app.Formatter.PrintJSON(plan)
	}

	pc.app.Formatter.PrintPlan(plan)
	return pc.app.Formatter.PrintSelected(plan)
}

// collectFiles returns the files named in args, or the ones discovered under
// the test path, narrowed by the name filter
func (a *App) collectFiles(args []string) ([]string, error) {
	var files []string
	if len(args) > 0 {
		files = discovery.Normalize(args)
	} else {
		discovered, err := a.Scanner.Scan(a.Config.GetTestPath(), a.Config.GetBaseDir())
		if err != nil {
			return nil, err
		}
		files = discovered
	}
	return a.Filter.FilterByName(files, a.Config.Flags.NameFilter), nil
}

// loadHistory returns nil when history is disabled. A store that exists but
// cannot be read only costs the plan its recorded durations.
func (a *App) loadHistory(ctx context.Context) (weight.History, error) {
	if !a.Config.UseHistory {
		return nil, nil
	}

	store, err := storage.Open(a.Config)
	if err != nil {
		return nil, err
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	history, err := store.LoadHistory(ctx)
	if err != nil {
		a.Logger.Warn("historical data unavailable; weighing by complexity only", zap.Error(err))
		return weight.History{}, nil
	}
	a.Logger.Debug("historical data loaded", zap.Int("entries", len(history)))
	return history, nil
}

// buildPlan discovers, weighs and partitions the test files. With progress
// set, weight estimation is shown as a progress bar on stderr.
func (a *App) buildPlan(ctx context.Context, args []string, progress bool) (*domain.Plan, error) {
	files, err := a.collectFiles(args)
	if err != nil {
		return nil, err
	}

	history, err := a.loadHistory(ctx)
	if err != nil {
		return nil, err
	}

	estimator := complexity.NewEstimator(a.Config.GetBaseDir(), a.Logger)
	p := planner.New(estimator, a.Logger, a.Config.Concurrency)

	var bar *ui.ProgressBar
	if progress && len(files) > 0 && a.weighted() {
		bar = ui.NewProgressBar(len(files), a.stderr)
		p.SetProgress(bar.Update)
	}

	plan, err := p.Plan(ctx, planner.Options{
		ShardCount:   a.Config.ShardCount,
		Algorithm:    a.Config.Algorithm,
		CurrentShard: a.Config.ShardIndex,
		MaxShards:    a.Config.MaxShards,
	}, files, history)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return nil, fmt.Errorf("plan shards: %w", err)
	}
	return plan, nil
}

func (a *App) weighted() bool {
	strategy, err := shard.Lookup(a.Config.Algorithm)
	return err == nil && strategy.Weighted()
}
