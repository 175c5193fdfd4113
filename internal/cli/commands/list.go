package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tsp/internal/complexity"
)

// ListCommand handles the list command
type ListCommand struct {
	app *App
}

// NewListCommand creates a new ListCommand
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{app: app}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	tests, err := lc.app.collectFiles(nil)
	if err != nil {
		return err
	}

	if len(tests) == 0 {
		color.New(color.FgYellow).Fprintln(lc.app.stderr, "No tests found")
		return nil
	}

	baseDir := lc.app.Config.GetBaseDir()

	var scores map[string]complexity.Estimate
	if lc.app.Config.Flags.Scores {
		estimator := complexity.NewEstimator(baseDir, lc.app.Logger)
		scores = make(map[string]complexity.Estimate, len(tests))
		for _, test := range tests {
			scores[test] = estimator.Estimate(test)
		}
	}

	return lc.app.Formatter.PrintTestList(baseDir, tests, lc.app.Config.Flags.TestCases, scores)
}
