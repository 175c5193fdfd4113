package commands

import (
	"github.com/spf13/cobra"

	"tsp/internal/ui"
)

// ViewCommand handles the view command
type ViewCommand struct {
	app    *App
	viewer ui.Viewer
}

// NewViewCommand creates a new ViewCommand
func NewViewCommand(app *App, viewer ui.Viewer) *ViewCommand {
	return &ViewCommand{
		app:    app,
		viewer: viewer,
	}
}

// Execute runs the command
func (vc *ViewCommand) Execute(cmd *cobra.Command, args []string) error {
	plan, err := vc.app.buildPlan(cmd.Context(), args, true)
	if err != nil {
		return err
	}

	return vc.viewer.View(plan)
}
