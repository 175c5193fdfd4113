package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tsp/internal/discovery"
	"tsp/internal/storage"
)

// RecordCommand handles the record command
type RecordCommand struct {
	app *App
}

// NewRecordCommand creates a new RecordCommand
func NewRecordCommand(app *App) *RecordCommand {
	return &RecordCommand{app: app}
}

// Execute runs the command
func (rc *RecordCommand) Execute(cmd *cobra.Command, args []string) error {
	files := discovery.Normalize(args[:1])
	if len(files) == 0 {
		return fmt.Errorf("record: empty test file path")
	}
	file := files[0]

	seconds, err := strconv.ParseFloat(strings.TrimSpace(args[1]), 64)
	if err != nil {
		return fmt.Errorf("record: invalid duration %q: %w", args[1], err)
	}

	store, err := storage.Open(rc.app.Config)
	if err != nil {
		return err
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	if db, ok := store.(*storage.MySQLStorage); ok {
		if err := db.EnsureSchema(cmd.Context()); err != nil {
			return err
		}
	}

	if err := store.Record(cmd.Context(), file, seconds); err != nil {
		return err
	}

	rc.app.Logger.Debug("duration recorded",
		zap.String("file", file),
		zap.Float64("seconds", seconds),
		zap.String("backend", rc.app.Config.HistoryBackend),
	)
	color.New(color.FgGreen).Fprintf(rc.app.stderr, "✓ Recorded %.2fs for %s\n", seconds, file)
	return nil
}
