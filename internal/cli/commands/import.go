package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tsp/internal/report"
	"tsp/internal/storage"
	"tsp/internal/weight"
)

// ImportCommand handles the import command
type ImportCommand struct {
	app    *App
	parser report.Parser
}

// NewImportCommand creates a new ImportCommand
func NewImportCommand(app *App, parser report.Parser) *ImportCommand {
	return &ImportCommand{
		app:    app,
		parser: parser,
	}
}

// Execute runs the command
func (ic *ImportCommand) Execute(cmd *cobra.Command, args []string) error {
	var cases []report.Case
	for _, path := range args {
		parsed, err := ic.parser.ParseFile(path)
		if err != nil {
			return err
		}
		cases = append(cases, parsed...)
	}

	// Class names can only be matched against files we can see
	known, err := ic.app.collectFiles(nil)
	if err != nil {
		ic.app.Logger.Debug("test discovery failed; matching reports by file attribute only", zap.Error(err))
		known = nil
	}

	totals, unmatched := report.NewAggregator(ic.app.Config.GetBaseDir(), known).Totals(cases)

	store, err := storage.Open(ic.app.Config)
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

	files := make([]string, 0, len(totals))
	for file := range totals {
		files = append(files, file)
	}
	sort.Strings(files)

	recorded, skipped := 0, 0
	for _, file := range files {
		seconds := totals[file]
		if !weight.Valid(seconds) {
			skipped++
			continue
		}
		if err := store.Record(cmd.Context(), file, seconds); err != nil {
			return fmt.Errorf("import %s: %w", file, err)
		}
		recorded++
	}

	ic.app.Logger.Debug("reports imported",
		zap.Int("reports", len(args)),
		zap.Int("cases", len(cases)),
		zap.Int("files", recorded),
		zap.Int("zero_duration", skipped),
		zap.Int("unmatched", unmatched),
	)

	color.New(color.FgGreen).Fprintf(ic.app.stderr, "✓ Imported %d file timing(s) from %d report(s)\n", recorded, len(args))
	if unmatched > 0 {
		color.New(color.FgYellow).Fprintf(ic.app.stderr, "! %d test case(s) could not be matched to a test file\n", unmatched)
	}
	return nil
}
