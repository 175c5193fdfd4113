package commands

import (
	"io"

	"tsp/internal/cli"
	"tsp/internal/config"
	"tsp/internal/discovery"
	"tsp/internal/logging"
	"tsp/internal/report"
	"tsp/internal/ui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// App holds the dependencies shared by all commands. It is filled in once
// flags are parsed, because flags decide where configuration is read from.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Scanner   *discovery.Scanner
	Filter    *discovery.Filter
	Parser    *discovery.Parser
	Formatter *ui.Formatter

	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
}

// Commands holds all CLI commands
type Commands struct {
	Plan   *PlanCommand
	List   *ListCommand
	Record *RecordCommand
	Import *ImportCommand
	View   *ViewCommand

	app *App
}

// NewCommands creates all commands. stdout receives results, stderr receives
// narration, and getenv supplies environment overrides.
func NewCommands(stdout, stderr io.Writer, getenv func(string) string) *Commands {
	app := &App{
		Logger: zap.NewNop(),
		stdout: stdout,
		stderr: stderr,
		getenv: getenv,
	}

	return &Commands{
		Plan:   NewPlanCommand(app),
		List:   NewListCommand(app),
		Record: NewRecordCommand(app),
		Import: NewImportCommand(app, report.NewJUnitParser()),
		View:   NewViewCommand(app, ui.NewShardViewer()),
		app:    app,
	}
}

// Close flushes buffered logs
func (c *Commands) Close() {
	_ = c.app.Logger.Sync()
}

// setup loads configuration and builds the shared dependencies for one
// command invocation
func (c *Commands) setup(flags *cli.Flags) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		// An untouched --max-shards must not override the config file
		if f := cmd.Flags().Lookup("max-shards"); f == nil || !f.Changed {
			flags.MaxShards = -1
		}
		// --history=false must be able to switch off use_history from the file
		if f := cmd.Flags().Lookup("history"); f != nil && f.Changed {
			flags.HistorySet = true
		}

		cfg, err := config.Load(flags.ToConfigFlags(), c.app.getenv)
		if err != nil {
			return err
		}

		logger, err := logging.New(flags.Verbose)
		if err != nil {
			return err
		}

		c.app.Config = cfg
		c.app.Logger = logger
		c.app.Scanner = discovery.NewScanner(cfg.PathsToIgnore, cfg.Patterns)
		c.app.Filter = discovery.NewFilter()
		c.app.Parser = discovery.NewParser()
		c.app.Formatter = ui.NewFormatter(c.app.stdout, c.app.stderr, c.app.Parser)

		logger.Debug("configuration loaded",
			zap.String("command", cmd.Name()),
			zap.String("project", cfg.ProjectPath),
			zap.String("shards", cfg.ShardCount),
			zap.String("algorithm", cfg.Algorithm),
			zap.Int("shard_index", cfg.ShardIndex),
			zap.Bool("history", cfg.UseHistory),
			zap.String("history_backend", cfg.HistoryBackend),
		)
		return nil
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	rootCmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "Path to a YAML config file (default: <project>/"+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().StringVarP(&flags.ProjectPath, "project", "p", "", "Project root that test paths, history and config are resolved against")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log planning details to stderr")

	// Plan command
	planCmd := &cobra.Command{
		Use:     "plan [files...]",
		Short:   "Split test files into shards and print the current shard",
		Long:    "Assign test files (given as arguments or discovered under the test path) to shards and print the files of the current shard, one per line",
		RunE:    c.Plan.Execute,
		PreRunE: c.setup(flags),
	}
	addSelectionFlags(planCmd, flags)
	addPlanFlags(planCmd, flags)
	addHistoryFlags(planCmd, flags)
	planCmd.Flags().BoolVar(&flags.JSON, "json", false, "Print the whole plan as JSON instead of the current shard's files")
	rootCmd.AddCommand(planCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List discovered test files",
		Long:    "Scan and list all test files without sharding them",
		Args:    cobra.NoArgs,
		RunE:    c.List.Execute,
		PreRunE: c.setup(flags),
	}
	addSelectionFlags(listCmd, flags)
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "List the test cases declared in each file")
	listCmd.Flags().BoolVar(&flags.Scores, "scores", false, "Show the complexity score of each file")
	listCmd.Flags().StringVar(&flags.BaseDir, "base-dir", "", "Directory complexity estimation may read files from (default: project root)")
	rootCmd.AddCommand(listCmd)

	// Record command
	recordCmd := &cobra.Command{
		Use:     "record <file> <seconds>",
		Short:   "Record a test file's execution time",
		Long:    "Merge an observed execution time into the history used for weighted sharding",
		Args:    cobra.ExactArgs(2),
		RunE:    c.Record.Execute,
		PreRunE: c.setup(flags),
	}
	addHistoryFlags(recordCmd, flags)
	rootCmd.AddCommand(recordCmd)

	// Import command
	importCmd := &cobra.Command{
		Use:     "import <report.xml>...",
		Short:   "Record execution times from JUnit XML reports",
		Long:    "Sum the test case times of JUnit XML reports per test file and merge them into the history",
		Args:    cobra.MinimumNArgs(1),
		RunE:    c.Import.Execute,
		PreRunE: c.setup(flags),
	}
	addHistoryFlags(importCmd, flags)
	importCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder whose test files report class names are matched against")
	importCmd.Flags().StringVar(&flags.BaseDir, "base-dir", "", "Directory report file paths are made relative to (default: project root)")
	rootCmd.AddCommand(importCmd)

	// View command
	viewCmd := &cobra.Command{
		Use:     "view [files...]",
		Short:   "Browse a shard plan interactively",
		Long:    "Build a shard plan and display it in an interactive viewer",
		RunE:    c.View.Execute,
		PreRunE: c.setup(flags),
	}
	addSelectionFlags(viewCmd, flags)
	addPlanFlags(viewCmd, flags)
	addHistoryFlags(viewCmd, flags)
	rootCmd.AddCommand(viewCmd)
}

func addSelectionFlags(cmd *cobra.Command, flags *cli.Flags) {
	cmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test detection should start")
	cmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g., '*Spec.scala' or 'it/*')")
}

func addPlanFlags(cmd *cobra.Command, flags *cli.Flags) {
	cmd.Flags().StringVarP(&flags.Shards, "shards", "s", "", "Number of shards, or 'auto' (default from config: "+config.DefaultShardCount+")")
	cmd.Flags().StringVarP(&flags.Algorithm, "algorithm", "a", "", "Distribution algorithm: round-robin or complexity (default from config: "+config.DefaultAlgorithm+")")
	cmd.Flags().IntVarP(&flags.ShardIndex, "shard-index", "i", 0, "1-based shard to print (default: $"+config.EnvShardIndex+", $"+config.EnvCINodeIndex+" or 1)")
	cmd.Flags().IntVar(&flags.MaxShards, "max-shards", config.DefaultMaxShards, "Upper bound for an explicit shard count; 0 disables it")
	cmd.Flags().StringVar(&flags.BaseDir, "base-dir", "", "Directory complexity estimation may read files from (default: project root)")
	cmd.Flags().IntVarP(&flags.Concurrency, "concurrency", "j", 0, "Files weighed in parallel (default: number of CPUs)")
	cmd.Flags().BoolVar(&flags.UseHistory, "history", false, "Weigh files by recorded execution times where available")
}

func addHistoryFlags(cmd *cobra.Command, flags *cli.Flags) {
	cmd.Flags().StringVar(&flags.HistoryBackend, "history-backend", "", "History store: json or mysql (default from config: "+config.BackendJSON+")")
	cmd.Flags().StringVar(&flags.HistoryFile, "history-file", "", "JSON history file (default: <project>/"+config.DefaultHistoryFile+")")
	cmd.Flags().StringVar(&flags.HistoryDSN, "history-dsn", "", "MySQL DSN for the history store; implies --history-backend=mysql")
}
