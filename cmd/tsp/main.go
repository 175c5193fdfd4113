package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tsp/internal/cli"
	"tsp/internal/cli/commands"
	"tsp/internal/shard"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "tsp",
		Short:         "CI test shard planner",
		Long:          `Split test files into balanced shards for parallel CI workers. Files are weighed by recorded execution times or by a complexity heuristic, and each worker prints the files of its own shard.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(os.Stdout, os.Stderr, os.Getenv)

	// Register all commands
	cmds.Register(rootCmd, &flags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// Execute root command
	err := rootCmd.ExecuteContext(ctx)
	stop()
	cmds.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, shard.ErrInvalidConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
