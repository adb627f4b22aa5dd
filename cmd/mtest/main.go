package main

import (
	"errors"
	"fmt"
	"os"

	"mtest/internal/cli"
	"mtest/internal/cli/commands"
	"mtest/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "mtest",
		Short:         "Compiler conformance test driver",
		Long:          `Runs a directory tree of compiler test cases in parallel. Each directory's test_config.toml says how to invoke the compiler, which exit code to expect and whether stderr is compared against an approved file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create initial config with defaults
	cfg := config.New()
	logger := cli.NewLogger(os.Stderr)

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg, logger)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, commands.ErrTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
