package commands

import (
	"errors"
	"runtime"

	"mtest/internal/cli"
	"mtest/internal/config"
	"mtest/internal/discovery"
	"mtest/internal/execution"
	"mtest/internal/parser"
	"mtest/internal/storage"
	"mtest/internal/ui"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// ErrTestsFailed is returned by run when at least one test failed
var ErrTestsFailed = errors.New("tests failed")

// Commands holds all CLI commands
type Commands struct {
	Run    *RunCommand
	List   *ListCommand
	Faills *FaillsCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config, logger zerolog.Logger) *Commands {
	// Initialize dependencies
	overrideParser := discovery.NewParser()
	runner := execution.NewRunner(cfg, overrideParser, logger)
	executor := execution.NewWorkerPool(cfg, runner, logger)
	resultParser := parser.NewResultParser(cfg)
	jsonStorage := storage.NewJSONStorage(cfg)
	errorViewer := ui.NewErrorViewer(jsonStorage)

	return &Commands{
		Run:    NewRunCommand(cfg, runner, executor, resultParser, jsonStorage, logger),
		List:   NewListCommand(cfg, logger),
		Faills: NewFaillsCommand(cfg, jsonStorage, errorViewer),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	// Update config with flags after parsing and resolve the paths they name
	resolve := func(cmd *cobra.Command, args []string) error {
		cfg.Apply(flags.ToConfigFlags())
		cli.SetDebug(flags.Debug)
		if err := cfg.Resolve(); err != nil {
			return err
		}
		return cfg.LoadEnv()
	}

	rootCmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging")

	// Run command
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Run compiler tests in parallel",
		Long:    "Discover tests below the base folder, run them against the compiler and compare exit codes and stderr",
		RunE:    c.Run.Execute,
		PreRunE: resolve,
	}
	addTreeFlags(runCmd, flags)
	runCmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Only print failed tests and the summary")
	runCmd.Flags().BoolVarP(&flags.Interactive, "interactive", "i", false, "Ask whether to overwrite the approved file on every stderr mismatch")
	runCmd.Flags().IntVarP(&flags.Processors, "processors", "p", runtime.NumCPU(), "Number of tests to run at the same time")
	runCmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "Kill a test after this long (0 disables the timeout)")
	runCmd.Flags().BoolVar(&flags.History, "history", false, "Record the run in the MySQL history database (DB_* environment variables)")
	runCmd.Flags().BoolVar(&flags.SkipSmokeCheck, "skip-smoke-check", false, "Do not check the usage message of the compiler before running")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List discovered tests",
		Long:    "Scan the base folder and list all tests with their variants without executing them",
		RunE:    c.List.Execute,
		PreRunE: resolve,
	}
	addTreeFlags(listCmd, flags)
	listCmd.Flags().BoolVarP(&flags.ShowCommands, "commands", "c", false, "Show the command of every test")
	rootCmd.AddCommand(listCmd)

	// Faills command
	faillsCmd := &cobra.Command{
		Use:   "faills",
		Short: "View test failures interactively",
		Long:  "Display test failures from the last test run in an interactive viewer",
		RunE:  c.Faills.Execute,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Apply(flags.ToConfigFlags())
			cli.SetDebug(flags.Debug)
			return nil
		},
	}
	faillsCmd.Flags().BoolVarP(&flags.Stats, "stats", "s", false, "Print statistics of the last run instead of opening the viewer")
	rootCmd.AddCommand(faillsCmd)
}

func addTreeFlags(cmd *cobra.Command, flags *cli.Flags) {
	cmd.Flags().StringVar(&flags.MCC, "mcc", "", "Path to the compiler under test")
	cmd.Flags().StringVar(&flags.BaseFolder, "base-folder", "", "Root of the test tree")
	cmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by file name pattern (supports wildcards, e.g., '*lexer*' or 'neg_*.c')")
	_ = cmd.MarkFlagRequired("mcc")
	_ = cmd.MarkFlagRequired("base-folder")
}
