package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mtest/internal/config"
	"mtest/internal/discovery"
	"mtest/internal/execution"
	"mtest/internal/parser"
	"mtest/internal/storage"
	"mtest/internal/testdb"
	"mtest/internal/ui"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// RunCommand handles the run command
type RunCommand struct {
	config   *config.Config
	runner   *execution.Runner
	executor *execution.WorkerPool
	parser   *parser.ResultParser
	storage  storage.Storage
	logger   zerolog.Logger
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	runner *execution.Runner,
	executor *execution.WorkerPool,
	parser *parser.ResultParser,
	st storage.Storage,
	logger zerolog.Logger,
) *RunCommand {
	return &RunCommand{
		config:   cfg,
		runner:   runner,
		executor: executor,
		parser:   parser,
		storage:  st,
		logger:   logger,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !rc.config.Flags.SkipSmokeCheck {
		if err := rc.runner.SmokeCheck(ctx); err != nil {
			return err
		}
	}

	// Discover tests
	detector := discovery.NewDetector(rc.config, discovery.NewFilter(rc.config.Flags.NameFilter), rc.logger)
	db, err := detector.Detect()
	if err != nil {
		return err
	}
	if db.Len() == 0 {
		rc.logger.Warn().Str("base_folder", rc.config.BaseDir).Msg("No tests to execute")
	}

	// Create and set progress bar
	if !rc.config.Flags.Quiet && db.Len() > 0 && ui.IsTerminal(os.Stderr) {
		rc.executor.SetProgress(ui.NewProgressBar(db.Len(), os.Stderr))
	}

	// Execute tests
	output, err := rc.executor.Execute(ctx, db)
	if err != nil {
		return err
	}

	reporter := ui.NewReporter(rc.config, cmd.OutOrStdout(), cmd.InOrStdin())
	passed, err := reporter.Report(db, output)
	if err != nil {
		return err
	}

	if err := rc.save(ctx, db, output); err != nil {
		return err
	}

	if !passed {
		return ErrTestsFailed
	}
	return nil
}

// save stores the results for faills and, when requested, in the history database
func (rc *RunCommand) save(ctx context.Context, db *testdb.Database, output execution.Output) error {
	failures, err := rc.parser.ParseFailures(db, output)
	if err != nil {
		return err
	}
	meta := rc.parser.Meta(output, time.Now())

	if err := rc.storage.Save(meta, failures); err != nil {
		return fmt.Errorf("failed to save test results: %w", err)
	}
	rc.logger.Debug().Str("path", rc.config.GetOutputPath()).Msg("Saved test results")

	if !rc.config.Flags.History {
		return nil
	}

	history, err := storage.OpenHistory(ctx, storage.HistoryConfigFromEnv())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer history.Close()

	runID, err := history.Record(ctx, meta, failures)
	if err != nil {
		return fmt.Errorf("failed to record run history: %w", err)
	}
	rc.logger.Info().Int64("run_id", runID).Int("failures", len(failures)).Msg("Recorded run history")
	return nil
}
