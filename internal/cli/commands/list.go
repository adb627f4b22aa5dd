package commands

import (
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mtest/internal/config"
	"mtest/internal/discovery"
	"mtest/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config *config.Config
	logger zerolog.Logger
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config, logger zerolog.Logger) *ListCommand {
	return &ListCommand{
		config: cfg,
		logger: logger,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	detector := discovery.NewDetector(lc.config, discovery.NewFilter(lc.config.Flags.NameFilter), lc.logger)
	db, err := detector.Detect()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if db.Len() == 0 {
		_, err := color.New(color.FgYellow).Fprintln(out, "No tests found")
		return err
	}

	return ui.NewFormatter(lc.config, out).PrintTestList(db, lc.config.Flags.ShowCommands)
}
