package commands

import (
	"github.com/spf13/cobra"

	"mtest/internal/config"
	"mtest/internal/storage"
	"mtest/internal/ui"
)

// FaillsCommand handles the faills command
type FaillsCommand struct {
	config  *config.Config
	storage storage.Storage
	viewer  ui.Viewer
}

// NewFaillsCommand creates a new FaillsCommand
func NewFaillsCommand(cfg *config.Config, st storage.Storage, viewer ui.Viewer) *FaillsCommand {
	return &FaillsCommand{
		config:  cfg,
		storage: st,
		viewer:  viewer,
	}
}

// Execute runs the command
func (fc *FaillsCommand) Execute(cmd *cobra.Command, args []string) error {
	results, err := fc.storage.Load()
	if err != nil {
		return err
	}

	if fc.config.Flags.Stats {
		ui.NewFormatter(fc.config, cmd.OutOrStdout()).PrintMetaStats(results)
		return nil
	}
	return fc.viewer.View(results)
}
