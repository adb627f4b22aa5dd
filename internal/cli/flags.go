package cli

import (
	"time"

	"mtest/internal/config"
)

// Flags holds command-line flags
type Flags struct {
	MCC            string
	BaseFolder     string
	Quiet          bool
	Interactive    bool
	Processors     int
	NameFilter     string
	Timeout        time.Duration
	History        bool
	SkipSmokeCheck bool
	ShowCommands   bool
	Stats          bool
	Debug          bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		MCC:            f.MCC,
		BaseFolder:     f.BaseFolder,
		Quiet:          f.Quiet,
		Interactive:    f.Interactive,
		Processors:     f.Processors,
		NameFilter:     f.NameFilter,
		Timeout:        f.Timeout,
		History:        f.History,
		SkipSmokeCheck: f.SkipSmokeCheck,
		ShowCommands:   f.ShowCommands,
		Stats:          f.Stats,
		Debug:          f.Debug,
	}
}
