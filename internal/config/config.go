package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string

	// Resolved by Resolve: absolute, symlink-free paths
	MCCPath string
	BaseDir string

	// Test tree layout
	ConfigFileName     string
	SourceExtension    string
	SnapshotSuffix     string
	BaseDirPlaceholder string
	ArtifactExtensions []string
	Shell              string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string

	// Execution settings
	Processors int
	Timeout    time.Duration

	// Command flags
	Flags Flags
}

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

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:        DefaultProjectPath,
		ConfigFileName:     DefaultConfigFileName,
		SourceExtension:    DefaultSourceExtension,
		SnapshotSuffix:     DefaultSnapshotSuffix,
		BaseDirPlaceholder: DefaultBaseDirPlaceholder,
		Shell:              DefaultShell,
		OutputJSONFile:     DefaultOutputJSONFile,
		OutputJSONDir:      DefaultOutputJSONDir,
		Processors:         runtime.NumCPU(),
	}
	cfg.Flags = Flags{Processors: cfg.Processors}
	// Copy default artifact extensions
	cfg.ArtifactExtensions = make([]string, len(DefaultArtifactExtensions))
	copy(cfg.ArtifactExtensions, DefaultArtifactExtensions)
	return cfg
}

// Load creates a config, applies flags and resolves paths
func Load(flags Flags) (*Config, error) {
	cfg := New()
	cfg.Apply(flags)
	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply stores the flags and copies the overrides they carry
func (c *Config) Apply(flags Flags) {
	c.Flags = flags
	if flags.Processors > 0 {
		c.Processors = flags.Processors
	}
	if flags.Timeout > 0 {
		c.Timeout = flags.Timeout
	}
}

// Resolve canonicalizes the executable and base folder paths
func (c *Config) Resolve() error {
	if c.Flags.MCC == "" {
		return errors.New("no executable under test given (use --mcc)")
	}
	if c.Flags.BaseFolder == "" {
		return errors.New("no base folder given (use --base-folder)")
	}

	mcc, err := canonicalize(c.Flags.MCC)
	if err != nil {
		return fmt.Errorf("can't canonicalize mcc path: %w", err)
	}
	base, err := canonicalize(c.Flags.BaseFolder)
	if err != nil {
		return fmt.Errorf("can't canonicalize base directory path: %w", err)
	}

	info, err := os.Stat(base)
	if err != nil {
		return fmt.Errorf("base directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("base directory is not a directory: %s", base)
	}

	c.MCCPath = mcc
	c.BaseDir = base
	return nil
}

// LoadEnv loads .env files from the project path and the base folder into the process
// environment. Missing files are not an error; variables already set win.
func (c *Config) LoadEnv() error {
	paths := []string{filepath.Join(c.ProjectPath, DefaultEnvFile)}
	if c.BaseDir != "" {
		paths = append(paths, filepath.Join(c.BaseDir, DefaultEnvFile))
	}
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// GetOutputPath returns the full path to the output JSON file.
// Resolves to an absolute path so run and faills always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// RelativePath returns path relative to the base directory, or path itself when it is outside of it
func (c *Config) RelativePath(path string) string {
	if c.BaseDir == "" {
		return path
	}
	rel, err := filepath.Rel(c.BaseDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// SnapshotPath returns the approved stderr file for a source file
func (c *Config) SnapshotPath(source string) string {
	return StripExtension(source) + c.SnapshotSuffix
}

// StripExtension removes the final extension of path
func StripExtension(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
