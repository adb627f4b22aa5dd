package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
)

// Kind tells which shape a directory configuration has
type Kind int

const (
	// Flat applies a single command to every source file of the directory
	Flat Kind = iota
	// Nested tests every source file once per named command variant
	Nested
)

func (k Kind) String() string {
	switch k {
	case Flat:
		return "flat"
	case Nested:
		return "nested"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// CommandConfig is one `command` record of a configuration file
type CommandConfig struct {
	Command        string
	ReturnCode     int
	SnapshotStderr bool
}

// Variant is a command record together with the name it is reported under.
// The name is empty for flat configurations.
type Variant struct {
	Name string
	CommandConfig
}

// DirConfig is the parsed content of a directory's configuration file
type DirConfig struct {
	Path   string // file it was read from
	Kind   Kind
	Flat   CommandConfig
	Nested []Variant // sorted by name
}

// Variants returns the command variants a source file is tested with
func (c *DirConfig) Variants() []Variant {
	switch c.Kind {
	case Nested:
		return c.Nested
	default:
		return []Variant{{CommandConfig: c.Flat}}
	}
}

// ConfigError reports an unreadable or malformed configuration file
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("test config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

type commandFile struct {
	Command            string `toml:"command"`
	ReturnCode         int    `toml:"return_code"`
	SnapshotTestStderr bool   `toml:"snapshot_test_stderr"`
}

type configFile struct {
	Command            string                 `toml:"command"`
	ReturnCode         int                    `toml:"return_code"`
	SnapshotTestStderr bool                   `toml:"snapshot_test_stderr"`
	Commands           map[string]commandFile `toml:"commands"`
}

// ReadDirConfig reads the configuration file at path.
// It returns nil without error when the file does not exist.
func ReadDirConfig(path string) (*DirConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	cfg, err := ParseDirConfig(data)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	cfg.Path = path
	return cfg, nil
}

// ParseDirConfig decodes configuration file content.
// A top-level `command` key makes it flat; otherwise a `commands` table makes it nested.
func ParseDirConfig(data []byte) (*DirConfig, error) {
	var file configFile
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	if md.IsDefined("command") {
		return &DirConfig{
			Kind: Flat,
			Flat: CommandConfig{
				Command:        file.Command,
				ReturnCode:     file.ReturnCode,
				SnapshotStderr: file.SnapshotTestStderr,
			},
		}, nil
	}

	if !md.IsDefined("commands") {
		return nil, errors.New("expected either a `command` key or `[commands.<name>]` tables")
	}

	names := make([]string, 0, len(file.Commands))
	for name := range file.Commands {
		if !md.IsDefined("commands", name, "command") {
			return nil, fmt.Errorf("commands.%s: missing `command` key", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	cfg := &DirConfig{Kind: Nested, Nested: make([]Variant, 0, len(names))}
	for _, name := range names {
		c := file.Commands[name]
		cfg.Nested = append(cfg.Nested, Variant{
			Name: name,
			CommandConfig: CommandConfig{
				Command:        c.Command,
				ReturnCode:     c.ReturnCode,
				SnapshotStderr: c.SnapshotTestStderr,
			},
		})
	}
	return cfg, nil
}
