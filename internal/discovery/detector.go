package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"mtest/internal/config"
	"mtest/internal/testdb"
)

// Detector walks the test tree, resolves the configuration that applies to
// each directory and registers the resulting tests in a database.
type Detector struct {
	config *config.Config
	filter *Filter
	logger zerolog.Logger
}

// NewDetector creates a new Detector
func NewDetector(cfg *config.Config, filter *Filter, logger zerolog.Logger) *Detector {
	return &Detector{
		config: cfg,
		filter: filter,
		logger: logger,
	}
}

// Detect builds the test database for the configured base directory.
// The returned database is frozen.
func (d *Detector) Detect() (*testdb.Database, error) {
	db := testdb.New()

	root := d.config.BaseDir
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test path is not a directory: %s", root)
	}

	if err := d.detectIn(db, db.InternPath(root), root, nil, map[string]bool{}); err != nil {
		return nil, err
	}

	db.Freeze()
	d.logger.Debug().Int("tests", db.Len()).Str("base", root).Msg("Test detection finished")
	return db, nil
}

// detectIn registers the tests of dir and its subdirectories. inherited is the
// configuration in effect for the parent directory and may be nil. ancestors
// holds the resolved paths of the directories currently being walked.
func (d *Detector) detectIn(db *testdb.Database, dirHandle testdb.PathHandle, dir string, inherited *DirConfig, ancestors map[string]bool) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return fmt.Errorf("resolve directory %s: %w", dir, err)
	}
	if ancestors[resolved] {
		d.logger.Debug().Str("path", dir).Str("target", resolved).Msg("Skipping symlink cycle")
		return nil
	}
	ancestors[resolved] = true
	defer delete(ancestors, resolved)

	own, err := ReadDirConfig(filepath.Join(dir, d.config.ConfigFileName))
	if err != nil {
		return err
	}
	effective := inherited
	if own != nil {
		d.logger.Debug().Str("path", own.Path).Stringer("kind", own.Kind).Msg("Found test config")
		effective = own
	}

	// os.ReadDir sorts by file name, which keeps discovery order stable
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read directory %s: %w", dir, err)
	}

	var sources []string
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)

		isDir, err := isDirectory(path, entry)
		if err != nil {
			return err
		}
		if isDir {
			// Skip hidden directories (starting with .)
			if strings.HasPrefix(name, ".") {
				continue
			}
			if err := d.detectIn(db, db.InternPath(path), path, effective, ancestors); err != nil {
				return err
			}
			continue
		}

		if filepath.Ext(name) == d.config.SourceExtension && d.filter.Match(path) {
			sources = append(sources, path)
		}
	}

	if effective == nil || len(sources) == 0 {
		return nil
	}

	handles := make([]testdb.PathHandle, len(sources))
	for i, source := range sources {
		handles[i] = db.InternPath(source)
	}

	for _, variant := range effective.Variants() {
		d.register(db, dirHandle, handles, variant)
	}
	return nil
}

func (d *Detector) register(db *testdb.Database, dirHandle testdb.PathHandle, sources []testdb.PathHandle, variant Variant) {
	command := ExpandPlaceholders(variant.Command, Placeholder{Name: "{mcc}", Value: d.config.MCCPath})
	commandHandle := db.InternCommand(command)
	label := db.InternLabel(variant.Name)

	for _, source := range sources {
		db.AddTest(testdb.TestConfig{
			Source:         source,
			WorkingDir:     dirHandle,
			Command:        commandHandle,
			ExpectedCode:   variant.ReturnCode,
			Label:          label,
			SnapshotStderr: variant.SnapshotStderr,
		})
	}
}

// isDirectory follows symlinks the way a plain stat would
func isDirectory(path string, entry os.DirEntry) (bool, error) {
	if entry.Type()&os.ModeSymlink == 0 {
		return entry.IsDir(), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		// dangling symlink
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.IsDir(), nil
}
