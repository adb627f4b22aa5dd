package testdb

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange is returned when a handle was not issued by the database it is resolved against.
var ErrOutOfRange = errors.New("handle out of range")

// PathHandle refers to an interned filesystem path.
type PathHandle uint32

// CommandHandle refers to an interned shell command template.
type CommandHandle uint32

// LabelHandle refers to an interned free-form label (variant name).
type LabelHandle uint32

// TestConfig is one resolved, runnable test case. It only holds handles and
// scalars so it can be copied freely into concurrent tasks.
type TestConfig struct {
	Source       PathHandle
	WorkingDir   PathHandle
	Command      CommandHandle
	ExpectedCode int
	// Empty unless the directory configuration names several command variants
	Label          LabelHandle
	SnapshotStderr bool
}

// Database is an append-only arena of paths, strings and tests.
//
// It is filled during discovery and frozen before execution starts; after
// Freeze it is only read, which is what allows concurrent access without locks.
type Database struct {
	paths   []string
	strings []string
	tests   []TestConfig
	frozen  bool
}

// New creates an empty Database
func New() *Database {
	return &Database{}
}

// InternPath stores a path and returns its handle
func (db *Database) InternPath(path string) PathHandle {
	db.mustBeMutable()
	return PathHandle(appendIndex(&db.paths, path))
}

// InternCommand stores a command template and returns its handle
func (db *Database) InternCommand(command string) CommandHandle {
	db.mustBeMutable()
	return CommandHandle(appendIndex(&db.strings, command))
}

// InternLabel stores a label and returns its handle
func (db *Database) InternLabel(label string) LabelHandle {
	db.mustBeMutable()
	return LabelHandle(appendIndex(&db.strings, label))
}

// AddTest appends a test to the database
func (db *Database) AddTest(test TestConfig) {
	db.mustBeMutable()
	db.tests = append(db.tests, test)
}

// Path resolves a path handle
func (db *Database) Path(h PathHandle) (string, error) {
	if int(h) >= len(db.paths) {
		return "", fmt.Errorf("path %d: %w", h, ErrOutOfRange)
	}
	return db.paths[h], nil
}

// Command resolves a command handle
func (db *Database) Command(h CommandHandle) (string, error) {
	if int(h) >= len(db.strings) {
		return "", fmt.Errorf("command %d: %w", h, ErrOutOfRange)
	}
	return db.strings[h], nil
}

// Label resolves a label handle
func (db *Database) Label(h LabelHandle) (string, error) {
	if int(h) >= len(db.strings) {
		return "", fmt.Errorf("label %d: %w", h, ErrOutOfRange)
	}
	return db.strings[h], nil
}

// Tests returns a copy of the registered tests in registration order
func (db *Database) Tests() []TestConfig {
	tests := make([]TestConfig, len(db.tests))
	copy(tests, db.tests)
	return tests
}

// Len returns the number of registered tests
func (db *Database) Len() int {
	return len(db.tests)
}

// Freeze marks the database read-only. Any later mutation panics.
func (db *Database) Freeze() {
	db.frozen = true
}

// Frozen reports whether Freeze has been called
func (db *Database) Frozen() bool {
	return db.frozen
}

func (db *Database) mustBeMutable() {
	if db.frozen {
		panic("testdb: mutation of a frozen database")
	}
}

func appendIndex(arena *[]string, value string) uint32 {
	index := len(*arena)
	if uint64(index) > math.MaxUint32 {
		panic("testdb: arena index too large")
	}
	*arena = append(*arena, value)
	return uint32(index)
}
