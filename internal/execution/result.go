package execution

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mtest/internal/snapshot"
	"mtest/internal/testdb"
)

var (
	// ErrLaunch means a test command could not be started at all
	ErrLaunch = errors.New("failed to run test command")
	// ErrSmokeCheck means the executable under test did not behave as expected without arguments
	ErrSmokeCheck = errors.New("smoke check failed")
	// ErrNotFrozen is returned when execution is attempted on a database still being built
	ErrNotFrozen = errors.New("test database is not frozen")
)

// TestError describes why a single test failed. Exit code and snapshot
// mismatches are reported together when both happen.
type TestError struct {
	ExpectedCode int
	ActualCode   int
	// Exited is false when the process was terminated by a signal
	Exited   bool
	TimedOut bool
	// Stderr is the normalized standard error of the command
	Stderr  string
	Command string
	// Snapshot is nil unless snapshot comparison was requested and failed
	Snapshot *snapshot.Error
}

// CodeMismatch reports whether the exit code differs from the expected one
func (e *TestError) CodeMismatch() bool {
	return !e.Exited || e.ActualCode != e.ExpectedCode
}

func (e *TestError) Error() string {
	return e.render(true)
}

// Text is Error without color codes
func (e *TestError) Text() string {
	return e.render(false)
}

func (e *TestError) render(colored bool) string {
	var b strings.Builder
	if e.CodeMismatch() {
		fmt.Fprintf(&b, "Expected return code: %d Actual return code: ", e.ExpectedCode)
		switch {
		case e.TimedOut:
			b.WriteString("none (timed out)\n")
		case !e.Exited:
			b.WriteString("none\n")
		default:
			fmt.Fprintf(&b, "%d\n", e.ActualCode)
		}
	}

	if e.Snapshot != nil {
		b.WriteString("Standard error is different than expected:\n")
		if colored {
			e.Snapshot.WriteTo(&b)
		} else {
			b.WriteString(e.Snapshot.Text())
		}
	} else if e.Stderr != "" {
		fmt.Fprintf(&b, "with error message:\n%s\n", e.Stderr)
	}
	return b.String()
}

// Result is the outcome of one test
type Result struct {
	Test     testdb.TestConfig
	Err      *TestError
	Duration time.Duration
}

// Passed reports whether the test passed
func (r Result) Passed() bool {
	return r.Err == nil
}

// Output holds the results of a run in database order
type Output struct {
	Results  []Result
	Duration time.Duration
}

// Counts returns the number of passed and failed tests
func (o Output) Counts() (passed, failed int) {
	for _, r := range o.Results {
		if r.Passed() {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
