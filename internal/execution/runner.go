package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mtest/internal/config"
	"mtest/internal/discovery"
	"mtest/internal/snapshot"
	"mtest/internal/testdb"
)

// Runner executes a single test
type Runner struct {
	config *config.Config
	parser *discovery.Parser
	logger zerolog.Logger
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config, parser *discovery.Parser, logger zerolog.Logger) *Runner {
	return &Runner{
		config: cfg,
		parser: parser,
		logger: logger,
	}
}

// Run executes one test. The returned error is only set when the command
// could not be launched, which aborts the whole run; test failures are
// reported through Result.Err.
func (r *Runner) Run(ctx context.Context, db *testdb.Database, test testdb.TestConfig) (Result, error) {
	start := time.Now()

	source, err := db.Path(test.Source)
	if err != nil {
		return Result{}, err
	}
	workDir, err := db.Path(test.WorkingDir)
	if err != nil {
		return Result{}, err
	}
	template, err := db.Command(test.Command)
	if err != nil {
		return Result{}, err
	}

	expectedCode := r.expectedCode(source, test.ExpectedCode)
	base := config.StripExtension(source)
	command := discovery.ExpandPlaceholders(template,
		discovery.Placeholder{Name: "{filename}", Value: source},
		discovery.Placeholder{Name: "{base}", Value: base},
	)

	runCtx := ctx
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, r.config.Shell, "-c", command)
	cmd.Dir = workDir
	if r.config.Timeout > 0 {
		// children that outlive a killed shell must not keep the test hanging
		cmd.WaitDelay = time.Second
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	r.logger.Debug().Str("source", source).Str("command", command).Msg("Starting test")

	err = cmd.Run()
	if err != nil && !completed(err, cmd) {
		return Result{}, fmt.Errorf("%w %q: %w", ErrLaunch, command, err)
	}
	if cmd.ProcessState == nil {
		return Result{}, fmt.Errorf("%w %q: no process state", ErrLaunch, command)
	}
	timedOut := ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded)

	actualStderr := snapshot.Normalize(stderr.Bytes(), r.config.BaseDir, r.config.BaseDirPlaceholder)

	var snapshotErr *snapshot.Error
	if test.SnapshotStderr {
		snapshotErr = snapshot.Compare(actualStderr, r.config.SnapshotPath(source))
	}

	r.removeArtifacts(base)

	testErr := &TestError{
		ExpectedCode: expectedCode,
		ActualCode:   cmd.ProcessState.ExitCode(),
		Exited:       cmd.ProcessState.Exited(),
		TimedOut:     timedOut,
		Stderr:       actualStderr,
		Command:      command,
		Snapshot:     snapshotErr,
	}

	result := Result{Test: test, Duration: time.Since(start)}
	if testErr.CodeMismatch() || snapshotErr != nil {
		result.Err = testErr
	}

	r.logger.Debug().
		Str("source", source).
		Int("exit_code", testErr.ActualCode).
		Bool("passed", result.Passed()).
		Dur("duration", result.Duration).
		Msg("Finished test")

	return result, nil
}

// completed reports whether err came from a process that ran to an exit
// status. Output still held open by a background child after the shell
// exited is not a launch failure.
func completed(err error, cmd *exec.Cmd) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return true
	}
	return errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil
}

// expectedCode re-reads the source for a RETURN directive
func (r *Runner) expectedCode(source string, configured int) int {
	code, found, err := r.parser.FindReturnOverride(source)
	if err != nil {
		r.logger.Warn().Err(err).Str("source", source).Msg("Could not read RETURN directive, using configured return code")
		return configured
	}
	if found {
		return code
	}
	return configured
}

// removeArtifacts deletes build outputs next to the source, ignoring failures
func (r *Runner) removeArtifacts(base string) {
	for _, ext := range r.config.ArtifactExtensions {
		path := base + ext
		info, err := os.Lstat(path)
		if err != nil || info.IsDir() {
			continue
		}
		_ = os.Remove(path)
	}
}

// SmokeCheck runs the executable under test without arguments. It must fail
// and print the usage message; anything else means the harness is misconfigured.
func (r *Runner) SmokeCheck(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, r.config.MCCPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return fmt.Errorf("%w: %s succeeded without input files", ErrSmokeCheck, r.config.MCCPath)
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("failed to run mcc at %s: %w", r.config.MCCPath, err)
	}

	output := strings.ToValidUTF8(stderr.String(), "�")
	if !strings.Contains(output, config.SmokeCheckMessage) {
		return fmt.Errorf("%w: unexpected output from %s:\n%s", ErrSmokeCheck, r.config.MCCPath, output)
	}

	r.logger.Debug().Str("mcc", r.config.MCCPath).Msg("Smoke check passed")
	return nil
}
