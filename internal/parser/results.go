package parser

import (
	"fmt"
	"time"

	"mtest/internal/config"
	"mtest/internal/domain"
	"mtest/internal/execution"
	"mtest/internal/testdb"
)

// ResultParser builds failure records from the results of a run
type ResultParser struct {
	config *config.Config
}

// NewResultParser creates a new ResultParser
func NewResultParser(cfg *config.Config) *ResultParser {
	return &ResultParser{config: cfg}
}

// ParseFailures returns one record per failed test, in database order
func (p *ResultParser) ParseFailures(db *testdb.Database, output execution.Output) ([]domain.TestFailure, error) {
	failures := []domain.TestFailure{}
	for _, result := range output.Results {
		if result.Passed() {
			continue
		}
		failure, err := p.parseFailure(db, result)
		if err != nil {
			return nil, err
		}
		failures = append(failures, failure)
	}
	return failures, nil
}

func (p *ResultParser) parseFailure(db *testdb.Database, result execution.Result) (domain.TestFailure, error) {
	source, err := db.Path(result.Test.Source)
	if err != nil {
		return domain.TestFailure{}, fmt.Errorf("resolve source: %w", err)
	}
	label, err := db.Label(result.Test.Label)
	if err != nil {
		return domain.TestFailure{}, fmt.Errorf("resolve label: %w", err)
	}

	rel := p.config.RelativePath(source)
	testErr := result.Err
	failure := domain.TestFailure{
		TestName:     TestName(rel, label),
		FilePath:     rel,
		Variant:      label,
		Command:      testErr.Command,
		ExpectedCode: testErr.ExpectedCode,
		TimedOut:     testErr.TimedOut,
		Stderr:       testErr.Stderr,
		Message:      testErr.Text(),
	}
	if testErr.Exited {
		code := testErr.ActualCode
		failure.ActualCode = &code
	}
	if testErr.Snapshot != nil {
		failure.SnapshotPath = p.config.RelativePath(testErr.Snapshot.ExpectedPath)
	}
	return failure, nil
}

// Meta summarizes a run
func (p *ResultParser) Meta(output execution.Output, now time.Time) domain.TestResultsMeta {
	passed, failed := output.Counts()
	return domain.TestResultsMeta{
		MCC:             p.config.MCCPath,
		BaseDir:         p.config.BaseDir,
		TotalTests:      len(output.Results),
		PassedTests:     passed,
		FailedTests:     failed,
		Duration:        output.Duration.String(),
		DurationSeconds: output.Duration.Seconds(),
		Workers:         p.config.Processors,
		Timestamp:       now.Format(time.RFC3339),
	}
}

// TestName is the display name of a test: its path followed by the variant
// in brackets. Unlabelled tests are named by their path alone.
func TestName(relPath, label string) string {
	if label == "" {
		return relPath
	}
	return relPath + "[" + label + "]"
}

var _ Parser = (*ResultParser)(nil)
