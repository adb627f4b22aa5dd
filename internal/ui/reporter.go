package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"mtest/internal/config"
	"mtest/internal/execution"
	"mtest/internal/parser"
	"mtest/internal/snapshot"
	"mtest/internal/testdb"
)

// ApprovePrompt is shown for every snapshot mismatch in interactive mode
const ApprovePrompt = "overwrite approved file [yes/no]? "

// Reporter prints the outcome of every test and the run summary
type Reporter struct {
	config *config.Config
	out    io.Writer
	in     *bufio.Reader
}

// NewReporter creates a Reporter writing to out and reading answers from in
func NewReporter(cfg *config.Config, out io.Writer, in io.Reader) *Reporter {
	return &Reporter{
		config: cfg,
		out:    out,
		in:     bufio.NewReader(in),
	}
}

// Report prints every result in database order followed by the summary.
// It returns true when all tests passed. An error is returned only when an
// accepted snapshot could not be written.
func (r *Reporter) Report(db *testdb.Database, output execution.Output) (bool, error) {
	passed := 0
	for _, result := range output.Results {
		name, err := r.testName(db, result.Test)
		if err != nil {
			return false, err
		}

		if result.Passed() {
			passed++
			if !r.config.Flags.Quiet {
				fmt.Fprintf(r.out, "%s: %s\n", name, color.GreenString("PASSED"))
			}
			continue
		}

		fmt.Fprintf(r.out, "%s: %s\n", name, color.RedString("Failed:"))
		fmt.Fprint(r.out, result.Err.Error())
		fmt.Fprintf(r.out, "Command: %s\n", result.Err.Command)

		if r.config.Flags.Interactive && result.Err.Snapshot != nil {
			if r.confirm() {
				if err := snapshot.Approve(result.Err.Snapshot); err != nil {
					return false, err
				}
			}
		}
	}

	total := len(output.Results)
	fmt.Fprintf(r.out, "%d tests executed in: %.4fs\n", total, output.Duration.Seconds())

	summary := fmt.Sprintf("[%d/%d] tests pass", passed, total)
	if passed == total {
		fmt.Fprintln(r.out, color.GreenString(summary))
	} else {
		fmt.Fprintln(r.out, color.RedString(summary))
	}
	return passed == total, nil
}

// confirm asks until the answer is yes or no. End of input counts as no.
func (r *Reporter) confirm() bool {
	for {
		fmt.Fprint(r.out, ApprovePrompt)
		line, err := r.in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Fprintf(r.out, "\n%s\n", color.YellowString("failed to read answer: %v", err))
			} else {
				fmt.Fprintln(r.out)
			}
			return false
		}
	}
}

func (r *Reporter) testName(db *testdb.Database, test testdb.TestConfig) (string, error) {
	source, err := db.Path(test.Source)
	if err != nil {
		return "", err
	}
	label, err := db.Label(test.Label)
	if err != nil {
		return "", err
	}
	return parser.TestName(r.config.RelativePath(source), label), nil
}
