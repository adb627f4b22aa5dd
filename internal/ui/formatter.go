package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"mtest/internal/config"
	"mtest/internal/domain"
	"mtest/internal/testdb"
)

// Formatter formats and displays test lists and stored run statistics
type Formatter struct {
	config *config.Config
	out    io.Writer
}

// NewFormatter creates a new Formatter
func NewFormatter(cfg *config.Config, out io.Writer) *Formatter {
	return &Formatter{
		config: cfg,
		out:    out,
	}
}

type listedFile struct {
	path     string
	variants []listedVariant
}

type listedVariant struct {
	label   string
	command string
}

// PrintTestList prints the discovered tests grouped by source file, one
// child per variant. With showCommands the command template is printed too.
func (f *Formatter) PrintTestList(db *testdb.Database, showCommands bool) error {
	var files []*listedFile
	byPath := make(map[string]*listedFile)

	for _, test := range db.Tests() {
		source, err := db.Path(test.Source)
		if err != nil {
			return err
		}
		label, err := db.Label(test.Label)
		if err != nil {
			return err
		}
		command, err := db.Command(test.Command)
		if err != nil {
			return err
		}

		file, ok := byPath[source]
		if !ok {
			file = &listedFile{path: f.config.RelativePath(source)}
			byPath[source] = file
			files = append(files, file)
		}
		file.variants = append(file.variants, listedVariant{label: label, command: command})
	}

	fmt.Fprintln(f.out, color.GreenString("Found %d test(s) in %d file(s):", db.Len(), len(files)))

	for i, file := range files {
		isLastFile := i == len(files)-1
		if isLastFile {
			fmt.Fprintln(f.out, color.CyanString("└── %s", file.path))
		} else {
			fmt.Fprintln(f.out, color.CyanString("├── %s", file.path))
		}

		for j, variant := range file.variants {
			isLastCase := j == len(file.variants)-1

			var prefix string
			if isLastFile {
				if isLastCase {
					prefix = "    └── "
				} else {
					prefix = "    ├── "
				}
			} else {
				if isLastCase {
					prefix = "│   └── "
				} else {
					prefix = "│   ├── "
				}
			}

			line := prefix + color.YellowString("[%s]", variant.label)
			if showCommands {
				line += " " + variant.command
			}
			fmt.Fprintln(f.out, line)
		}
	}
	return nil
}

// PrintMetaStats displays the statistics of a stored run and a tree of its failures
func (f *Formatter) PrintMetaStats(output *domain.TestResultsOutput) {
	meta := output.Meta

	fmt.Fprintln(f.out, color.CyanString("╔═══════════════════════════════════════════════════════════════╗"))
	fmt.Fprintln(f.out, color.CyanString("║                    Test Execution Statistics                  ║"))
	fmt.Fprintln(f.out, color.CyanString("╚═══════════════════════════════════════════════════════════════╝"))

	rows := []struct {
		name  string
		value string
		paint func(format string, a ...interface{}) string
	}{
		{"Total Tests", fmt.Sprint(meta.TotalTests), color.WhiteString},
		{"Passed Tests", fmt.Sprint(meta.PassedTests), color.GreenString},
		{"Failed Tests", fmt.Sprint(meta.FailedTests), color.RedString},
		{"Unresolved Failures", fmt.Sprint(output.Unresolved()), color.RedString},
		{"Duration", fmt.Sprintf("%.4fs", meta.DurationSeconds), color.WhiteString},
		{"Workers", fmt.Sprint(meta.Workers), color.WhiteString},
		{"Timestamp", meta.Timestamp, color.WhiteString},
	}

	fmt.Fprintln(f.out, "┌─────────────────────────────────┬─────────────────────────────┐")
	for i, row := range rows {
		fmt.Fprintf(f.out, "│ %-31s │ %s │\n", row.name, row.paint("%-27s", row.value))
		if i < len(rows)-1 {
			fmt.Fprintln(f.out, "├─────────────────────────────────┼─────────────────────────────┤")
		}
	}
	fmt.Fprintln(f.out, "└─────────────────────────────────┴─────────────────────────────┘")

	fmt.Fprintln(f.out)
	if meta.FailedTests == 0 {
		fmt.Fprintln(f.out, color.GreenString("✓ All tests passed!"))
		return
	}
	fmt.Fprintln(f.out, color.RedString("✗ %d test(s) failed", meta.FailedTests))
	fmt.Fprintln(f.out)
	f.printFailedTestsTree(output.Details)
}

// TreeNode represents a node in the file tree structure
type TreeNode struct {
	Name     string
	Children map[string]*TreeNode
	Failures []domain.TestFailure
	IsFile   bool
}

// printFailedTestsTree prints failed variants below their directories and files
func (f *Formatter) printFailedTestsTree(failures []domain.TestFailure) {
	root := &TreeNode{Children: make(map[string]*TreeNode)}

	for _, failure := range failures {
		parts := strings.Split(strings.TrimPrefix(failure.FilePath, "./"), "/")
		current := root
		for i, part := range parts {
			if part == "" {
				continue
			}
			if current.Children[part] == nil {
				current.Children[part] = &TreeNode{
					Name:     part,
					Children: make(map[string]*TreeNode),
					IsFile:   i == len(parts)-1,
				}
			}
			current = current.Children[part]
		}
		current.Failures = append(current.Failures, failure)
	}

	f.printTreeNode(root, "")
}

func (f *Formatter) printTreeNode(node *TreeNode, prefix string) {
	keys := make([]string, 0, len(node.Children))
	for key := range node.Children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for i, key := range keys {
		child := node.Children[key]
		isLast := i == len(keys)-1

		connector, childPrefix := "├── ", "│   "
		if isLast {
			connector, childPrefix = "└── ", "    "
		}

		if child.IsFile {
			fmt.Fprintln(f.out, prefix+connector+color.YellowString(child.Name))
			for j, failure := range child.Failures {
				caseConnector := "├── "
				if j == len(child.Failures)-1 {
					caseConnector = "└── "
				}
				text := fmt.Sprintf("expected %d, got %s", failure.ExpectedCode, failure.CodeText())
				if failure.Variant != "" {
					text = "[" + failure.Variant + "] " + text
				}
				if failure.Resolved {
					text += " (resolved)"
				}
				fmt.Fprintln(f.out, prefix+childPrefix+caseConnector+color.RedString(text))
			}
		} else {
			fmt.Fprintln(f.out, prefix+connector+color.CyanString(child.Name))
		}

		f.printTreeNode(child, prefix+childPrefix)
	}
}
