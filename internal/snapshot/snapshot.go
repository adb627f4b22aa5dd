// Package snapshot compares captured output against approved text files.
package snapshot

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

// Error is a snapshot mismatch. Either Expected holds the approved text or
// ReadErr tells why the approved file could not be read.
type Error struct {
	Actual       string
	Expected     string
	ReadErr      error
	ExpectedPath string
}

func (e *Error) Error() string {
	var b strings.Builder
	e.WriteTo(&b)
	return b.String()
}

// WriteTo renders the mismatch as a numbered line diff
func (e *Error) WriteTo(w io.Writer) (int64, error) {
	return e.render(w, true)
}

// Text renders the mismatch without color codes, for files and databases
func (e *Error) Text() string {
	var b strings.Builder
	e.render(&b, false)
	return b.String()
}

func (e *Error) render(w io.Writer, colored bool) (int64, error) {
	cw := &countingWriter{w: w}
	expected := e.Expected
	if e.ReadErr != nil {
		fmt.Fprintf(cw, "failed to open %s\n%v\n", e.ExpectedPath, e.ReadErr)
		expected = ""
	}
	writeDiff(cw, expected, e.Actual, colored)
	return cw.n, cw.err
}

// Normalize decodes captured output and replaces every occurrence of baseDir
// with placeholder so snapshots do not depend on the checkout location.
func Normalize(output []byte, baseDir, placeholder string) string {
	text := strings.ToValidUTF8(string(output), "�")
	if baseDir == "" {
		return text
	}
	return strings.ReplaceAll(text, baseDir, placeholder)
}

// Compare checks actual against the approved file at expectedPath.
// It returns nil on an exact match.
func Compare(actual, expectedPath string) *Error {
	data, err := os.ReadFile(expectedPath)
	if err != nil {
		return &Error{Actual: actual, ReadErr: err, ExpectedPath: expectedPath}
	}
	expected := string(data)
	if expected == actual {
		return nil
	}
	return &Error{Actual: actual, Expected: expected, ExpectedPath: expectedPath}
}

// Approve overwrites the approved file with the actual output
func Approve(e *Error) error {
	if err := os.WriteFile(e.ExpectedPath, []byte(e.Actual), 0644); err != nil {
		return fmt.Errorf("write approved file: %w", err)
	}
	return nil
}

// WriteDiff writes every line of expected and actual with its old and new
// line number, prefixed by "-" for removed and "+" for added lines.
func WriteDiff(w io.Writer, expected, actual string) {
	writeDiff(w, expected, actual, true)
}

func writeDiff(w io.Writer, expected, actual string, colored bool) {
	a := splitLines(expected)
	b := splitLines(actual)

	var red, green *color.Color
	if colored {
		red = color.New(color.FgRed)
		green = color.New(color.FgGreen)
	}

	for _, op := range difflib.NewMatcher(a, b).GetOpCodes() {
		switch op.Tag {
		case 'e':
			for i := op.I1; i < op.I2; i++ {
				writeLine(w, lineNo(i), lineNo(op.J1+i-op.I1), " ", a[i], nil)
			}
		case 'd', 'r', 'i':
			for i := op.I1; i < op.I2; i++ {
				writeLine(w, lineNo(i), "    ", "-", a[i], red)
			}
			for j := op.J1; j < op.J2; j++ {
				writeLine(w, "    ", lineNo(j), "+", b[j], green)
			}
		}
	}
}

func writeLine(w io.Writer, oldNo, newNo, sign, line string, c *color.Color) {
	text := sign + strings.TrimSuffix(line, "\n")
	if c != nil {
		text = c.Sprint(text)
	}
	fmt.Fprintf(w, "%s %s |%s\n", oldNo, newNo, text)
}

func lineNo(index int) string {
	return fmt.Sprintf("%-4d", index+1)
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
