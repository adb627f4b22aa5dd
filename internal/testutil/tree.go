// Package testutil materializes txtar archives into directory trees for tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"
)

// WriteTree writes every file of the txtar archive below dir.
// Files whose name ends in ".sh" are made executable.
func WriteTree(t testing.TB, dir, archive string) {
	t.Helper()

	ar := txtar.Parse([]byte(archive))
	for _, f := range ar.Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", f.Name, err)
		}
		mode := os.FileMode(0644)
		if strings.HasSuffix(f.Name, ".sh") {
			mode = 0755
		}
		if err := os.WriteFile(path, f.Data, mode); err != nil {
			t.Fatalf("failed to write %s: %v", f.Name, err)
		}
	}
}

// TempTree creates a canonical temporary directory holding the archive
func TempTree(t testing.TB, archive string) string {
	t.Helper()

	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}
	WriteTree(t, dir, archive)
	return dir
}
