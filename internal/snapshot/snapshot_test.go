package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestNormalize(t *testing.T) {
	base := "/home/ci/checkout/tests"
	stderr := []byte(base + "/lexer/bad.c:1:5: error: unexpected character\n  in " + base + "/lexer/bad.c\n")

	got := Normalize(stderr, base, "{{base_dir}}")
	assert.Equal(t, "{{base_dir}}/lexer/bad.c:1:5: error: unexpected character\n  in {{base_dir}}/lexer/bad.c\n", got)
	assert.NotContains(t, got, base)

	assert.Equal(t, "a�b", Normalize([]byte("a\xffb"), base, "{{base_dir}}"))
	assert.Equal(t, "x", Normalize([]byte("x"), "", "{{base_dir}}"))
}

func TestCompare(t *testing.T) {
	dir := t.TempDir()
	approved := filepath.Join(dir, "a.stderr.approved.txt")

	t.Run("missing approved file", func(t *testing.T) {
		err := Compare("error: boom\n", approved)
		require.NotNil(t, err)
		require.Error(t, err.ReadErr)

		msg := err.Error()
		assert.Contains(t, msg, "failed to open "+approved)
		assert.Contains(t, msg, "     1    |+error: boom")
	})

	t.Run("approve then compare is reflexive", func(t *testing.T) {
		for _, actual := range []string{"", "one line\n", "no trailing newline", "a\n\nb\n"} {
			mismatch := Compare(actual, approved)
			if mismatch != nil {
				require.NoError(t, Approve(mismatch))
			}
			assert.Nil(t, Compare(actual, approved), "actual %q", actual)
		}
	})

	t.Run("mismatch keeps both texts", func(t *testing.T) {
		require.NoError(t, os.WriteFile(approved, []byte("old\n"), 0644))
		err := Compare("new\n", approved)
		require.NotNil(t, err)
		assert.NoError(t, err.ReadErr)
		assert.Equal(t, "old\n", err.Expected)
		assert.Equal(t, "new\n", err.Actual)
		assert.Equal(t, approved, err.ExpectedPath)
	})
}

func TestWriteDiff(t *testing.T) {
	var b strings.Builder
	WriteDiff(&b, "a\nb\nc\n", "a\nB\nc\nd\n")

	want := strings.Join([]string{
		"1    1    | a",
		"2         |-b",
		"     2    |+B",
		"3    3    | c",
		"     4    |+d",
		"",
	}, "\n")
	assert.Equal(t, want, b.String())
}

func TestWriteDiff_Empty(t *testing.T) {
	var b strings.Builder
	WriteDiff(&b, "", "")
	assert.Empty(t, b.String())
}
