package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtest/internal/config"
	"mtest/internal/domain"
)

func newTestStorage(t *testing.T) (*JSONStorage, *config.Config) {
	t.Helper()
	cfg := config.New()
	cfg.ProjectPath = t.TempDir()
	return NewJSONStorage(cfg), cfg
}

func TestJSONStorage_SaveLoad(t *testing.T) {
	s, cfg := newTestStorage(t)

	code := 3
	failures := []domain.TestFailure{
		{TestName: "a.c", FilePath: "a.c", ExpectedCode: 0, ActualCode: &code, Message: "boom"},
		{TestName: "b.c[lex]", FilePath: "b.c", Variant: "lex", TimedOut: true},
	}
	meta := domain.TestResultsMeta{TotalTests: 5, PassedTests: 3, FailedTests: 2, Workers: 4}

	require.NoError(t, s.Save(meta, failures))

	_, err := os.Stat(filepath.Join(cfg.ProjectPath, "storage", "test-results.json"))
	require.NoError(t, err)

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, meta, loaded.Meta)
	assert.Equal(t, failures, loaded.Details)
	assert.Equal(t, 2, loaded.Unresolved())
}

func TestJSONStorage_SaveWithoutFailures(t *testing.T) {
	s, cfg := newTestStorage(t)
	require.NoError(t, s.Save(domain.TestResultsMeta{TotalTests: 1, PassedTests: 1}, nil))

	data, err := os.ReadFile(cfg.GetOutputPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"details": []`)
}

func TestJSONStorage_ResolvedRoundTrip(t *testing.T) {
	s, _ := newTestStorage(t)
	require.NoError(t, s.Save(domain.TestResultsMeta{}, []domain.TestFailure{{TestName: "a.c[]"}, {TestName: "b.c[]"}}))

	output, err := s.Load()
	require.NoError(t, err)
	output.Details[1].Resolved = true
	require.NoError(t, s.SaveOutput(output))

	reloaded, err := s.Load()
	require.NoError(t, err)
	assert.False(t, reloaded.Details[0].Resolved)
	assert.True(t, reloaded.Details[1].Resolved)
	assert.Equal(t, 1, reloaded.Unresolved())
}

func TestJSONStorage_LoadMissing(t *testing.T) {
	s, _ := newTestStorage(t)
	_, err := s.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestJSONStorage_LoadCorrupt(t *testing.T) {
	s, cfg := newTestStorage(t)
	path := cfg.GetOutputPath()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := s.Load()
	assert.ErrorContains(t, err, "parse results")
}
