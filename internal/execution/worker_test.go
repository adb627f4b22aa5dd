package execution

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtest/internal/config"
	"mtest/internal/testdb"
	"mtest/internal/testutil"
)

type recordingProgress struct {
	mu       sync.Mutex
	updates  int
	passed   int
	failed   int
	finished bool
}

func (p *recordingProgress) Update(passed, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates++
	p.passed, p.failed = passed, failed
}

func (p *recordingProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished = true
}

// orderedTree has tests whose later entries finish first
func orderedTree(n int) string {
	var b strings.Builder
	b.WriteString("-- test_config.toml --\n")
	b.WriteString(`command = "sleep $(sed -n 1p {filename}); exit $(sed -n 2p {filename})"` + "\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "-- t%02d.c --\n0.%d\n%d\n// RETURN: %d\n", i, n-i, i%3, i%2)
	}
	return b.String()
}

func TestWorkerPool_PreservesOrder(t *testing.T) {
	cfg, db := setup(t, orderedTree(8))
	cfg.Processors = 8

	progress := &recordingProgress{}
	pool := newPool(cfg)
	pool.SetProgress(progress)

	output, err := pool.Execute(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, output.Results, 8)

	for i, test := range db.Tests() {
		assert.Equal(t, test, output.Results[i].Test, "result %d out of order", i)
		// exit i%3 against RETURN i%2
		assert.Equal(t, i%3 == i%2, output.Results[i].Passed(), "test %d", i)
	}
	assert.Positive(t, output.Duration)

	assert.Equal(t, 8, progress.updates)
	assert.True(t, progress.finished)
	passed, failed := output.Counts()
	assert.Equal(t, passed, progress.passed)
	assert.Equal(t, failed, progress.failed)
}

func TestWorkerPool_Idempotent(t *testing.T) {
	cfg, db := setup(t, orderedTree(6))
	cfg.Processors = 2

	verdicts := func() []bool {
		output := execute(t, cfg, db)
		var v []bool
		for _, r := range output.Results {
			v = append(v, r.Passed())
		}
		return v
	}

	assert.Equal(t, verdicts(), verdicts())
}

func TestWorkerPool_LaunchFailureIsFatal(t *testing.T) {
	cfg, db := setup(t, orderedTree(4))
	cfg.Shell = "/nonexistent/shell"

	_, err := newPool(cfg).Execute(context.Background(), db)
	assert.ErrorIs(t, err, ErrLaunch)
}

func TestWorkerPool_RequiresFrozenDatabase(t *testing.T) {
	cfg, _ := setup(t, orderedTree(1))

	db := testdb.New()
	db.AddTest(testdb.TestConfig{})

	_, err := newPool(cfg).Execute(context.Background(), db)
	assert.ErrorIs(t, err, ErrNotFrozen)
}

func TestWorkerPool_Empty(t *testing.T) {
	cfg, db := setup(t, "-- a.c --\n")
	require.Zero(t, db.Len())

	output, err := newPool(cfg).Execute(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, output.Results)
}

func TestWorkerPool_CancelledContext(t *testing.T) {
	cfg, db := setup(t, orderedTree(3))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPool(cfg).Execute(ctx, db)
	assert.Error(t, err)
}

func TestWorkerPool_LaunchFailureLetsRunningTestsFinish(t *testing.T) {
	base := testutil.TempTree(t, "-- a.c --\n-- b.c --\n")
	cfg := config.New()
	cfg.BaseDir = base
	cfg.Processors = 2

	db := testdb.New()
	label := db.InternLabel("")
	db.AddTest(testdb.TestConfig{
		Source:     db.InternPath(filepath.Join(base, "a.c")),
		WorkingDir: db.InternPath(base),
		Command:    db.InternCommand("sleep 1; touch finished"),
		Label:      label,
	})
	db.AddTest(testdb.TestConfig{
		Source:     db.InternPath(filepath.Join(base, "b.c")),
		WorkingDir: db.InternPath(filepath.Join(base, "missing")),
		Command:    db.InternCommand("true"),
		Label:      label,
	})
	db.Freeze()

	_, err := newPool(cfg).Execute(context.Background(), db)
	require.ErrorIs(t, err, ErrLaunch)

	_, err = os.Stat(filepath.Join(base, "finished"))
	assert.NoError(t, err, "the test already running must not be killed")
}
