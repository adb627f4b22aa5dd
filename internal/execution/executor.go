package execution

import (
	"context"

	"mtest/internal/testdb"
)

// Executor executes the tests of a frozen database
type Executor interface {
	Execute(ctx context.Context, db *testdb.Database) (Output, error)
}

var _ Executor = (*WorkerPool)(nil)
