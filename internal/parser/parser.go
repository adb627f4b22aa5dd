package parser

import (
	"mtest/internal/domain"
	"mtest/internal/execution"
	"mtest/internal/testdb"
)

// Parser turns execution results into stored failure records
type Parser interface {
	ParseFailures(db *testdb.Database, output execution.Output) ([]domain.TestFailure, error)
}
