package domain

// TestResultsMeta contains metadata about a test run
type TestResultsMeta struct {
	MCC             string  `json:"mcc"`
	BaseDir         string  `json:"base_dir"`
	TotalTests      int     `json:"total_tests"`
	PassedTests     int     `json:"passed_tests"`
	FailedTests     int     `json:"failed_tests"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Workers         int     `json:"workers"`
	Timestamp       string  `json:"timestamp"`
}

// TestResultsOutput is the complete output structure for test results
type TestResultsOutput struct {
	Meta    TestResultsMeta `json:"meta"`
	Details []TestFailure   `json:"details"`
}

// Unresolved counts the failures not yet marked as resolved
func (o *TestResultsOutput) Unresolved() int {
	count := 0
	for _, f := range o.Details {
		if !f.Resolved {
			count++
		}
	}
	return count
}
