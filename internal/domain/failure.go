package domain

import "strconv"

// TestFailure is a failed test as stored in the results file and the history database
type TestFailure struct {
	TestName     string `json:"test_name"` // relative path with variant suffix
	FilePath     string `json:"file_path"`
	Variant      string `json:"variant,omitempty"`
	Command      string `json:"command"`
	ExpectedCode int    `json:"expected_code"`
	ActualCode   *int   `json:"actual_code"` // nil when the process did not exit normally
	TimedOut     bool   `json:"timed_out,omitempty"`
	Stderr       string `json:"stderr,omitempty"`
	SnapshotPath string `json:"snapshot_path,omitempty"`
	Message      string `json:"message"`
	Resolved     bool   `json:"resolved,omitempty"` // Track if failure is marked as resolved
}

// CodeText renders the actual exit code for display
func (f TestFailure) CodeText() string {
	switch {
	case f.TimedOut:
		return "none (timed out)"
	case f.ActualCode == nil:
		return "none"
	default:
		return strconv.Itoa(*f.ActualCode)
	}
}
