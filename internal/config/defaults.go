package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "test-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultConfigFileName is the per-directory test configuration file
	DefaultConfigFileName = "test_config.toml"
	// DefaultSourceExtension marks files that become test cases
	DefaultSourceExtension = ".c"
	// DefaultSnapshotSuffix is appended to the source path without extension to locate the approved stderr
	DefaultSnapshotSuffix = ".stderr.approved.txt"
	// DefaultBaseDirPlaceholder replaces the base directory in captured stderr
	DefaultBaseDirPlaceholder = "{{base_dir}}"
	// DefaultShell runs every test command
	DefaultShell = "sh"
	// DefaultEnvFile is loaded from the project path and the base folder when present
	DefaultEnvFile = ".env"
)

// SmokeCheckMessage is what the executable under test prints when invoked without arguments
const SmokeCheckMessage = "mcc: fatal error: no input files\nUsage: mcc [options] filename..."

// DefaultArtifactExtensions are the build artifacts removed next to each source after its test.
// The empty extension is the final binary.
var DefaultArtifactExtensions = []string{".o", ".i", ".s", ""}
