package discovery

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
)

// returnDirective matches `// RETURN: <integer>` at the end of a line
var returnDirective = regexp.MustCompile(`//\s*RETURN:\s*([+-]?[0-9]+)\s*$`)

const maxSourceLine = 1 << 20

// Parser extracts per-file directives from test sources
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// FindReturnOverride scans a source file for RETURN directives.
// The last directive in the file wins; found is false when there is none.
func (p *Parser) FindReturnOverride(filePath string) (code int, found bool, err error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, false, fmt.Errorf("error reading file %s: %w", filePath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSourceLine)
	for scanner.Scan() {
		if value, ok := ParseReturnDirective(scanner.Text()); ok {
			code, found = value, true
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, false, fmt.Errorf("error reading file %s: %w", filePath, err)
	}

	return code, found, nil
}

// ParseReturnDirective parses a single line
func ParseReturnDirective(line string) (int, bool) {
	match := returnDirective.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	value, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return value, true
}
