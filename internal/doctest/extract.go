// Package doctest extracts Python code blocks from markdown documentation
// and validates them against a running pybox service, so published examples
// are guaranteed to execute.
package doctest

import (
	"strings"
)

// Example is one fenced ```python block. Line numbers are 1-based and refer
// to the fence lines in the source file.
type Example struct {
	Code      string
	StartLine int
	EndLine   int
}

// Extract returns the executable ```python blocks in a markdown document.
// Blocks that are illustrative rather than runnable are skipped (see
// isExecutable).
func Extract(content string) []Example {
	var examples []Example

	lines := strings.Split(content, "\n")
	inBlock := false
	blockStart := 0
	var blockLines []string

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "```python"):
			inBlock = true
			blockStart = i + 1
			blockLines = nil
		case strings.HasPrefix(line, "```") && inBlock:
			inBlock = false
			code := strings.Join(blockLines, "\n")
			if isExecutable(code) {
				examples = append(examples, Example{
					Code:      code,
					StartLine: blockStart,
					EndLine:   i + 1,
				})
			}
		case inBlock:
			blockLines = append(blockLines, line)
		}
	}

	return examples
}

// isExecutable filters out blocks that cannot run standalone: template
// snippets with ellipsis placeholders, import-only blocks, bare def/class
// definitions, and samples of the client library itself.
func isExecutable(code string) bool {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return false
	}

	// Client-library usage samples are exercised by the Go tests, not by
	// sending them to the server as Python.
	if strings.Contains(code, "pybox.New") || strings.Contains(code, "PyboxClient") {
		return false
	}

	hasStatement := false
	for _, line := range strings.Split(code, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}
		if stripped == "..." || strings.HasSuffix(stripped, "...") {
			return false
		}
		if strings.HasPrefix(stripped, "import ") || strings.HasPrefix(stripped, "from ") {
			continue
		}
		// Indented lines belong to a definition body; only top-level
		// statements count as executable.
		if line != stripped {
			continue
		}
		if strings.HasPrefix(stripped, "def ") || strings.HasPrefix(stripped, "class ") ||
			strings.HasPrefix(stripped, "@") {
			continue
		}
		hasStatement = true
	}
	return hasStatement
}
