// Package stacktrace trims raw goroutine stacks down to this module's frames.
package stacktrace

import "strings"

const internalDir = "/internal/"

// InternalPaths returns the "internal/...go:line" locations found in a stack
// produced by runtime/debug.Stack, innermost first.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines)/2)

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, internalDir) {
			continue
		}

		idx := strings.Index(line, ".go:")
		if idx == -1 {
			continue
		}

		location := line
		if end := strings.IndexByte(line[idx:], ' '); end != -1 {
			location = line[:idx+end]
		}

		if start := strings.Index(location, internalDir); start != -1 {
			paths = append(paths, location[start+1:])
		}
	}

	return paths
}
