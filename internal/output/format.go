// Package output provides formatters for CLI output.
package output

import (
	"strings"
)

const (
	// TaskListHeader is the first line of the task listing.
	TaskListHeader = "tasks:"
)

// Pair formats a single "name: value" line.
// Newlines inside either part are replaced with spaces so the result stays on one line.
func Pair(name, value string) string {
	return normalize(name) + ": " + normalize(value)
}

// Pairs formats names with their values, one "name: value" per line, in the given order.
func Pairs(names []string, value func(string) string) string {
	lines := make([]string, 0, len(names))
	for _, n := range names {
		lines = append(lines, Pair(n, value(n)))
	}
	return strings.Join(lines, "\n")
}

// TaskList formats the task listing: a header line followed by one pair per task.
func TaskList(names []string, id func(string) string) string {
	if len(names) == 0 {
		return TaskListHeader
	}
	return TaskListHeader + "\n" + Pairs(names, id)
}

// normalize replaces line breaks with spaces.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
