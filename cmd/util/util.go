// Package util holds small helpers shared by the flatten and schema
// subcommands: resolving "-" to stdin, and opening an input file for
// streaming.
//
// Grounded on this lineage's pattern of a small cmd/util package shared by
// sibling subcommand packages rather than duplicating flag-adjacent
// plumbing in each.
package util

import (
	"fmt"
	"io"
	"os"
)

// OpenInput resolves path to a readable stream: "-" maps to stdin, anything
// else is opened as a file. The caller owns closing the returned closer
// unless it is stdin, whose Close is a no-op responsibility of the OS.
func OpenInput(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("util: opening input %q: %w", path, err)
	}
	return f, nil
}
