// Package testutil provides fixture helpers shared by tests across the
// codebase: CSV fixture writers and a logger that discards output.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteCSV writes a CSV fixture under dir and returns its full path. Rows
// are written verbatim, one line each, so any quoting is the caller's
// concern.
func WriteCSV(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
	return path
}

// DiscardLogger returns a logger that drops every record. Components under
// test take it in place of the process logger.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
