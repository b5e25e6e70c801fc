package flatten

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFlattenCommandConfiguration(t *testing.T) {
	if Cmd.Use != "flatten" {
		t.Errorf("expected Use to be 'flatten', got %q", Cmd.Use)
	}
	if Cmd.Flags().Lookup("name") == nil {
		t.Error("expected --name flag to be defined")
	}
	if Cmd.Flags().Lookup("out-dir") == nil {
		t.Error("expected --out-dir flag to be defined")
	}
}

func TestRunFlattensNestedArrays(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.ndjson")
	out := filepath.Join(dir, "out")

	input := `{"id":"1","tags":["a","b"]}` + "\n"
	if err := os.WriteFile(in, []byte(input), 0o644); err != nil {
		t.Fatalf("writing input fixture: %v", err)
	}

	if err := Run("users", in, out, false, false); err != nil {
		t.Fatalf("Run returned an error: %v", err)
	}

	root, err := os.ReadFile(filepath.Join(out, "users.ndjson"))
	if err != nil {
		t.Fatalf("reading root table output: %v", err)
	}
	if !strings.Contains(string(root), `"id":"1"`) {
		t.Errorf("expected root row to contain id, got: %s", root)
	}

	sub, err := os.ReadFile(filepath.Join(out, "users_tags.ndjson"))
	if err != nil {
		t.Fatalf("reading subtable output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(sub)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 subtable rows, got %d: %v", len(lines), lines)
	}
}

func TestRunRejectsMissingInput(t *testing.T) {
	dir := t.TempDir()
	err := Run("users", filepath.Join(dir, "does-not-exist.ndjson"), filepath.Join(dir, "out"), false, false)
	if err == nil {
		t.Error("expected an error for a missing input file, got nil")
	}
}
