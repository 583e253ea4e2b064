package main

import (
	"os"
	"path/filepath"
	"testing"
)

// run returns instead of exiting so main's deferred cleanup always
// executes; that also makes the exit codes testable here.
func TestRun_ExitCodes(t *testing.T) {
	dir := t.TempDir()
	clean := filepath.Join(dir, "clean.toml")
	if err := os.WriteFile(clean, []byte(cleanManifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	broken := filepath.Join(dir, "broken.toml")
	if err := os.WriteFile(broken, []byte(brokenManifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"nameres", clean}
	if got := run(); got != 0 {
		t.Errorf("run() with a clean unit = %d, want 0", got)
	}

	os.Args = []string{"nameres", broken}
	if got := run(); got != 1 {
		t.Errorf("run() with diagnostics = %d, want 1", got)
	}
}
