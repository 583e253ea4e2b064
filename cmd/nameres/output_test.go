package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nameres/internal/app"
	"nameres/internal/core/config"
)

func runScenario(t *testing.T, manifest string) *app.Outcome {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unit.toml")
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	a, err := app.New(config.Default(), nil)
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	out, err := a.RunManifest(context.Background(), path)
	if err != nil {
		t.Fatalf("RunManifest: %v", err)
	}
	return out
}

const cleanManifest = `
unit = "demo"

[[module]]
name = "lib"

  [[module.item]]
  name = "Thing"
  kind = "struct"

[[module]]
name = "consumer"

  [[module.ref]]
  path = "lib::Thing"
  line = 4
`

const brokenManifest = `
unit = "demo"

[[module]]
name = "app"

  [[module.ref]]
  path = "Ghost"
  line = 2
`

func TestPrinter_JSONReport(t *testing.T) {
	out := runScenario(t, cleanManifest)

	var buf bytes.Buffer
	p := newPrinter(&buf, true, nil)
	if err := p.print(out); err != nil {
		t.Fatalf("print: %v", err)
	}

	var report jsonReport
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if report.Unit != "demo" || report.Resolved != 1 {
		t.Errorf("report = %+v", report)
	}
	if len(report.Diagnostics) != 0 {
		t.Errorf("diagnostics = %v, want none", report.Diagnostics)
	}
}

func TestPrinter_TextIncludesDiagnostics(t *testing.T) {
	out := runScenario(t, brokenManifest)

	var buf bytes.Buffer
	p := newPrinter(&buf, false, nil)
	if err := p.print(out); err != nil {
		t.Fatalf("print: %v", err)
	}

	text := buf.String()
	if !strings.Contains(text, "UnresolvedName") {
		t.Errorf("output missing diagnostic kind:\n%s", text)
	}
	if !strings.Contains(text, "Ghost") {
		t.Errorf("output missing surface path:\n%s", text)
	}
}

func TestPrinter_TextOKLine(t *testing.T) {
	out := runScenario(t, cleanManifest)

	var buf bytes.Buffer
	p := newPrinter(&buf, false, nil)
	if err := p.print(out); err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(buf.String(), "ok") {
		t.Errorf("clean unit output missing ok line:\n%s", buf.String())
	}
}
