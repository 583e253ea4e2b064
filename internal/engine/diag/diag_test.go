package diag

import (
	"strings"
	"sync"
	"testing"

	"nameres/internal/engine/ast"

	"github.com/google/go-cmp/cmp"
)

func TestBag_StableOrder(t *testing.T) {
	bag := NewBag()
	bag.Add(New(UnresolvedName, "name `b` not found").
		WithLocation(ast.Location{File: "z.ct", Line: 4, Column: 1}))
	bag.Add(New(UnresolvedName, "name `a` not found").
		WithLocation(ast.Location{File: "a.ct", Line: 9, Column: 2}))
	bag.Add(New(DuplicateDeclaration, "struct `S` declared twice").
		WithLocation(ast.Location{File: "a.ct", Line: 2, Column: 1}))

	var got []string
	for _, d := range bag.Items() {
		got = append(got, d.String())
	}
	expected := []string{
		"a.ct:2:1: DuplicateDeclaration: struct `S` declared twice",
		"a.ct:9:2: UnresolvedName: name `a` not found",
		"z.ct:4:1: UnresolvedName: name `b` not found",
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("diagnostic order mismatch (-expected +got):\n%s", diff)
	}
}

func TestBag_ConcurrentAdd(t *testing.T) {
	bag := NewBag()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				bag.Add(New(UnresolvedName, "missing"))
			}
		}()
	}
	wg.Wait()

	if got := bag.Count(); got != 16*50 {
		t.Fatalf("expected %d diagnostics, got %d", 16*50, got)
	}
}

func TestBag_CountKind(t *testing.T) {
	bag := NewBag()
	bag.Add(New(DuplicateImport, "dup"))
	bag.Add(New(DuplicateImport, "dup again"))
	bag.Add(New(CyclicImport, "cycle"))

	if got := bag.CountKind(DuplicateImport); got != 2 {
		t.Errorf("CountKind(DuplicateImport) = %d, expected 2", got)
	}
	if got := bag.CountKind(UnknownModule); got != 0 {
		t.Errorf("CountKind(UnknownModule) = %d, expected 0", got)
	}
}

func TestRender_CandidatesAndNotes(t *testing.T) {
	d := New(AmbiguousReference, "`Thing` matches more than one declaration").
		WithPath("util::Thing").
		WithLocation(ast.Location{File: "main.ct", Line: 12, Column: 8}).
		WithCandidates(
			Candidate{Module: "util", Name: "Thing", Kind: "struct"},
			Candidate{Module: "util", Name: "Thing", Kind: "fn"},
		).
		WithNoteAt(ast.Location{File: "util.ct", Line: 3, Column: 1}, "struct declared here")

	out := Render(d)
	for _, want := range []string{
		"main.ct:12:8:",
		"AmbiguousReference",
		"struct util::Thing",
		"fn util::Thing",
		"note: struct declared here",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered diagnostic missing %q:\n%s", want, out)
		}
	}
}

func TestDiagnostic_StringWithoutLocation(t *testing.T) {
	d := New(CyclicModuleGraph, "module graph has a cycle").WithModule("a::b")
	if got := d.String(); got != "a::b: CyclicModuleGraph: module graph has a cycle" {
		t.Errorf("unexpected String(): %q", got)
	}
}
