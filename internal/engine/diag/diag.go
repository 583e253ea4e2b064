package diag

import (
	"fmt"
	"sort"
	"sync"

	"nameres/internal/engine/ast"
)

// Kind enumerates every resolution failure the engine can report.
type Kind string

const (
	DuplicateModuleName  Kind = "DuplicateModuleName"
	CyclicModuleGraph    Kind = "CyclicModuleGraph"
	DuplicateDeclaration Kind = "DuplicateDeclaration"
	UnresolvedImport     Kind = "UnresolvedImport"
	DuplicateImport      Kind = "DuplicateImport"
	CyclicImport         Kind = "CyclicImport"
	UnknownModule        Kind = "UnknownModule"
	UnknownDeclaration   Kind = "UnknownDeclaration"
	UnresolvedName       Kind = "UnresolvedName"
	AmbiguousReference   Kind = "AmbiguousReference"
)

// Candidate is one declaration that was in the running when a lookup
// failed or was ambiguous. Kept so reporting layers can render
// "did you mean one of: ..." suggestions.
type Candidate struct {
	Module string `json:"module"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
}

func (c Candidate) String() string {
	if c.Module == "" {
		return fmt.Sprintf("%s %s", c.Kind, c.Name)
	}
	return fmt.Sprintf("%s %s%s%s", c.Kind, c.Module, ast.Separator, c.Name)
}

// Note attaches secondary context to a diagnostic, typically the location
// of a previous conflicting declaration or import.
type Note struct {
	Message  string       `json:"message"`
	Location ast.Location `json:"location,omitzero"`
}

// Diagnostic is one reported resolution failure. Collection and import
// errors carry the offending module; path-resolution errors carry the
// use-site location and surface path.
type Diagnostic struct {
	Kind       Kind         `json:"kind"`
	Message    string       `json:"message"`
	Module     string       `json:"module,omitempty"` // qualified path of the module reported against
	Path       string       `json:"path,omitempty"`   // surface text of the offending path
	Location   ast.Location `json:"location,omitzero"`
	Candidates []Candidate  `json:"candidates,omitempty"`
	Notes      []Note       `json:"notes,omitempty"`
}

// New starts a diagnostic of the given kind.
func New(kind Kind, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (d *Diagnostic) WithModule(module string) *Diagnostic {
	d.Module = module
	return d
}

func (d *Diagnostic) WithPath(path string) *Diagnostic {
	d.Path = path
	return d
}

func (d *Diagnostic) WithLocation(loc ast.Location) *Diagnostic {
	d.Location = loc
	return d
}

func (d *Diagnostic) WithCandidates(candidates ...Candidate) *Diagnostic {
	d.Candidates = append(d.Candidates, candidates...)
	return d
}

func (d *Diagnostic) WithNote(format string, args ...any) *Diagnostic {
	d.Notes = append(d.Notes, Note{Message: fmt.Sprintf(format, args...)})
	return d
}

func (d *Diagnostic) WithNoteAt(loc ast.Location, format string, args ...any) *Diagnostic {
	d.Notes = append(d.Notes, Note{Message: fmt.Sprintf(format, args...), Location: loc})
	return d
}

func (d *Diagnostic) String() string {
	switch {
	case d.Location.File != "":
		return fmt.Sprintf("%s:%d:%d: %s: %s", d.Location.File, d.Location.Line, d.Location.Column, d.Kind, d.Message)
	case d.Module != "":
		return fmt.Sprintf("%s: %s: %s", d.Module, d.Kind, d.Message)
	default:
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
}

// Bag accumulates diagnostics across passes. It is safe for concurrent
// use; per-module collection runs on multiple goroutines.
type Bag struct {
	mu    sync.Mutex
	items []*Diagnostic
}

func NewBag() *Bag {
	return &Bag{}
}

func (b *Bag) Add(d *Diagnostic) {
	if d == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, d)
}

func (b *Bag) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

func (b *Bag) Empty() bool {
	return b.Count() == 0
}

// CountKind returns how many diagnostics of the given kind were recorded.
func (b *Bag) CountKind(kind Kind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, d := range b.items {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Items returns the recorded diagnostics in stable order: by file, line,
// column, then kind and message. Order of discovery (which varies with
// per-module parallelism) never leaks into output.
func (b *Bag) Items() []*Diagnostic {
	b.mu.Lock()
	out := make([]*Diagnostic, len(b.items))
	copy(out, b.items)
	b.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, c := out[i], out[j]
		if a.Location.File != c.Location.File {
			return a.Location.File < c.Location.File
		}
		if a.Location.Line != c.Location.Line {
			return a.Location.Line < c.Location.Line
		}
		if a.Location.Column != c.Location.Column {
			return a.Location.Column < c.Location.Column
		}
		if a.Kind != c.Kind {
			return a.Kind < c.Kind
		}
		return a.Message < c.Message
	})
	return out
}
