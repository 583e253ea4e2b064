package symbols

import (
	"fmt"
	"sort"

	"nameres/internal/engine/ast"
	"nameres/internal/engine/diag"
	"nameres/internal/engine/modtree"
)

// Declaration is a named top-level item owned by exactly one module.
// Identity is (owning module, bare name, item kind); two declarations
// sharing a bare name in different modules are never the same thing.
type Declaration struct {
	Module     modtree.ModuleID
	ModulePath string // qualified path of the owning module, for rendering
	Name       string
	Kind       ast.ItemKind
	Fields     []string
	Location   ast.Location
}

// Same reports identity equality. Surface text plays no part here.
func (d *Declaration) Same(other *Declaration) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.Module == other.Module && d.Name == other.Name && d.Kind == other.Kind
}

// QualifiedPath renders the declaration's full path from the unit root.
func (d *Declaration) QualifiedPath() string {
	return d.ModulePath + ast.Separator + d.Name
}

// Candidate converts the declaration for diagnostic reporting.
func (d *Declaration) Candidate() diag.Candidate {
	return diag.Candidate{Module: d.ModulePath, Name: d.Name, Kind: d.Kind.String()}
}

func (d *Declaration) String() string {
	return fmt.Sprintf("%s %s", d.Kind, d.QualifiedPath())
}

type LookupState int

const (
	LookupNotFound LookupState = iota
	LookupUnique
	LookupAmbiguous
)

// LookupResult is the tagged outcome of a name lookup. Callers must
// handle all three states; there is no error control flow here.
type LookupResult struct {
	State      LookupState
	Decl       *Declaration  // set when State == LookupUnique
	Candidates []*Declaration // set when State == LookupAmbiguous
}

// Table is one module's symbol table: bare name to the declarations the
// module owns directly. After collection there is at most one
// declaration per (name, kind); duplicates are reported during
// collection and the first declaration wins in the table.
type Table struct {
	module modtree.ModuleID
	decls  map[string][]*Declaration
}

func NewTable(module modtree.ModuleID) *Table {
	return &Table{module: module, decls: make(map[string][]*Declaration)}
}

func (t *Table) Module() modtree.ModuleID {
	return t.module
}

// Declare inserts a declaration. If the table already holds a
// declaration with the same name and kind, the existing one is returned
// and the table is left unchanged; the caller reports the duplicate.
func (t *Table) Declare(d *Declaration) (*Declaration, bool) {
	for _, existing := range t.decls[d.Name] {
		if existing.Kind == d.Kind {
			return existing, false
		}
	}
	t.decls[d.Name] = append(t.decls[d.Name], d)
	return d, true
}

// Lookup finds declarations by bare name across kinds.
func (t *Table) Lookup(name string) LookupResult {
	matches := t.decls[name]
	switch len(matches) {
	case 0:
		return LookupResult{State: LookupNotFound}
	case 1:
		return LookupResult{State: LookupUnique, Decl: matches[0]}
	default:
		return LookupResult{State: LookupAmbiguous, Candidates: matches}
	}
}

// LookupKind finds the declaration with an exact (name, kind) key.
func (t *Table) LookupKind(name string, kind ast.ItemKind) (*Declaration, bool) {
	for _, d := range t.decls[name] {
		if d.Kind == kind {
			return d, true
		}
	}
	return nil, false
}

// Has reports whether any declaration uses the bare name.
func (t *Table) Has(name string) bool {
	return len(t.decls[name]) > 0
}

// Names returns declared bare names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.decls))
	for name := range t.decls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declarations returns every declaration, ordered by name then kind.
func (t *Table) Declarations() []*Declaration {
	var out []*Declaration
	for _, name := range t.Names() {
		decls := append([]*Declaration(nil), t.decls[name]...)
		sort.Slice(decls, func(i, j int) bool { return decls[i].Kind < decls[j].Kind })
		out = append(out, decls...)
	}
	return out
}

// Tables holds one symbol table per module, addressed by ModuleID.
type Tables struct {
	byModule []*Table
}

func NewTables(tree *modtree.Tree) *Tables {
	ts := &Tables{byModule: make([]*Table, tree.Len())}
	for _, id := range tree.Modules() {
		ts.byModule[id] = NewTable(id)
	}
	return ts
}

func (ts *Tables) ForModule(id modtree.ModuleID) *Table {
	if id < 0 || int(id) >= len(ts.byModule) {
		return nil
	}
	return ts.byModule[id]
}
