// Package resolve answers reference lookups against the frozen output
// of the earlier passes: the module tree, the per-module symbol tables,
// and the import scopes. Resolution is read-only, so any number of
// goroutines may call Resolve concurrently.
package resolve

import (
	"sync"

	"nameres/internal/engine/ast"
	"nameres/internal/engine/diag"
	"nameres/internal/engine/imports"
	"nameres/internal/engine/modtree"
	"nameres/internal/engine/symbols"
	"nameres/internal/shared/observability"
)

// Resolution is the per-use-site answer: either a declaration or the
// diagnostic explaining why there is none. Exactly one field is set.
type Resolution struct {
	Decl *symbols.Declaration
	Diag *diag.Diagnostic
}

func (r Resolution) OK() bool {
	return r.Decl != nil
}

// outcome is the location-independent part of a resolution. The same
// surface path from the same module always resolves the same way, so
// this is what the memo stores; locations are stamped per call.
type outcome struct {
	decl       *symbols.Declaration
	kind       diag.Kind
	message    string
	candidates []diag.Candidate
}

type memoKey struct {
	from modtree.ModuleID
	raw  string
}

type Resolver struct {
	tree    *modtree.Tree
	tables  *symbols.Tables
	imports *imports.Result

	mu   sync.RWMutex
	memo map[memoKey]outcome
}

// New builds a resolver over frozen pass output. The inputs must not be
// mutated afterwards.
func New(tree *modtree.Tree, tables *symbols.Tables, imp *imports.Result) *Resolver {
	return &Resolver{
		tree:    tree,
		tables:  tables,
		imports: imp,
		memo:    make(map[memoKey]outcome),
	}
}

// Resolve answers a single reference appearing in the given module.
func (r *Resolver) Resolve(from modtree.ModuleID, ref ast.Ref) Resolution {
	key := memoKey{from: from, raw: ref.Path.String()}

	r.mu.RLock()
	out, ok := r.memo[key]
	r.mu.RUnlock()
	if ok {
		observability.MemoHitsTotal.Inc()
		return r.materialize(from, ref, out)
	}

	out = r.resolve(from, ref.Path)

	r.mu.Lock()
	r.memo[key] = out
	r.mu.Unlock()

	return r.materialize(from, ref, out)
}

// materialize stamps the stored outcome with this use-site's surface
// text and location.
func (r *Resolver) materialize(from modtree.ModuleID, ref ast.Ref, out outcome) Resolution {
	if out.decl != nil {
		return Resolution{Decl: out.decl}
	}
	d := diag.New(out.kind, "%s", out.message).
		WithModule(r.tree.Path(from)).
		WithPath(ref.Raw).
		WithLocation(ref.Location).
		WithCandidates(out.candidates...)
	return Resolution{Diag: d}
}

func (r *Resolver) resolve(from modtree.ModuleID, path ast.Path) outcome {
	if path.Bare() {
		return r.resolveBare(from, path.Name)
	}
	return r.resolveQualified(from, path)
}

// resolveBare consults the module's own declarations first, then its
// import scope. First hit wins; the two are never merged.
func (r *Resolver) resolveBare(from modtree.ModuleID, name string) outcome {
	lookup := r.tables.ForModule(from).Lookup(name)
	switch lookup.State {
	case symbols.LookupUnique:
		return outcome{decl: lookup.Decl}
	case symbols.LookupAmbiguous:
		return outcome{
			kind:       diag.AmbiguousReference,
			message:    "name " + name + " matches more than one local declaration",
			candidates: asCandidates(lookup.Candidates),
		}
	}
	if b, ok := r.imports.Scope(from).Get(name); ok {
		return outcome{decl: b.Decl}
	}
	return outcome{
		kind:    diag.UnresolvedName,
		message: "name " + name + " is not declared or imported in this module",
	}
}

// resolveQualified walks the module segments, then looks the terminal
// name up in the target module: its own declarations first, then its
// bound imports.
func (r *Resolver) resolveQualified(from modtree.ModuleID, path ast.Path) outcome {
	target, badSeg, ok := r.tree.Navigate(from, path)
	if !ok {
		msg := "no module named " + badSeg + " along path " + path.String()
		if badSeg == "super" {
			msg = "path " + path.String() + " walks past the unit root"
		}
		return outcome{kind: diag.UnknownModule, message: msg}
	}

	lookup := r.tables.ForModule(target).Lookup(path.Name)
	switch lookup.State {
	case symbols.LookupUnique:
		return outcome{decl: lookup.Decl}
	case symbols.LookupAmbiguous:
		return outcome{
			kind:       diag.AmbiguousReference,
			message:    "name " + path.Name + " matches more than one declaration in module " + r.tree.Path(target),
			candidates: asCandidates(lookup.Candidates),
		}
	}
	if b, ok := r.imports.Scope(target).Get(path.Name); ok {
		return outcome{decl: b.Decl}
	}
	return outcome{
		kind:    diag.UnknownDeclaration,
		message: "module " + r.tree.Path(target) + " has no declaration named " + path.Name,
	}
}

func asCandidates(decls []*symbols.Declaration) []diag.Candidate {
	out := make([]diag.Candidate, 0, len(decls))
	for _, d := range decls {
		out = append(out, d.Candidate())
	}
	return out
}
