// Package imports binds use declarations into per-module import scopes.
//
// Imports may target declarations that other modules themselves only
// gain through their own use declarations, so the pass iterates to a
// fixed point: each round binds every use whose target is known, and
// the pass stops when a round makes no progress. Whatever is still
// unbound at that point is either part of an import cycle or simply
// unresolvable.
package imports

import (
	"log/slog"

	"nameres/internal/engine/ast"
	"nameres/internal/engine/diag"
	"nameres/internal/engine/modtree"
	"nameres/internal/engine/symbols"
)

// Result holds one import scope per module, indexed by ModuleID.
type Result struct {
	scopes []*symbols.ImportScope
	rounds int
}

// Scope returns the import scope of a module. Never nil for a valid ID.
func (r *Result) Scope(id modtree.ModuleID) *symbols.ImportScope {
	if id < 0 || int(id) >= len(r.scopes) {
		return nil
	}
	return r.scopes[id]
}

// Rounds reports how many fixed-point rounds the pass took.
func (r *Result) Rounds() int {
	return r.rounds
}

type pendingUse struct {
	module  modtree.ModuleID
	modPath string
	use     ast.UseDecl
}

// Resolve runs the import pass over every module's use declarations.
// Tables must be fully collected before this runs; the pass reads them
// but never writes.
func Resolve(tree *modtree.Tree, tables *symbols.Tables, bag *diag.Bag, logger *slog.Logger) *Result {
	if logger == nil {
		logger = slog.Default()
	}
	res := &Result{scopes: make([]*symbols.ImportScope, tree.Len())}
	for _, id := range tree.Modules() {
		res.scopes[id] = symbols.NewImportScope()
	}

	var pending []pendingUse
	for _, id := range tree.Modules() {
		src := tree.Source(id)
		if src == nil {
			continue
		}
		modPath := tree.Path(id)
		for _, use := range src.Uses {
			pending = append(pending, pendingUse{module: id, modPath: modPath, use: use})
		}
	}
	total := len(pending)

	for len(pending) > 0 {
		res.rounds++
		progress := false
		var stuck []pendingUse

		for _, p := range pending {
			switch resolveOne(tree, tables, res, bag, p) {
			case outcomeBound, outcomeReported:
				progress = true
			case outcomeStuck:
				stuck = append(stuck, p)
			}
		}

		if !progress {
			reportStalled(tree, bag, stuck)
			break
		}
		pending = stuck
	}

	logger.Debug("import resolution finished",
		"uses", total,
		"rounds", res.rounds,
		"diagnostics", bag.Count())
	return res
}

type outcome int

const (
	outcomeBound outcome = iota
	outcomeReported
	outcomeStuck
)

func resolveOne(tree *modtree.Tree, tables *symbols.Tables, res *Result, bag *diag.Bag, p pendingUse) outcome {
	path := p.use.Path
	target, badSeg, ok := tree.Navigate(p.module, path)
	if !ok {
		// The module graph is frozen, so a missing segment never
		// becomes resolvable in a later round.
		d := diag.New(diag.UnresolvedImport,
			"cannot import %q: no module %q", p.use.Raw, badSeg).
			WithModule(p.modPath).
			WithPath(p.use.Raw).
			WithLocation(p.use.Location)
		if badSeg == "super" {
			d = diag.New(diag.UnresolvedImport,
				"cannot import %q: super escapes the unit root", p.use.Raw).
				WithModule(p.modPath).
				WithPath(p.use.Raw).
				WithLocation(p.use.Location)
		}
		bag.Add(d)
		return outcomeReported
	}

	decl, state := findTarget(tables, res, target, path.Name)
	switch state {
	case symbols.LookupAmbiguous:
		lookup := tables.ForModule(target).Lookup(path.Name)
		bag.Add(diag.New(diag.AmbiguousReference,
			"import %q matches more than one declaration in module %q", p.use.Raw, tree.Path(target)).
			WithModule(p.modPath).
			WithPath(p.use.Raw).
			WithLocation(p.use.Location).
			WithCandidates(candidates(lookup.Candidates)...))
		return outcomeReported
	case symbols.LookupNotFound:
		return outcomeStuck
	}

	return bind(tables, res, bag, p, decl)
}

// findTarget looks the terminal name up in the target module: its own
// declarations first, then its already-bound imports (re-export).
func findTarget(tables *symbols.Tables, res *Result, target modtree.ModuleID, name string) (*symbols.Declaration, symbols.LookupState) {
	lookup := tables.ForModule(target).Lookup(name)
	switch lookup.State {
	case symbols.LookupUnique:
		return lookup.Decl, symbols.LookupUnique
	case symbols.LookupAmbiguous:
		return nil, symbols.LookupAmbiguous
	}
	if b, ok := res.Scope(target).Get(name); ok {
		return b.Decl, symbols.LookupUnique
	}
	return nil, symbols.LookupNotFound
}

func bind(tables *symbols.Tables, res *Result, bag *diag.Bag, p pendingUse, decl *symbols.Declaration) outcome {
	name := p.use.Path.Name

	// A local declaration and an import under one bare name is a hard
	// collision; the local declaration keeps answering bare lookups.
	if local := tables.ForModule(p.module); local.Has(name) {
		lookup := local.Lookup(name)
		var cands []diag.Candidate
		if lookup.Decl != nil {
			cands = append(cands, lookup.Decl.Candidate())
		} else {
			cands = candidates(lookup.Candidates)
		}
		cands = append(cands, decl.Candidate())
		bag.Add(diag.New(diag.DuplicateImport,
			"import %q collides with a declaration of module %q", p.use.Raw, p.modPath).
			WithModule(p.modPath).
			WithPath(p.use.Raw).
			WithLocation(p.use.Location).
			WithCandidates(cands...))
		return outcomeReported
	}

	scope := res.Scope(p.module)
	if existing, ok := scope.Get(name); ok {
		if existing.Decl.Same(decl) {
			// Importing the same declaration twice is idempotent.
			return outcomeBound
		}
		bag.Add(diag.New(diag.DuplicateImport,
			"import %q rebinds name %q in module %q", p.use.Raw, name, p.modPath).
			WithModule(p.modPath).
			WithPath(p.use.Raw).
			WithLocation(p.use.Location).
			WithCandidates(existing.Decl.Candidate(), decl.Candidate()).
			WithNoteAt(existing.Location, "name first bound here"))
		return outcomeReported
	}

	scope.Bind(&symbols.ImportBinding{
		Name:     name,
		Decl:     decl,
		Use:      p.use,
		Location: p.use.Location,
	})
	return outcomeBound
}

// reportStalled classifies the leftovers of a no-progress round. Each
// stalled use waits on the stalled uses of its target module that would
// bind the missing name; a use is cyclic only when those waits-on edges
// lead back to it. A chain that merely hangs off an unresolvable name
// is not a cycle, its uses are plain UnresolvedImport.
func reportStalled(tree *modtree.Tree, bag *diag.Bag, stuck []pendingUse) {
	targets := make([]modtree.ModuleID, len(stuck))
	for i, p := range stuck {
		// The tree is frozen, so navigation cannot fail for a use that
		// made it past the first round.
		target, _, ok := tree.Navigate(p.module, p.use.Path)
		if !ok {
			target = modtree.NoModule
		}
		targets[i] = target
	}

	edges := make([][]int, len(stuck))
	for i, p := range stuck {
		for j, q := range stuck {
			if q.module == targets[i] && q.use.Path.Name == p.use.Path.Name {
				edges[i] = append(edges[i], j)
			}
		}
	}

	for i, p := range stuck {
		if onCycle(i, edges) {
			bag.Add(diag.New(diag.CyclicImport,
				"import %q depends on an import cycle through module %q", p.use.Raw, tree.Path(targets[i])).
				WithModule(p.modPath).
				WithPath(p.use.Raw).
				WithLocation(p.use.Location))
			continue
		}
		bag.Add(diag.New(diag.UnresolvedImport,
			"cannot import %q: module %q has no declaration %q", p.use.Raw, tree.Path(targets[i]), p.use.Path.Name).
			WithModule(p.modPath).
			WithPath(p.use.Raw).
			WithLocation(p.use.Location))
	}
}

// onCycle reports whether node i can reach itself through at least one
// waits-on edge. Stalled sets are small, a per-node walk is plenty.
func onCycle(i int, edges [][]int) bool {
	visited := make([]bool, len(edges))
	queue := append([]int(nil), edges[i]...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == i {
			return true
		}
		if visited[n] {
			continue
		}
		visited[n] = true
		queue = append(queue, edges[n]...)
	}
	return false
}

func candidates(decls []*symbols.Declaration) []diag.Candidate {
	out := make([]diag.Candidate, 0, len(decls))
	for _, d := range decls {
		out = append(out, d.Candidate())
	}
	return out
}
