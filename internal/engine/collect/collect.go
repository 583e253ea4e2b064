// Package collect walks every module of a built tree and fills one
// symbol table per module with its top-level declarations.
package collect

import (
	"log/slog"
	"sync"

	"nameres/internal/engine/diag"
	"nameres/internal/engine/modtree"
	"nameres/internal/engine/symbols"
)

// Collect builds the per-module symbol tables. Modules are independent
// at this stage, so they are collected concurrently; the bag and each
// table see writes from a single goroutine per module.
//
// When two declarations in one module share a name and kind, the first
// wins and the second is reported as DuplicateDeclaration.
func Collect(tree *modtree.Tree, bag *diag.Bag, logger *slog.Logger) *symbols.Tables {
	if logger == nil {
		logger = slog.Default()
	}
	tables := symbols.NewTables(tree)

	var wg sync.WaitGroup
	for _, id := range tree.Modules() {
		wg.Add(1)
		go func(id modtree.ModuleID) {
			defer wg.Done()
			collectModule(tree, id, tables.ForModule(id), bag)
		}(id)
	}
	wg.Wait()

	logger.Debug("declaration collection finished",
		"modules", tree.Len(),
		"diagnostics", bag.Count())
	return tables
}

func collectModule(tree *modtree.Tree, id modtree.ModuleID, table *symbols.Table, bag *diag.Bag) {
	src := tree.Source(id)
	if src == nil {
		return
	}
	modPath := tree.Path(id)

	for _, item := range src.Items {
		d := &symbols.Declaration{
			Module:     id,
			ModulePath: modPath,
			Name:       item.Name,
			Kind:       item.Kind,
			Fields:     item.Fields,
			Location:   item.Location,
		}
		existing, ok := table.Declare(d)
		if ok {
			continue
		}
		bag.Add(diag.New(diag.DuplicateDeclaration,
			"%s %q is declared more than once in module %q", item.Kind, item.Name, modPath).
			WithModule(modPath).
			WithLocation(item.Location).
			WithCandidates(existing.Candidate()).
			WithNoteAt(existing.Location, "first declared here"))
	}
}
