package resolve

import (
	"log/slog"

	"nameres/internal/engine/ast"
	"nameres/internal/engine/diag"
	"nameres/internal/engine/modtree"
	"nameres/internal/engine/symbols"
	"nameres/internal/shared/observability"
)

// ResolvedUse pairs a use-site with the declaration it resolved to.
type ResolvedUse struct {
	Module  modtree.ModuleID
	ModPath string
	Ref     ast.Ref
	Decl    *symbols.Declaration
}

// ResolveAll runs every recorded use-site through the resolver.
// Failures land in the bag; successes are returned in module order.
// The batch never aborts on a failed site.
func (r *Resolver) ResolveAll(bag *diag.Bag, logger *slog.Logger) []ResolvedUse {
	if logger == nil {
		logger = slog.Default()
	}

	var resolved []ResolvedUse
	failed := 0
	for _, id := range r.tree.Modules() {
		src := r.tree.Source(id)
		if src == nil {
			continue
		}
		modPath := r.tree.Path(id)
		for _, ref := range src.Refs {
			res := r.Resolve(id, ref)
			if !res.OK() {
				bag.Add(res.Diag)
				failed++
				observability.ResolutionsTotal.WithLabelValues("failed").Inc()
				continue
			}
			resolved = append(resolved, ResolvedUse{
				Module:  id,
				ModPath: modPath,
				Ref:     ref,
				Decl:    res.Decl,
			})
			observability.ResolutionsTotal.WithLabelValues("resolved").Inc()
		}
	}

	logger.Debug("reference resolution finished",
		"resolved", len(resolved),
		"failed", failed)
	return resolved
}
