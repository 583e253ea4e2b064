// Package app wires the resolution passes together: load a unit
// manifest, build the module tree, collect declarations, resolve
// imports to a fixed point, then answer every recorded use-site.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"nameres/internal/core/config"
	coreerrors "nameres/internal/core/errors"
	"nameres/internal/engine/ast"
	"nameres/internal/engine/collect"
	"nameres/internal/engine/diag"
	"nameres/internal/engine/imports"
	"nameres/internal/engine/modtree"
	"nameres/internal/engine/resolve"
	"nameres/internal/engine/symbols"
	"nameres/internal/engine/unit"
	"nameres/internal/shared/observability"
)

// Outcome is everything one batch produced. The resolver stays valid
// for ad-hoc queries until the next batch replaces the outcome.
type Outcome struct {
	Unit     *ast.Unit
	Tree     *modtree.Tree
	Tables   *symbols.Tables
	Imports  *imports.Result
	Resolver *resolve.Resolver
	Resolved []resolve.ResolvedUse
	Bag      *diag.Bag
	RunID    string
}

// Diagnostics returns the batch's diagnostics with the configured
// module suppressions applied, in stable order.
func (o *Outcome) Diagnostics(suppress *config.Suppress) []*diag.Diagnostic {
	items := o.Bag.Items()
	if suppress == nil {
		return items
	}
	out := items[:0:0]
	for _, d := range items {
		if d.Module != "" && suppress.Suppressed(d.Module) {
			continue
		}
		out = append(out, d)
	}
	return out
}

type App struct {
	Config *config.Config
	logger *slog.Logger
	store  *resolve.Store
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, logger: logger}

	if cfg.Store.Enabled {
		store, err := resolve.OpenStore(cfg.Store.Path, cfg.Project)
		if err != nil {
			return nil, coreerrors.Wrap(err, coreerrors.CodeStoreFailure, "open resolution store")
		}
		a.store = store
	}
	return a, nil
}

func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// RunManifest loads one manifest and runs the full batch over it.
// Infrastructure failures return an error; resolution failures end up
// in the outcome's bag.
func (a *App) RunManifest(ctx context.Context, path string) (*Outcome, error) {
	u, err := unit.Load(path)
	if err != nil {
		return nil, coreerrors.AddContext(
			coreerrors.Wrap(err, coreerrors.CodeValidationError, "load unit manifest"),
			coreerrors.CtxPath, path)
	}
	return a.RunUnit(ctx, u)
}

// RunUnit runs the passes over an already-loaded unit.
func (a *App) RunUnit(ctx context.Context, u *ast.Unit) (*Outcome, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.RunUnit", trace.WithAttributes())
	defer span.End()

	bag := diag.NewBag()
	out := &Outcome{Unit: u, Bag: bag}

	out.Tree = timedPass(ctx, "tree", func() *modtree.Tree {
		return modtree.Build(u, bag)
	})
	observability.TreeModules.Set(float64(out.Tree.Len()))

	out.Tables = timedPass(ctx, "collect", func() *symbols.Tables {
		return collect.Collect(out.Tree, bag, a.logger)
	})
	declCount := 0
	for _, id := range out.Tree.Modules() {
		declCount += len(out.Tables.ForModule(id).Declarations())
	}
	observability.Declarations.Set(float64(declCount))

	out.Imports = timedPass(ctx, "imports", func() *imports.Result {
		return imports.Resolve(out.Tree, out.Tables, bag, a.logger)
	})
	observability.ImportRounds.Observe(float64(out.Imports.Rounds()))
	bindings := 0
	for _, id := range out.Tree.Modules() {
		bindings += out.Imports.Scope(id).Len()
	}
	observability.ImportBindings.Set(float64(bindings))

	out.Resolver = resolve.New(out.Tree, out.Tables, out.Imports)
	out.Resolved = timedPass(ctx, "resolve", func() []resolve.ResolvedUse {
		return out.Resolver.ResolveAll(bag, a.logger)
	})

	for _, d := range bag.Items() {
		observability.DiagnosticsTotal.WithLabelValues(string(d.Kind)).Inc()
	}

	if err := a.persist(out); err != nil {
		return nil, err
	}

	a.logger.Info("batch finished",
		"unit", u.Name,
		"modules", out.Tree.Len(),
		"declarations", declCount,
		"resolved", len(out.Resolved),
		"diagnostics", bag.Count())
	return out, nil
}

// RunAll runs every unit listed in the configuration.
func (a *App) RunAll(ctx context.Context) ([]*Outcome, error) {
	if len(a.Config.Units) == 0 {
		return nil, coreerrors.New(coreerrors.CodeValidationError, "no units configured and none given on the command line")
	}
	outcomes := make([]*Outcome, 0, len(a.Config.Units))
	for _, path := range a.Config.Units {
		out, err := a.RunManifest(ctx, path)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

func (a *App) persist(out *Outcome) error {
	if a.store == nil {
		return nil
	}
	runID, err := a.store.SyncDeclarations(out.Tree, out.Tables)
	if err != nil {
		return coreerrors.Wrap(err, coreerrors.CodeStoreFailure, "sync declarations")
	}
	if err := a.store.RecordResolutions(runID, out.Resolved); err != nil {
		return coreerrors.Wrap(err, coreerrors.CodeStoreFailure, "record resolutions")
	}
	out.RunID = runID
	return nil
}

// timedPass runs one pass inside a child span and records its duration.
func timedPass[T any](ctx context.Context, name string, fn func() T) T {
	_, span := observability.Tracer.Start(ctx, fmt.Sprintf("pass.%s", name))
	defer span.End()
	start := time.Now()
	v := fn()
	observability.PassDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	return v
}
