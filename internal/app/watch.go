package app

import (
	"context"

	coreerrors "nameres/internal/core/errors"
	"nameres/internal/core/watcher"
	"nameres/internal/shared/util"
)

// WatchAndRun re-runs the batch whenever a configured manifest changes.
// Re-runs are rate limited so editor save storms collapse into a
// bounded number of batches. Blocks until the context is cancelled.
func (a *App) WatchAndRun(ctx context.Context, onOutcome func(*Outcome)) error {
	if len(a.Config.Units) == 0 {
		return coreerrors.New(coreerrors.CodeValidationError, "no units configured to watch")
	}
	if onOutcome == nil {
		onOutcome = func(*Outcome) {}
	}

	limiter := util.NewLimiter(2, 1)
	changed := make(chan []string, 8)

	w, err := watcher.NewWatcher(a.Config.Watch.Debounce, a.Config.Watch.Exclude, func(paths []string) {
		select {
		case changed <- paths:
		default:
			// A rebuild is already queued; the next run reloads
			// every manifest anyway.
		}
	})
	if err != nil {
		return coreerrors.Wrap(err, coreerrors.CodeInternal, "create manifest watcher")
	}
	defer w.Close()

	if err := w.Watch(a.Config.Units); err != nil {
		return coreerrors.Wrap(err, coreerrors.CodeInternal, "watch unit manifests")
	}

	// Initial batch before the first event.
	outcomes, err := a.RunAll(ctx)
	if err != nil {
		return err
	}
	for _, out := range outcomes {
		onOutcome(out)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case paths := <-changed:
			if err := limiter.Wait(ctx, 1); err != nil {
				return err
			}
			a.logger.Info("manifests changed, re-resolving", "paths", paths)
			outcomes, err := a.RunAll(ctx)
			if err != nil {
				a.logger.Error("re-resolve failed", "error", err)
				continue
			}
			for _, out := range outcomes {
				onOutcome(out)
			}
		}
	}
}
