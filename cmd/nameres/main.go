package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nameres/internal/app"
	"nameres/internal/core/config"
	"nameres/internal/shared/observability"
)

var (
	configPath = flag.String("config", "./nameres.toml", "Path to config file")
	watch      = flag.Bool("watch", false, "Re-resolve when unit manifests change")
	jsonOut    = flag.Bool("json", false, "Emit diagnostics as JSON")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	// Exit codes are decided inside run so the deferred store close and
	// tracing shutdown always get to finish first.
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if *version {
		fmt.Printf("nameres v%s\n", VERSION)
		return 0
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		if os.IsNotExist(err) && *configPath == "./nameres.toml" {
			// No config file is fine when units come from the command line.
			cfg = config.Default()
		} else {
			slog.Error("failed to load config", "error", err)
			return 1
		}
	}

	// Positional arguments override the configured unit list.
	if flag.NArg() > 0 {
		cfg.Units = flag.Args()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTracing(ctx, cfg.Tracing.Endpoint)
		if err != nil {
			slog.Error("failed to init tracing", "error", err)
			return 1
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
				slog.Error("metrics endpoint failed", "error", err)
			}
		}()
	}

	a, err := app.New(cfg, logger)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		return 1
	}
	defer a.Close()

	printer := newPrinter(os.Stdout, *jsonOut, &cfg.Suppress)

	if *watch {
		err := a.WatchAndRun(ctx, func(out *app.Outcome) {
			if err := printer.print(out); err != nil {
				slog.Error("failed to print outcome", "error", err)
			}
		})
		if err != nil && ctx.Err() == nil {
			slog.Error("watch mode failed", "error", err)
			return 1
		}
		return 0
	}

	outcomes, err := a.RunAll(ctx)
	if err != nil {
		slog.Error("resolution failed", "error", err)
		return 1
	}

	exitCode := 0
	for _, out := range outcomes {
		if err := printer.print(out); err != nil {
			slog.Error("failed to print outcome", "error", err)
			return 1
		}
		if len(out.Diagnostics(&cfg.Suppress)) > 0 {
			exitCode = 1
		}
	}
	return exitCode
}
