package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/mdexport/internal/metrics"
	"git.home.luguber.info/inful/mdexport/internal/watch"
)

// WatchCmd implements the 'watch' command: debounced re-export on docs
// changes, with an optional metrics endpoint.
type WatchCmd struct {
	QuietWindow time.Duration `help:"How long the tree must stay quiet before rebuilding" default:"500ms"`
	MaxDelay    time.Duration `help:"Upper bound on rebuild postponement during steady activity" default:"5s"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics and health on this address (e.g. :9310)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.Enabled {
		g.Logger.Debug("Export not enabled in configuration, proceeding for explicit invocation")
		cfg.Enabled = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recorder := metrics.NewRecorder(nil)
	if w.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              w.MetricsAddr,
			Handler:           recorder.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			g.Logger.Info("Serving metrics", "addr", w.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				g.Logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	rebuild := func(ctx context.Context) error {
		stats, err := runExport(ctx, g.Logger, cfg, recorder)
		if err != nil {
			return err
		}
		g.Logger.Info("Re-export finished",
			"processed", stats.Processed, "skipped", stats.Skipped, "failed", stats.Failed)
		return nil
	}

	// Initial export so the output tree exists before the first change.
	if err := rebuild(ctx); err != nil {
		return err
	}

	watcher, err := watch.New(watch.Config{
		Dir:         cfg.DocsDir,
		QuietWindow: w.QuietWindow,
		MaxDelay:    w.MaxDelay,
	})
	if err != nil {
		return err
	}
	return watcher.WithLogger(g.Logger).Run(ctx, rebuild)
}
