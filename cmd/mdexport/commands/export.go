package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/mdexport/internal/config"
)

// ExportCmd implements the 'export' command.
type ExportCmd struct {
	DocsDir    string `short:"d" help:"Docs source tree (overrides config)"`
	Output     string `short:"o" help:"Output directory for the exported tree (overrides config)"`
	Structure  string `help:"Output structure: mirror or collapsed (overrides config)"`
	SingleFile bool   `help:"Also emit the concatenated single-file export"`
	Full       bool   `help:"Ignore the incremental cache and export everything"`
}

func (e *ExportCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := e.applyFlags(cfg, g.Logger); err != nil {
		return err
	}

	// Running the command is explicit intent; the enabled gate exists for
	// environment-driven builds.
	if !cfg.Enabled {
		g.Logger.Debug("Export not enabled in configuration, proceeding for explicit invocation")
		cfg.Enabled = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := runExport(ctx, g.Logger, cfg, nil)
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d pages (%d skipped, %d failed) to %s\n",
		stats.Processed, stats.Skipped, stats.Failed, cfg.OutputDir)
	if stats.Collapsed > 0 {
		fmt.Printf("Collapsed %d directories, rewrote links in %d files\n",
			stats.Collapsed, stats.Rewritten)
	}
	return nil
}

// applyFlags folds command flags into the configuration. Flags outrank both
// the file and the environment.
func (e *ExportCmd) applyFlags(cfg *config.Config, logger *slog.Logger) error {
	if e.DocsDir != "" {
		cfg.DocsDir = e.DocsDir
	}
	if e.Output != "" {
		cfg.OutputDir = e.Output
	}
	if e.Structure != "" {
		s := config.Structure(e.Structure)
		if !s.IsValid() {
			return fmt.Errorf("invalid --structure %q (want %q or %q)",
				e.Structure, config.StructureMirror, config.StructureCollapsed)
		}
		cfg.Structure = s
	}
	if e.SingleFile {
		cfg.SingleFile = true
	}
	if e.Full {
		logger.Debug("Incremental cache disabled for this run")
		cfg.Incremental = false
	}
	return nil
}
