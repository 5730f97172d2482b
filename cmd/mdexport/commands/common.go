package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mdexport/internal/config"
	"git.home.luguber.info/inful/mdexport/internal/export"
	"git.home.luguber.info/inful/mdexport/internal/hooks"
	"git.home.luguber.info/inful/mdexport/internal/linkfix"
	"git.home.luguber.info/inful/mdexport/internal/metrics"
	"git.home.luguber.info/inful/mdexport/internal/page"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition and global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"mdexport.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Export   ExportCmd   `cmd:"" help:"Export the docs tree to plain markdown"`
	FixLinks FixLinksCmd `cmd:"" name:"fix-links" help:"Rewrite .md links to directory URLs"`
	RefPages RefPagesCmd `cmd:"" name:"ref-pages" help:"Generate API reference stub pages for configured projects"`
	Verify   VerifyCmd   `cmd:"" help:"Check an exported tree for broken internal links"`
	Watch    WatchCmd    `cmd:"" help:"Re-export on docs changes"`
}

// AfterApply runs after flag parsing; loads .env files and sets up logging
// once for the whole process.
func (c *CLI) AfterApply() error {
	config.LoadDotenv()

	level := slog.LevelInfo
	if c.Verbose || envVerbose() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func envVerbose() bool {
	switch os.Getenv(config.EnvVerbose) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// loadConfig loads the configuration for a subcommand, folding the global
// verbose flag in.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	if root.Verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// runExport drives one full export: cross-repo normalization (when
// configured) and the exporter, over the pages the walker yields.
func runExport(ctx context.Context, logger *slog.Logger, cfg *config.Config, recorder *metrics.Recorder) (export.Stats, error) {
	reg := hooks.NewRegistry()

	if len(cfg.CrossRepo.Projects) > 0 || len(cfg.CrossRepo.NestedPaths) > 0 {
		if err := reg.Register(linkfix.NewNormalizer(cfg.CrossRepo).WithLogger(logger)); err != nil {
			return export.Stats{}, err
		}
	}

	exp := export.New(cfg).WithLogger(logger).WithRecorder(recorder)
	if err := reg.Register(exp); err != nil {
		return export.Stats{}, err
	}

	bc := hooks.NewBuildContext(ctx, logger, cfg, cfg.OutputDir)
	if err := reg.RunConfig(bc); err != nil {
		return export.Stats{}, err
	}

	pages, err := page.NewWalker(cfg.DocsDir).WithLogger(logger).Walk(ctx)
	if err != nil {
		return export.Stats{}, fmt.Errorf("collect pages from %s: %w", cfg.DocsDir, err)
	}
	for _, p := range pages {
		if err := reg.RunPage(bc, p); err != nil {
			return exp.Stats(), err
		}
	}

	if err := reg.RunPostBuild(bc); err != nil {
		return exp.Stats(), err
	}
	return exp.Stats(), nil
}
