package commands

import (
	"fmt"

	"git.home.luguber.info/inful/mdexport/internal/refpages"
)

// RefPagesCmd implements the 'ref-pages' command.
type RefPagesCmd struct {
	Output string `short:"o" help:"Docs tree to write stub pages into (defaults to the configured docs_dir)"`
}

func (r *RefPagesCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(cfg.RefPages.Projects) == 0 {
		return fmt.Errorf("no refpages projects configured in %s", root.Config)
	}

	output := r.Output
	if output == "" {
		output = cfg.DocsDir
	}

	gen := refpages.NewGenerator(output).WithLogger(g.Logger)
	total, err := gen.GenerateAll(cfg.RefPages.Projects)
	if err != nil {
		return err
	}

	fmt.Printf("Generated %d reference page(s) for %d project(s) under %s\n",
		total, len(cfg.RefPages.Projects), output)
	return nil
}
