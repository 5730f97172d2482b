package commands

import (
	"fmt"

	"git.home.luguber.info/inful/mdexport/internal/linkcheck"
)

// VerifyCmd implements the 'verify' command.
type VerifyCmd struct {
	Root string `arg:"" optional:"" help:"Tree to verify (defaults to the configured output_dir)" type:"path"`
}

func (v *VerifyCmd) Run(g *Global, root *CLI) error {
	target := v.Root
	if target == "" {
		cfg, err := loadConfig(root)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		target = cfg.OutputDir
	}

	broken, err := linkcheck.NewVerifier(target).WithLogger(g.Logger).VerifyTree()
	if err != nil {
		return err
	}

	if len(broken) == 0 {
		fmt.Printf("All links in %s resolve\n", target)
		return nil
	}

	for _, b := range broken {
		fmt.Println(b.String())
	}
	return fmt.Errorf("found %d broken link(s) in %s", len(broken), target)
}
