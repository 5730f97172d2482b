package commands

import (
	"fmt"

	"git.home.luguber.info/inful/mdexport/internal/linkfix"
)

// FixLinksCmd implements the 'fix-links' command.
type FixLinksCmd struct {
	Paths    []string `arg:"" help:"Markdown files or directories to fix" type:"path"`
	DryRun   bool     `help:"Report changes without writing files"`
	Preserve []string `help:"Link target substrings that must never be rewritten"`
}

func (f *FixLinksCmd) Run(g *Global) error {
	fixer := linkfix.NewFixer().
		WithLogger(g.Logger).
		WithPreservedPrefixes(f.Preserve...)

	s := fixer.FixTree(f.Paths, f.DryRun)

	verb := "Fixed"
	if f.DryRun {
		verb = "Would fix"
	}
	fmt.Printf("%s %d link(s) in %d of %d file(s)\n", verb, s.LinksFixed, s.FilesChanged, s.FilesScanned)

	if s.Errors > 0 {
		return fmt.Errorf("%d file(s) could not be processed", s.Errors)
	}
	return nil
}
