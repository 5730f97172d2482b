// Package refpages generates API reference stub pages for configured
// projects. Each Go package directory in a project yields one stub page with
// a `:::` directive the reference renderer expands, plus a SUMMARY.md
// navigation file per project.
package refpages

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/mdexport/internal/config"
	"git.home.luguber.info/inful/mdexport/internal/fsutil"
)

// SummaryFilename is the literate navigation file written per project.
const SummaryFilename = "SUMMARY.md"

// Generator writes reference stubs into a docs output tree.
type Generator struct {
	outputDir string
	logger    *slog.Logger
}

// NewGenerator creates a generator writing under outputDir.
func NewGenerator(outputDir string) *Generator {
	return &Generator{outputDir: outputDir, logger: slog.Default()}
}

// WithLogger sets a custom logger.
func (g *Generator) WithLogger(logger *slog.Logger) *Generator {
	g.logger = logger
	return g
}

// GenerateAll generates reference pages for every configured project and
// returns the total number of stub pages written. A project without source
// is logged and skipped; the pass continues.
func (g *Generator) GenerateAll(projects []config.RefProject) (int, error) {
	total := 0
	for _, p := range projects {
		n, err := g.generateProject(p)
		if err != nil {
			g.logger.Warn("Skipping project", "project", p.Name, "error", err)
			continue
		}
		total += n
	}
	return total, nil
}

func (g *Generator) generateProject(p config.RefProject) (int, error) {
	pkgs, err := findPackages(p.Path)
	if err != nil {
		return 0, err
	}
	if len(pkgs) == 0 {
		return 0, fmt.Errorf("no Go packages under %s", p.Path)
	}

	modulePath := readModulePath(p.Path)
	if modulePath == "" {
		modulePath = p.Name
	}

	apiDir := p.APIDir
	if apiDir == "" {
		apiDir = "reference"
	}
	refRoot := path.Join(p.Name, apiDir)

	var entries []navEntry
	for _, pkg := range pkgs {
		importPath := modulePath
		docRel := "index.md"
		if pkg != "." {
			importPath = modulePath + "/" + pkg
			docRel = pkg + "/index.md"
		}

		stub := fmt.Sprintf("::: %s\n", importPath)
		target := filepath.Join(g.outputDir, filepath.FromSlash(refRoot), filepath.FromSlash(docRel))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return 0, fmt.Errorf("create %s: %w", filepath.Dir(target), err)
		}
		if err := fsutil.WriteFileAtomic(target, []byte(stub), 0o644); err != nil {
			return 0, err
		}
		entries = append(entries, navEntry{pkg: pkg, docRel: docRel, label: navLabel(p.Name, pkg)})
	}

	summary := buildLiterateNav(entries)
	summaryPath := filepath.Join(g.outputDir, filepath.FromSlash(refRoot), SummaryFilename)
	if err := fsutil.WriteFileAtomic(summaryPath, []byte(summary), 0o644); err != nil {
		return 0, err
	}

	g.logger.Info("Generated reference pages", "project", p.Name, "pages", len(entries))
	return len(entries), nil
}

type navEntry struct {
	pkg    string
	docRel string
	label  string
}

func navLabel(projectName, pkg string) string {
	if pkg == "." {
		return projectName
	}
	return path.Base(pkg)
}

// buildLiterateNav renders a nested markdown list: one bullet per package,
// indented by package depth, each linking to its stub page relative to the
// reference root.
func buildLiterateNav(entries []navEntry) string {
	sort.Slice(entries, func(i, j int) bool { return entries[i].docRel < entries[j].docRel })

	var b strings.Builder
	for _, e := range entries {
		depth := 0
		if e.pkg != "." {
			depth = strings.Count(e.pkg, "/") + 1
		}
		b.WriteString(strings.Repeat("    ", depth))
		fmt.Fprintf(&b, "- [%s](%s)\n", e.label, e.docRel)
	}
	return b.String()
}

// findPackages returns the slash-separated relative paths of every directory
// under root that contains at least one non-test Go file, "." for the root
// itself. Hidden, underscore-prefixed, vendor, testdata, and internal
// segments are skipped: reference pages cover the public surface only.
func findPackages(root string) ([]string, error) {
	var pkgs []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && skipSegment(d.Name()) {
			return filepath.SkipDir
		}

		hasGo, err := containsGoSource(p)
		if err != nil {
			return err
		}
		if !hasGo {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		pkgs = append(pkgs, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(pkgs)
	return pkgs, nil
}

func containsGoSource(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") {
			continue
		}
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		return true, nil
	}
	return false, nil
}

func skipSegment(name string) bool {
	switch name {
	case "testdata", "vendor", "internal":
		return true
	}
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

// readModulePath extracts the module path from the project's go.mod, or ""
// when absent.
func readModulePath(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "module "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
