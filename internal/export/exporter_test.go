package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/inful/mdfp"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdexport/internal/config"
	"git.home.luguber.info/inful/mdexport/internal/hooks"
	"git.home.luguber.info/inful/mdexport/internal/page"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Enabled = true
	cfg.OutputDir = t.TempDir()
	cfg.CacheFile = filepath.Join(t.TempDir(), "cache.json")
	cfg.Incremental = false
	return cfg
}

func runBuild(t *testing.T, cfg *config.Config, pages []*page.Page) *Exporter {
	t.Helper()
	e := New(cfg)
	bc := hooks.NewBuildContext(context.Background(), nil, cfg, cfg.OutputDir)
	require.NoError(t, e.OnConfig(bc))
	for _, p := range pages {
		require.NoError(t, e.OnPage(bc, p))
	}
	require.NoError(t, e.OnPostBuild(bc))
	return e
}

func srcFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExporter_WritesFrontmatterAndBody(t *testing.T) {
	cfg := testConfig(t)
	e := runBuild(t, cfg, []*page.Page{{
		SrcPath:  "guide/roadmap.md",
		DestPath: "guide/roadmap/index.html",
		Title:    "Roadmap",
		Meta:     map[string]any{"weight": 3},
		Markdown: []byte("# Roadmap\n\nPlans.\n"),
	}})

	require.Equal(t, 1, e.Stats().Processed)
	got := readTreeFile(t, cfg.OutputDir, "guide/roadmap/index.md")
	require.Contains(t, got, "title: Roadmap\n")
	require.Contains(t, got, "weight: 3\n")
	require.Contains(t, got, "exported_from: guide/roadmap.md\n")
	require.Contains(t, got, mdfp.FingerprintField+":")
	require.Contains(t, got, "# Roadmap\n\nPlans.\n")
}

func TestExporter_IncrementalSkipsUnchangedSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Incremental = true

	src := srcFile(t, "# Roadmap\n")
	p := &page.Page{
		SrcPath:    "roadmap.md",
		DestPath:   "roadmap/index.html",
		Title:      "Roadmap",
		Meta:       map[string]any{},
		Markdown:   []byte("# Roadmap\n"),
		AbsSrcPath: src,
	}

	first := runBuild(t, cfg, []*page.Page{p})
	require.Equal(t, 1, first.Stats().Processed)
	require.Equal(t, 0, first.Stats().Skipped)

	second := runBuild(t, cfg, []*page.Page{p})
	require.Equal(t, 0, second.Stats().Processed)
	require.Equal(t, 1, second.Stats().Skipped)
}

func TestExporter_PageFailureDoesNotAbortBuild(t *testing.T) {
	cfg := testConfig(t)
	e := runBuild(t, cfg, []*page.Page{
		{SrcPath: "broken.md", DestPath: "", Markdown: []byte("x")},
		{SrcPath: "ok.md", DestPath: "ok/index.html", Title: "OK", Meta: map[string]any{}, Markdown: []byte("# OK\n")},
	})

	require.Equal(t, 1, e.Stats().Failed)
	require.Equal(t, 1, e.Stats().Processed)
	require.FileExists(t, filepath.Join(cfg.OutputDir, "ok", "index.md"))
}

func TestExporter_APIManifestSortedAndRenameAdjusted(t *testing.T) {
	cfg := testConfig(t)
	cfg.Structure = config.StructureCollapsed

	e := runBuild(t, cfg, []*page.Page{
		{SrcPath: "api/server.md", DestPath: "api/server/index.html", Title: "Server", Meta: map[string]any{}, Markdown: []byte("# Server\n")},
		{SrcPath: "api/client.md", DestPath: "api/client/index.html", Title: "Client", Meta: map[string]any{}, Markdown: []byte("# Client\n")},
	})

	require.Equal(t, []string{"api/client.md", "api/server.md"}, e.APIFiles())

	manifest := readTreeFile(t, cfg.OutputDir, ManifestFilename)
	require.Contains(t, manifest, "# Count: 2\n")
	require.Contains(t, manifest, "api/client.md\n")
	require.Contains(t, manifest, "api/server.md\n")
	require.NotContains(t, manifest, "api/client/index.md")
}

func TestExporter_IncrementalRerunManifestTracksCollapsedFiles(t *testing.T) {
	cfg := testConfig(t)
	cfg.Incremental = true
	cfg.Structure = config.StructureCollapsed

	src := srcFile(t, "# Client\n")
	p := &page.Page{
		SrcPath:    "api/client.md",
		DestPath:   "api/client/index.html",
		Title:      "Client",
		Meta:       map[string]any{},
		Markdown:   []byte("# Client\n"),
		AbsSrcPath: src,
	}

	first := runBuild(t, cfg, []*page.Page{p})
	require.Equal(t, 1, first.Stats().Processed)
	require.Equal(t, 1, first.Stats().Collapsed)

	// The second run skips the unchanged page, so the current rename map is
	// empty; the manifest must still point at the collapsed file on disk.
	second := runBuild(t, cfg, []*page.Page{p})
	require.Equal(t, 1, second.Stats().Skipped)
	require.Equal(t, 0, second.Stats().Collapsed)
	require.FileExists(t, filepath.Join(cfg.OutputDir, "api", "client.md"))

	manifest := readTreeFile(t, cfg.OutputDir, ManifestFilename)
	require.Contains(t, manifest, "api/client.md\n")
	require.NotContains(t, manifest, "api/client/index.md")
}

func TestExporter_ExcludesAPIReferenceWhenDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.IncludeAPIReference = false

	e := runBuild(t, cfg, []*page.Page{
		{SrcPath: "reference/pkg.md", DestPath: "reference/pkg/index.html", Title: "Pkg", Meta: map[string]any{}, Markdown: []byte("# Pkg\n")},
		{SrcPath: "guide.md", DestPath: "guide/index.html", Title: "Guide", Meta: map[string]any{}, Markdown: []byte("# Guide\n")},
	})

	require.Equal(t, 1, e.Stats().Processed)
	require.Equal(t, 1, e.Stats().Skipped)
	require.NoFileExists(t, filepath.Join(cfg.OutputDir, "reference", "pkg", "index.md"))
	require.NoFileExists(t, filepath.Join(cfg.OutputDir, ManifestFilename))
}

func TestExporter_CollapseAndRewriteScenario(t *testing.T) {
	cfg := testConfig(t)
	cfg.Structure = config.StructureCollapsed

	e := runBuild(t, cfg, []*page.Page{
		{SrcPath: "index.md", DestPath: "index.html", Title: "Home", Meta: map[string]any{}, Markdown: []byte("See [Roadmap](roadmap/index.md)\n")},
		{SrcPath: "roadmap.md", DestPath: "roadmap/index.html", Title: "Roadmap", Meta: map[string]any{}, Markdown: []byte("# Roadmap\n")},
	})

	require.Equal(t, 1, e.Stats().Collapsed)
	require.Equal(t, 1, e.Stats().Rewritten)

	require.NoDirExists(t, filepath.Join(cfg.OutputDir, "roadmap"))
	require.Contains(t, readTreeFile(t, cfg.OutputDir, "roadmap.md"), "# Roadmap\n")
	require.Contains(t, readTreeFile(t, cfg.OutputDir, "index.md"), "See [Roadmap](roadmap.md)\n")
}

func TestExporter_SingleFileExport(t *testing.T) {
	cfg := testConfig(t)
	cfg.SingleFile = true

	runBuild(t, cfg, []*page.Page{
		{SrcPath: "index.md", DestPath: "index.html", Title: "Home", Meta: map[string]any{}, Markdown: []byte("Welcome.\n")},
		{SrcPath: "guide.md", DestPath: "guide/index.html", Title: "User Guide", Meta: map[string]any{}, Markdown: []byte("# Guide\n")},
	})

	full := readTreeFile(t, cfg.OutputDir, cfg.SingleFileName)
	require.Contains(t, full, "## Table of Contents\n")
	require.Contains(t, full, "- [Home](#home)\n")
	require.Contains(t, full, "- [User Guide](#user-guide)\n")
	require.Contains(t, full, "## User Guide\n")
	require.Contains(t, full, "Welcome.\n")
}

func TestExporter_SingleFileSectionPathsFollowCollapse(t *testing.T) {
	cfg := testConfig(t)
	cfg.SingleFile = true
	cfg.Structure = config.StructureCollapsed

	runBuild(t, cfg, []*page.Page{
		{SrcPath: "index.md", DestPath: "index.html", Title: "Home", Meta: map[string]any{}, Markdown: []byte("Welcome.\n")},
		{SrcPath: "roadmap.md", DestPath: "roadmap/index.html", Title: "Roadmap", Meta: map[string]any{}, Markdown: []byte("# Roadmap\n")},
	})

	full := readTreeFile(t, cfg.OutputDir, cfg.SingleFileName)
	require.Contains(t, full, "`roadmap.md`")
	require.NotContains(t, full, "roadmap/index.md")
}

func TestExporter_StateResetsBetweenBuilds(t *testing.T) {
	cfg := testConfig(t)
	p := &page.Page{SrcPath: "api/x.md", DestPath: "api/x/index.html", Title: "X", Meta: map[string]any{}, Markdown: []byte("# X\n")}

	e := runBuild(t, cfg, []*page.Page{p})
	require.Equal(t, 1, e.Stats().Processed)
	require.Len(t, e.APIFiles(), 1)

	bc := hooks.NewBuildContext(context.Background(), nil, cfg, cfg.OutputDir)
	require.NoError(t, e.OnConfig(bc))
	require.Equal(t, Stats{}, e.Stats())
	require.Empty(t, e.APIFiles())
}

func TestMarkdownDestPath(t *testing.T) {
	cases := []struct {
		dest string
		want string
	}{
		{"guide/roadmap/index.html", "guide/roadmap/index.md"},
		{"index.html", "index.md"},
		{"guide/roadmap/", "guide/roadmap/index.md"},
		{"notes/page.htm", "notes/page.md"},
	}
	for _, tc := range cases {
		got, err := markdownDestPath(tc.dest)
		require.NoError(t, err, tc.dest)
		require.Equal(t, tc.want, got, tc.dest)
	}

	_, err := markdownDestPath("")
	require.Error(t, err)
}

func TestIsAPIReference(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{"reference/pkg/index.md", true},
		{"api/client.md", true},
		{"nested/api/thing.md", true},
		{"gen/SUMMARY.md", true},
		{"docs/apiary/x.md", false},
		{"guide/x.md", false},
		{"preference/x.md", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, isAPIReference(tc.src), tc.src)
	}
}
