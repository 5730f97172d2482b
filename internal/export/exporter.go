// Package export implements the markdown tree exporter: a page collector that
// mirrors every rendered page back to plain markdown, a structure collapser
// that merges solo-index directories, and a cross-reference rewriter that
// keeps links consistent after collapsing.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/mdexport/internal/config"
	"git.home.luguber.info/inful/mdexport/internal/frontmatter"
	"git.home.luguber.info/inful/mdexport/internal/fsutil"
	"git.home.luguber.info/inful/mdexport/internal/hooks"
	"git.home.luguber.info/inful/mdexport/internal/incremental"
	"git.home.luguber.info/inful/mdexport/internal/metrics"
	"git.home.luguber.info/inful/mdexport/internal/page"
)

// HookName identifies the exporter in the build pipeline.
const HookName = "markdown-export"

// exportedFromField records the original source path in exported frontmatter.
const exportedFromField = "exported_from"

// Stats summarizes one export run.
type Stats struct {
	Processed int
	Skipped   int
	Failed    int
	Collapsed int
	Rewritten int
}

// Exporter is the build hook that materializes the markdown output tree.
// State is reset on every configuration phase, so one instance can serve
// repeated builds (watch mode) without cross-build leakage.
type Exporter struct {
	hooks.BaseHook

	cfg      *config.Config
	logger   *slog.Logger
	recorder *metrics.Recorder

	cache    *incremental.Cache
	renames  *RenameMap
	apiFiles []string
	sections []Section
	stats    Stats
	started  time.Time
}

// New creates an exporter for cfg.
func New(cfg *config.Config) *Exporter {
	return &Exporter{
		cfg:     cfg,
		logger:  slog.Default(),
		renames: NewRenameMap(),
	}
}

// WithLogger sets a custom logger.
func (e *Exporter) WithLogger(logger *slog.Logger) *Exporter {
	e.logger = logger
	return e
}

// WithRecorder sets an optional metrics recorder.
func (e *Exporter) WithRecorder(r *metrics.Recorder) *Exporter {
	e.recorder = r
	return e
}

// Name implements hooks.Hook.
func (e *Exporter) Name() string { return HookName }

// Stats returns the counters of the most recent run.
func (e *Exporter) Stats() Stats { return e.stats }

// APIFiles returns the rename-adjusted, sorted API reference paths of the
// most recent run.
func (e *Exporter) APIFiles() []string {
	return finalizeAPIFiles(e.apiFiles, e.renames)
}

// Renames returns the rename map of the most recent run.
func (e *Exporter) Renames() *RenameMap { return e.renames }

// OnConfig prepares the output directory and loads the incremental cache.
// An uncreatable output directory is the one fatal condition in the exporter.
func (e *Exporter) OnConfig(bc *hooks.BuildContext) error {
	e.started = time.Now()
	e.stats = Stats{}
	e.apiFiles = nil
	e.sections = nil
	e.renames = NewRenameMap()
	e.cache = nil

	if err := os.MkdirAll(bc.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", bc.OutputDir, err)
	}

	if e.cfg.Incremental {
		e.cache = incremental.NewCache(e.cfg.CacheFile).WithLogger(e.logger)
		e.cache.Load()
	}

	e.logger.Debug("Markdown export configured",
		"output", bc.OutputDir,
		"structure", string(e.cfg.Structure),
		"incremental", e.cfg.Incremental,
		"build_id", bc.BuildID)
	return nil
}

// OnPage exports one page. Per-page failures are logged and counted but never
// propagated: a single bad page must not abort the build.
func (e *Exporter) OnPage(bc *hooks.BuildContext, p *page.Page) error {
	if err := e.exportPage(bc, p); err != nil {
		e.logger.Warn("Failed to export page", "src", p.SrcPath, "error", err)
		e.stats.Failed++
		if e.recorder != nil {
			e.recorder.PageFailed()
		}
	}
	return nil
}

func (e *Exporter) exportPage(bc *hooks.BuildContext, p *page.Page) error {
	outRel, err := markdownDestPath(p.DestPath)
	if err != nil {
		return err
	}

	isAPI := isAPIReference(p.SrcPath)
	if isAPI && !e.cfg.IncludeAPIReference {
		e.skip(p, "api reference excluded")
		return nil
	}
	if isAPI {
		e.apiFiles = append(e.apiFiles, outRel)
	}
	if e.cfg.SingleFile {
		e.sections = append(e.sections, Section{
			Title: p.Title,
			Path:  outRel,
			Body:  p.Markdown,
		})
	}

	if e.cache != nil && p.AbsSrcPath != "" && !e.cache.ShouldExport(p.AbsSrcPath) {
		e.skip(p, "unchanged")
		return nil
	}

	content, err := composeExport(p)
	if err != nil {
		return fmt.Errorf("compose frontmatter: %w", err)
	}

	outAbs := filepath.Join(bc.OutputDir, filepath.FromSlash(outRel))
	if err := os.MkdirAll(filepath.Dir(outAbs), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	if err := fsutil.WriteFileAtomic(outAbs, content, 0o644); err != nil {
		return err
	}

	if e.cache != nil && p.AbsSrcPath != "" {
		if err := e.cache.Update(p.AbsSrcPath); err != nil {
			e.logger.Warn("Failed to record modification time", "src", p.SrcPath, "error", err)
		}
	}

	e.stats.Processed++
	if e.recorder != nil {
		e.recorder.PageExported()
	}
	if e.cfg.Verbose {
		e.logger.Debug("Exported page", "src", p.SrcPath, "out", outRel)
	}
	return nil
}

func (e *Exporter) skip(p *page.Page, reason string) {
	e.stats.Skipped++
	if e.recorder != nil {
		e.recorder.PageSkipped()
	}
	if e.cfg.Verbose {
		e.logger.Debug("Skipped page", "src", p.SrcPath, "reason", reason)
	}
}

// OnPostBuild finalizes the output tree: collapse, rewrite, manifest, the
// optional single-file export, and cache persistence, in that order. The
// collapser must finish before the rewriter starts; the rewriter depends on
// the completed rename map.
func (e *Exporter) OnPostBuild(bc *hooks.BuildContext) error {
	if e.cfg.Structure == config.StructureCollapsed {
		collapser := NewCollapser(bc.OutputDir).WithLogger(e.logger).WithRecorder(e.recorder)
		renames, err := collapser.Collapse()
		if err != nil {
			e.finishRun("error")
			return err
		}
		e.renames = renames
		e.stats.Collapsed = renames.Len()

		if renames.Len() > 0 {
			rewriter := NewRewriter(bc.OutputDir, renames).WithLogger(e.logger).WithRecorder(e.recorder)
			updated, err := rewriter.RewriteAll(bc.Context)
			if err != nil {
				e.finishRun("error")
				return err
			}
			e.stats.Rewritten = updated
		}
	}

	files := e.APIFiles()
	if e.cfg.Structure == config.StructureCollapsed {
		// Pages skipped by the incremental cache keep their mirror-form
		// path, but their files may have been collapsed in an earlier run.
		files = adjustToTree(bc.OutputDir, files)
	}
	if len(files) > 0 {
		if err := WriteManifest(bc.OutputDir, files); err != nil {
			e.finishRun("error")
			return fmt.Errorf("write api manifest: %w", err)
		}
	}

	if e.cfg.SingleFile {
		for i := range e.sections {
			resolved := e.renames.Resolve(e.sections[i].Path)
			if e.cfg.Structure == config.StructureCollapsed {
				resolved = onDiskPath(bc.OutputDir, resolved)
			}
			e.sections[i].Path = resolved
		}
		target := filepath.Join(bc.OutputDir, e.cfg.SingleFileName)
		if err := WriteSingleFile(target, e.sections); err != nil {
			e.finishRun("error")
			return fmt.Errorf("write single file export: %w", err)
		}
	}

	if e.cache != nil {
		e.cache.Save()
	}

	outcome := "success"
	if e.stats.Failed > 0 {
		outcome = "partial"
	}
	e.finishRun(outcome)

	e.logger.Info("Markdown export complete",
		"processed", e.stats.Processed,
		"skipped", e.stats.Skipped,
		"failed", e.stats.Failed,
		"collapsed", e.stats.Collapsed,
		"rewritten", e.stats.Rewritten)
	return nil
}

func (e *Exporter) finishRun(outcome string) {
	if e.recorder != nil {
		e.recorder.RunCompleted(outcome, time.Since(e.started))
	}
}

// composeExport builds the exported file content: generated frontmatter
// followed by the raw markdown source. The frontmatter carries the page
// metadata, the title, the original source path, and a content fingerprint.
func composeExport(p *page.Page) ([]byte, error) {
	fields := make(map[string]any, len(p.Meta)+3)
	for k, v := range p.Meta {
		fields[k] = v
	}
	if p.Title != "" {
		fields["title"] = p.Title
	}
	fields[exportedFromField] = p.SrcPath

	yamlBody, err := frontmatter.EncodeYAML(fields)
	if err != nil {
		return nil, err
	}
	fmForHash := strings.TrimSuffix(string(yamlBody), "\n")
	fields[mdfp.FingerprintField] = mdfp.CalculateFingerprintFromParts(fmForHash, string(p.Markdown))

	block, err := frontmatter.Compose(fields)
	if err != nil {
		return nil, err
	}
	return append(block, p.Markdown...), nil
}

// markdownDestPath maps a site-relative rendered destination to the exported
// markdown path, e.g. "guide/roadmap/index.html" to "guide/roadmap/index.md".
func markdownDestPath(dest string) (string, error) {
	if dest == "" {
		return "", fmt.Errorf("page has no destination path")
	}
	dest = path.Clean(filepath.ToSlash(dest))
	ext := path.Ext(dest)
	if ext == "" {
		// Directory-style destination ("guide/roadmap/") maps to its index.
		return path.Join(dest, IndexFilename), nil
	}
	return strings.TrimSuffix(dest, ext) + ".md", nil
}

// isAPIReference classifies a page as machine-generated API reference
// material by its source path: a "reference" or "api" path segment, or the
// generated navigation index filename.
func isAPIReference(srcPath string) bool {
	srcPath = filepath.ToSlash(srcPath)
	if path.Base(srcPath) == "SUMMARY.md" {
		return true
	}
	for _, seg := range strings.Split(srcPath, "/") {
		if seg == "reference" || seg == "api" {
			return true
		}
	}
	return false
}
