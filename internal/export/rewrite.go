package export

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/mdexport/internal/fsutil"
	"git.home.luguber.info/inful/mdexport/internal/metrics"
)

const defaultRewriteWorkers = 8

// Rewriter updates markdown links that still point at pre-collapse paths.
// It consumes the rename map read-only, so per-file rewrites are independent
// and run in parallel.
type Rewriter struct {
	root     string
	renames  *RenameMap
	workers  int
	logger   *slog.Logger
	recorder *metrics.Recorder
}

// NewRewriter creates a rewriter for the output tree rooted at root.
func NewRewriter(root string, renames *RenameMap) *Rewriter {
	return &Rewriter{
		root:    filepath.Clean(root),
		renames: renames,
		workers: defaultRewriteWorkers,
		logger:  slog.Default(),
	}
}

// WithLogger sets a custom logger.
func (rw *Rewriter) WithLogger(logger *slog.Logger) *Rewriter {
	rw.logger = logger
	return rw
}

// WithRecorder sets an optional metrics recorder.
func (rw *Rewriter) WithRecorder(r *metrics.Recorder) *Rewriter {
	rw.recorder = r
	return rw
}

// WithWorkers bounds rewrite parallelism.
func (rw *Rewriter) WithWorkers(n int) *Rewriter {
	if n > 0 {
		rw.workers = n
	}
	return rw
}

// linkPattern is one literal link-target substitution derived from a rename.
type linkPattern struct {
	old string
	new string
}

// RewriteAll scans every markdown file under the root and rewrites links whose
// target matches a renamed path. It returns the number of files whose content
// changed. Files without matching links are left byte-for-byte untouched.
func (rw *Rewriter) RewriteAll(ctx context.Context) (int, error) {
	if rw.renames.Len() == 0 {
		return 0, nil
	}

	patterns := rw.buildPatterns()

	files, err := rw.findMarkdownFiles()
	if err != nil {
		return 0, fmt.Errorf("scan output tree %s: %w", rw.root, err)
	}

	var updated atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(rw.workers)
	for _, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			changed, err := rewriteFile(file, patterns)
			if err != nil {
				// One unrewritable file must not abort the pass.
				rw.logger.Warn("Failed to rewrite links", "file", file, "error", err)
				return nil
			}
			if changed {
				updated.Add(1)
				if rw.recorder != nil {
					rw.recorder.FileRewritten()
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(updated.Load()), err
	}
	return int(updated.Load()), nil
}

// buildPatterns expands each rename into the equivalent link spellings: the
// exact old path, the directory-style target without the index segment, and
// the same with a trailing slash.
func (rw *Rewriter) buildPatterns() []linkPattern {
	const indexSuffix = "/" + IndexFilename

	var patterns []linkPattern
	for _, pair := range rw.renames.Pairs() {
		oldPath, newPath := pair[0], pair[1]
		replacement := "](" + newPath + ")"

		patterns = append(patterns, linkPattern{old: "](" + oldPath + ")", new: replacement})
		if dir, ok := strings.CutSuffix(oldPath, indexSuffix); ok {
			patterns = append(patterns,
				linkPattern{old: "](" + dir + "/)", new: replacement},
				linkPattern{old: "](" + dir + ")", new: replacement},
			)
		}
	}
	return patterns
}

func (rw *Rewriter) findMarkdownFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(rw.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != rw.root && isArtifactDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// rewriteFile applies all patterns to one file, writing it back atomically
// only when the content actually changed.
func rewriteFile(path string, patterns []linkPattern) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	content := string(data)
	for _, p := range patterns {
		content = strings.ReplaceAll(content, p.old, p.new)
	}
	if content == string(data) {
		return false, nil
	}

	if err := fsutil.WriteFileAtomic(path, []byte(content), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
