package export

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/mdexport/internal/metrics"
)

// IndexFilename is the designated landing page file within a directory.
const IndexFilename = "index.md"

// Collapser merges output directories whose sole content is a single index
// document into one sibling file at the parent level. It runs once as a
// whole-tree pass after all pages have been exported.
type Collapser struct {
	root     string
	logger   *slog.Logger
	recorder *metrics.Recorder
}

// NewCollapser creates a collapser for the output tree rooted at root.
func NewCollapser(root string) *Collapser {
	return &Collapser{
		root:   filepath.Clean(root),
		logger: slog.Default(),
	}
}

// WithLogger sets a custom logger.
func (c *Collapser) WithLogger(logger *slog.Logger) *Collapser {
	c.logger = logger
	return c
}

// WithRecorder sets an optional metrics recorder.
func (c *Collapser) WithRecorder(r *metrics.Recorder) *Collapser {
	c.recorder = r
	return c
}

// Collapse performs one full collapsing pass and returns the resulting rename
// map. Index documents are visited in reverse lexicographic path order, so a
// child directory is always collapsed before its parent is examined; a parent
// that becomes solo-index through a child collapse is handled in the same
// pass. Running Collapse again on an already collapsed tree is a no-op and
// yields an empty map.
//
// Individual move failures are logged and skipped; only an unreadable output
// root is fatal.
func (c *Collapser) Collapse() (*RenameMap, error) {
	indexes, err := c.findIndexFiles()
	if err != nil {
		return nil, fmt.Errorf("scan output tree %s: %w", c.root, err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(indexes)))

	renames := NewRenameMap()
	for _, indexPath := range indexes {
		dir := filepath.Dir(indexPath)
		if dir == c.root {
			continue
		}

		ok, err := c.qualifies(dir)
		if err != nil {
			c.logger.Warn("Skipping unreadable directory during collapse", "dir", dir, "error", err)
			continue
		}
		if !ok {
			continue
		}

		newPath := dir + ".md"
		if err := os.Rename(indexPath, newPath); err != nil {
			c.logger.Warn("Failed to collapse directory", "dir", dir, "error", err)
			continue
		}
		if err := os.Remove(dir); err != nil {
			c.logger.Warn("Failed to remove collapsed directory", "dir", dir, "error", err)
		}

		// Record only after the move succeeded so the map never points at
		// paths the tree does not have.
		relOld, relErr := c.rel(indexPath)
		relNew, relErr2 := c.rel(newPath)
		if relErr != nil || relErr2 != nil {
			c.logger.Warn("Failed to relativize collapsed path", "path", indexPath)
			continue
		}
		renames.Add(relOld, relNew)
		if c.recorder != nil {
			c.recorder.DirectoryCollapsed()
		}
		c.logger.Debug("Collapsed solo-index directory", "from", relOld, "to", relNew)
	}

	return renames, nil
}

// findIndexFiles enumerates every index document under the root.
func (c *Collapser) findIndexFiles() ([]string, error) {
	var indexes []string
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != c.root && isArtifactDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == IndexFilename {
			indexes = append(indexes, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return indexes, nil
}

// qualifies reports whether dir meets the collapse criterion: exactly one
// markdown file, which is the index document, and no subdirectories.
func (c *Collapser) qualifies(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}

	mdFiles := 0
	onlyIndex := false
	for _, e := range entries {
		if e.IsDir() {
			if isArtifactDir(e.Name()) {
				continue
			}
			return false, nil
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			mdFiles++
			onlyIndex = e.Name() == IndexFilename
		}
	}
	return mdFiles == 1 && onlyIndex, nil
}

func (c *Collapser) rel(path string) (string, error) {
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// isArtifactDir reports whether a directory is build tooling output rather
// than documentation content.
func isArtifactDir(name string) bool {
	return strings.HasPrefix(name, ".")
}

// onDiskPath returns where the exported file for rel actually lives under
// root: rel itself when present, otherwise the collapsed sibling of a
// mirror-form index path when that exists. Directories collapsed by an
// earlier incremental run are absent from the current rename map; the tree
// is the only record of where their files ended up.
func onDiskPath(root, rel string) string {
	if fileExists(filepath.Join(root, filepath.FromSlash(rel))) {
		return rel
	}
	if dir, ok := strings.CutSuffix(rel, "/"+IndexFilename); ok {
		collapsed := dir + ".md"
		if fileExists(filepath.Join(root, filepath.FromSlash(collapsed))) {
			return collapsed
		}
	}
	return rel
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
