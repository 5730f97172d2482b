// Package linkfix rewrites markdown link targets: the Fixer converts `.md`
// links to directory URLs for hosts that serve directory-style paths, and the
// Normalizer lifts cross-repository links to root-level site paths.
package linkfix

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"git.home.luguber.info/inful/mdexport/internal/fsutil"
)

// mdLinkRe matches `[text](path/file.md#anchor)` with the anchor optional.
// Submatches: prefix, target without anchor, anchor, closing paren.
var mdLinkRe = regexp.MustCompile(`(\[[^\]]+\]\()([^)]+?\.md)(#[^)]*)?(\))`)

// Fixer converts `.md` link targets to directory URLs:
//
//	[text](page.md)         -> [text](page/)
//	[text](page.md#anchor)  -> [text](page/#anchor)
//
// External links and targets containing a preserved prefix are left alone.
type Fixer struct {
	preserve []string
	logger   *slog.Logger
}

// NewFixer creates a link fixer.
func NewFixer() *Fixer {
	return &Fixer{logger: slog.Default()}
}

// WithLogger sets a custom logger.
func (f *Fixer) WithLogger(logger *slog.Logger) *Fixer {
	f.logger = logger
	return f
}

// WithPreservedPrefixes adds target substrings that must never be rewritten,
// e.g. "/.provide/" for tool-internal paths.
func (f *Fixer) WithPreservedPrefixes(prefixes ...string) *Fixer {
	f.preserve = append(f.preserve, prefixes...)
	return f
}

// FixContent rewrites all eligible links in content and returns the new
// content with the number of changed links.
func (f *Fixer) FixContent(content string) (string, int) {
	changes := 0
	fixed := mdLinkRe.ReplaceAllStringFunc(content, func(m string) string {
		sub := mdLinkRe.FindStringSubmatch(m)
		prefix, target, anchor, suffix := sub[1], sub[2], sub[3], sub[4]

		if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
			return m
		}
		for _, p := range f.preserve {
			if strings.Contains(target, p) {
				return m
			}
		}

		changes++
		return prefix + strings.TrimSuffix(target, ".md") + "/" + anchor + suffix
	})
	return fixed, changes
}

// FixFile rewrites one markdown file in place. With dryRun the file is left
// untouched and only the would-be change count is returned.
func (f *Fixer) FixFile(path string, dryRun bool) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	fixed, changes := f.FixContent(string(data))
	if changes == 0 {
		return 0, nil
	}
	if dryRun {
		f.logger.Info("Would fix links", "file", path, "links", changes)
		return changes, nil
	}

	if err := fsutil.WriteFileAtomic(path, []byte(fixed), 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	f.logger.Info("Fixed links", "file", path, "links", changes)
	return changes, nil
}

// Summary aggregates a tree-wide fixing pass.
type Summary struct {
	FilesScanned int
	FilesChanged int
	LinksFixed   int
	Errors       int
}

// FixTree fixes every markdown file found under the given paths. Unreadable
// files are logged and counted as errors; the pass continues.
func (f *Fixer) FixTree(paths []string, dryRun bool) Summary {
	var s Summary
	for _, file := range FindMarkdownFiles(paths, f.logger) {
		s.FilesScanned++
		changes, err := f.FixFile(file, dryRun)
		if err != nil {
			f.logger.Warn("Failed to fix links", "file", file, "error", err)
			s.Errors++
			continue
		}
		if changes > 0 {
			s.FilesChanged++
			s.LinksFixed += changes
		}
	}
	return s
}

// FindMarkdownFiles expands files and directories into a sorted, deduplicated
// list of markdown file paths. Missing paths are logged and skipped.
func FindMarkdownFiles(paths []string, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(p string) {
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			logger.Warn("Path does not exist, skipping", "path", p)
			continue
		}
		if !info.IsDir() {
			if strings.EqualFold(filepath.Ext(p), ".md") {
				add(p)
			}
			continue
		}
		_ = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn("Skipping unreadable path", "path", path, "error", err)
				return nil
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.EqualFold(filepath.Ext(d.Name()), ".md") {
				add(path)
			}
			return nil
		})
	}

	sort.Strings(files)
	return files
}
