package page

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/mdexport/internal/frontmatter"
)

// Walker produces page descriptors from a docs source tree, mapping each
// markdown file to the destination path the site generator would render it to
// (directory-style URLs: foo.md becomes foo/index.html).
type Walker struct {
	docsDir string
	logger  *slog.Logger
}

// NewWalker creates a walker rooted at docsDir.
func NewWalker(docsDir string) *Walker {
	return &Walker{docsDir: docsDir, logger: slog.Default()}
}

// WithLogger sets a custom logger.
func (w *Walker) WithLogger(logger *slog.Logger) *Walker {
	w.logger = logger
	return w
}

// Walk enumerates markdown files under the docs root in sorted order and
// returns one page descriptor per file. Files that cannot be read or carry
// malformed frontmatter are logged and skipped; they never abort the walk.
func (w *Walker) Walk(ctx context.Context) ([]*Page, error) {
	var pages []*Page
	byDest := make(map[string]string)

	err := filepath.WalkDir(w.docsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			// Hidden directories hold build artifacts, not documentation.
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(p), ".md") {
			return nil
		}

		pg, perr := w.load(p)
		if perr != nil {
			w.logger.Warn("Skipping unreadable page", "path", p, "error", perr)
			return nil
		}
		// README.md and index.md in one directory both render to index.html;
		// the later page overwrites the earlier one downstream.
		if prev, clash := byDest[pg.DestPath]; clash {
			w.logger.Warn("Multiple sources map to the same destination, earlier page is shadowed",
				"dest", pg.DestPath, "shadowed", prev, "src", pg.SrcPath)
		}
		byDest[pg.DestPath] = pg.SrcPath

		pages = append(pages, pg)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk docs dir %s: %w", w.docsDir, err)
	}

	return pages, nil
}

func (w *Walker) load(absPath string) (*Page, error) {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}

	rel, err := filepath.Rel(w.docsDir, absPath)
	if err != nil {
		return nil, fmt.Errorf("relativize page path: %w", err)
	}
	srcPath := filepath.ToSlash(rel)

	fm, body, had, err := frontmatter.Split(content)
	if err != nil {
		return nil, fmt.Errorf("split frontmatter: %w", err)
	}
	meta := map[string]any{}
	if had {
		meta, err = frontmatter.Parse(fm)
		if err != nil {
			return nil, fmt.Errorf("parse frontmatter: %w", err)
		}
	}

	title, _ := meta["title"].(string)
	if title == "" {
		title = firstHeading(body)
	}

	abs, err := filepath.Abs(absPath)
	if err != nil {
		abs = absPath
	}

	return &Page{
		SrcPath:    srcPath,
		DestPath:   DestPathFor(srcPath),
		Title:      title,
		Meta:       meta,
		Markdown:   body,
		AbsSrcPath: abs,
	}, nil
}

// DestPathFor maps a site-relative markdown source path to its rendered
// destination under directory-style URLs:
//
//	index.md / README.md -> index.html (same directory)
//	foo.md               -> foo/index.html
func DestPathFor(srcPath string) string {
	dir, base := path.Split(srcPath)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if strings.EqualFold(stem, "index") || strings.EqualFold(stem, "README") {
		return path.Join(dir, "index.html")
	}
	return path.Join(dir, stem, "index.html")
}

// firstHeading returns the text of the first top-level heading in body, or ""
// when the document has none.
func firstHeading(body []byte) string {
	md := goldmark.New()
	root := md.Parser().Parse(gmtext.NewReader(body))

	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if h, ok := n.(*gmast.Heading); ok && h.Level == 1 {
			var sb strings.Builder
			for c := h.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*gmast.Text); ok {
					sb.Write(t.Segment.Value(body))
				}
			}
			title = strings.TrimSpace(sb.String())
			return gmast.WalkStop, nil
		}
		return gmast.WalkContinue, nil
	})
	return title
}
