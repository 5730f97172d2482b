package linkcheck

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/mdexport/internal/frontmatter"
)

// Broken describes one link whose target does not exist in the tree.
type Broken struct {
	// File is the containing file, relative to the verified root.
	File string

	// Target is the raw link destination as written.
	Target string

	// Text is the link text, for reporting.
	Text string
}

func (b Broken) String() string {
	return fmt.Sprintf("%s: [%s](%s)", b.File, b.Text, b.Target)
}

// Verifier checks every markdown file under a root for broken internal
// links. It is read-only; reporting is the caller's concern.
type Verifier struct {
	root   string
	logger *slog.Logger
}

// NewVerifier creates a verifier for the tree rooted at root.
func NewVerifier(root string) *Verifier {
	return &Verifier{root: filepath.Clean(root), logger: slog.Default()}
}

// WithLogger sets a custom logger.
func (v *Verifier) WithLogger(logger *slog.Logger) *Verifier {
	v.logger = logger
	return v
}

// VerifyTree checks every markdown file under the root and returns all
// broken links found. Unreadable files are logged and skipped.
func (v *Verifier) VerifyTree() ([]Broken, error) {
	var broken []Broken
	err := filepath.WalkDir(v.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != v.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}

		found, err := v.verifyFile(p)
		if err != nil {
			v.logger.Warn("Skipping unverifiable file", "file", p, "error", err)
			return nil
		}
		broken = append(broken, found...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", v.root, err)
	}
	return broken, nil
}

func (v *Verifier) verifyFile(absPath string) ([]Broken, error) {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}

	// Frontmatter is metadata, not content; links live in the body.
	_, body, _, err := frontmatter.Split(data)
	if err != nil {
		body = data
	}

	rel, err := filepath.Rel(v.root, absPath)
	if err != nil {
		return nil, err
	}
	rel = filepath.ToSlash(rel)

	var broken []Broken
	for _, link := range ExtractLinks(body) {
		target, check := normalizeTarget(link.Target)
		if !check {
			continue
		}
		if !v.targetExists(rel, target) {
			broken = append(broken, Broken{File: rel, Target: link.Target, Text: link.Text})
		}
	}
	return broken, nil
}

// normalizeTarget strips anchors and queries and reports whether the target
// is an internal path worth checking.
func normalizeTarget(target string) (string, bool) {
	if target == "" ||
		strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "mailto:") ||
		strings.HasPrefix(target, "#") {
		return "", false
	}
	if i := strings.IndexAny(target, "#?"); i >= 0 {
		target = target[:i]
	}
	if target == "" {
		return "", false
	}
	return target, true
}

// targetExists resolves target against the containing file and checks the
// equivalent spellings: the exact path, the path as a directory index, and
// the path with the markdown extension restored.
func (v *Verifier) targetExists(fromRel, target string) bool {
	var resolved string
	if strings.HasPrefix(target, "/") {
		resolved = strings.TrimPrefix(target, "/")
	} else {
		resolved = path.Join(path.Dir(fromRel), target)
	}
	resolved = path.Clean(resolved)
	if resolved == "." {
		return true
	}
	if strings.HasPrefix(resolved, "../") {
		// Escapes the exported tree; nothing to check against.
		return false
	}

	candidates := []string{resolved}
	if strings.HasSuffix(target, "/") || path.Ext(resolved) == "" {
		candidates = append(candidates,
			path.Join(resolved, "index.md"),
			resolved+".md",
		)
	}

	for _, c := range candidates {
		info, err := os.Stat(filepath.Join(v.root, filepath.FromSlash(c)))
		if err != nil {
			continue
		}
		if info.IsDir() && path.Ext(c) == "" && c == resolved {
			// A bare directory only counts when it has an index.
			continue
		}
		return true
	}
	return false
}
