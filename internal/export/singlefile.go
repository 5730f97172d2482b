package export

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/mdexport/internal/fsutil"
)

// Section is one page's contribution to the single-file export, recorded in
// the order the host yields pages.
type Section struct {
	Title string
	Path  string
	Body  []byte
}

// WriteSingleFile concatenates all sections into one markdown document at
// target: a table of contents with anchor links followed by every page body.
func WriteSingleFile(target string, sections []Section) error {
	var buf bytes.Buffer
	buf.WriteString("# Documentation\n\n")
	fmt.Fprintf(&buf, "Single-file export of %d pages.\n\n", len(sections))

	anchors := assignAnchors(sections)

	buf.WriteString("## Table of Contents\n\n")
	for i, s := range sections {
		fmt.Fprintf(&buf, "- [%s](#%s)\n", sectionTitle(s), anchors[i])
	}
	buf.WriteString("\n")

	for i, s := range sections {
		buf.WriteString("---\n\n")
		fmt.Fprintf(&buf, "<a id=%q></a>\n\n", anchors[i])
		fmt.Fprintf(&buf, "## %s\n\n", sectionTitle(s))
		fmt.Fprintf(&buf, "`%s`\n\n", s.Path)
		buf.Write(s.Body)
		if !bytes.HasSuffix(s.Body, []byte("\n")) {
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}

	return fsutil.WriteFileAtomic(target, buf.Bytes(), 0o644)
}

func sectionTitle(s Section) string {
	if s.Title != "" {
		return s.Title
	}
	return s.Path
}

// assignAnchors slugifies every section title, disambiguating duplicates with
// a numeric suffix so TOC links stay unique.
func assignAnchors(sections []Section) []string {
	used := make(map[string]int, len(sections))
	anchors := make([]string, len(sections))
	for i, s := range sections {
		slug := slugify(sectionTitle(s))
		if slug == "" {
			slug = "section"
		}
		if n := used[slug]; n > 0 {
			used[slug] = n + 1
			slug = fmt.Sprintf("%s-%d", slug, n+1)
		} else {
			used[slug] = 1
		}
		anchors[i] = slug
	}
	return anchors
}

// slugNormalizer strips diacritics so accented titles produce ASCII anchors.
var slugNormalizer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// slugify converts a title to a lowercase hyphenated anchor fragment.
func slugify(title string) string {
	folded, _, err := transform.String(slugNormalizer, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}
	return b.String()
}
