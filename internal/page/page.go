// Package page defines the page descriptor contract the exporter consumes and
// a filesystem walker that produces descriptors from a docs source tree.
//
// The descriptor is the explicit contract with the host site generator: every
// field the exporter reads is declared here, with optional fields documented
// as present-or-absent instead of probed ad hoc.
package page

// Page describes one documentation page handed to the export pipeline.
type Page struct {
	// SrcPath is the site-relative source path (slash-separated), e.g.
	// "guide/roadmap.md".
	SrcPath string

	// DestPath is the site-relative rendered destination, e.g.
	// "guide/roadmap/index.html" under directory-style URLs.
	DestPath string

	// Title is the rendered page title. May be empty when neither the
	// frontmatter nor the body provides one.
	Title string

	// Meta holds frontmatter key/value pairs copied from the source.
	// Never nil; empty when the source has no frontmatter.
	Meta map[string]any

	// Markdown is the raw (pre-render) markdown source with any source
	// frontmatter already stripped.
	Markdown []byte

	// AbsSrcPath is the absolute source file path, used for
	// modification-time lookups. Empty when the page has no backing file;
	// callers must treat it as optional.
	AbsSrcPath string
}
