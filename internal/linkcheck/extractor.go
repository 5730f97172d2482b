// Package linkcheck verifies that links in an exported markdown tree resolve
// to files that exist. It parses markdown properly instead of pattern
// matching, so reference-style and autolink forms are covered too.
package linkcheck

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Link is one extracted link occurrence.
type Link struct {
	// Target is the raw link destination.
	Target string

	// Text is the rendered link text, empty for autolinks.
	Text string

	// Kind is "link", "image", or "auto".
	Kind string
}

// ExtractLinks parses markdown and returns every link destination, in
// document order. Reference-style links with a matching definition resolve
// to their destination; undefined references carry no destination and are
// not returned.
func ExtractLinks(source []byte) []Link {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var links []Link
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Link:
			links = append(links, Link{
				Target: string(node.Destination),
				Text:   string(node.Text(source)),
				Kind:   "link",
			})
		case *ast.Image:
			links = append(links, Link{
				Target: string(node.Destination),
				Text:   string(node.Text(source)),
				Kind:   "image",
			})
		case *ast.AutoLink:
			links = append(links, Link{
				Target: string(node.URL(source)),
				Kind:   "auto",
			})
		}
		return ast.WalkContinue, nil
	})
	return links
}
