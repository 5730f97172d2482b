// Package frontmatter splits, parses, and composes YAML frontmatter blocks
// for markdown documents flowing through the export pipeline.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("frontmatter start delimiter found but closing delimiter is missing")

var delim = []byte("---\n")

// Split separates a `---` delimited YAML frontmatter block from the markdown
// body. If the document does not start with a delimiter, had is false and body
// is the full input.
func Split(content []byte) (fm []byte, body []byte, had bool, err error) {
	if !bytes.HasPrefix(content, delim) {
		return nil, content, false, nil
	}

	rest := content[len(delim):]
	if bytes.HasPrefix(rest, delim) {
		// Empty frontmatter block.
		return []byte{}, rest[len(delim):], true, nil
	}

	closeSeq := []byte("\n---\n")
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	return rest[:idx+1], rest[idx+len(closeSeq):], true, nil
}

// Parse unmarshals raw YAML frontmatter (without delimiters) into a map.
// Empty input yields an empty, non-nil map.
func Parse(fm []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(fm) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}
