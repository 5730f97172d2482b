package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/mdexport/internal/fsutil"
)

// ManifestFilename is the API reference manifest written at the output root.
const ManifestFilename = ".api-manifest.txt"

// finalizeAPIFiles rename-adjusts, deduplicates, and sorts the API file list.
func finalizeAPIFiles(files []string, renames *RenameMap) []string {
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		resolved := renames.Resolve(f)
		if _, dup := seen[resolved]; dup {
			continue
		}
		seen[resolved] = struct{}{}
		out = append(out, resolved)
	}
	sort.Strings(out)
	return out
}

// adjustToTree swaps manifest entries whose mirror-form file is gone for the
// collapsed sibling that exists, then restores deduplicated sorted order.
func adjustToTree(outputDir string, files []string) []string {
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		adjusted := onDiskPath(outputDir, f)
		if _, dup := seen[adjusted]; dup {
			continue
		}
		seen[adjusted] = struct{}{}
		out = append(out, adjusted)
	}
	sort.Strings(out)
	return out
}

// WriteManifest writes the API reference manifest: one relative path per
// line, sorted, with a comment header stating the count. The format is meant
// for shell consumption (exclusion filters, bulk deletion).
func WriteManifest(outputDir string, files []string) error {
	var b strings.Builder
	b.WriteString("# Auto-generated API reference files in this export.\n")
	fmt.Fprintf(&b, "# Count: %d\n", len(files))
	b.WriteString("#\n")
	b.WriteString("# One path per line, relative to the export root. To strip the\n")
	b.WriteString("# generated reference material:\n")
	b.WriteString("#   grep -v '^#' " + ManifestFilename + " | xargs -r rm --\n")
	for _, f := range files {
		b.WriteString(f)
		b.WriteByte('\n')
	}

	target := filepath.Join(outputDir, ManifestFilename)
	return fsutil.WriteFileAtomic(target, []byte(b.String()), 0o644)
}
