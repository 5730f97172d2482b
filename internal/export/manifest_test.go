package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFinalizeAPIFiles_SortsAndAdjustsRenames(t *testing.T) {
	renames := NewRenameMap()
	renames.Add("api/server/index.md", "api/server.md")
	renames.Add("api/client/index.md", "api/client.md")

	files := []string{"api/server/index.md", "api/client/index.md"}
	got := finalizeAPIFiles(files, renames)
	require.Equal(t, []string{"api/client.md", "api/server.md"}, got)
}

func TestFinalizeAPIFiles_Deduplicates(t *testing.T) {
	got := finalizeAPIFiles([]string{"api/x.md", "api/x.md"}, NewRenameMap())
	require.Equal(t, []string{"api/x.md"}, got)
}

func TestWriteManifest_Format(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, WriteManifest(root, []string{"api/client.md", "api/server.md"}))

	got := readTreeFile(t, root, ManifestFilename)
	require.Contains(t, got, "# Count: 2\n")
	require.True(t, strings.HasSuffix(got, "api/client.md\napi/server.md\n"))

	// Every non-path line is a comment so the file greps clean.
	for _, line := range strings.Split(strings.TrimSuffix(got, "\n"), "\n") {
		if !strings.HasPrefix(line, "#") {
			require.Contains(t, []string{"api/client.md", "api/server.md"}, line)
		}
	}
}
