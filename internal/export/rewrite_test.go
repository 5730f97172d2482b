package export

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRewriteAll_CompletenessAndPrecision(t *testing.T) {
	root := t.TempDir()
	writeTreeFile(t, root, "index.md",
		"[x](roadmap/index.md)\n[y](roadmap/)\n[w](roadmap)\n[z](other.md)\n")

	renames := NewRenameMap()
	renames.Add("roadmap/index.md", "roadmap.md")

	updated, err := NewRewriter(root, renames).RewriteAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, updated)

	got := readTreeFile(t, root, "index.md")
	require.Equal(t, "[x](roadmap.md)\n[y](roadmap.md)\n[w](roadmap.md)\n[z](other.md)\n", got)
}

func TestRewriteAll_NoSpuriousWrites(t *testing.T) {
	root := t.TempDir()
	content := "[z](other.md) and [q](elsewhere/page.md)\n"
	writeTreeFile(t, root, "index.md", content)

	renames := NewRenameMap()
	renames.Add("roadmap/index.md", "roadmap.md")

	updated, err := NewRewriter(root, renames).RewriteAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, updated)
	require.Equal(t, content, readTreeFile(t, root, "index.md"))
}

func TestRewriteAll_DoesNotTouchLongerPaths(t *testing.T) {
	root := t.TempDir()
	content := "[a](sub/roadmap/index.md) [b](roadmap-extra.md)\n"
	writeTreeFile(t, root, "index.md", content)

	renames := NewRenameMap()
	renames.Add("roadmap/index.md", "roadmap.md")

	updated, err := NewRewriter(root, renames).RewriteAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, updated)
	require.Equal(t, content, readTreeFile(t, root, "index.md"))
}

func TestRewriteAll_MultipleEntriesInOneFile(t *testing.T) {
	root := t.TempDir()
	writeTreeFile(t, root, "index.md", "[a](api/client/index.md) [b](api/server/)\n")

	renames := NewRenameMap()
	renames.Add("api/client/index.md", "api/client.md")
	renames.Add("api/server/index.md", "api/server.md")

	updated, err := NewRewriter(root, renames).WithWorkers(2).RewriteAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, updated)
	require.Equal(t, "[a](api/client.md) [b](api/server.md)\n", readTreeFile(t, root, "index.md"))
}

func TestRewriteAll_EmptyRenameMapIsNoOp(t *testing.T) {
	root := t.TempDir()
	writeTreeFile(t, root, "index.md", "[x](roadmap/index.md)\n")

	updated, err := NewRewriter(root, NewRenameMap()).RewriteAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, updated)
}

func TestRewriteAll_CoversAllFilesInTree(t *testing.T) {
	root := t.TempDir()
	writeTreeFile(t, root, "index.md", "[x](roadmap/index.md)\n")
	writeTreeFile(t, root, "deep/nested/page.md", "[y](roadmap)\n")

	renames := NewRenameMap()
	renames.Add("roadmap/index.md", "roadmap.md")

	updated, err := NewRewriter(root, renames).RewriteAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, updated)
	require.Equal(t, "[y](roadmap.md)\n", readTreeFile(t, root, "deep/nested/page.md"))
}
