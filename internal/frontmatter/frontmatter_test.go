package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Roadmap\n---\n# Title\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Roadmap\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_EmptyBlock_SplitsAsHadWithEmptyFrontmatter(t *testing.T) {
	fm, body, had, err := Split([]byte("---\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, _, had, err := Split([]byte("---\ntitle: x\n# Title\n"))
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestParse_FieldsRoundTrip(t *testing.T) {
	fields, err := Parse([]byte("title: Roadmap\nweight: 3\n"))
	require.NoError(t, err)
	require.Equal(t, "Roadmap", fields["title"])
	require.Equal(t, 3, fields["weight"])
}

func TestParse_Empty_ReturnsEmptyMap(t *testing.T) {
	fields, err := Parse(nil)
	require.NoError(t, err)
	require.NotNil(t, fields)
	require.Empty(t, fields)
}

func TestCompose_SortsKeysDeterministically(t *testing.T) {
	block, err := Compose(map[string]any{
		"title":         "Roadmap",
		"exported_from": "docs/roadmap.md",
		"weight":        3,
	})
	require.NoError(t, err)
	require.Equal(t, "---\nexported_from: docs/roadmap.md\ntitle: Roadmap\nweight: 3\n---\n", string(block))
}

func TestCompose_EmptyFields_ComposesNothing(t *testing.T) {
	block, err := Compose(nil)
	require.NoError(t, err)
	require.Empty(t, block)
}

func TestCompose_ThenSplit_RoundTrips(t *testing.T) {
	block, err := Compose(map[string]any{"title": "X", "tags": []string{"a", "b"}})
	require.NoError(t, err)

	doc := append(block, []byte("# X\n")...)
	fm, body, had, err := Split(doc)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("# X\n"), body)

	fields, err := Parse(fm)
	require.NoError(t, err)
	require.Equal(t, "X", fields["title"])
	require.Equal(t, []any{"a", "b"}, fields["tags"])
}
