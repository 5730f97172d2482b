package linkfix

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdexport/internal/config"
	"git.home.luguber.info/inful/mdexport/internal/hooks"
	"git.home.luguber.info/inful/mdexport/internal/page"
)

func testNormalizer() *Normalizer {
	return NewNormalizer(config.CrossRepoConfig{
		Projects: []string{"widgets", "gadgets"},
		NestedPaths: map[string]string{
			"/framework/widgets/": "/widgets/",
			"/framework/gadgets/": "/gadgets/",
		},
	})
}

func TestNormalize_ProjectLinks(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		changes int
	}{
		{"relative", "[w](../widgets/usage.md)", "[w](/widgets/usage.md)", 1},
		{"bare", "[w](widgets/usage.md)", "[w](/widgets/usage.md)", 1},
		{"bare project only", "[w](widgets)", "[w](/widgets)", 1},
		{"already absolute", "[w](/widgets/usage.md)", "[w](/widgets/usage.md)", 0},
		{"unknown project", "[o](../other/usage.md)", "[o](../other/usage.md)", 0},
		{"segment precision", "[w](widgets-extra/x.md)", "[w](widgets-extra/x.md)", 0},
		{"external", "[w](https://example.com/widgets/)", "[w](https://example.com/widgets/)", 0},
		{"anchor only", "[w](#widgets)", "[w](#widgets)", 0},
	}

	n := testNormalizer()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, changes := n.Normalize(tc.in)
			require.Equal(t, tc.want, got)
			require.Equal(t, tc.changes, changes)
		})
	}
}

func TestNormalize_NestedPathFlattening(t *testing.T) {
	n := testNormalizer()

	got, changes := n.Normalize("[w](/framework/widgets/intro.md)")
	require.Equal(t, "[w](/widgets/intro.md)", got)
	require.Equal(t, 1, changes)

	// Flattening applies to absolute targets only; a relative link into a
	// nested prefix is not a configured project reference.
	got, changes = n.Normalize("[g](../framework/gadgets/api.md)")
	require.Equal(t, "[g](../framework/gadgets/api.md)", got)
	require.Equal(t, 0, changes)
}

func TestNormalizer_OnPageRewritesMarkdown(t *testing.T) {
	n := testNormalizer()
	p := &page.Page{
		SrcPath:  "index.md",
		Markdown: []byte("See [Widgets](../widgets/index.md)."),
	}

	bc := hooks.NewBuildContext(context.Background(), nil, config.Default(), t.TempDir())
	require.NoError(t, n.OnPage(bc, p))
	require.Equal(t, "See [Widgets](/widgets/index.md).", string(p.Markdown))
}

func TestNormalizer_ImplementsHook(t *testing.T) {
	r := hooks.NewRegistry()
	require.NoError(t, r.Register(testNormalizer()))
}
