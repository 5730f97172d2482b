package linkfix

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"git.home.luguber.info/inful/mdexport/internal/config"
	"git.home.luguber.info/inful/mdexport/internal/hooks"
	"git.home.luguber.info/inful/mdexport/internal/page"
)

// NormalizerHookName identifies the cross-repo normalizer in the pipeline.
const NormalizerHookName = "crossrepo-links"

// anyLinkRe matches any inline markdown link; target normalization happens in
// Go rather than per-project regexes so project names only match on whole
// path segments.
var anyLinkRe = regexp.MustCompile(`(\[[^\]]*\]\()([^)]+)(\))`)

// Normalizer rewrites cross-repository links in an aggregated documentation
// tree to root-level site paths:
//
//	[text](../widgets/usage.md) -> [text](/widgets/usage.md)
//	[text](widgets/usage.md)    -> [text](/widgets/usage.md)
//
// and flattens configured nested prefixes, e.g.
// /framework/widgets/ -> /widgets/. It runs as a per-page hook before the
// exporter so exported files carry the normalized targets.
type Normalizer struct {
	hooks.BaseHook

	projects []string
	nested   [][2]string
	logger   *slog.Logger
}

// NewNormalizer creates a normalizer for the configured project set.
func NewNormalizer(cfg config.CrossRepoConfig) *Normalizer {
	n := &Normalizer{
		projects: cfg.Projects,
		logger:   slog.Default(),
	}
	// Deterministic application order; longer prefixes first so the most
	// specific mapping wins.
	for prefix, repl := range cfg.NestedPaths {
		n.nested = append(n.nested, [2]string{prefix, repl})
	}
	sort.Slice(n.nested, func(i, j int) bool {
		if len(n.nested[i][0]) != len(n.nested[j][0]) {
			return len(n.nested[i][0]) > len(n.nested[j][0])
		}
		return n.nested[i][0] < n.nested[j][0]
	})
	return n
}

// WithLogger sets a custom logger.
func (n *Normalizer) WithLogger(logger *slog.Logger) *Normalizer {
	n.logger = logger
	return n
}

// Name implements hooks.Hook.
func (n *Normalizer) Name() string { return NormalizerHookName }

// OnPage normalizes the page's markdown in place.
func (n *Normalizer) OnPage(_ *hooks.BuildContext, p *page.Page) error {
	normalized, count := n.Normalize(string(p.Markdown))
	if count > 0 {
		p.Markdown = []byte(normalized)
		n.logger.Debug("Normalized cross-repo links", "src", p.SrcPath, "links", count)
	}
	return nil
}

// Normalize rewrites all cross-repo link targets in markdown and returns the
// result with the number of changed links.
func (n *Normalizer) Normalize(markdown string) (string, int) {
	changes := 0
	out := anyLinkRe.ReplaceAllStringFunc(markdown, func(m string) string {
		sub := anyLinkRe.FindStringSubmatch(m)
		prefix, target, suffix := sub[1], sub[2], sub[3]

		normalized, ok := n.normalizeTarget(target)
		if !ok {
			return m
		}
		changes++
		return prefix + normalized + suffix
	})
	return out, changes
}

// normalizeTarget returns the root-level form of target, or ok=false when the
// target is external or does not reference a configured project.
func (n *Normalizer) normalizeTarget(target string) (string, bool) {
	if strings.HasPrefix(target, "http://") ||
		strings.HasPrefix(target, "https://") ||
		strings.HasPrefix(target, "mailto:") ||
		strings.HasPrefix(target, "#") {
		return "", false
	}

	t := target

	// Relative and bare project references become absolute.
	rel := strings.TrimPrefix(t, "../")
	for _, proj := range n.projects {
		if rel == proj || strings.HasPrefix(rel, proj+"/") {
			t = "/" + rel
			break
		}
	}

	// Nested prefix flattening applies to absolute targets, including ones
	// produced by the step above.
	for _, m := range n.nested {
		if strings.HasPrefix(t, m[0]) {
			t = m[1] + strings.TrimPrefix(t, m[0])
			break
		}
	}

	if t == target {
		return "", false
	}
	return t, true
}
