// Package hooks provides the build pipeline surface the export components
// plug into. The host site generator drives three phases: configuration,
// one pass per page, and a post-build pass over the finished output tree.
package hooks

import (
	"fmt"

	"git.home.luguber.info/inful/mdexport/internal/page"
)

// Hook is a build pipeline extension. Implementations that do not care about
// a phase can embed BaseHook for no-op defaults.
type Hook interface {
	// Name is the unique hook identifier (e.g., "markdown-export").
	Name() string

	// OnConfig runs once before any page is processed.
	OnConfig(bc *BuildContext) error

	// OnPage runs once per page descriptor, in the order the page source
	// yields them.
	OnPage(bc *BuildContext, p *page.Page) error

	// OnPostBuild runs once after every page has been processed.
	OnPostBuild(bc *BuildContext) error
}

// BaseHook provides no-op defaults for optional phases.
type BaseHook struct{}

// OnConfig is a no-op default implementation.
func (BaseHook) OnConfig(*BuildContext) error { return nil }

// OnPage is a no-op default implementation.
func (BaseHook) OnPage(*BuildContext, *page.Page) error { return nil }

// OnPostBuild is a no-op default implementation.
func (BaseHook) OnPostBuild(*BuildContext) error { return nil }

// Registry holds hooks and runs them in registration order.
type Registry struct {
	hooks []Hook
	names map[string]struct{}
}

// NewRegistry creates an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]struct{})}
}

// Register adds a hook. Hooks must have unique, non-empty names.
func (r *Registry) Register(h Hook) error {
	if h == nil {
		return fmt.Errorf("cannot register nil hook")
	}
	name := h.Name()
	if name == "" {
		return fmt.Errorf("hook name is required")
	}
	if _, dup := r.names[name]; dup {
		return fmt.Errorf("hook %q already registered", name)
	}
	r.names[name] = struct{}{}
	r.hooks = append(r.hooks, h)
	return nil
}

// List returns registered hooks in registration order.
func (r *Registry) List() []Hook { return r.hooks }

// RunConfig runs the configuration phase of every hook.
func (r *Registry) RunConfig(bc *BuildContext) error {
	for _, h := range r.hooks {
		if err := h.OnConfig(bc); err != nil {
			return fmt.Errorf("hook %s: on config: %w", h.Name(), err)
		}
	}
	return nil
}

// RunPage runs the per-page phase of every hook for p.
func (r *Registry) RunPage(bc *BuildContext, p *page.Page) error {
	for _, h := range r.hooks {
		if err := h.OnPage(bc, p); err != nil {
			return fmt.Errorf("hook %s: page %s: %w", h.Name(), p.SrcPath, err)
		}
	}
	return nil
}

// RunPostBuild runs the post-build phase of every hook.
func (r *Registry) RunPostBuild(bc *BuildContext) error {
	for _, h := range r.hooks {
		if err := h.OnPostBuild(bc); err != nil {
			return fmt.Errorf("hook %s: post build: %w", h.Name(), err)
		}
	}
	return nil
}
