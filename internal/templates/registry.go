// internal/templates/registry.go
package templates

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/solatis/codematch/internal/types"
)

/*
 * Template registry.
 *
 * Holds built-in templates merged with custom per-project templates. Custom
 * templates replace built-ins with the same ID; a later custom template
 * replaces an earlier one with the same ID regardless of project.
 *
 * Matching order: ascending ExpectedLength, ties broken by ID, unconstrained
 * (catch-all) templates last. Match returns every valid result in that
 * order; callers try each lookup code until one resolves.
 *
 * Concurrency: the ordered list lives in an immutable snapshot behind an
 * atomic pointer. Writers serialise on mu, rebuild the snapshot and swap it;
 * readers never block.
 */

// Registry owns the active template set.
type Registry struct {
	mu       sync.Mutex
	builtins map[string]*Template
	custom   map[string]*Template
	current  atomic.Pointer[snapshot]
}

type snapshot struct {
	ordered []*Template
	byID    map[string]*Template
}

// NewRegistry creates a registry holding the built-in templates.
func NewRegistry() *Registry {
	r, err := NewRegistryWith(Builtins())
	if err != nil {
		panic(fmt.Sprintf("templates: built-in set: %v", err))
	}
	return r
}

// NewRegistryWith creates a registry with defs as its built-in set.
// Every definition must compile; otherwise no registry is returned.
func NewRegistryWith(defs []types.TemplateDefinition) (*Registry, error) {
	r := &Registry{
		builtins: make(map[string]*Template, len(defs)),
		custom:   make(map[string]*Template),
	}
	for _, def := range defs {
		def.Project = types.BuiltinProject
		t, err := Compile(def)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", def.ID, err)
		}
		r.builtins[def.ID] = t
	}
	r.rebuild()
	return r, nil
}

// AddTemplate compiles and registers a custom template for a project.
// On error the registry is unchanged; callers log and continue.
func (r *Registry) AddTemplate(project types.ProjectID, id, source string) error {
	return r.Load([]types.TemplateDefinition{{Project: project, ID: id, Template: source}})
}

// Load registers a batch of custom templates with a single rebuild.
// Definitions that fail to compile are skipped; their errors are joined.
func (r *Registry) Load(defs []types.TemplateDefinition) error {
	var errs []error
	compiled := make([]*Template, 0, len(defs))
	for _, def := range defs {
		t, err := Compile(def)
		if err != nil {
			errs = append(errs, fmt.Errorf("template %s (project %q): %w", def.ID, def.Project, err))
			continue
		}
		compiled = append(compiled, t)
	}

	if len(compiled) > 0 {
		r.mu.Lock()
		for _, t := range compiled {
			r.custom[t.ID] = t
		}
		r.rebuild()
		r.mu.Unlock()
	}

	return errors.Join(errs...)
}

// rebuild publishes a new snapshot. Caller holds mu (or owns r exclusively).
func (r *Registry) rebuild() {
	byID := make(map[string]*Template, len(r.builtins)+len(r.custom))
	for id, t := range r.builtins {
		byID[id] = t
	}
	for id, t := range r.custom {
		byID[id] = t
	}

	ordered := make([]*Template, 0, len(byID))
	for _, t := range byID {
		ordered = append(ordered, t)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if (a.ExpectedLength == 0) != (b.ExpectedLength == 0) {
			return b.ExpectedLength == 0
		}
		if a.ExpectedLength != b.ExpectedLength {
			return a.ExpectedLength < b.ExpectedLength
		}
		return a.ID < b.ID
	})

	r.current.Store(&snapshot{ordered: ordered, byID: byID})
}

// Match returns every valid parse of candidate, most specific template first.
func (r *Registry) Match(candidate string) []*ParseResult {
	var results []*ParseResult
	for _, t := range r.current.Load().ordered {
		res := t.Match(candidate)
		if res == nil || !res.IsValid() {
			continue
		}
		results = append(results, res)
	}
	return results
}

// CreateCode renders a code from the named template with embedValue substituted.
func (r *Registry) CreateCode(templateID, baseCode string, embedValue int) (string, error) {
	t, ok := r.Template(templateID)
	if !ok {
		return "", fmt.Errorf("%w: %s", types.ErrTemplateNotFound, templateID)
	}
	return t.Embed(baseCode, embedValue)
}

// Template returns the active template with the given ID.
func (r *Registry) Template(id string) (*Template, bool) {
	t, ok := r.current.Load().byID[id]
	return t, ok
}

// Templates returns the active templates in matching order.
// The returned slice is a copy; the templates themselves are immutable.
func (r *Registry) Templates() []*Template {
	ordered := r.current.Load().ordered
	out := make([]*Template, len(ordered))
	copy(out, ordered)
	return out
}
