package chapter

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/chapterbuilder/internal/config"
	"git.home.luguber.info/inful/chapterbuilder/internal/foundation/errors"
)

// Registry is the ordered set of chapters to build. Order is build order.
type Registry struct {
	specs []*Spec
}

// NewRegistry validates every entry and returns the registry. The first
// invalid entry aborts construction; no partial registry is returned.
func NewRegistry(entries []config.ChapterEntry, cfg *config.Config) (*Registry, error) {
	if len(entries) == 0 {
		return nil, errors.ConfigError("no chapters configured").Build()
	}

	specs := make([]*Spec, 0, len(entries))
	for i, entry := range entries {
		spec, err := NewSpec(entry, cfg)
		if err != nil {
			if ce, ok := errors.AsClassified(err); ok {
				return nil, ce.WithContext("index", i)
			}
			return nil, err
		}
		specs = append(specs, spec)
	}
	return &Registry{specs: specs}, nil
}

// FromConfig builds the registry from the chapter table in cfg.
func FromConfig(cfg *config.Config) (*Registry, error) {
	return NewRegistry(cfg.Chapters, cfg)
}

// Specs returns the chapters in build order. The returned slice is a copy.
func (r *Registry) Specs() []*Spec {
	out := make([]*Spec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Len returns the number of chapters.
func (r *Registry) Len() int { return len(r.specs) }

// Filter returns a registry restricted to the named branches, keeping the
// original order. Naming a branch that is not configured is an error.
func (r *Registry) Filter(only []string) (*Registry, error) {
	if len(only) == 0 {
		return r, nil
	}

	wanted := make(map[string]bool, len(only))
	for _, b := range only {
		wanted[strings.TrimSpace(b)] = false
	}

	var specs []*Spec
	for _, s := range r.specs {
		if _, ok := wanted[s.branchName]; ok {
			wanted[s.branchName] = true
			specs = append(specs, s)
		}
	}

	var unknown []string
	for _, b := range only {
		b = strings.TrimSpace(b)
		if !wanted[b] {
			unknown = append(unknown, b)
		}
	}
	if len(unknown) > 0 {
		return nil, errors.ConfigError(fmt.Sprintf("unknown chapter branch: %s", strings.Join(unknown, ", "))).
			WithContext(errors.HintKey, "Run 'chapterbuilder list' to see configured branches.").
			Build()
	}
	return &Registry{specs: specs}, nil
}
