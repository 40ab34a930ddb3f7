// Package permission exposes the in-memory permission catalog. The catalog
// is immutable once built; roles and the authorization engine consult it by
// exact slug match only. There is no wildcard or slug inheritance.
package permission

import (
	"sort"
	"strings"

	"github.com/crewbase/crewbase/internal/config"
)

// Entry is one catalog permission.
type Entry struct {
	Slug      string
	ModuleKey string
}

// Catalog is the set of known permission slugs, grouped by module key.
// Project-administrative slugs carry an empty module key and are never
// module-gated.
type Catalog struct {
	entries map[string]Entry
}

// NewCatalog builds the catalog from the active policy config.
func NewCatalog(holder *config.PolicyHolder) *Catalog {
	return FromPolicy(holder.Get())
}

// FromPolicy builds a catalog from a fixed policy config.
func FromPolicy(policy config.PolicyConfig) *Catalog {
	entries := make(map[string]Entry)

	for _, slug := range config.ProjectActions {
		entries[slug] = Entry{Slug: slug}
	}
	for _, mod := range policy.Modules {
		for _, slug := range mod.Actions {
			entries[slug] = Entry{Slug: slug, ModuleKey: mod.Key}
		}
	}
	for moduleKey, slugs := range policy.ExtraActions {
		for _, slug := range slugs {
			entries[slug] = Entry{Slug: slug, ModuleKey: moduleKey}
		}
	}

	return &Catalog{entries: entries}
}

// Exists reports whether slug is a known permission.
func (c *Catalog) Exists(slug string) bool {
	_, ok := c.entries[strings.TrimSpace(slug)]
	return ok
}

// ModuleOf returns the module key a slug belongs to, or "" when the slug is
// not module-scoped (or unknown).
func (c *Catalog) ModuleOf(slug string) string {
	return c.entries[strings.TrimSpace(slug)].ModuleKey
}

// Slugs returns every known slug in sorted order.
func (c *Catalog) Slugs() []string {
	out := make([]string, 0, len(c.entries))
	for slug := range c.entries {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

// ByModule returns the slugs tagged with the given module key, sorted.
func (c *Catalog) ByModule(key string) []string {
	var out []string
	for slug, entry := range c.entries {
		if entry.ModuleKey == key {
			out = append(out, slug)
		}
	}
	sort.Strings(out)
	return out
}
