package persona

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrUnknownPersona is returned by Get for IDs that are not in the catalog.
var ErrUnknownPersona = errors.New("persona: unknown persona")

// Catalog is an immutable, ordered set of personas keyed by ID. It is built
// once at startup and shared by pointer; no method mutates it.
type Catalog struct {
	order []Persona
	byID  map[string]int
}

// NewCatalog builds a catalog from personas, preserving their order. IDs must
// be non-empty and unique.
func NewCatalog(personas []Persona) (*Catalog, error) {
	c := &Catalog{
		order: make([]Persona, 0, len(personas)),
		byID:  make(map[string]int, len(personas)),
	}
	for _, p := range personas {
		if p.ID == "" {
			return nil, fmt.Errorf("persona: %q has no id", p.Name)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("persona: duplicate id %q", p.ID)
		}
		if p.Name == "" {
			p.Name = p.ID
		}
		p.FocusTags = append([]string(nil), p.FocusTags...)
		c.byID[p.ID] = len(c.order)
		c.order = append(c.order, p)
	}
	return c, nil
}

// DefaultCatalog returns a catalog holding the built-in personas.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(Defaults())
	if err != nil {
		panic(err) // built-in data is static
	}
	return c
}

// catalogFile is the on-disk shape of a persona catalog.
type catalogFile struct {
	// Replace discards the built-in personas instead of extending them.
	Replace  bool      `yaml:"replace,omitempty"`
	Personas []Persona `yaml:"personas"`
}

// LoadFile reads a YAML persona file and merges it with the built-in
// personas. Entries whose ID matches a built-in persona replace it in place;
// new IDs are appended. With "replace: true" only the file's personas are
// used. An empty path returns the default catalog.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persona: read %s: %w", path, err)
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("persona: parse %s: %w", path, err)
	}

	if f.Replace {
		return NewCatalog(f.Personas)
	}

	merged := Defaults()
	index := make(map[string]int, len(merged))
	for i, p := range merged {
		index[p.ID] = i
	}
	for _, p := range f.Personas {
		if i, ok := index[p.ID]; ok {
			merged[i] = p
			continue
		}
		index[p.ID] = len(merged)
		merged = append(merged, p)
	}
	return NewCatalog(merged)
}

// List returns a copy of every persona in catalog order.
func (c *Catalog) List() []Persona {
	out := make([]Persona, len(c.order))
	copy(out, c.order)
	return out
}

// Len reports the number of personas in the catalog.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Get returns the persona with the given ID.
func (c *Catalog) Get(id string) (Persona, error) {
	i, ok := c.byID[id]
	if !ok {
		return Persona{}, fmt.Errorf("%w: %q", ErrUnknownPersona, id)
	}
	return c.order[i], nil
}

// Resolve returns the personas named by ids, in the requested order. Unknown
// IDs are skipped and a repeated ID keeps only its first position, since
// review events and stored persona lists are keyed by persona ID. A nil or
// empty ids selects the whole catalog.
func (c *Catalog) Resolve(ids []string) []Persona {
	if len(ids) == 0 {
		return c.List()
	}

	seen := make(map[string]bool, len(ids))
	out := make([]Persona, 0, len(ids))
	for _, id := range ids {
		i, ok := c.byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, c.order[i])
	}
	return out
}
