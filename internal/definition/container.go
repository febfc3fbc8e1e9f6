package definition

import (
	"iter"
	"slices"
	"sort"
)

// Graph is a read-only view of registered definitions and parameters.
// Validators borrow it; they never own or modify it.
type Graph interface {
	// Lookup returns the definition registered under id, following aliases.
	// ServiceContainerID resolves to a synthetic definition of the container
	// class unless a definition was registered under that id.
	Lookup(id string) (*Definition, bool)

	// Has reports whether id (or an alias of it) is registered.
	Has(id string) bool

	// IDs returns the registered service ids and aliases, sorted.
	IDs() []string

	// Parameter returns a raw parameter value.
	Parameter(name string) (any, bool)

	// ResolveString replaces %parameter% placeholders in s.
	ResolveString(s string) (string, error)

	// ContainerClass is the root type of the container itself.
	ContainerClass() string
}

// Container is an ordered, in-memory [Graph].
// It is populated by a loader and then treated as immutable.
type Container struct {
	order          []string
	definitions    map[string]*Definition
	aliases        map[string]string
	parameters     map[string]any
	containerClass string
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{
		definitions:    make(map[string]*Definition),
		aliases:        make(map[string]string),
		parameters:     make(map[string]any),
		containerClass: DefaultContainerClass,
	}
}

// Register adds or replaces the definition for id. Replacing keeps the
// original position. Registering an id removes any alias with that name.
func (c *Container) Register(id string, def *Definition) {
	if _, ok := c.definitions[id]; !ok {
		c.order = append(c.order, id)
	}
	delete(c.aliases, id)
	c.definitions[id] = def
}

// SetAlias makes alias refer to target.
func (c *Container) SetAlias(alias, target string) {
	if _, ok := c.definitions[alias]; ok {
		delete(c.definitions, alias)
		c.order = slices.DeleteFunc(c.order, func(id string) bool { return id == alias })
	}
	c.aliases[alias] = target
}

// SetParameter sets a parameter value used by placeholder resolution.
func (c *Container) SetParameter(name string, value any) {
	c.parameters[name] = value
}

// SetContainerClass overrides the root container type.
func (c *Container) SetContainerClass(class string) {
	if class != "" {
		c.containerClass = class
	}
}

// ContainerClass implements [Graph].
func (c *Container) ContainerClass() string {
	return c.containerClass
}

// Len returns the number of registered definitions (aliases excluded).
func (c *Container) Len() int {
	return len(c.order)
}

// Definitions yields definitions in registration order.
func (c *Container) Definitions() iter.Seq2[string, *Definition] {
	return func(yield func(string, *Definition) bool) {
		for _, id := range c.order {
			if !yield(id, c.definitions[id]) {
				return
			}
		}
	}
}

// Order returns the registered definition ids in registration order.
func (c *Container) Order() []string {
	return slices.Clone(c.order)
}

// Aliases returns a copy of the alias table.
func (c *Container) Aliases() map[string]string {
	out := make(map[string]string, len(c.aliases))
	for k, v := range c.aliases {
		out[k] = v
	}
	return out
}

// Parameters returns a copy of the parameter table.
func (c *Container) Parameters() map[string]any {
	out := make(map[string]any, len(c.parameters))
	for k, v := range c.parameters {
		out[k] = v
	}
	return out
}

// Lookup implements [Graph].
func (c *Container) Lookup(id string) (*Definition, bool) {
	id = c.canonical(id)
	if def, ok := c.definitions[id]; ok {
		return def, true
	}
	if id == ServiceContainerID {
		return &Definition{Class: c.containerClass, Synthetic: true}, true
	}
	return nil, false
}

// Has implements [Graph].
func (c *Container) Has(id string) bool {
	_, ok := c.Lookup(id)
	return ok
}

// IDs implements [Graph].
func (c *Container) IDs() []string {
	ids := make([]string, 0, len(c.order)+len(c.aliases))
	ids = append(ids, c.order...)
	for alias := range c.aliases {
		ids = append(ids, alias)
	}
	sort.Strings(ids)
	return ids
}

// Parameter implements [Graph]. Names match the way placeholders do.
func (c *Container) Parameter(name string) (any, bool) {
	return c.lookupParameter(name)
}

// canonical follows alias chains. Cycles stop at the first repeated name.
func (c *Container) canonical(id string) string {
	seen := map[string]bool{}
	for {
		target, ok := c.aliases[id]
		if !ok || seen[id] {
			return id
		}
		seen[id] = true
		id = target
	}
}
