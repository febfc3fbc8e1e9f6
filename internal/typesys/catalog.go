package typesys

import (
	"maps"
	"slices"
	"strings"
)

// TypeSpec declares a class or interface in a [Catalog].
type TypeSpec struct {
	// Kind is "class" (default) or "interface".
	Kind        string                  `yaml:"kind,omitempty" toml:"kind,omitempty"`
	Extends     string                  `yaml:"extends,omitempty" toml:"extends,omitempty"`
	Implements  []string                `yaml:"implements,omitempty" toml:"implements,omitempty"`
	Constructor *CallableSpec           `yaml:"constructor,omitempty" toml:"constructor,omitempty"`
	Methods     map[string]CallableSpec `yaml:"methods,omitempty" toml:"methods,omitempty"`
}

// CallableSpec declares a constructor, method or function.
type CallableSpec struct {
	// Visibility is "public" (default), "protected" or "private".
	Visibility string      `yaml:"visibility,omitempty" toml:"visibility,omitempty"`
	Static     bool        `yaml:"static,omitempty" toml:"static,omitempty"`
	Params     []ParamSpec `yaml:"params,omitempty" toml:"params,omitempty"`
}

// ParamSpec declares one parameter. Type uses the syntax of [ParseHint].
type ParamSpec struct {
	Name     string `yaml:"name" toml:"name"`
	Type     string `yaml:"type,omitempty" toml:"type,omitempty"`
	Default  bool   `yaml:"default,omitempty" toml:"default,omitempty"`
	Optional bool   `yaml:"optional,omitempty" toml:"optional,omitempty"`
	Variadic bool   `yaml:"variadic,omitempty" toml:"variadic,omitempty"`
}

// Param is shorthand for a required parameter.
func Param(name, typ string) ParamSpec {
	return ParamSpec{Name: name, Type: typ}
}

// Catalog is an in-memory [Registry] built from declarations.
// It is not safe for concurrent modification; build it, then share it.
type Catalog struct {
	types     map[string]TypeSpec
	aliases   map[string]string
	functions map[string]CallableSpec
}

var _ Registry = (*Catalog)(nil)

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		types:     make(map[string]TypeSpec),
		aliases:   make(map[string]string),
		functions: make(map[string]CallableSpec),
	}
}

// AddClass declares a class, replacing any previous declaration.
func (c *Catalog) AddClass(name string, spec TypeSpec) *Catalog {
	spec.Kind = KindClass.String()
	c.types[name] = spec
	return c
}

// AddInterface declares an interface. Parent interfaces go in Implements.
func (c *Catalog) AddInterface(name string, spec TypeSpec) *Catalog {
	spec.Kind = KindInterface.String()
	c.types[name] = spec
	return c
}

// AddAlias makes alias another name for target.
func (c *Catalog) AddAlias(alias, target string) *Catalog {
	c.aliases[alias] = target
	return c
}

// AddFunction declares a free function.
func (c *Catalog) AddFunction(name string, spec CallableSpec) *Catalog {
	c.functions[name] = spec
	return c
}

// Merge copies every declaration of other into c. Declarations in other win.
func (c *Catalog) Merge(other *Catalog) {
	maps.Copy(c.types, other.types)
	maps.Copy(c.aliases, other.aliases)
	maps.Copy(c.functions, other.functions)
}

// Exists implements [Registry].
func (c *Catalog) Exists(name string) bool {
	_, ok := c.types[c.canonical(name)]
	return ok
}

// IsSubtype implements [Registry].
func (c *Catalog) IsSubtype(sub, super string) bool {
	sub, super = c.canonical(sub), c.canonical(super)
	if sub == super {
		return true
	}

	seen := map[string]bool{}
	queue := []string{sub}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if seen[name] {
			continue
		}
		seen[name] = true

		for _, parent := range c.parents(name) {
			if parent == super {
				return true
			}
			queue = append(queue, parent)
		}
	}
	return false
}

// Supertypes implements [Registry]. Unknown parents are listed but make
// the answer incomplete.
func (c *Catalog) Supertypes(name string) ([]string, bool) {
	name = c.canonical(name)
	if _, ok := c.types[name]; !ok {
		return nil, false
	}
	names := c.ancestors(name)[1:]
	complete := true
	for _, n := range names {
		if _, ok := c.types[n]; !ok {
			complete = false
		}
	}
	return names, complete
}

// Type implements [Registry].
func (c *Catalog) Type(name string) (Type, bool) {
	name = c.canonical(name)
	spec, ok := c.types[name]
	if !ok {
		return nil, false
	}
	return &catalogType{catalog: c, name: name, spec: spec}, true
}

// Function implements [Registry].
func (c *Catalog) Function(name string) (Callable, bool) {
	spec, ok := c.functions[name]
	if !ok {
		return nil, false
	}
	return newCatalogCallable(name, "", spec), true
}

// TypeNames implements [Registry]. Aliases are included.
func (c *Catalog) TypeNames() []string {
	names := slices.Collect(maps.Keys(c.types))
	names = append(names, slices.Collect(maps.Keys(c.aliases))...)
	slices.Sort(names)
	return names
}

// FunctionNames implements [Registry].
func (c *Catalog) FunctionNames() []string {
	return slices.Sorted(maps.Keys(c.functions))
}

func (c *Catalog) canonical(name string) string {
	name = strings.TrimPrefix(name, `\`)
	seen := map[string]bool{}
	for {
		target, ok := c.aliases[name]
		if !ok || seen[name] {
			return name
		}
		seen[name] = true
		name = target
	}
}

func (c *Catalog) parents(name string) []string {
	spec, ok := c.types[name]
	if !ok {
		return nil
	}
	var out []string
	if spec.Extends != "" {
		out = append(out, c.canonical(spec.Extends))
	}
	for _, iface := range spec.Implements {
		out = append(out, c.canonical(iface))
	}
	return out
}

// ancestors returns name followed by its supertypes, breadth first.
func (c *Catalog) ancestors(name string) []string {
	seen := map[string]bool{name: true}
	order := []string{name}
	for i := 0; i < len(order); i++ {
		for _, parent := range c.parents(order[i]) {
			if !seen[parent] {
				seen[parent] = true
				order = append(order, parent)
			}
		}
	}
	return order
}

type catalogType struct {
	catalog *Catalog
	name    string
	spec    TypeSpec
}

func (t *catalogType) Name() string { return t.name }

func (t *catalogType) Kind() Kind {
	if t.spec.Kind == KindInterface.String() {
		return KindInterface
	}
	return KindClass
}

// Constructor walks the extends chain; interfaces never contribute one.
func (t *catalogType) Constructor() (Callable, bool) {
	seen := map[string]bool{}
	name, spec := t.name, t.spec
	for {
		if spec.Constructor != nil {
			return newCatalogCallable("__construct", name, *spec.Constructor), true
		}
		if spec.Extends == "" || seen[name] {
			return nil, false
		}
		seen[name] = true

		parent := t.catalog.canonical(spec.Extends)
		next, ok := t.catalog.types[parent]
		if !ok {
			return nil, false
		}
		name, spec = parent, next
	}
}

func (t *catalogType) Method(method string) (Callable, bool) {
	for _, name := range t.catalog.ancestors(t.name) {
		spec, ok := t.catalog.types[name]
		if !ok {
			continue
		}
		if m, ok := spec.Methods[method]; ok {
			return newCatalogCallable(method, name, m), true
		}
	}
	return nil, false
}

func (t *catalogType) MethodNames() []string {
	set := map[string]bool{}
	for _, name := range t.catalog.ancestors(t.name) {
		for method := range t.catalog.types[name].Methods {
			set[method] = true
		}
	}
	return slices.Sorted(maps.Keys(set))
}

type catalogCallable struct {
	name          string
	declaringType string
	static        bool
	public        bool
	params        []Parameter
}

func newCatalogCallable(name, declaringType string, spec CallableSpec) *catalogCallable {
	params := make([]Parameter, len(spec.Params))
	for i, p := range spec.Params {
		hint, nullable := ParseHint(p.Type)
		params[i] = Parameter{
			Name:       p.Name,
			Position:   i,
			Hint:       hint,
			Optional:   p.Optional || p.Variadic,
			Nullable:   nullable,
			HasDefault: p.Default,
		}
	}

	visibility := strings.ToLower(spec.Visibility)
	return &catalogCallable{
		name:          name,
		declaringType: declaringType,
		static:        spec.Static,
		public:        visibility == "" || visibility == "public",
		params:        params,
	}
}

func (c *catalogCallable) Name() string            { return c.name }
func (c *catalogCallable) DeclaringType() string   { return c.declaringType }
func (c *catalogCallable) Static() bool            { return c.static }
func (c *catalogCallable) Public() bool            { return c.public }
func (c *catalogCallable) Parameters() []Parameter { return slices.Clone(c.params) }
