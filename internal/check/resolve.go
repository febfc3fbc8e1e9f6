package check

import (
	"github.com/thoreinstein/defcheck/internal/definition"
	"github.com/thoreinstein/defcheck/internal/errors"
	"github.com/thoreinstein/defcheck/internal/typesys"
)

// ClassResolver resolves the class a definition produces.
type ClassResolver struct {
	graph definition.Graph
}

// NewClassResolver creates a ClassResolver over graph.
func NewClassResolver(graph definition.Graph) *ClassResolver {
	return &ClassResolver{graph: graph}
}

// Resolve returns the definition's class with %parameter% placeholders
// replaced, or "" when the definition declares no class. Placeholder
// faults are returned as plain errors.
func (r *ClassResolver) Resolve(def *definition.Definition) (string, error) {
	if def == nil || def.Class == "" {
		return "", nil
	}
	class, err := r.graph.ResolveString(def.Class)
	if err != nil {
		return "", errors.Wrapf(err, "resolving class %q", def.Class)
	}
	return class, nil
}

// ConstructorResolver decides which callable builds a definition.
type ConstructorResolver struct {
	graph   definition.Graph
	types   typesys.Registry
	classes *ClassResolver
	opts    *options
}

// NewConstructorResolver creates a ConstructorResolver.
func NewConstructorResolver(graph definition.Graph, types typesys.Registry, classes *ClassResolver, opts ...Option) *ConstructorResolver {
	return &ConstructorResolver{
		graph:   graph,
		types:   types,
		classes: classes,
		opts:    newOptions(opts),
	}
}

// Resolve returns the factory or constructor of def. A nil callable with a
// nil error means there is nothing to check arguments against: the class
// declares no constructor, or the factory target's type is unknown.
func (r *ConstructorResolver) Resolve(def *definition.Definition) (typesys.Callable, error) {
	switch f := def.Factory.(type) {
	case nil:
	case definition.FunctionFactory:
		return r.function(f.Name)
	case definition.ServiceFactory:
		return r.serviceMethod(f.Service, f.Method)
	case definition.ClassFactory:
		class, err := r.resolve(f.Class)
		if err != nil {
			return nil, err
		}
		return r.staticMethod(class, f.Method)
	case definition.InlineFactory:
		class, err := r.classes.Resolve(f.Definition)
		if err != nil {
			return nil, err
		}
		if class == "" {
			r.opts.trace("inline factory has no class, skipping arguments", "factory", f.String())
			return nil, nil
		}
		return r.staticMethod(class, f.Method)
	default:
		return nil, errors.Newf("unsupported factory type %T", f)
	}

	class, err := r.classes.Resolve(def)
	if err != nil || class == "" {
		return nil, err
	}
	return r.constructor(class)
}

func (r *ConstructorResolver) resolve(s string) (string, error) {
	out, err := r.graph.ResolveString(s)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %q", s)
	}
	return out, nil
}

func (r *ConstructorResolver) function(name string) (typesys.Callable, error) {
	name, err := r.resolve(name)
	if err != nil {
		return nil, err
	}
	fn, ok := r.types.Function(name)
	if !ok {
		return nil, r.opts.withSuggestion(functionNotFound(name), name, r.types.FunctionNames)
	}
	return fn, nil
}

func (r *ConstructorResolver) serviceMethod(ref definition.Reference, method string) (typesys.Callable, error) {
	target, ok := r.graph.Lookup(ref.ID)
	if !ok {
		return nil, r.opts.withSuggestion(serviceNotFound(ref.ID), ref.ID, r.graph.IDs)
	}

	class, err := r.classes.Resolve(target)
	if err != nil {
		return nil, err
	}
	if class == "" {
		r.opts.trace("factory service has no class, skipping arguments", "service", ref.ID)
		return nil, nil
	}

	method, err = r.resolve(method)
	if err != nil {
		return nil, err
	}
	return r.method(class, method)
}

func (r *ConstructorResolver) staticMethod(class, method string) (typesys.Callable, error) {
	method, err := r.resolve(method)
	if err != nil {
		return nil, err
	}
	m, err := r.method(class, method)
	if err != nil {
		return nil, err
	}
	if !m.Static() {
		return nil, nonStaticFactoryMethod(class, method)
	}
	return m, nil
}

func (r *ConstructorResolver) method(class, method string) (typesys.Callable, error) {
	typ, ok := r.types.Type(class)
	if !ok {
		return nil, r.opts.withSuggestion(classNotFound(class), class, r.types.TypeNames)
	}
	m, ok := typ.Method(method)
	if !ok {
		return nil, r.opts.withSuggestion(methodNotFound(class, method), method, typ.MethodNames)
	}
	return m, nil
}

func (r *ConstructorResolver) constructor(class string) (typesys.Callable, error) {
	typ, ok := r.types.Type(class)
	if !ok {
		return nil, r.opts.withSuggestion(classNotFound(class), class, r.types.TypeNames)
	}
	ctor, ok := typ.Constructor()
	if !ok {
		r.opts.trace("class declares no constructor, skipping arguments", "class", class)
		return nil, nil
	}
	if !ctor.Public() {
		return nil, nonPublicConstructor(class)
	}
	return ctor, nil
}
