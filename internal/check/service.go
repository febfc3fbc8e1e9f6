package check

import (
	"github.com/thoreinstein/defcheck/internal/definition"
	"github.com/thoreinstein/defcheck/internal/errors"
	"github.com/thoreinstein/defcheck/internal/typesys"
)

// ServiceValidator runs every check for a single definition and stops at
// the first failure: attributes, then arguments, then method calls.
type ServiceValidator struct {
	graph     definition.Graph
	types     typesys.Registry
	classes   *ClassResolver
	arguments DefinitionChecker
	calls     DefinitionChecker
	opts      *options
}

var _ DefinitionChecker = (*ServiceValidator)(nil)

// NewServiceValidator creates a ServiceValidator.
func NewServiceValidator(
	graph definition.Graph,
	types typesys.Registry,
	classes *ClassResolver,
	arguments DefinitionChecker,
	calls DefinitionChecker,
	opts ...Option,
) *ServiceValidator {
	return &ServiceValidator{
		graph:     graph,
		types:     types,
		classes:   classes,
		arguments: arguments,
		calls:     calls,
		opts:      newOptions(opts),
	}
}

// Validate implements [DefinitionChecker].
func (v *ServiceValidator) Validate(def *definition.Definition) error {
	if err := v.ValidateAttributes(def); err != nil {
		return err
	}
	if err := v.arguments.Validate(def); err != nil {
		return err
	}
	return v.calls.Validate(def)
}

// ValidateAttributes checks that the class and factory target exist.
func (v *ServiceValidator) ValidateAttributes(def *definition.Definition) error {
	if err := v.validateClass(def); err != nil {
		return err
	}
	return v.validateFactory(def)
}

func (v *ServiceValidator) validateClass(def *definition.Definition) error {
	class, err := v.classes.Resolve(def)
	if err != nil {
		return err
	}
	if class != "" {
		if !v.types.Exists(class) {
			return v.opts.withSuggestion(classNotFound(class), class, v.types.TypeNames)
		}
		return nil
	}
	if def.Synthetic || def.Abstract {
		return nil
	}
	return definitionHasNoClass()
}

func (v *ServiceValidator) validateFactory(def *definition.Definition) error {
	switch f := def.Factory.(type) {
	case definition.ClassFactory:
		if f.Method == "" {
			return missingFactoryMethod()
		}
		class, err := v.resolve(f.Class)
		if err != nil {
			return err
		}
		return v.validateFactoryClassAndMethod(class, f.Method)

	case definition.ServiceFactory:
		if f.Method == "" {
			return missingFactoryMethod()
		}
		target, ok := v.graph.Lookup(f.Service.ID)
		if !ok {
			return v.opts.withSuggestion(serviceNotFound(f.Service.ID), f.Service.ID, v.graph.IDs)
		}
		class, err := v.classes.Resolve(target)
		if err != nil {
			return err
		}
		if class == "" {
			v.opts.trace("factory service has no class, skipping factory check", "service", f.Service.ID)
			return nil
		}
		return v.validateFactoryClassAndMethod(class, f.Method)

	case definition.InlineFactory:
		if f.Method == "" {
			return missingFactoryMethod()
		}
		class, err := v.classes.Resolve(f.Definition)
		if err != nil {
			return err
		}
		if class == "" {
			v.opts.trace("inline factory has no class, skipping factory check")
			return nil
		}
		return v.validateFactoryClassAndMethod(class, f.Method)
	}
	return nil
}

func (v *ServiceValidator) validateFactoryClassAndMethod(class, method string) error {
	method, err := v.resolve(method)
	if err != nil {
		return err
	}
	typ, ok := v.types.Type(class)
	if !ok {
		return v.opts.withSuggestion(classNotFound(class), class, v.types.TypeNames)
	}
	if _, ok := typ.Method(method); !ok {
		return v.opts.withSuggestion(methodNotFound(class, method), method, typ.MethodNames)
	}
	return nil
}

func (v *ServiceValidator) resolve(s string) (string, error) {
	out, err := v.graph.ResolveString(s)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %q", s)
	}
	return out, nil
}
