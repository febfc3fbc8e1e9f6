package check

import (
	"github.com/thoreinstein/defcheck/internal/definition"
	"github.com/thoreinstein/defcheck/internal/errors"
	"github.com/thoreinstein/defcheck/internal/typesys"
)

// DefinitionChecker validates one aspect of a definition.
type DefinitionChecker interface {
	Validate(def *definition.Definition) error
}

// DefinitionArgumentsValidator checks the arguments a definition passes to
// its constructor or factory.
type DefinitionArgumentsValidator struct {
	constructors *ConstructorResolver
	arguments    ArgumentsChecker
}

var _ DefinitionChecker = (*DefinitionArgumentsValidator)(nil)

// NewDefinitionArgumentsValidator creates a DefinitionArgumentsValidator.
func NewDefinitionArgumentsValidator(constructors *ConstructorResolver, arguments ArgumentsChecker) *DefinitionArgumentsValidator {
	return &DefinitionArgumentsValidator{
		constructors: constructors,
		arguments:    arguments,
	}
}

// Validate implements [DefinitionChecker]. Abstract and synthetic
// definitions are never constructed and are skipped.
func (v *DefinitionArgumentsValidator) Validate(def *definition.Definition) error {
	if def.Abstract || def.Synthetic {
		return nil
	}

	callable, err := v.constructors.Resolve(def)
	if err != nil {
		return err
	}
	if callable == nil {
		return nil
	}
	return v.arguments.Validate(callable, def.Arguments)
}

// MethodCallsValidator checks the methods called on an instance after
// construction.
type MethodCallsValidator struct {
	types     typesys.Registry
	classes   *ClassResolver
	arguments ArgumentsChecker
	opts      *options
}

var _ DefinitionChecker = (*MethodCallsValidator)(nil)

// NewMethodCallsValidator creates a MethodCallsValidator.
func NewMethodCallsValidator(types typesys.Registry, classes *ClassResolver, arguments ArgumentsChecker, opts ...Option) *MethodCallsValidator {
	return &MethodCallsValidator{
		types:     types,
		classes:   classes,
		arguments: arguments,
		opts:      newOptions(opts),
	}
}

// Validate implements [DefinitionChecker]. Calls on a definition whose class
// cannot be resolved are not checked.
func (v *MethodCallsValidator) Validate(def *definition.Definition) error {
	if len(def.Calls) == 0 {
		return nil
	}

	class, err := v.classes.Resolve(def)
	if err != nil {
		return err
	}
	if class == "" {
		v.opts.trace("class unknown, skipping method calls", "calls", len(def.Calls))
		return nil
	}

	typ, ok := v.types.Type(class)
	if !ok {
		return v.opts.withSuggestion(classNotFound(class), class, v.types.TypeNames)
	}

	for _, call := range def.Calls {
		method, err := v.classes.graph.ResolveString(call.Method)
		if err != nil {
			return errors.Wrapf(err, "resolving method %q", call.Method)
		}
		m, ok := typ.Method(method)
		if !ok {
			return v.opts.withSuggestion(methodNotFound(class, method), method, typ.MethodNames)
		}
		if err := v.arguments.Validate(m, call.Arguments); err != nil {
			return err
		}
	}
	return nil
}
