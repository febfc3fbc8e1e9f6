package check

import (
	"github.com/thoreinstein/defcheck/internal/definition"
	"github.com/thoreinstein/defcheck/internal/errors"
	"github.com/thoreinstein/defcheck/internal/expression"
	"github.com/thoreinstein/defcheck/internal/typesys"
)

// ArgumentChecker checks one argument against one parameter.
type ArgumentChecker interface {
	Validate(param typesys.Parameter, arg any) error
}

// ArgumentValidator checks an argument value against a parameter's
// declared type. Parameters without a checkable type always pass.
type ArgumentValidator struct {
	graph   definition.Graph
	types   typesys.Registry
	classes *ClassResolver
	opts    *options
}

var _ ArgumentChecker = (*ArgumentValidator)(nil)

// NewArgumentValidator creates an ArgumentValidator.
func NewArgumentValidator(graph definition.Graph, types typesys.Registry, classes *ClassResolver, opts ...Option) *ArgumentValidator {
	return &ArgumentValidator{
		graph:   graph,
		types:   types,
		classes: classes,
		opts:    newOptions(opts),
	}
}

// Validate implements [ArgumentChecker].
func (v *ArgumentValidator) Validate(param typesys.Parameter, arg any) error {
	switch param.Hint.Kind {
	case typesys.HintArray:
		return v.validateArray(param, arg)
	case typesys.HintNamed:
		return v.validateObject(param.Hint.Name, param.Nullable, arg)
	default:
		return nil
	}
}

func (v *ArgumentValidator) validateArray(param typesys.Parameter, arg any) error {
	switch a := arg.(type) {
	case nil:
		if param.Nullable {
			return nil
		}
	case definition.Expression:
		return v.validateArrayExpression(a, param.Nullable)
	default:
		if definition.IsArray(arg) {
			return nil
		}
	}
	return typeHintMismatch(`Argument of type "%s" should have been an array`, definition.TypeOf(arg))
}

func (v *ArgumentValidator) validateArrayExpression(expr definition.Expression, nullable bool) error {
	result, ok, err := v.expression(expr)
	if err != nil || !ok {
		return err
	}

	switch result.Kind {
	case expression.KindArray:
		return nil
	case expression.KindNull:
		if nullable {
			return nil
		}
		return typeHintMismatch(`Argument for type-hint "array" is an expression that evaluates to null, which is not allowed`)
	default:
		return typeHintMismatch(`Argument of type "%s" should have been an array`, result.Kind)
	}
}

func (v *ArgumentValidator) validateObject(class string, nullable bool, arg any) error {
	switch a := arg.(type) {
	case definition.Reference:
		return v.validateReference(class, a)
	case *definition.Definition:
		return v.validateDefinition(class, a)
	case definition.Expression:
		return v.validateObjectExpression(class, a, nullable)
	case nil:
		if nullable {
			return nil
		}
	}
	return typeHintMismatch(`Type-hint "%s" requires this argument to be a reference to a service or an inline service definition`, class)
}

func (v *ArgumentValidator) validateReference(class string, ref definition.Reference) error {
	target, ok := v.graph.Lookup(ref.ID)
	if !ok {
		if ref.Optional {
			v.opts.trace("optional reference target missing, skipping", "reference", ref.String())
			return nil
		}
		return v.opts.withSuggestion(serviceNotFound(ref.ID), ref.ID, v.graph.IDs)
	}
	return v.validateDefinition(class, target)
}

func (v *ArgumentValidator) validateDefinition(class string, def *definition.Definition) error {
	actual, err := v.classes.Resolve(def)
	if err != nil {
		return err
	}
	if actual == "" {
		v.opts.trace("argument type cannot be resolved, accepting", "type_hint", class)
		return nil
	}
	return v.validateClass(class, actual)
}

func (v *ArgumentValidator) validateObjectExpression(class string, expr definition.Expression, nullable bool) error {
	result, ok, err := v.expression(expr)
	if err != nil || !ok {
		return err
	}

	switch result.Kind {
	case expression.KindNull:
		if nullable {
			return nil
		}
		return typeHintMismatch(`Argument for type-hint "%s" is an expression that evaluates to null, which is not allowed`, class)
	case expression.KindObject:
		if result.TypeName == "" {
			v.opts.trace("expression result type unknown, accepting", "expression", expr.Source)
			return nil
		}
		return v.validateClass(class, result.TypeName)
	default:
		return typeHintMismatch(`Argument for type-hint "%s" is an expression that evaluates to a non-object`, class)
	}
}

// expression checks syntax and, when evaluation is enabled, evaluates.
// ok is false when only the syntax was checked.
func (v *ArgumentValidator) expression(expr definition.Expression) (expression.Value, bool, error) {
	if err := v.opts.evaluator.Parse(expr.Source); err != nil {
		if errors.Is(err, expression.ErrSyntax) {
			return expression.Value{}, false, invalidExpressionSyntax(expr.Source, err)
		}
		return expression.Value{}, false, err
	}
	if !v.opts.evaluateExpressions {
		return expression.Value{}, false, nil
	}

	result, err := v.opts.evaluator.Evaluate(expr.Source, &graphEnvironment{graph: v.graph, classes: v.classes})
	if err != nil {
		if errors.Is(err, expression.ErrSyntax) {
			return expression.Value{}, false, invalidExpressionSyntax(expr.Source, err)
		}
		return expression.Value{}, false, invalidExpressionEvaluation(expr.Source, err)
	}
	return result, true, nil
}

// validateClass requires actual to be expected or one of its subtypes.
// An actual type unknown to the registry cannot be verified and is
// accepted. An unknown expected type is accepted only when the ancestry
// of actual is not fully known, since it may be reached there.
func (v *ArgumentValidator) validateClass(expected, actual string) error {
	if expected == actual {
		return nil
	}
	if !v.types.Exists(actual) {
		v.opts.trace("class unknown to the registry, accepting", "type_hint", expected, "class", actual)
		return nil
	}
	if v.types.IsSubtype(actual, expected) {
		return nil
	}
	if !v.types.Exists(expected) {
		if _, complete := v.types.Supertypes(actual); !complete {
			v.opts.trace("type hint unknown and ancestry incomplete, accepting", "type_hint", expected, "class", actual)
			return nil
		}
	}
	return typeHintMismatch(`Argument for type-hint "%s" points to a service of class "%s"`, expected, actual)
}

// graphEnvironment exposes the graph to expressions.
type graphEnvironment struct {
	graph   definition.Graph
	classes *ClassResolver
}

func (e *graphEnvironment) ContainerType() string {
	return e.graph.ContainerClass()
}

func (e *graphEnvironment) ServiceType(id string) (string, bool) {
	def, ok := e.graph.Lookup(id)
	if !ok {
		return "", false
	}
	class, err := e.classes.Resolve(def)
	if err != nil {
		return "", true
	}
	return class, true
}

func (e *graphEnvironment) Parameter(name string) (any, bool) {
	return e.graph.Parameter(name)
}

// ArgumentsChecker checks an argument list against a callable.
type ArgumentsChecker interface {
	Validate(callable typesys.Callable, args []definition.Argument) error
}

// ArgumentsValidator aligns supplied arguments with a callable's parameters.
type ArgumentsValidator struct {
	argument ArgumentChecker
}

var _ ArgumentsChecker = (*ArgumentsValidator)(nil)

// NewArgumentsValidator creates an ArgumentsValidator.
func NewArgumentsValidator(argument ArgumentChecker) *ArgumentsValidator {
	return &ArgumentsValidator{argument: argument}
}

// Validate implements [ArgumentsChecker]. Arguments are normalized with
// [definition.Positional]; a parameter without an argument must be
// optional, have a default, or accept null.
func (v *ArgumentsValidator) Validate(callable typesys.Callable, args []definition.Argument) error {
	positional := definition.Positional(args)
	for i, param := range callable.Parameters() {
		if arg, ok := positional[i]; ok {
			if err := v.argument.Validate(param, arg); err != nil {
				return err
			}
			continue
		}
		if !param.MayBeOmitted() {
			owner := callable.DeclaringType()
			if owner == "" {
				owner = callable.Name()
			}
			return missingRequiredArgument(owner, param.Name)
		}
	}
	return nil
}
