// Package check statically validates service definitions against a type
// registry without constructing any service.
//
// The components mirror the validation steps and can be used on their own:
//
//   - [ClassResolver] resolves the class a definition produces.
//   - [ConstructorResolver] finds the callable that builds a definition.
//   - [ArgumentValidator] checks one argument against one parameter.
//   - [ArgumentsValidator] aligns an argument list with a callable.
//   - [DefinitionArgumentsValidator] checks constructor or factory arguments.
//   - [MethodCallsValidator] checks post-construction method calls.
//   - [ServiceValidator] runs every check for one definition, fail-fast.
//   - [BatchValidator] validates a whole graph and isolates failures per id.
//
// [New] wires them together. Recognized failures are [*DefinitionError]
// values; any other error is a fault that aborts a batch.
package check

import (
	"context"
	"log/slog"

	"github.com/thoreinstein/defcheck/internal/definition"
	"github.com/thoreinstein/defcheck/internal/expression"
	"github.com/thoreinstein/defcheck/internal/logging"
	"github.com/thoreinstein/defcheck/internal/typesys"
)

// Option configures the validators.
type Option func(*options)

type options struct {
	evaluateExpressions bool
	evaluator           expression.Evaluator
	logger              *slog.Logger
	suggestions         bool
}

func newOptions(opts []Option) *options {
	o := &options{
		evaluator:   expression.NewHCL(),
		logger:      logging.NewDiscard(),
		suggestions: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithEvaluateExpressions makes the validators evaluate expression
// arguments and check the result type, instead of only checking syntax.
func WithEvaluateExpressions(enabled bool) Option {
	return func(o *options) {
		o.evaluateExpressions = enabled
	}
}

// WithEvaluator replaces the default HCL expression evaluator.
func WithEvaluator(e expression.Evaluator) Option {
	return func(o *options) {
		if e != nil {
			o.evaluator = e
		}
	}
}

// WithLogger sets the logger for debug and trace output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSuggestions toggles "did you mean" hints on not-found errors.
func WithSuggestions(enabled bool) Option {
	return func(o *options) {
		o.suggestions = enabled
	}
}

func (o *options) trace(msg string, args ...any) {
	o.logger.Log(context.Background(), logging.LevelTrace, msg, args...)
}

// New assembles a [BatchValidator] and every component it depends on.
func New(graph definition.Graph, types typesys.Registry, opts ...Option) *BatchValidator {
	classes := NewClassResolver(graph)
	constructors := NewConstructorResolver(graph, types, classes, opts...)
	argument := NewArgumentValidator(graph, types, classes, opts...)
	arguments := NewArgumentsValidator(argument)
	service := NewServiceValidator(
		graph,
		types,
		classes,
		NewDefinitionArgumentsValidator(constructors, arguments),
		NewMethodCallsValidator(types, classes, arguments, opts...),
		opts...,
	)
	return NewBatchValidator(graph, service, opts...)
}
