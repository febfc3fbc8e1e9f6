package check

import (
	"fmt"
	"strings"

	"github.com/thoreinstein/defcheck/internal/errors"
	"github.com/thoreinstein/defcheck/internal/expression"
)

// Kind names a validation failure category.
type Kind string

const (
	KindClassNotFound               Kind = "ClassNotFound"
	KindMethodNotFound              Kind = "MethodNotFound"
	KindFunctionNotFound            Kind = "FunctionNotFound"
	KindDefinitionHasNoClass        Kind = "DefinitionHasNoClass"
	KindNonPublicConstructor        Kind = "NonPublicConstructor"
	KindNonStaticFactoryMethod      Kind = "NonStaticFactoryMethod"
	KindMissingFactoryMethod        Kind = "MissingFactoryMethod"
	KindServiceNotFound             Kind = "ServiceNotFound"
	KindMissingRequiredArgument     Kind = "MissingRequiredArgument"
	KindTypeHintMismatch            Kind = "TypeHintMismatch"
	KindInvalidExpressionSyntax     Kind = "InvalidExpressionSyntax"
	KindInvalidExpressionEvaluation Kind = "InvalidExpressionEvaluation"
)

// Sentinel errors, one per [Kind]. A [*DefinitionError] matches its
// sentinel with errors.Is.
var (
	ErrClassNotFound               = errors.New("class not found")
	ErrMethodNotFound              = errors.New("method not found")
	ErrFunctionNotFound            = errors.New("function not found")
	ErrDefinitionHasNoClass        = errors.New("definition has no class")
	ErrNonPublicConstructor        = errors.New("non-public constructor")
	ErrNonStaticFactoryMethod      = errors.New("non-static factory method")
	ErrMissingFactoryMethod        = errors.New("missing factory method")
	ErrServiceNotFound             = errors.New("service not found")
	ErrMissingRequiredArgument     = errors.New("missing required argument")
	ErrTypeHintMismatch            = errors.New("type-hint mismatch")
	ErrInvalidExpressionSyntax     = errors.New("invalid expression syntax")
	ErrInvalidExpressionEvaluation = errors.New("invalid expression evaluation")
)

var sentinels = map[Kind]error{
	KindClassNotFound:               ErrClassNotFound,
	KindMethodNotFound:              ErrMethodNotFound,
	KindFunctionNotFound:            ErrFunctionNotFound,
	KindDefinitionHasNoClass:        ErrDefinitionHasNoClass,
	KindNonPublicConstructor:        ErrNonPublicConstructor,
	KindNonStaticFactoryMethod:      ErrNonStaticFactoryMethod,
	KindMissingFactoryMethod:        ErrMissingFactoryMethod,
	KindServiceNotFound:             ErrServiceNotFound,
	KindMissingRequiredArgument:     ErrMissingRequiredArgument,
	KindTypeHintMismatch:            ErrTypeHintMismatch,
	KindInvalidExpressionSyntax:     ErrInvalidExpressionSyntax,
	KindInvalidExpressionEvaluation: ErrInvalidExpressionEvaluation,
}

// DefinitionError is a recognized validation failure of one definition.
// Any other error returned by a validator is a fault that aborts a batch.
type DefinitionError struct {
	Kind    Kind
	Message string
	// Cause is the underlying fault, if any.
	Cause error
}

func (e *DefinitionError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *DefinitionError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel of the error's kind.
func (e *DefinitionError) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// ErrorKind returns the kind name, for reporters.
func (e *DefinitionError) ErrorKind() string {
	return string(e.Kind)
}

// IsDefinitionError reports whether err carries a [*DefinitionError].
func IsDefinitionError(err error) bool {
	var de *DefinitionError
	return errors.As(err, &de)
}

func newError(kind Kind, format string, args ...any) *DefinitionError {
	return &DefinitionError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func classNotFound(class string) error {
	return newError(KindClassNotFound, `Class "%s" does not exist`, class)
}

func methodNotFound(class, method string) error {
	return newError(KindMethodNotFound, `Method "%s::%s" does not exist`, class, method)
}

func functionNotFound(name string) error {
	return newError(KindFunctionNotFound, `Function "%s" does not exist`, name)
}

func definitionHasNoClass() error {
	return newError(KindDefinitionHasNoClass, "Definition has no class")
}

func nonPublicConstructor(class string) error {
	return newError(KindNonPublicConstructor, `Class "%s" has no public constructor`, class)
}

func nonStaticFactoryMethod(class, method string) error {
	return newError(KindNonStaticFactoryMethod, `Factory method "%s::%s" is not static`, class, method)
}

func missingFactoryMethod() error {
	return newError(KindMissingFactoryMethod, "The factory method name is missing")
}

func serviceNotFound(id string) error {
	return newError(KindServiceNotFound, `Service "%s" does not exist`, id)
}

func missingRequiredArgument(class, parameter string) error {
	return newError(KindMissingRequiredArgument, "Definition for class %s has no argument for required parameter %s", class, parameter)
}

func typeHintMismatch(format string, args ...any) error {
	return newError(KindTypeHintMismatch, format, args...)
}

func invalidExpressionSyntax(source string, cause error) error {
	e := newError(KindInvalidExpressionSyntax, `The syntax of expression "%s" is invalid: %s`, source, causeMessage(cause))
	e.Cause = cause
	return e
}

func invalidExpressionEvaluation(source string, cause error) error {
	e := newError(KindInvalidExpressionEvaluation, `Expression "%s" could not be evaluated: %s`, source, causeMessage(cause))
	e.Cause = cause
	return e
}

// causeMessage drops the sentinel suffix added by the expression package.
func causeMessage(err error) string {
	msg := err.Error()
	msg = strings.TrimSuffix(msg, ": "+expression.ErrSyntax.Error())
	return strings.TrimSuffix(msg, ": "+expression.ErrEvaluation.Error())
}
