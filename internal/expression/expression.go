// Package expression checks and evaluates the expressions embedded in
// service definition arguments.
//
// Expressions are bound to a single implicit variable, "container", and may
// look up services and parameters through functions. Evaluation never
// builds real services: services evaluate to opaque instances that carry
// only their type name.
package expression

import (
	"github.com/thoreinstein/defcheck/internal/errors"
)

// ContainerVariable is the only variable an expression may reference.
const ContainerVariable = "container"

// Sentinel errors returned by [Evaluator] implementations.
var (
	// ErrSyntax indicates an expression that cannot be parsed or that
	// references unknown names.
	ErrSyntax = errors.New("expression syntax error")

	// ErrEvaluation indicates an expression that parsed but failed to evaluate.
	ErrEvaluation = errors.New("expression evaluation failed")
)

// ValueKind classifies an evaluation result.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindObject
	KindArray
	KindScalar
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindScalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// Value is the shape of an evaluation result.
type Value struct {
	Kind ValueKind
	// TypeName is the type of an object. For scalars it names the scalar
	// type. Empty for null and arrays.
	TypeName string
}

// Environment is what an expression can see while it is evaluated.
type Environment interface {
	// ContainerType is the type of the "container" variable.
	ContainerType() string
	// ServiceType returns the resolved type of the service registered under
	// id. The type is empty when the service exists but its type cannot be
	// determined.
	ServiceType(id string) (string, bool)
	// Parameter returns a raw parameter value.
	Parameter(name string) (any, bool)
}

// Evaluator parses and evaluates expressions.
type Evaluator interface {
	// Parse checks syntax and name usage without evaluating.
	Parse(source string) error
	// Evaluate parses and evaluates source. Syntax failures wrap
	// [ErrSyntax]; evaluation failures wrap [ErrEvaluation].
	Evaluate(source string, env Environment) (Value, error)
}
