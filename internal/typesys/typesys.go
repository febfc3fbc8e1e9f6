// Package typesys describes the types, constructors, methods and functions
// that service definitions refer to.
//
// The definition checker only talks to the [Registry] capability, so it can
// run against a declarative [Catalog] loaded from files, against real Go
// types through [ReflectRegistry], or against synthetic metadata in tests.
package typesys

import (
	"strings"
)

// Kind distinguishes classes from interfaces.
type Kind int

const (
	// KindClass is a concrete, constructible type.
	KindClass Kind = iota
	// KindInterface is an abstract contract.
	KindInterface
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	default:
		return "unknown"
	}
}

// HintKind classifies a parameter's declared type.
type HintKind int

const (
	// HintNone means the declared type is absent or not checkable
	// (scalars, unions, mixed).
	HintNone HintKind = iota
	// HintArray means the parameter expects an array.
	HintArray
	// HintNamed means the parameter expects an instance of a named type.
	HintNamed
)

// TypeHint is the declared type of a parameter.
type TypeHint struct {
	Kind HintKind
	Name string
}

func (h TypeHint) String() string {
	switch h.Kind {
	case HintArray:
		return "array"
	case HintNamed:
		return h.Name
	default:
		return ""
	}
}

// Parameter is the metadata of one callable parameter.
type Parameter struct {
	Name     string
	Position int
	Hint     TypeHint

	// Optional is set for variadic parameters and parameters that may be
	// omitted for other reasons.
	Optional bool
	// Nullable means null is an acceptable argument.
	Nullable bool
	// HasDefault means a default value is declared.
	HasDefault bool
}

// MayBeOmitted reports whether the parameter needs no argument.
func (p Parameter) MayBeOmitted() bool {
	return p.Optional || p.HasDefault || p.Nullable
}

// Callable is a constructor, method, or function that can be introspected.
type Callable interface {
	Name() string
	// DeclaringType is empty for free functions.
	DeclaringType() string
	// Static reports whether the callable can be invoked without an instance.
	Static() bool
	Public() bool
	Parameters() []Parameter
}

// Type is a class or interface.
type Type interface {
	Name() string
	Kind() Kind
	// Constructor returns the constructor, if the type declares or inherits one.
	Constructor() (Callable, bool)
	// Method returns a declared or inherited method.
	Method(name string) (Callable, bool)
	// MethodNames lists the callable methods, sorted.
	MethodNames() []string
}

// Registry answers existence and subtype questions about types.
type Registry interface {
	// Exists reports whether name is a known class or interface.
	Exists(name string) bool
	// IsSubtype reports whether sub equals super or extends/implements it,
	// directly or transitively.
	IsSubtype(sub, super string) bool
	// Supertypes lists the types name extends or implements, directly or
	// transitively. complete is false when the registry cannot vouch for
	// the whole ancestry, e.g. a parent it does not know.
	Supertypes(name string) (names []string, complete bool)
	Type(name string) (Type, bool)
	Function(name string) (Callable, bool)
	// TypeNames lists every known type name, sorted.
	TypeNames() []string
	// FunctionNames lists every known function name, sorted.
	FunctionNames() []string
}

// scalarHints are declared types the checker cannot verify.
var scalarHints = map[string]bool{
	"":         true,
	"mixed":    true,
	"string":   true,
	"int":      true,
	"integer":  true,
	"float":    true,
	"double":   true,
	"bool":     true,
	"boolean":  true,
	"callable": true,
	"iterable": true,
	"object":   true,
	"resource": true,
	"any":      true,
}

// ParseHint parses a declared type string: "array", "Name", "?Name",
// "Name|null". Unions of several non-null types are not checkable and
// yield HintNone. The second result reports whether null is allowed.
func ParseHint(s string) (TypeHint, bool) {
	s = strings.TrimSpace(s)
	nullable := false
	if strings.HasPrefix(s, "?") {
		nullable = true
		s = s[1:]
	}

	var parts []string
	for _, p := range strings.Split(s, "|") {
		p = strings.TrimSpace(p)
		if strings.EqualFold(p, "null") {
			nullable = true
			continue
		}
		parts = append(parts, p)
	}

	if len(parts) != 1 {
		return TypeHint{Kind: HintNone}, nullable
	}

	name := parts[0]
	switch {
	case strings.EqualFold(name, "array"):
		return TypeHint{Kind: HintArray}, nullable
	case scalarHints[strings.ToLower(name)]:
		return TypeHint{Kind: HintNone}, nullable
	default:
		return TypeHint{Kind: HintNamed, Name: name}, nullable
	}
}
