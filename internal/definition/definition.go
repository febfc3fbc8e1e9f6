// Package definition models service definitions: declarative recipes for
// constructing application components, and the graph that holds them.
//
// A [Definition] is never instantiated by this package or its consumers.
// Validation reads definitions through the [Graph] interface and never
// mutates them.
package definition

import (
	"strconv"
)

// ServiceContainerID is the well-known id that refers to the container itself.
const ServiceContainerID = "service_container"

// DefaultContainerClass is the root container type used when none is configured.
const DefaultContainerClass = "Container"

// Definition is the recipe for one service.
type Definition struct {
	// Class is the type the service resolves to. It may contain %parameter%
	// placeholders. Empty for synthetic, abstract, or factory-only definitions.
	Class string

	// Factory is an alternate construction strategy; nil means the class
	// constructor is used.
	Factory Factory

	// Arguments are passed to the constructor or factory.
	Arguments []Argument

	// Calls are post-construction method calls, in order.
	Calls []MethodCall

	// Abstract marks a template definition that is never instantiated.
	Abstract bool

	// Synthetic marks a definition whose instance is supplied externally.
	Synthetic bool
}

// MethodCall is a method invoked on the instance after construction.
type MethodCall struct {
	Method    string
	Arguments []Argument
}

// Argument is one supplied argument.
//
// Key is empty for plain positional arguments. A key that parses as a
// non-negative integer is an explicit position. Any other key is a name,
// kept for legacy keyed argument maps.
type Argument struct {
	Key   string
	Value any
}

// Reference points at another definition by id.
type Reference struct {
	ID string

	// Optional references are ignored when the target does not exist.
	Optional bool
}

func (r Reference) String() string {
	if r.Optional {
		return "@?" + r.ID
	}
	return "@" + r.ID
}

// Expression is an embedded expression bound to the implicit variable
// "container".
type Expression struct {
	Source string
}

func (e Expression) String() string {
	return e.Source
}

// Args builds a positional argument list.
func Args(values ...any) []Argument {
	args := make([]Argument, len(values))
	for i, v := range values {
		args[i] = Argument{Value: v}
	}
	return args
}

// Positional normalizes an argument list to a position → value map.
//
// Entries without a key, and named entries, take the next free position in
// insertion order. Integer keys claim that exact position. The named case is
// a compatibility shim for legacy keyed maps: the order the keys were
// written in becomes the positional order.
func Positional(args []Argument) map[int]any {
	out := make(map[int]any, len(args))
	next := 0
	for _, arg := range args {
		pos := next
		if idx, ok := explicitIndex(arg.Key); ok {
			pos = idx
		}
		out[pos] = arg.Value
		if pos >= next {
			next = pos + 1
		}
	}
	return out
}

func explicitIndex(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	idx, err := strconv.Atoi(key)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// IsArray reports whether v is an array-like argument value.
func IsArray(v any) bool {
	switch v.(type) {
	case []any, map[string]any, []string, []int, []float64, []bool, map[any]any:
		return true
	default:
		return false
	}
}

// TypeOf describes the kind of an argument value for error messages.
func TypeOf(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case Reference:
		return "reference"
	case *Definition:
		return "definition"
	case Expression:
		return "expression"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case float32, float64:
		return "double"
	default:
		if IsArray(v) {
			return "array"
		}
		return "object"
	}
}
