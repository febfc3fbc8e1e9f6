package expression

import (
	"encoding/json"
	"reflect"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/thoreinstein/defcheck/internal/errors"
)

// instance is the native payload of an opaque service value.
type instance struct {
	TypeName string
}

var instanceType = cty.Capsule("instance", reflect.TypeOf(instance{}))

// builtinFunctions are available to every expression.
var builtinFunctions = map[string]function.Function{
	"upper":    stdlib.UpperFunc,
	"lower":    stdlib.LowerFunc,
	"coalesce": stdlib.CoalesceFunc,
	"length":   stdlib.LengthFunc,
}

// environmentFunctions depend on the [Environment] and are bound per call.
var environmentFunctions = []string{"parameter", "service"}

// HCL evaluates expressions written in HCL native syntax, for example:
//
//	service("mailer.transport")
//	parameter("debug") ? service("debug_logger") : service("logger")
//	[service("a"), service("b")]
//	coalesce(parameter("region"), "eu-west-1")
type HCL struct{}

var _ Evaluator = HCL{}

// NewHCL returns the HCL evaluator.
func NewHCL() HCL {
	return HCL{}
}

// Functions lists the function names expressions may call, sorted.
func (HCL) Functions() []string {
	names := slices.Clone(environmentFunctions)
	for name := range builtinFunctions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Parse implements [Evaluator].
func (h HCL) Parse(source string) error {
	_, err := h.parse(source)
	return err
}

func (h HCL) parse(source string) (hclsyntax.Expression, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(source), "expression", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, errors.Wrapf(ErrSyntax, "%s", diagnosticSummary(diags))
	}

	for _, traversal := range expr.Variables() {
		if name := traversal.RootName(); name != ContainerVariable {
			return nil, errors.Wrapf(ErrSyntax, "variable %q is not valid; only %q is available", name, ContainerVariable)
		}
	}

	known := h.Functions()
	var unknown string
	hclsyntax.VisitAll(expr, func(node hclsyntax.Node) hcl.Diagnostics {
		if call, ok := node.(*hclsyntax.FunctionCallExpr); ok && unknown == "" {
			if _, found := slices.BinarySearch(known, call.Name); !found {
				unknown = call.Name
			}
		}
		return nil
	})
	if unknown != "" {
		return nil, errors.Wrapf(ErrSyntax, "function %q does not exist", unknown)
	}

	return expr, nil
}

// Evaluate implements [Evaluator].
func (h HCL) Evaluate(source string, env Environment) (Value, error) {
	expr, err := h.parse(source)
	if err != nil {
		return Value{}, err
	}

	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			ContainerVariable: newInstance(env.ContainerType()),
		},
		Functions: map[string]function.Function{
			"service":   serviceFunc(env),
			"parameter": parameterFunc(env),
		},
	}
	for name, fn := range builtinFunctions {
		ctx.Functions[name] = fn
	}

	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return Value{}, errors.Mark(errors.Newf("%s", diagnosticSummary(diags)), ErrEvaluation)
	}
	return classify(val), nil
}

func newInstance(typeName string) cty.Value {
	return cty.CapsuleVal(instanceType, &instance{TypeName: typeName})
}

func serviceFunc(env Environment) function.Function {
	return function.New(&function.Spec{
		Description: "Returns the service registered under id.",
		Params:      []function.Parameter{{Name: "id", Type: cty.String}},
		Type:        function.StaticReturnType(instanceType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			id := args[0].AsString()
			typeName, ok := env.ServiceType(id)
			if !ok {
				return cty.NilVal, errors.Newf("service %q does not exist", id)
			}
			return newInstance(typeName), nil
		},
	})
}

func parameterFunc(env Environment) function.Function {
	return function.New(&function.Spec{
		Description: "Returns the value of a container parameter.",
		Params:      []function.Parameter{{Name: "name", Type: cty.String}},
		Type:        function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			name := args[0].AsString()
			raw, ok := env.Parameter(name)
			if !ok {
				return cty.NilVal, errors.Newf("parameter %q does not exist", name)
			}
			return toCty(raw)
		},
	})
}

// toCty converts a decoded parameter value through its JSON form.
func toCty(v any) (cty.Value, error) {
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return cty.NilVal, errors.Wrap(err, "encoding parameter")
	}
	ty, err := ctyjson.ImpliedType(buf)
	if err != nil {
		return cty.NilVal, errors.Wrap(err, "inferring parameter type")
	}
	val, err := ctyjson.Unmarshal(buf, ty)
	if err != nil {
		return cty.NilVal, errors.Wrap(err, "decoding parameter")
	}
	return val, nil
}

func classify(val cty.Value) Value {
	if val.IsNull() {
		return Value{Kind: KindNull}
	}

	ty := val.Type()
	switch {
	case ty.Equals(instanceType):
		if !val.IsKnown() {
			return Value{Kind: KindObject}
		}
		inst := val.EncapsulatedValue().(*instance)
		return Value{Kind: KindObject, TypeName: inst.TypeName}
	case ty.IsTupleType(), ty.IsListType(), ty.IsSetType(), ty.IsMapType(), ty.IsObjectType():
		return Value{Kind: KindArray}
	default:
		return Value{Kind: KindScalar, TypeName: ty.FriendlyName()}
	}
}

// diagnosticSummary flattens error diagnostics into one line, without
// source positions.
func diagnosticSummary(diags hcl.Diagnostics) string {
	var parts []string
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		msg := d.Summary
		if d.Detail != "" {
			msg += ": " + d.Detail
		}
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; ")
}
