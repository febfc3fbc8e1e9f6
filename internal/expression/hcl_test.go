package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/defcheck/internal/errors"
)

type fakeEnv struct {
	container  string
	services   map[string]string
	parameters map[string]any
}

func (e fakeEnv) ContainerType() string { return e.container }

func (e fakeEnv) ServiceType(id string) (string, bool) {
	t, ok := e.services[id]
	return t, ok
}

func (e fakeEnv) Parameter(name string) (any, bool) {
	v, ok := e.parameters[name]
	return v, ok
}

func testEnv() fakeEnv {
	return fakeEnv{
		container: "AppContainer",
		services: map[string]string{
			"logger":  "FileLogger",
			"dynamic": "",
		},
		parameters: map[string]any{
			"debug":  true,
			"region": nil,
			"hosts":  []any{"a", "b"},
			"name":   "app",
		},
	}
}

func TestHCL_Parse(t *testing.T) {
	h := NewHCL()

	tests := []struct {
		name    string
		source  string
		wantErr bool
	}{
		{"service call", `service("logger")`, false},
		{"container variable", `container`, false},
		{"conditional", `parameter("debug") ? service("logger") : null`, false},
		{"tuple", `[service("logger"), "x"]`, false},
		{"builtin", `upper(parameter("name"))`, false},
		{"unbalanced", `service("logger"`, true},
		{"garbage", `@@@`, true},
		{"unknown variable", `logger`, true},
		{"unknown variable in traversal", `foo.bar`, true},
		{"unknown function", `make("logger")`, true},
		{"unknown nested function", `[service("a"), nope()]`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Parse(tt.source)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrSyntax), "error %v should wrap ErrSyntax", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHCL_Evaluate(t *testing.T) {
	h := NewHCL()
	env := testEnv()

	tests := []struct {
		name   string
		source string
		want   Value
	}{
		{"service", `service("logger")`, Value{Kind: KindObject, TypeName: "FileLogger"}},
		{"service of unknown type", `service("dynamic")`, Value{Kind: KindObject}},
		{"container", `container`, Value{Kind: KindObject, TypeName: "AppContainer"}},
		{"null literal", `null`, Value{Kind: KindNull}},
		{"null parameter", `parameter("region")`, Value{Kind: KindNull}},
		{"list parameter", `parameter("hosts")`, Value{Kind: KindArray}},
		{"tuple literal", `[1, 2]`, Value{Kind: KindArray}},
		{"object literal", `{ a = 1 }`, Value{Kind: KindArray}},
		{"string", `"x"`, Value{Kind: KindScalar, TypeName: "string"}},
		{"upper", `upper(parameter("name"))`, Value{Kind: KindScalar, TypeName: "string"}},
		{"length", `length(parameter("hosts"))`, Value{Kind: KindScalar, TypeName: "number"}},
		{"conditional object", `parameter("debug") ? service("logger") : null`, Value{Kind: KindObject, TypeName: "FileLogger"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.Evaluate(tt.source, env)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHCL_EvaluateErrors(t *testing.T) {
	h := NewHCL()
	env := testEnv()

	tests := []struct {
		name    string
		source  string
		wantErr error
	}{
		{"missing service", `service("mailer")`, ErrEvaluation},
		{"missing parameter", `parameter("nope")`, ErrEvaluation},
		{"attribute of instance", `container.logger`, ErrEvaluation},
		{"wrong argument type", `upper(service("logger"))`, ErrEvaluation},
		{"syntax", `service(`, ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Evaluate(tt.source, env)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "error %v should wrap %v", err, tt.wantErr)
		})
	}

	t.Run("message names the service", func(t *testing.T) {
		_, err := h.Evaluate(`service("mailer")`, env)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `service "mailer" does not exist`)
	})
}

func TestHCL_Functions(t *testing.T) {
	want := []string{"coalesce", "length", "lower", "parameter", "service", "upper"}
	assert.Equal(t, want, NewHCL().Functions())
}

func TestValueKind_String(t *testing.T) {
	assert.Equal(t, "null", KindNull.String())
	assert.Equal(t, "object", KindObject.String())
	assert.Equal(t, "array", KindArray.String())
	assert.Equal(t, "scalar", KindScalar.String())
}
