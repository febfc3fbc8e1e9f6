package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/defcheck/internal/definition"
	"github.com/thoreinstein/defcheck/internal/typesys"
)

type mockArgumentChecker struct {
	mock.Mock
}

func (m *mockArgumentChecker) Validate(param typesys.Parameter, arg any) error {
	args := m.Called(param, arg)
	return args.Error(0)
}

func namedParam(class string, nullable bool) typesys.Parameter {
	return typesys.Parameter{
		Name:     "arg",
		Hint:     typesys.TypeHint{Kind: typesys.HintNamed, Name: class},
		Nullable: nullable,
	}
}

func arrayParam(nullable bool) typesys.Parameter {
	return typesys.Parameter{
		Name:     "arg",
		Hint:     typesys.TypeHint{Kind: typesys.HintArray},
		Nullable: nullable,
	}
}

func TestArgumentValidator_Validate(t *testing.T) {
	graph := testGraph()
	graph.Register("external", &definition.Definition{Class: "Vendor\\Client"})
	graph.Register("cache", &definition.Definition{Class: "CacheAdapter"})
	types := testTypes().AddClass("CacheAdapter", typesys.TypeSpec{Implements: []string{"Vendor\\CacheInterface"}})
	validator := NewArgumentValidator(graph, types, NewClassResolver(graph), testOptions(t)...)

	tests := []struct {
		name    string
		param   typesys.Parameter
		arg     any
		wantErr error
		wantMsg string
	}{
		{name: "untyped accepts anything", param: typesys.Parameter{Name: "x"}, arg: 42},
		{name: "untyped accepts reference", param: typesys.Parameter{Name: "x"}, arg: ref("nope")},

		{name: "array list", param: arrayParam(false), arg: []any{1, 2}},
		{name: "array map", param: arrayParam(false), arg: map[string]any{"k": "v"}},
		{name: "array null nullable", param: arrayParam(true), arg: nil},
		{
			name: "array null", param: arrayParam(false), arg: nil,
			wantErr: ErrTypeHintMismatch, wantMsg: `Argument of type "null" should have been an array`,
		},
		{
			name: "array string", param: arrayParam(false), arg: "a",
			wantErr: ErrTypeHintMismatch, wantMsg: `Argument of type "string" should have been an array`,
		},
		{name: "array expression unchecked", param: arrayParam(false), arg: expr(`["a"]`)},

		{name: "reference to implementation", param: namedParam("Logger", false), arg: ref("logger")},
		{name: "reference through alias", param: namedParam("Logger", false), arg: ref("app.logger")},
		{name: "reference to exact class", param: namedParam("PlainObject", false), arg: ref("plain")},
		{
			name: "reference to unrelated class", param: namedParam("Logger", false), arg: ref("plain"),
			wantErr: ErrTypeHintMismatch, wantMsg: `Argument for type-hint "Logger" points to a service of class "PlainObject"`,
		},
		{
			name: "reference to missing service", param: namedParam("Logger", false), arg: ref("nope"),
			wantErr: ErrServiceNotFound, wantMsg: `Service "nope" does not exist`,
		},
		{name: "optional reference to missing service", param: namedParam("Logger", false), arg: definition.Reference{ID: "nope", Optional: true}},
		{name: "reference to service without class", param: namedParam("Logger", false), arg: ref("dynamic")},
		{name: "reference to class unknown to registry", param: namedParam("Logger", false), arg: ref("external")},
		{
			name: "hint unknown to registry, class fully known", param: namedParam("Vendor\\Cache", false), arg: ref("plain"),
			wantErr: ErrTypeHintMismatch, wantMsg: `Argument for type-hint "Vendor\Cache" points to a service of class "PlainObject"`,
		},
		{name: "hint unknown to registry, implemented directly", param: namedParam("Vendor\\CacheInterface", false), arg: ref("cache")},
		{name: "hint unknown to registry, ancestry reaches unknown type", param: namedParam("Vendor\\Cache", false), arg: ref("cache")},
		{name: "container reference", param: namedParam("AppContainer", false), arg: ref(definition.ServiceContainerID)},

		{name: "inline implementation", param: namedParam("Logger", false), arg: &definition.Definition{Class: "FileLogger"}},
		{
			name: "inline unrelated", param: namedParam("Logger", false), arg: &definition.Definition{Class: "PlainObject"},
			wantErr: ErrTypeHintMismatch,
		},
		{name: "inline without class", param: namedParam("Logger", false), arg: &definition.Definition{}},

		{name: "null nullable", param: namedParam("Logger", true), arg: nil},
		{
			name: "null", param: namedParam("Logger", false), arg: nil,
			wantErr: ErrTypeHintMismatch,
			wantMsg: `Type-hint "Logger" requires this argument to be a reference to a service or an inline service definition`,
		},
		{
			name: "scalar", param: namedParam("Logger", true), arg: "file.log",
			wantErr: ErrTypeHintMismatch,
			wantMsg: `Type-hint "Logger" requires this argument to be a reference to a service or an inline service definition`,
		},
		{
			name: "expression syntax", param: namedParam("Logger", false), arg: expr(`service("logger"`),
			wantErr: ErrInvalidExpressionSyntax,
		},
		{name: "expression unchecked", param: namedParam("Logger", false), arg: expr(`service("plain")`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.param, tt.arg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			requireKind(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
			}
		})
	}
}

func TestArgumentValidator_EvaluatedExpressions(t *testing.T) {
	graph := testGraph()
	validator := NewArgumentValidator(graph, testTypes(), NewClassResolver(graph),
		testOptions(t, WithEvaluateExpressions(true))...)

	tests := []struct {
		name    string
		param   typesys.Parameter
		source  string
		wantErr error
	}{
		{name: "service", param: namedParam("Logger", false), source: `service("logger")`},
		{name: "service without class", param: namedParam("Logger", false), source: `service("dynamic")`},
		{name: "null nullable", param: namedParam("Logger", true), source: `null`},
		{name: "null", param: namedParam("Logger", false), source: `null`, wantErr: ErrTypeHintMismatch},
		{name: "container", param: namedParam("AppContainer", false), source: `container`},
		{name: "number", param: namedParam("Logger", false), source: `1 + 1`, wantErr: ErrTypeHintMismatch},
		{name: "array tuple", param: arrayParam(false), source: `["a", "b"]`},
		{name: "array parameter", param: arrayParam(false), source: `parameter("debug") ? ["y"] : ["x"]`},
		{name: "array null nullable", param: arrayParam(true), source: `null`},
		{name: "array null", param: arrayParam(false), source: `null`, wantErr: ErrTypeHintMismatch},
		{name: "array scalar", param: arrayParam(false), source: `upper("a")`, wantErr: ErrTypeHintMismatch},
		{name: "unknown parameter", param: arrayParam(false), source: `parameter("nope")`, wantErr: ErrInvalidExpressionEvaluation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.param, expr(tt.source))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			requireKind(t, err, tt.wantErr)
		})
	}
}

func TestArgumentsValidator_Validate(t *testing.T) {
	widget, ok := testTypes().Type("Widget")
	require.True(t, ok)
	ctor, ok := widget.Constructor()
	require.True(t, ok)
	params := ctor.Parameters()

	t.Run("checks each supplied argument", func(t *testing.T) {
		checker := new(mockArgumentChecker)
		checker.On("Validate", params[0], ref("logger")).Return(nil).Once()
		checker.On("Validate", params[1], []any{"a"}).Return(nil).Once()

		err := NewArgumentsValidator(checker).Validate(ctor, definition.Args(ref("logger"), []any{"a"}))
		require.NoError(t, err)
		checker.AssertExpectations(t)
	})

	t.Run("omitted nullable parameter", func(t *testing.T) {
		checker := new(mockArgumentChecker)
		checker.On("Validate", params[0], ref("logger")).Return(nil).Once()

		err := NewArgumentsValidator(checker).Validate(ctor, definition.Args(ref("logger")))
		require.NoError(t, err)
		checker.AssertExpectations(t)
	})

	t.Run("explicit position", func(t *testing.T) {
		checker := new(mockArgumentChecker)

		err := NewArgumentsValidator(checker).Validate(ctor, []definition.Argument{{Key: "1", Value: nil}})
		requireKind(t, err, ErrMissingRequiredArgument)
		assert.EqualError(t, err, "Definition for class Widget has no argument for required parameter logger")
		checker.AssertNotCalled(t, "Validate", params[1], nil)
	})

	t.Run("named arguments follow insertion order", func(t *testing.T) {
		checker := new(mockArgumentChecker)
		checker.On("Validate", params[0], ref("logger")).Return(nil).Once()
		checker.On("Validate", params[1], nil).Return(nil).Once()

		err := NewArgumentsValidator(checker).Validate(ctor, []definition.Argument{
			{Key: "logger", Value: ref("logger")},
			{Key: "tags", Value: nil},
		})
		require.NoError(t, err)
		checker.AssertExpectations(t)
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		checker := new(mockArgumentChecker)
		checker.On("Validate", params[0], ref("plain")).Return(typeHintMismatch("mismatch")).Once()

		err := NewArgumentsValidator(checker).Validate(ctor, definition.Args(ref("plain"), []any{}))
		requireKind(t, err, ErrTypeHintMismatch)
		checker.AssertNumberOfCalls(t, "Validate", 1)
	})

	t.Run("free function owner", func(t *testing.T) {
		fn, ok := testTypes().Function("make_widget")
		require.True(t, ok)

		err := NewArgumentsValidator(new(mockArgumentChecker)).Validate(fn, nil)
		assert.EqualError(t, err, "Definition for class make_widget has no argument for required parameter logger")
	})
}
