package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/defcheck/internal/definition"
	"github.com/thoreinstein/defcheck/internal/errors"
)

type mockDefinitionChecker struct {
	mock.Mock
}

func (m *mockDefinitionChecker) Validate(def *definition.Definition) error {
	args := m.Called(def)
	return args.Error(0)
}

func newServiceValidator(t *testing.T, arguments, calls DefinitionChecker) *ServiceValidator {
	graph := testGraph()
	return NewServiceValidator(graph, testTypes(), NewClassResolver(graph), arguments, calls, testOptions(t)...)
}

func TestServiceValidator_ValidateAttributes(t *testing.T) {
	v := newServiceValidator(t, nil, nil)

	tests := []struct {
		name    string
		def     *definition.Definition
		wantErr error
	}{
		{name: "known class", def: &definition.Definition{Class: "Widget"}},
		{name: "placeholder class", def: &definition.Definition{Class: "%widget.class%"}},
		{name: "class alias with leading separator", def: &definition.Definition{Class: "\\Widget"}},
		{name: "unknown class", def: &definition.Definition{Class: "Gadget"}, wantErr: ErrClassNotFound},
		{name: "no class", def: &definition.Definition{}, wantErr: ErrDefinitionHasNoClass},
		{name: "no class synthetic", def: &definition.Definition{Synthetic: true}},
		{name: "no class abstract", def: &definition.Definition{Abstract: true}},
		{
			name:    "no class with function factory",
			def:     &definition.Definition{Factory: definition.FunctionFactory{Name: "make_widget"}},
			wantErr: ErrDefinitionHasNoClass,
		},
		{
			name:    "no class with class factory",
			def:     &definition.Definition{Factory: definition.ClassFactory{Class: "WidgetFactory", Method: "create"}},
			wantErr: ErrDefinitionHasNoClass,
		},
		{
			name:    "class factory without method",
			def:     &definition.Definition{Class: "Widget", Factory: definition.ClassFactory{Class: "WidgetFactory"}},
			wantErr: ErrMissingFactoryMethod,
		},
		{
			name:    "service factory without method",
			def:     &definition.Definition{Class: "Widget", Factory: definition.ServiceFactory{Service: ref("widget_factory")}},
			wantErr: ErrMissingFactoryMethod,
		},
		{
			name:    "inline factory without method",
			def:     &definition.Definition{Class: "Widget", Factory: definition.InlineFactory{Definition: &definition.Definition{Class: "WidgetFactory"}}},
			wantErr: ErrMissingFactoryMethod,
		},
		{
			name: "class factory",
			def:  &definition.Definition{Class: "Widget", Factory: definition.ClassFactory{Class: "WidgetFactory", Method: "create"}},
		},
		{
			name:    "class factory unknown class",
			def:     &definition.Definition{Class: "Widget", Factory: definition.ClassFactory{Class: "Gadget", Method: "create"}},
			wantErr: ErrClassNotFound,
		},
		{
			name:    "class factory unknown method",
			def:     &definition.Definition{Class: "Widget", Factory: definition.ClassFactory{Class: "WidgetFactory", Method: "make"}},
			wantErr: ErrMethodNotFound,
		},
		{
			name: "service factory",
			def:  &definition.Definition{Class: "Widget", Factory: definition.ServiceFactory{Service: ref("widget_factory"), Method: "build"}},
		},
		{
			name:    "service factory missing service",
			def:     &definition.Definition{Class: "Widget", Factory: definition.ServiceFactory{Service: ref("factory"), Method: "make"}},
			wantErr: ErrServiceNotFound,
		},
		{
			name:    "service factory unknown method",
			def:     &definition.Definition{Class: "Widget", Factory: definition.ServiceFactory{Service: ref("widget_factory"), Method: "make"}},
			wantErr: ErrMethodNotFound,
		},
		{
			name: "service factory on classless service",
			def:  &definition.Definition{Class: "Widget", Factory: definition.ServiceFactory{Service: ref("dynamic"), Method: "make"}},
		},
		{
			name: "inline factory",
			def: &definition.Definition{Class: "Widget", Factory: definition.InlineFactory{
				Definition: &definition.Definition{Class: "WidgetFactory"},
				Method:     "create",
			}},
		},
		{
			name: "inline factory unknown class",
			def: &definition.Definition{Class: "Widget", Factory: definition.InlineFactory{
				Definition: &definition.Definition{Class: "Gadget"},
				Method:     "create",
			}},
			wantErr: ErrClassNotFound,
		},
		{
			name: "function factory is checked with the arguments",
			def:  &definition.Definition{Class: "Widget", Factory: definition.FunctionFactory{Name: "missing"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateAttributes(tt.def)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			requireKind(t, err, tt.wantErr)
		})
	}
}

func TestServiceValidator_Validate(t *testing.T) {
	t.Run("runs every check in order", func(t *testing.T) {
		def := &definition.Definition{Class: "Widget"}
		arguments := new(mockDefinitionChecker)
		calls := new(mockDefinitionChecker)
		arguments.On("Validate", def).Return(nil).Once()
		calls.On("Validate", def).Return(nil).Once()

		require.NoError(t, newServiceValidator(t, arguments, calls).Validate(def))
		arguments.AssertExpectations(t)
		calls.AssertExpectations(t)
	})

	t.Run("attribute failure skips argument checks", func(t *testing.T) {
		def := &definition.Definition{}
		arguments := new(mockDefinitionChecker)
		calls := new(mockDefinitionChecker)

		err := newServiceValidator(t, arguments, calls).Validate(def)
		requireKind(t, err, ErrDefinitionHasNoClass)
		arguments.AssertNotCalled(t, "Validate", mock.Anything)
		calls.AssertNotCalled(t, "Validate", mock.Anything)
	})

	t.Run("argument failure skips method calls", func(t *testing.T) {
		def := &definition.Definition{Class: "Widget"}
		arguments := new(mockDefinitionChecker)
		calls := new(mockDefinitionChecker)
		arguments.On("Validate", def).Return(missingRequiredArgument("Widget", "logger")).Once()

		err := newServiceValidator(t, arguments, calls).Validate(def)
		requireKind(t, err, ErrMissingRequiredArgument)
		calls.AssertNotCalled(t, "Validate", mock.Anything)
	})

	t.Run("faults pass through unchanged", func(t *testing.T) {
		def := &definition.Definition{Class: "Widget"}
		fault := errors.New("registry unavailable")
		arguments := new(mockDefinitionChecker)
		calls := new(mockDefinitionChecker)
		arguments.On("Validate", def).Return(nil).Once()
		calls.On("Validate", def).Return(fault).Once()

		err := newServiceValidator(t, arguments, calls).Validate(def)
		assert.ErrorIs(t, err, fault)
		assert.False(t, IsDefinitionError(err))
	})
}

func TestDefinitionArgumentsValidator_Validate(t *testing.T) {
	graph := testGraph()
	constructors := NewConstructorResolver(graph, testTypes(), NewClassResolver(graph), testOptions(t)...)

	t.Run("abstract and synthetic are skipped", func(t *testing.T) {
		v := NewDefinitionArgumentsValidator(constructors, nil)
		assert.NoError(t, v.Validate(&definition.Definition{Class: "Missing", Abstract: true}))
		assert.NoError(t, v.Validate(&definition.Definition{Class: "Missing", Synthetic: true}))
	})

	t.Run("no constructor means nothing to check", func(t *testing.T) {
		v := NewDefinitionArgumentsValidator(constructors, nil)
		assert.NoError(t, v.Validate(&definition.Definition{
			Class:     "PlainObject",
			Arguments: definition.Args("ignored"),
		}))
	})

	t.Run("factory arguments", func(t *testing.T) {
		argument := NewArgumentValidator(graph, testTypes(), NewClassResolver(graph), testOptions(t)...)
		v := NewDefinitionArgumentsValidator(constructors, NewArgumentsValidator(argument))

		err := v.Validate(&definition.Definition{
			Class:     "Widget",
			Factory:   definition.FunctionFactory{Name: "make_widget"},
			Arguments: definition.Args(ref("plain")),
		})
		requireKind(t, err, ErrTypeHintMismatch)

		err = v.Validate(&definition.Definition{
			Factory: definition.ClassFactory{Class: "WidgetFactory", Method: "create"},
		})
		requireKind(t, err, ErrMissingRequiredArgument)
		assert.EqualError(t, err, "Definition for class WidgetFactory has no argument for required parameter logger")

		err = v.Validate(&definition.Definition{
			Factory: definition.FunctionFactory{Name: "missing"},
		})
		requireKind(t, err, ErrFunctionNotFound)
	})
}
