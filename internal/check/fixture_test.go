package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/defcheck/internal/definition"
	"github.com/thoreinstein/defcheck/internal/errors"
	"github.com/thoreinstein/defcheck/internal/logging"
	"github.com/thoreinstein/defcheck/internal/typesys"
)

// testTypes is the type catalog shared by the check tests.
func testTypes() *typesys.Catalog {
	return typesys.NewCatalog().
		AddInterface("Logger", typesys.TypeSpec{
			Methods: map[string]typesys.CallableSpec{
				"log": {Params: []typesys.ParamSpec{typesys.Param("message", "string")}},
			},
		}).
		AddClass("FileLogger", typesys.TypeSpec{
			Implements: []string{"Logger"},
			Constructor: &typesys.CallableSpec{
				Params: []typesys.ParamSpec{{Name: "path", Type: "string", Default: true}},
			},
		}).
		AddClass("PlainObject", typesys.TypeSpec{}).
		AddClass("Widget", typesys.TypeSpec{
			Constructor: &typesys.CallableSpec{
				Params: []typesys.ParamSpec{
					typesys.Param("logger", "Logger"),
					typesys.Param("tags", "?array"),
				},
			},
			Methods: map[string]typesys.CallableSpec{
				"setLogger": {Params: []typesys.ParamSpec{typesys.Param("logger", "Logger")}},
				"addTags":   {Params: []typesys.ParamSpec{typesys.Param("tags", "array")}},
				"setName":   {Params: []typesys.ParamSpec{typesys.Param("name", "string")}},
			},
		}).
		AddClass("WidgetFactory", typesys.TypeSpec{
			Methods: map[string]typesys.CallableSpec{
				"create": {Static: true, Params: []typesys.ParamSpec{typesys.Param("logger", "Logger")}},
				"build":  {Params: []typesys.ParamSpec{typesys.Param("name", "string")}},
			},
		}).
		AddClass("Singleton", typesys.TypeSpec{
			Constructor: &typesys.CallableSpec{Visibility: "private"},
		}).
		AddClass("AppContainer", typesys.TypeSpec{}).
		AddFunction("make_widget", typesys.CallableSpec{
			Params: []typesys.ParamSpec{typesys.Param("logger", "Logger")},
		})
}

// testGraph is the definition graph shared by the check tests.
func testGraph() *definition.Container {
	c := definition.NewContainer()
	c.SetContainerClass("AppContainer")
	c.SetParameter("widget.class", "Widget")
	c.SetParameter("logger.class", "FileLogger")
	c.SetParameter("debug", true)
	c.Register("logger", &definition.Definition{Class: "%logger.class%"})
	c.Register("plain", &definition.Definition{Class: "PlainObject"})
	c.Register("widget_factory", &definition.Definition{Class: "WidgetFactory"})
	c.Register("dynamic", &definition.Definition{Synthetic: true})
	c.SetAlias("app.logger", "logger")
	return c
}

func ref(id string) definition.Reference {
	return definition.Reference{ID: id}
}

func expr(source string) definition.Expression {
	return definition.Expression{Source: source}
}

// requireKind asserts err is a DefinitionError of the given kind.
func requireKind(t *testing.T, err error, want error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, want), "error %q should match %v", err, want)
	assert.True(t, IsDefinitionError(err), "error %q should be a DefinitionError", err)
}

func testOptions(t *testing.T, opts ...Option) []Option {
	return append([]Option{WithLogger(logging.ForTest(t))}, opts...)
}
