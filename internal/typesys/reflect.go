package typesys

import (
	"fmt"
	"maps"
	"reflect"
	"runtime"
	"slices"
	"strings"

	"github.com/thoreinstein/defcheck/internal/errors"
)

// ErrInvalidRegistration indicates a type or function that cannot be
// registered with a [ReflectRegistry].
var ErrInvalidRegistration = errors.New("invalid registration")

// ReflectRegistry is a [Registry] over real Go types.
//
// Types are registered under the names definitions use for them. Interface
// types are registered with a nil pointer to the interface:
//
//	r.RegisterType("Logger", (*Logger)(nil))
//	r.RegisterType("FileLogger", (*FileLogger)(nil))
//	r.RegisterConstructor("FileLogger", NewFileLogger, "path")
//
// Parameter names are positional. A name prefixed with "?" marks the
// parameter as accepting null. Only registered types produce named hints;
// every other non-collection Go type is unchecked. Register types before
// the callables that take them.
type ReflectRegistry struct {
	types     map[string]reflect.Type
	names     map[reflect.Type]string
	ctors     map[string]*reflectCallable
	factories map[string]map[string]*reflectCallable
	functions map[string]*reflectCallable
}

var _ Registry = (*ReflectRegistry)(nil)

// NewReflectRegistry creates an empty registry.
func NewReflectRegistry() *ReflectRegistry {
	return &ReflectRegistry{
		types:     make(map[string]reflect.Type),
		names:     make(map[reflect.Type]string),
		ctors:     make(map[string]*reflectCallable),
		factories: make(map[string]map[string]*reflectCallable),
		functions: make(map[string]*reflectCallable),
	}
}

// RegisterType registers the Go type of sample under name.
// Concrete types are tracked through their pointer type so that methods
// with pointer receivers are visible.
func (r *ReflectRegistry) RegisterType(name string, sample any) error {
	if name == "" {
		return errors.Wrap(ErrInvalidRegistration, "type name cannot be empty")
	}
	if sample == nil {
		return errors.Wrapf(ErrInvalidRegistration, "type %s: sample cannot be nil", name)
	}

	t := reflect.TypeOf(sample)
	switch {
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Interface:
		t = t.Elem()
	case t.Kind() != reflect.Pointer:
		t = reflect.PointerTo(t)
	}

	r.types[name] = t
	r.names[t] = name
	return nil
}

// RegisterConstructor sets the constructor of a registered type. fn must
// return the type (or an implementation of it, for interfaces), optionally
// followed by an error.
func (r *ReflectRegistry) RegisterConstructor(typeName string, fn any, paramNames ...string) error {
	t, ok := r.types[typeName]
	if !ok {
		return errors.Wrapf(ErrInvalidRegistration, "constructor for unregistered type %s", typeName)
	}
	c, err := r.callable(fn, typeName, false, paramNames)
	if err != nil {
		return errors.Wrapf(err, "constructor for %s", typeName)
	}
	if err := checkReturns(fn, t); err != nil {
		return errors.Wrapf(err, "constructor for %s", typeName)
	}
	r.ctors[typeName] = c
	return nil
}

// RegisterFactory adds a static factory method to a registered type.
func (r *ReflectRegistry) RegisterFactory(typeName, method string, fn any, paramNames ...string) error {
	if _, ok := r.types[typeName]; !ok {
		return errors.Wrapf(ErrInvalidRegistration, "factory for unregistered type %s", typeName)
	}
	c, err := r.callable(fn, typeName, true, paramNames)
	if err != nil {
		return errors.Wrapf(err, "factory %s::%s", typeName, method)
	}
	c.name = method
	if r.factories[typeName] == nil {
		r.factories[typeName] = make(map[string]*reflectCallable)
	}
	r.factories[typeName][method] = c
	return nil
}

// RegisterFunction registers a free function under name.
func (r *ReflectRegistry) RegisterFunction(name string, fn any, paramNames ...string) error {
	c, err := r.callable(fn, "", true, paramNames)
	if err != nil {
		return errors.Wrapf(err, "function %s", name)
	}
	c.name = name
	r.functions[name] = c
	return nil
}

// Exists implements [Registry].
func (r *ReflectRegistry) Exists(name string) bool {
	_, ok := r.types[name]
	return ok
}

// IsSubtype implements [Registry].
func (r *ReflectRegistry) IsSubtype(sub, super string) bool {
	if sub == super {
		return true
	}
	st, ok := r.types[sub]
	if !ok {
		return false
	}
	pt, ok := r.types[super]
	if !ok {
		return false
	}
	if pt.Kind() == reflect.Interface {
		return st.Implements(pt)
	}
	return st == pt
}

// Supertypes implements [Registry]. It lists the registered interfaces
// name implements. Go types satisfy interfaces implicitly, so the answer
// is never complete.
func (r *ReflectRegistry) Supertypes(name string) ([]string, bool) {
	if _, ok := r.types[name]; !ok {
		return nil, false
	}
	var names []string
	for _, other := range slices.Sorted(maps.Keys(r.types)) {
		if other != name && r.IsSubtype(name, other) {
			names = append(names, other)
		}
	}
	return names, false
}

// Type implements [Registry].
func (r *ReflectRegistry) Type(name string) (Type, bool) {
	t, ok := r.types[name]
	if !ok {
		return nil, false
	}
	return &reflectType{registry: r, name: name, t: t}, true
}

// Function implements [Registry].
func (r *ReflectRegistry) Function(name string) (Callable, bool) {
	c, ok := r.functions[name]
	return c, ok
}

// TypeNames implements [Registry].
func (r *ReflectRegistry) TypeNames() []string {
	return slices.Sorted(maps.Keys(r.types))
}

// FunctionNames implements [Registry].
func (r *ReflectRegistry) FunctionNames() []string {
	return slices.Sorted(maps.Keys(r.functions))
}

func (r *ReflectRegistry) callable(fn any, declaringType string, static bool, paramNames []string) (*reflectCallable, error) {
	if fn == nil {
		return nil, errors.Wrap(ErrInvalidRegistration, "function cannot be nil")
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, errors.Wrapf(ErrInvalidRegistration, "expected a function, got %v", v.Kind())
	}

	name := "func"
	if f := runtime.FuncForPC(v.Pointer()); f != nil {
		name = f.Name()
		if i := strings.LastIndex(name, "."); i >= 0 {
			name = name[i+1:]
		}
	}

	return &reflectCallable{
		name:          name,
		declaringType: declaringType,
		static:        static,
		params:        r.parameters(v.Type(), 0, paramNames),
	}, nil
}

// parameters derives metadata for fnType's inputs starting at skip, which
// is 1 for method expressions whose first input is the receiver.
func (r *ReflectRegistry) parameters(fnType reflect.Type, skip int, names []string) []Parameter {
	n := fnType.NumIn() - skip
	params := make([]Parameter, 0, n)
	for i := range n {
		in := fnType.In(i + skip)
		p := Parameter{Name: fmt.Sprintf("arg%d", i), Position: i}
		if i < len(names) && names[i] != "" {
			p.Name = names[i]
			if rest, ok := strings.CutPrefix(p.Name, "?"); ok {
				p.Name = rest
				p.Nullable = true
			}
		}
		if fnType.IsVariadic() && i == n-1 {
			p.Optional = true
			in = in.Elem()
		}
		p.Hint = r.hintFor(in)
		params = append(params, p)
	}
	return params
}

func (r *ReflectRegistry) hintFor(t reflect.Type) TypeHint {
	if name, ok := r.names[t]; ok {
		return TypeHint{Kind: HintNamed, Name: name}
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return TypeHint{Kind: HintArray}
	default:
		return TypeHint{Kind: HintNone}
	}
}

func checkReturns(fn any, want reflect.Type) error {
	ft := reflect.TypeOf(fn)
	switch ft.NumOut() {
	case 1:
	case 2:
		errType := reflect.TypeOf((*error)(nil)).Elem()
		if !ft.Out(1).Implements(errType) {
			return errors.Wrapf(ErrInvalidRegistration, "second return value must be error, got %v", ft.Out(1))
		}
	default:
		return errors.Wrapf(ErrInvalidRegistration, "must return (T) or (T, error), got %d values", ft.NumOut())
	}

	out := ft.Out(0)
	if out == want || (want.Kind() == reflect.Interface && out.Implements(want)) {
		return nil
	}
	return errors.Wrapf(ErrInvalidRegistration, "returns %v, want %v", out, want)
}

type reflectType struct {
	registry *ReflectRegistry
	name     string
	t        reflect.Type
}

func (t *reflectType) Name() string { return t.name }

func (t *reflectType) Kind() Kind {
	if t.t.Kind() == reflect.Interface {
		return KindInterface
	}
	return KindClass
}

func (t *reflectType) Constructor() (Callable, bool) {
	c, ok := t.registry.ctors[t.name]
	return c, ok
}

func (t *reflectType) Method(name string) (Callable, bool) {
	if c, ok := t.registry.factories[t.name][name]; ok {
		return c, true
	}
	m, ok := t.t.MethodByName(name)
	if !ok {
		return nil, false
	}

	skip := 1
	if t.t.Kind() == reflect.Interface {
		skip = 0
	}
	return &reflectCallable{
		name:          name,
		declaringType: t.name,
		params:        t.registry.parameters(m.Type, skip, nil),
	}, true
}

func (t *reflectType) MethodNames() []string {
	set := map[string]bool{}
	for name := range t.registry.factories[t.name] {
		set[name] = true
	}
	for i := range t.t.NumMethod() {
		set[t.t.Method(i).Name] = true
	}
	return slices.Sorted(maps.Keys(set))
}

// reflectCallable is always public: reflection only reaches what was
// registered or exported.
type reflectCallable struct {
	name          string
	declaringType string
	static        bool
	params        []Parameter
}

func (c *reflectCallable) Name() string            { return c.name }
func (c *reflectCallable) DeclaringType() string   { return c.declaringType }
func (c *reflectCallable) Static() bool            { return c.static }
func (c *reflectCallable) Public() bool            { return true }
func (c *reflectCallable) Parameters() []Parameter { return slices.Clone(c.params) }
