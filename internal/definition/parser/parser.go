package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thoreinstein/defcheck/internal/definition"
	"github.com/thoreinstein/defcheck/internal/errors"
	"github.com/thoreinstein/defcheck/pkg/fileutil"
)

// Sentinel errors for definition file parsing.
var (
	// ErrUnsupportedFormat indicates a file extension with no known decoder.
	ErrUnsupportedFormat = errors.New("unsupported definition file format")

	// ErrInvalidDefinition indicates a document that does not follow the
	// definition file schema.
	ErrInvalidDefinition = errors.New("invalid definition file")
)

// ParseError reports a failure to parse a definition file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Service is one entry of the services section: a definition, or an alias
// when Alias is set.
type Service struct {
	ID         string
	Definition *definition.Definition
	Alias      string
}

// Parameter is one entry of the parameters section.
type Parameter struct {
	Name  string
	Value any
}

// File is the content of one definition file, in document order.
type File struct {
	Path       string
	Parameters []Parameter
	Services   []Service
}

// Apply registers the file's parameters, definitions and aliases in c.
func (f *File) Apply(c *definition.Container) {
	for _, p := range f.Parameters {
		c.SetParameter(p.Name, p.Value)
	}
	for _, s := range f.Services {
		if s.Alias != "" {
			c.SetAlias(s.ID, s.Alias)
			continue
		}
		c.Register(s.ID, s.Definition)
	}
}

// Parse decodes a definition file. The format is chosen from the path's
// extension.
func Parse(path string, data []byte) (*File, error) {
	var (
		root *node
		err  error
	)
	switch fileutil.FormatOf(path) {
	case fileutil.FormatYAML:
		root, err = decodeYAML(data)
	case fileutil.FormatTOML:
		root, err = decodeTOML(data)
	default:
		err = errors.Wrapf(ErrUnsupportedFormat, "extension %q", extension(path))
	}
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	file, err := build(path, root)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return file, nil
}

func extension(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i:]
	}
	return ""
}

func build(path string, root *node) (*File, error) {
	file := &File{Path: path}
	if root.kind == nullNode {
		return file, nil
	}
	if root.kind != mappingNode {
		return nil, root.invalid("document must be a mapping, got %s", root.kind)
	}

	for i, key := range root.keys {
		section := root.items[i]
		switch key {
		case "parameters":
			params, err := buildParameters(section)
			if err != nil {
				return nil, err
			}
			file.Parameters = params
		case "services":
			services, err := buildServices(section)
			if err != nil {
				return nil, err
			}
			file.Services = services
		default:
			return nil, section.invalid("unknown top-level key %q", key)
		}
	}
	return file, nil
}

func buildParameters(n *node) ([]Parameter, error) {
	if n.kind == nullNode {
		return nil, nil
	}
	if n.kind != mappingNode {
		return nil, n.invalid("parameters must be a mapping")
	}
	params := make([]Parameter, len(n.keys))
	for i, name := range n.keys {
		params[i] = Parameter{Name: name, Value: n.items[i].plain()}
	}
	return params, nil
}

func buildServices(n *node) ([]Service, error) {
	if n.kind == nullNode {
		return nil, nil
	}
	if n.kind != mappingNode {
		return nil, n.invalid("services must be a mapping")
	}

	services := make([]Service, 0, len(n.keys))
	for i, id := range n.keys {
		body := n.items[i]
		if s, ok := body.value.(string); ok && body.kind == scalarNode {
			target, ok := strings.CutPrefix(s, "@")
			if !ok || target == "" || strings.HasPrefix(target, "@") || strings.HasPrefix(target, "=") || strings.HasPrefix(target, "?") {
				return nil, body.invalid("service %q: an alias must be written as \"@target\"", id)
			}
			services = append(services, Service{ID: id, Alias: target})
			continue
		}

		def, err := buildDefinition(body)
		if err != nil {
			return nil, errors.Wrapf(err, "service %q", id)
		}
		services = append(services, Service{ID: id, Definition: def})
	}
	return services, nil
}

func buildDefinition(n *node) (*definition.Definition, error) {
	def := &definition.Definition{}
	if n.kind == nullNode {
		return def, nil
	}
	if n.kind != mappingNode {
		return nil, n.invalid("definition must be a mapping, got %s", n.kind)
	}

	for i, key := range n.keys {
		v := n.items[i]
		var err error
		switch key {
		case "class":
			def.Class, err = stringValue(v, "class")
		case "factory":
			def.Factory, err = buildFactory(v)
		case "arguments":
			def.Arguments, err = buildArguments(v)
		case "calls":
			def.Calls, err = buildCalls(v)
		case "abstract":
			def.Abstract, err = boolValue(v, "abstract")
		case "synthetic":
			def.Synthetic, err = boolValue(v, "synthetic")
		default:
			err = v.invalid("unknown key %q", key)
		}
		if err != nil {
			return nil, err
		}
	}
	return def, nil
}

func stringValue(n *node, what string) (string, error) {
	if n.kind == nullNode {
		return "", nil
	}
	s, ok := n.value.(string)
	if n.kind != scalarNode || !ok {
		return "", n.invalid("%s must be a string", what)
	}
	return s, nil
}

func boolValue(n *node, what string) (bool, error) {
	if n.kind == nullNode {
		return false, nil
	}
	b, ok := n.value.(bool)
	if n.kind != scalarNode || !ok {
		return false, n.invalid("%s must be a boolean", what)
	}
	return b, nil
}

// buildFactory accepts a function name, "Class::method", "@id::method", a
// [target, method] list, or a mapping with function, class, service or
// inline keys plus method.
func buildFactory(n *node) (definition.Factory, error) {
	switch n.kind {
	case nullNode:
		return nil, nil
	case scalarNode:
		s, ok := n.value.(string)
		if !ok || s == "" {
			return nil, n.invalid("factory must be a string, list or mapping")
		}
		if target, method, ok := strings.Cut(s, "::"); ok {
			return targetFactory(n, target, method)
		}
		return definition.FunctionFactory{Name: s}, nil

	case sequenceNode:
		if len(n.items) == 0 || len(n.items) > 2 {
			return nil, n.invalid("factory list must be [target, method]")
		}
		method := ""
		if len(n.items) == 2 {
			var err error
			if method, err = stringValue(n.items[1], "factory method"); err != nil {
				return nil, err
			}
		}
		target := n.items[0]
		if inline, ok, err := inlineDefinition(target); ok || err != nil {
			if err != nil {
				return nil, err
			}
			return definition.InlineFactory{Definition: inline, Method: method}, nil
		}
		s, err := stringValue(target, "factory target")
		if err != nil {
			return nil, err
		}
		return targetFactory(target, s, method)

	default:
		return buildFactoryMapping(n)
	}
}

func buildFactoryMapping(n *node) (definition.Factory, error) {
	if _, ok, err := inlineDefinition(n); ok || err != nil {
		if err != nil {
			return nil, err
		}
		return nil, n.invalid("an inline factory needs a method: use [%s {...}, method]", ServiceTag)
	}

	fields := map[string]string{}
	var inline *definition.Definition
	for i, key := range n.keys {
		v := n.items[i]
		switch key {
		case "function", "class", "service", "method":
			s, err := stringValue(v, "factory "+key)
			if err != nil {
				return nil, err
			}
			fields[key] = s
		case "inline":
			def, err := buildDefinition(v)
			if err != nil {
				return nil, err
			}
			inline = def
		default:
			return nil, v.invalid("unknown factory key %q", key)
		}
	}

	switch {
	case fields["function"] != "":
		return definition.FunctionFactory{Name: fields["function"]}, nil
	case fields["service"] != "":
		return definition.ServiceFactory{Service: reference(strings.TrimPrefix(fields["service"], "@")), Method: fields["method"]}, nil
	case fields["class"] != "":
		return definition.ClassFactory{Class: fields["class"], Method: fields["method"]}, nil
	case inline != nil:
		return definition.InlineFactory{Definition: inline, Method: fields["method"]}, nil
	default:
		return nil, n.invalid("factory mapping needs one of function, class, service or inline")
	}
}

func targetFactory(n *node, target, method string) (definition.Factory, error) {
	if id, ok := strings.CutPrefix(target, "@"); ok {
		if id == "" {
			return nil, n.invalid("factory service id is empty")
		}
		return definition.ServiceFactory{Service: reference(id), Method: method}, nil
	}
	return definition.ClassFactory{Class: target, Method: method}, nil
}

func reference(id string) definition.Reference {
	if rest, ok := strings.CutPrefix(id, "?"); ok {
		return definition.Reference{ID: rest, Optional: true}
	}
	return definition.Reference{ID: id}
}

// inlineDefinition recognizes a tagged mapping or a single-key mapping
// whose key is the service tag.
func inlineDefinition(n *node) (*definition.Definition, bool, error) {
	if n.kind != mappingNode {
		return nil, false, nil
	}
	if n.tag == ServiceTag {
		def, err := buildDefinition(n)
		return def, true, err
	}
	if len(n.keys) == 1 && n.keys[0] == ServiceTag {
		def, err := buildDefinition(n.items[0])
		return def, true, err
	}
	return nil, false, nil
}

func buildArguments(n *node) ([]definition.Argument, error) {
	switch n.kind {
	case nullNode:
		return nil, nil
	case sequenceNode:
		args := make([]definition.Argument, len(n.items))
		for i, item := range n.items {
			v, err := argumentValue(item)
			if err != nil {
				return nil, err
			}
			args[i] = definition.Argument{Value: v}
		}
		return args, nil
	case mappingNode:
		args := make([]definition.Argument, len(n.keys))
		for i, key := range n.keys {
			if !n.ordered && !isIndex(key) {
				return nil, n.items[i].invalid("named argument %q needs an order-preserving format; use integer keys or YAML", key)
			}
			v, err := argumentValue(n.items[i])
			if err != nil {
				return nil, err
			}
			args[i] = definition.Argument{Key: key, Value: v}
		}
		return args, nil
	default:
		return nil, n.invalid("arguments must be a list or mapping")
	}
}

func isIndex(key string) bool {
	i, err := strconv.Atoi(key)
	return err == nil && i >= 0
}

// argumentValue applies the string conventions: "@id" and "@?id" are
// references, "@=expr" is an expression and "@@text" escapes a literal "@".
func argumentValue(n *node) (any, error) {
	switch n.kind {
	case nullNode:
		return nil, nil
	case scalarNode:
		s, ok := n.value.(string)
		if !ok {
			return n.value, nil
		}
		return stringArgument(n, s)
	case sequenceNode:
		out := make([]any, len(n.items))
		for i, item := range n.items {
			v, err := argumentValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		if inline, ok, err := inlineDefinition(n); ok || err != nil {
			return inline, err
		}
		out := make(map[string]any, len(n.keys))
		for i, key := range n.keys {
			v, err := argumentValue(n.items[i])
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		return out, nil
	}
}

func stringArgument(n *node, s string) (any, error) {
	rest, ok := strings.CutPrefix(s, "@")
	if !ok {
		return s, nil
	}
	switch {
	case strings.HasPrefix(rest, "@"):
		return rest, nil
	case strings.HasPrefix(rest, "="):
		return definition.Expression{Source: rest[1:]}, nil
	case strings.HasPrefix(rest, "?"):
		if len(rest) == 1 {
			return nil, n.invalid("empty service reference %q", s)
		}
		return definition.Reference{ID: rest[1:], Optional: true}, nil
	case rest == "":
		return nil, n.invalid("empty service reference %q", s)
	default:
		return definition.Reference{ID: rest}, nil
	}
}

// buildCalls accepts [method, [args]] lists, {method, arguments} mappings
// and single-key {method: [args]} mappings.
func buildCalls(n *node) ([]definition.MethodCall, error) {
	if n.kind == nullNode {
		return nil, nil
	}
	if n.kind != sequenceNode {
		return nil, n.invalid("calls must be a list")
	}

	calls := make([]definition.MethodCall, len(n.items))
	for i, item := range n.items {
		call, err := buildCall(item)
		if err != nil {
			return nil, err
		}
		calls[i] = call
	}
	return calls, nil
}

func buildCall(n *node) (definition.MethodCall, error) {
	var (
		call    definition.MethodCall
		argNode *node
		err     error
	)
	switch {
	case n.kind == sequenceNode && len(n.items) >= 1 && len(n.items) <= 2:
		if call.Method, err = stringValue(n.items[0], "call method"); err != nil {
			return call, err
		}
		if len(n.items) == 2 {
			argNode = n.items[1]
		}
	case n.kind == mappingNode && len(n.keys) == 1 && n.keys[0] != "method" && n.keys[0] != "arguments":
		call.Method = n.keys[0]
		argNode = n.items[0]
	case n.kind == mappingNode:
		for i, key := range n.keys {
			switch key {
			case "method":
				if call.Method, err = stringValue(n.items[i], "call method"); err != nil {
					return call, err
				}
			case "arguments":
				argNode = n.items[i]
			default:
				return call, n.items[i].invalid("unknown call key %q", key)
			}
		}
	default:
		return call, n.invalid("a call must be [method, [arguments]] or a mapping")
	}

	if call.Method == "" {
		return call, n.invalid("call has no method")
	}
	if argNode != nil {
		if call.Arguments, err = buildArguments(argNode); err != nil {
			return call, err
		}
	}
	return call, nil
}
