package parser

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/defcheck/internal/errors"
)

// ServiceTag marks a mapping as an inline service definition.
const ServiceTag = "!service"

type nodeKind int

const (
	nullNode nodeKind = iota
	scalarNode
	sequenceNode
	mappingNode
)

func (k nodeKind) String() string {
	switch k {
	case scalarNode:
		return "scalar"
	case sequenceNode:
		return "list"
	case mappingNode:
		return "mapping"
	default:
		return "null"
	}
}

// node is a format-neutral document tree. Mapping keys keep document order
// when the source format preserves it.
type node struct {
	kind  nodeKind
	tag   string
	value any
	items []*node
	keys  []string
	line  int
	// ordered is false for mappings whose key order was lost in decoding.
	ordered bool
}

func (n *node) get(key string) (*node, bool) {
	if i := slices.Index(n.keys, key); i >= 0 {
		return n.items[i], true
	}
	return nil, false
}

// at describes the node's location for error messages.
func (n *node) at() string {
	if n == nil || n.line == 0 {
		return ""
	}
	return fmt.Sprintf("line %d: ", n.line)
}

func (n *node) invalid(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidDefinition, "%s%s", n.at(), fmt.Sprintf(format, args...))
}

// plain converts the node into ordinary Go values, ignoring conventions.
func (n *node) plain() any {
	switch n.kind {
	case scalarNode:
		return n.value
	case sequenceNode:
		out := make([]any, len(n.items))
		for i, item := range n.items {
			out[i] = item.plain()
		}
		return out
	case mappingNode:
		out := make(map[string]any, len(n.keys))
		for i, key := range n.keys {
			out[key] = n.items[i].plain()
		}
		return out
	default:
		return nil
	}
}

func decodeYAML(data []byte) (*node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(ErrInvalidDefinition, "decoding YAML: %v", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return &node{kind: mappingNode, ordered: true}, nil
	}
	return fromYAML(doc.Content[0], 0)
}

const maxAliasDepth = 32

func fromYAML(y *yaml.Node, depth int) (*node, error) {
	if y.Kind == yaml.AliasNode {
		if depth > maxAliasDepth || y.Alias == nil {
			return nil, errors.Wrapf(ErrInvalidDefinition, "line %d: unresolvable alias", y.Line)
		}
		return fromYAML(y.Alias, depth+1)
	}

	n := &node{line: y.Line, ordered: true}
	if strings.HasPrefix(y.Tag, "!") && !strings.HasPrefix(y.Tag, "!!") {
		n.tag = y.Tag
	}

	switch y.Kind {
	case yaml.ScalarNode:
		if y.Tag == "!!null" {
			n.kind = nullNode
			return n, nil
		}
		n.kind = scalarNode
		if n.tag != "" {
			// Custom tags on scalars are not interpreted; keep the text.
			n.value = y.Value
			return n, nil
		}
		if err := y.Decode(&n.value); err != nil {
			return nil, errors.Wrapf(ErrInvalidDefinition, "line %d: %v", y.Line, err)
		}
	case yaml.SequenceNode:
		n.kind = sequenceNode
		for _, c := range y.Content {
			item, err := fromYAML(c, depth)
			if err != nil {
				return nil, err
			}
			n.items = append(n.items, item)
		}
	case yaml.MappingNode:
		n.kind = mappingNode
		for i := 0; i+1 < len(y.Content); i += 2 {
			k, v := y.Content[i], y.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, errors.Wrapf(ErrInvalidDefinition, "line %d: mapping keys must be scalars", k.Line)
			}
			if k.Value == "<<" {
				if err := mergeYAML(n, v, depth); err != nil {
					return nil, err
				}
				continue
			}
			item, err := fromYAML(v, depth)
			if err != nil {
				return nil, err
			}
			n.set(k.Value, item)
		}
	default:
		return nil, errors.Wrapf(ErrInvalidDefinition, "line %d: unexpected YAML node", y.Line)
	}
	return n, nil
}

// mergeYAML applies a "<<" merge key. Explicit keys win over merged ones.
func mergeYAML(n *node, v *yaml.Node, depth int) error {
	src, err := fromYAML(v, depth)
	if err != nil {
		return err
	}
	sources := []*node{src}
	if src.kind == sequenceNode {
		sources = src.items
	}
	for _, s := range sources {
		if s.kind != mappingNode {
			return s.invalid("merge value must be a mapping")
		}
		for i, key := range s.keys {
			if _, ok := n.get(key); !ok {
				n.keys = append(n.keys, key)
				n.items = append(n.items, s.items[i])
			}
		}
	}
	return nil
}

func (n *node) set(key string, value *node) {
	if i := slices.Index(n.keys, key); i >= 0 {
		n.items[i] = value
		return
	}
	n.keys = append(n.keys, key)
	n.items = append(n.items, value)
}

func decodeTOML(data []byte) (*node, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, _ := derr.Position()
			return nil, errors.Wrapf(ErrInvalidDefinition, "decoding TOML: line %d: %v", row, err)
		}
		return nil, errors.Wrapf(ErrInvalidDefinition, "decoding TOML: %v", err)
	}
	return fromValue(doc), nil
}

// fromValue builds a tree from decoded values. Map keys are sorted, so
// the result is deterministic but not in document order.
func fromValue(v any) *node {
	switch v := v.(type) {
	case nil:
		return &node{kind: nullNode}
	case map[string]any:
		n := &node{kind: mappingNode}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			n.keys = append(n.keys, k)
			n.items = append(n.items, fromValue(v[k]))
		}
		return n
	case []any:
		n := &node{kind: sequenceNode}
		for _, item := range v {
			n.items = append(n.items, fromValue(item))
		}
		return n
	case []map[string]any:
		n := &node{kind: sequenceNode}
		for _, item := range v {
			n.items = append(n.items, fromValue(item))
		}
		return n
	default:
		return &node{kind: scalarNode, value: v}
	}
}
