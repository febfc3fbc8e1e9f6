package typesys

import (
	"bytes"
	"io"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/defcheck/internal/errors"
	"github.com/thoreinstein/defcheck/pkg/fileutil"
)

// ErrInvalidCatalog indicates a type catalog file that cannot be used.
var ErrInvalidCatalog = errors.New("invalid type catalog")

// catalogFile is the on-disk schema shared by YAML and TOML catalogs.
type catalogFile struct {
	Types     map[string]TypeSpec     `yaml:"types" toml:"types"`
	Aliases   map[string]string       `yaml:"aliases" toml:"aliases"`
	Functions map[string]CallableSpec `yaml:"functions" toml:"functions"`
}

// LoadCatalog reads and merges catalog files in order. Later files override
// earlier declarations with the same name.
func LoadCatalog(paths ...string) (*Catalog, error) {
	catalog := NewCatalog()
	for _, path := range paths {
		data, err := fileutil.ReadFileWithLimit(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading type catalog %s", path)
		}
		format := fileutil.FormatOf(path)
		if format == fileutil.FormatUnknown {
			return nil, errors.Wrapf(ErrInvalidCatalog, "%s: unsupported file extension", path)
		}
		parsed, err := ParseCatalog(data, format)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", path)
		}
		catalog.Merge(parsed)
	}
	return catalog, nil
}

// ParseCatalog decodes a single catalog document.
func ParseCatalog(data []byte, format fileutil.Format) (*Catalog, error) {
	var file catalogFile
	switch format {
	case fileutil.FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return nil, errors.Wrapf(ErrInvalidCatalog, "decoding YAML: %v", err)
		}
	case fileutil.FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, errors.Wrapf(ErrInvalidCatalog, "decoding TOML: %v", err)
		}
	default:
		return nil, errors.Wrapf(ErrInvalidCatalog, "unsupported format %q", format)
	}

	catalog := NewCatalog()

	// Sorted so the first reported problem is stable
	names := make([]string, 0, len(file.Types))
	for name := range file.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spec := file.Types[name]
		switch spec.Kind {
		case "", "class":
			catalog.AddClass(name, spec)
		case "interface":
			if spec.Constructor != nil {
				return nil, errors.Wrapf(ErrInvalidCatalog, "interface %s declares a constructor", name)
			}
			catalog.AddInterface(name, spec)
		default:
			return nil, errors.Wrapf(ErrInvalidCatalog, "type %s has unknown kind %q", name, spec.Kind)
		}

		if spec.Constructor != nil {
			if err := checkCallable(name+"::__construct", *spec.Constructor); err != nil {
				return nil, err
			}
		}
		for method, m := range spec.Methods {
			if err := checkCallable(name+"::"+method, m); err != nil {
				return nil, err
			}
		}
	}

	for alias, target := range file.Aliases {
		catalog.AddAlias(alias, target)
	}
	for name, fn := range file.Functions {
		if err := checkCallable(name, fn); err != nil {
			return nil, err
		}
		catalog.AddFunction(name, fn)
	}

	return catalog, nil
}

func checkCallable(name string, spec CallableSpec) error {
	switch spec.Visibility {
	case "", "public", "protected", "private":
	default:
		return errors.Wrapf(ErrInvalidCatalog, "%s has unknown visibility %q", name, spec.Visibility)
	}
	for i, p := range spec.Params {
		if p.Name == "" {
			return errors.Wrapf(ErrInvalidCatalog, "%s parameter %d has no name", name, i)
		}
	}
	return nil
}
