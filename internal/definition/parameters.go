package definition

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for placeholder resolution. These are faults in the
// container configuration rather than in a single definition.
var (
	// ErrParameterNotFound indicates a placeholder names an unknown parameter.
	ErrParameterNotFound = errors.New("parameter not found")

	// ErrCircularParameter indicates parameters that reference each other.
	ErrCircularParameter = errors.New("circular parameter reference")

	// ErrNonScalarParameter indicates a list or map parameter embedded in a string.
	ErrNonScalarParameter = errors.New("parameter is not a scalar")
)

var placeholderRegex = regexp.MustCompile(`%%|%([^%\s]+)%`)

// ResolveString implements [Graph].
//
// "%name%" is replaced by the parameter value and "%%" by a literal "%".
// Parameter values may themselves contain placeholders.
func (c *Container) ResolveString(s string) (string, error) {
	return c.resolve(s, map[string]bool{})
}

func (c *Container) resolve(s string, resolving map[string]bool) (string, error) {
	if !strings.Contains(s, "%") {
		return s, nil
	}

	var firstErr error
	out := placeholderRegex.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}
		if match == "%%" {
			return "%"
		}
		name := match[1 : len(match)-1]
		resolved, err := c.resolveParameter(name, resolving)
		if err != nil {
			firstErr = err
			return match
		}
		return resolved
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

func (c *Container) resolveParameter(name string, resolving map[string]bool) (string, error) {
	key := strings.ToLower(name)
	if resolving[key] {
		return "", errors.Wrapf(ErrCircularParameter, "%%%s%%", name)
	}

	value, ok := c.lookupParameter(name)
	if !ok {
		return "", errors.Wrapf(ErrParameterNotFound, "%%%s%%", name)
	}

	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		resolving[key] = true
		defer delete(resolving, key)
		return c.resolve(v, resolving)
	case bool, int, int64, float64, uint, int32, float32:
		return fmt.Sprint(v), nil
	default:
		return "", errors.Wrapf(ErrNonScalarParameter, "%%%s%%", name)
	}
}

// lookupParameter matches names case-insensitively, like the containers
// the definition format comes from. An exact match wins; among names that
// differ only by case the lowest in byte order is used.
func (c *Container) lookupParameter(name string) (any, bool) {
	if v, ok := c.parameters[name]; ok {
		return v, true
	}
	for _, k := range slices.Sorted(maps.Keys(c.parameters)) {
		if strings.EqualFold(k, name) {
			return c.parameters[k], true
		}
	}
	return nil, false
}
