package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/thoreinstein/defcheck/internal/errors"
	"github.com/thoreinstein/defcheck/internal/validator"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates a version other than 1.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidFormat indicates an unknown report format.
	ErrInvalidFormat = errors.New("invalid report format")

	// ErrMissingContainerClass indicates an empty container_class.
	ErrMissingContainerClass = errors.New("container_class must not be empty")

	// ErrInvalidPattern indicates a malformed glob pattern.
	ErrInvalidPattern = errors.New("invalid glob pattern")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, errors.Wrapf(ErrUnsupportedVersion, "%d", cfg.Version))
	}

	if _, err := validator.ParseFormat(cfg.Format); err != nil {
		errs = append(errs, errors.WithHint(
			errors.Wrapf(ErrInvalidFormat, "%q", cfg.Format),
			"supported formats: "+formatList(),
		))
	}

	if strings.TrimSpace(cfg.ContainerClass) == "" {
		errs = append(errs, ErrMissingContainerClass)
	}

	errs = append(errs, validatePatterns("definitions", cfg.Definitions)...)
	errs = append(errs, validatePatterns("types", cfg.Types)...)

	return errs
}

func validatePatterns(field string, patterns []string) []error {
	var errs []error
	for _, p := range patterns {
		if p == "" || !doublestar.ValidatePattern(p) {
			errs = append(errs, &PatternError{Field: field, Pattern: p, Err: ErrInvalidPattern})
		}
	}
	return errs
}

func formatList() string {
	names := make([]string, len(validator.Formats))
	for i, f := range validator.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// PatternError represents an invalid glob in a list field.
type PatternError struct {
	Field   string
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("%s: %v: %q", e.Field, e.Err, e.Pattern)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}
