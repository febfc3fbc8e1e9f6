package validator

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/thoreinstein/defcheck/internal/definition"
	"github.com/thoreinstein/defcheck/internal/errors"
)

// ValidationError is the failure of one service definition.
type ValidationError struct {
	// ServiceID is the id the definition is registered under.
	ServiceID string
	// Definition is the definition that failed. It is never modified.
	Definition *definition.Definition
	// Err is the failure cause.
	Err error
}

// NewValidationError creates a ValidationError.
func NewValidationError(id string, def *definition.Definition, err error) *ValidationError {
	return &ValidationError{ServiceID: id, Definition: def, Err: err}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.ServiceID + ": " + e.Message()
}

// Unwrap returns the cause.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Message returns the cause's message.
func (e *ValidationError) Message() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// kinded is implemented by failures that name their category.
type kinded interface {
	error
	ErrorKind() string
}

// Kind returns the failure category, or "Error" when the cause has none.
func (e *ValidationError) Kind() string {
	var k kinded
	if errors.As(e.Err, &k) {
		return k.ErrorKind()
	}
	return "Error"
}

// Hints returns the hints attached to the cause, such as name suggestions.
func (e *ValidationError) Hints() []string {
	return errors.GetAllHints(e.Err)
}

// ErrorList is an append-only, ordered collection of validation errors.
// The zero value is ready to use.
type ErrorList struct {
	errs []*ValidationError
}

// NewErrorList creates an empty list.
func NewErrorList() *ErrorList {
	return &ErrorList{}
}

// Add appends an error.
func (l *ErrorList) Add(err *ValidationError) {
	l.errs = append(l.errs, err)
}

// Len returns the number of errors.
func (l *ErrorList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.errs)
}

// All yields the errors in insertion order.
func (l *ErrorList) All() iter.Seq[*ValidationError] {
	return func(yield func(*ValidationError) bool) {
		if l == nil {
			return
		}
		for _, e := range l.errs {
			if !yield(e) {
				return
			}
		}
	}
}

// Errors returns a copy of the errors in insertion order.
func (l *ErrorList) Errors() []*ValidationError {
	if l == nil {
		return nil
	}
	return slices.Clone(l.errs)
}

// Err returns nil for an empty list, otherwise an aggregated error whose
// message is the [Print] output.
func (l *ErrorList) Err() error {
	if l.Len() == 0 {
		return nil
	}
	merr := &multierror.Error{ErrorFormat: formatErrors}
	for _, e := range l.errs {
		merr = multierror.Append(merr, e)
	}
	return merr
}

// Print renders the list as:
//
//	Service definition validation errors (2):
//	- mailer: Class "Mailer" does not exist
//	- widget: Service "logger" does not exist
func Print(l *ErrorList) string {
	errs := make([]error, 0, l.Len())
	for e := range l.All() {
		errs = append(errs, e)
	}
	return formatErrors(errs)
}

func formatErrors(errs []error) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Service definition validation errors (%d):", len(errs))
	for _, err := range errs {
		sb.WriteString("\n- ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}
