package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Process exit codes of defcheck.
const (
	ExitSuccess = 0
	// ExitUser covers invalid definitions, bad flags or files, and broken
	// configuration.
	ExitUser = 1
	// ExitSystem covers I/O failures and anything unclassified.
	ExitSystem = 2
)

var (
	// ErrNotFound marks a missing service, key or file.
	ErrNotFound = crdb.New("resource not found")

	// ErrInvalidConfig marks a defcheck.yaml that failed validation.
	ErrInvalidConfig = crdb.New("invalid configuration")

	// ErrNoDefinitions indicates no definition files were given or discovered.
	ErrNoDefinitions = crdb.New("no definition files")

	// ErrValidationFailed indicates at least one service definition is invalid.
	ErrValidationFailed = crdb.New("service definition validation failed")
)

// Re-exports of github.com/cockroachdb/errors so callers only import this package.
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	GetAllHints  = crdb.GetAllHints
	Is           = crdb.Is
	As           = crdb.As
	Unwrap       = crdb.Unwrap
	Join         = crdb.Join
	WithStack    = crdb.WithStack
	FlattenHints = crdb.FlattenHints
	Mark         = crdb.Mark
)

// ExitError attaches a process exit code, and optionally a next step for
// the user, to an error returned by a command.
type ExitError struct {
	Err        error
	Code       int
	Suggestion string
}

// NewExitError returns an ExitError without a suggestion.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// NewUserError is for mistakes the user can fix: bad input, bad files,
// invalid definitions.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitUser, Suggestion: suggestion}
}

// NewSystemError is for failures outside the user's input, such as a
// report that cannot be written.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitSystem, Suggestion: suggestion}
}

// NewConfigError reports a configuration that could not be loaded and
// points at `defcheck config list`.
func NewConfigError(err error) *ExitError {
	return &ExitError{Err: err, Code: ExitUser, Suggestion: "Run: defcheck config list"}
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode returns the code of the first ExitError in err's chain,
// ExitSuccess for nil and ExitSystem otherwise.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if crdb.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitSystem
}
