// Package errors provides error handling conventions for the defcheck CLI.
//
// This package defines sentinel errors for common failure conditions,
// an ExitError type for CLI exit code handling, exit code constants
// following standard Unix conventions, and re-exports of the
// github.com/cockroachdb/errors helpers used throughout the code base.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [errors.Is]:
//
//	if errors.Is(err, defcheckerrors.ErrValidationFailed) {
//	    // at least one definition is invalid
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): Invalid definitions, invalid input or configuration
//   - ExitSystem (2): System-related error (I/O, permissions, etc.)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion. It supports unwrapping via [errors.Unwrap] and [errors.As]:
//
//	err := defcheckerrors.NewUserError(defcheckerrors.ErrInvalidConfig, "Check your config file")
//	os.Exit(defcheckerrors.ExitCode(err))
package errors
