// Package logging provides structured logging for the defcheck CLI using slog.
//
// The package supports both text and JSON output formats, configurable log
// levels (including a trace level below debug), a handler that fans out to
// several sinks, and helpers for carrying a logger through a context.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  logging.LevelFromVerbosity(2),
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Debug("checking definition", "service_id", "mailer")
//
// # Testing
//
// Use [ForTest] to route log output through the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//	}
package logging
