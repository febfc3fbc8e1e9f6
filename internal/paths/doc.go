// Package paths resolves the locations defcheck reads its own files from.
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. On Linux and macOS, paths follow XDG conventions
// (~/.config). The configuration directory can be moved with the
// DEFCHECK_CONFIG_DIR environment variable, which tests use for isolation.
package paths
