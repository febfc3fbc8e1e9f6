package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "defcheck"

// ConfigFileName is the base name of the configuration file, without
// extension.
const ConfigFileName = "defcheck"

// ConfigDirEnv overrides the configuration directory when set.
const ConfigDirEnv = "DEFCHECK_CONFIG_DIR"

// DefaultDirPerm is the default permission for newly created directories (private).
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm (0700) is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// ConfigDir returns the defcheck configuration directory:
// $DEFCHECK_CONFIG_DIR when set, otherwise <ConfigHome>/defcheck.
func ConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	return filepath.Join(ConfigHome(), AppName)
}

// ConfigFile returns the path of the user configuration file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), ConfigFileName+".yaml")
}
