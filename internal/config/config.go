package config

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/viper"

	"github.com/thoreinstein/defcheck/internal/definition"
	"github.com/thoreinstein/defcheck/internal/errors"
	"github.com/thoreinstein/defcheck/internal/paths"
	"github.com/thoreinstein/defcheck/pkg/fileutil"
)

// EnvPrefix is the prefix of environment variables that override keys,
// e.g. DEFCHECK_EVALUATE_EXPRESSIONS.
const EnvPrefix = "DEFCHECK"

// Config represents the top-level configuration structure.
type Config struct {
	Version             int      `mapstructure:"version" yaml:"version"`
	EvaluateExpressions bool     `mapstructure:"evaluate_expressions" yaml:"evaluate_expressions"`
	ContainerClass      string   `mapstructure:"container_class" yaml:"container_class"`
	Definitions         []string `mapstructure:"definitions" yaml:"definitions"`
	Types               []string `mapstructure:"types" yaml:"types"`
	Format              string   `mapstructure:"format" yaml:"format"`
	Suggestions         bool     `mapstructure:"suggestions" yaml:"suggestions"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version:        1,
		ContainerClass: definition.DefaultContainerClass,
		Definitions:    []string{},
		Types:          []string{},
		Format:         "text",
		Suggestions:    true,
	}
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
// Calling it again discards any previously loaded file.
func Init() {
	viper.Reset()

	// Config file settings
	viper.SetConfigName(paths.ConfigFileName)
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".") // Current directory
	viper.AddConfigPath(paths.ConfigDir())

	// Environment variable support
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	d := Default()
	viper.SetDefault("version", d.Version)
	viper.SetDefault("evaluate_expressions", d.EvaluateExpressions)
	viper.SetDefault("container_class", d.ContainerClass)
	viper.SetDefault("definitions", d.Definitions)
	viper.SetDefault("types", d.Types)
	viper.SetDefault("format", d.Format)
	viper.SetDefault("suggestions", d.Suggestions)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations.
// Returns the loaded configuration or default values if no file is found (when path is empty).
// The result is validated; all problems are reported together.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load without a file: defaults apply.
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			return nil, errors.Wrapf(errors.ErrNotFound, "config file %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errors.Join(errs...), "validating config")
	}
	return &cfg, nil
}

// FileUsed returns the config file Load read, or "" when defaults apply.
func FileUsed() string {
	return viper.ConfigFileUsed()
}

// Keys returns the known configuration keys, sorted.
func Keys() []string {
	keys := viper.AllKeys()
	slices.Sort(keys)
	return keys
}

// Get returns the effective value of key.
func Get(key string) (any, bool) {
	if !slices.Contains(viper.AllKeys(), key) {
		return nil, false
	}
	return viper.Get(key), true
}

// Write saves cfg as YAML to path atomically, creating the parent
// directory.
func Write(path string, cfg *Config) error {
	if errs := Validate(cfg); len(errs) > 0 {
		return errors.Wrap(errors.Join(errs...), "validating config")
	}
	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	return errors.Wrap(fileutil.AtomicWriteYAML(path, cfg), "writing config")
}
