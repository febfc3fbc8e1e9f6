package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/defcheck/internal/config"
	"github.com/thoreinstein/defcheck/internal/editor"
	"github.com/thoreinstein/defcheck/internal/errors"
	"github.com/thoreinstein/defcheck/internal/paths"
)

var (
	configInitGlobal      bool
	configInitForce       bool
	configInitDefinitions []string
	configInitTypes       []string
)

func init() {
	configInitCmd.Flags().BoolVar(&configInitGlobal, "global", false,
		"write the user config in the XDG config directory instead of ./defcheck.yaml")
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false,
		"overwrite an existing config file")
	configInitCmd.Flags().StringSliceVar(&configInitDefinitions, "definitions", nil,
		"definition globs to record")
	configInitCmd.Flags().StringSliceVar(&configInitTypes, "types", nil,
		"type catalog globs to record")

	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage defcheck configuration",
	Long: `Manage defcheck configuration stored in defcheck.yaml.

The file is looked up in the current directory, then in
$XDG_CONFIG_HOME/defcheck (override with DEFCHECK_CONFIG_DIR). Every key can
also be set through a DEFCHECK_ environment variable, e.g. DEFCHECK_FORMAT.

Without a subcommand, lists all configuration values.`,
	Example: `  # List all configuration
  defcheck config

  # Get a specific value
  defcheck config get definitions

  # Create ./defcheck.yaml
  defcheck config init --definitions 'config/**/*.yaml' --types types.yaml

See Also: defcheck validate`,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List the effective configuration values in YAML format.`,
	Example: `  # List all configuration
  defcheck config list

See Also: defcheck config get`,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single effective configuration value by key.

Array values are printed one per line.`,
	Example: `  # Get the report format
  defcheck config get format

See Also: defcheck config list`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	Long: `Write a defcheck.yaml populated with default values.

By default the file is created in the current directory. Use --global for
the user config directory.`,
	Example: `  # Project config
  defcheck config init --definitions 'config/**/*.yaml'

  # Replace the user config
  defcheck config init --global --force

See Also: defcheck config list`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfigCheck: "true"},
	RunE:        runConfigInit,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in $EDITOR",
	Long: `Open the config file in your editor.

Edits the file the config was loaded from, or the user config when none was
found. The command comes from $DEFCHECK_EDITOR, $EDITOR or $VISUAL, falling
back to nano or vi. The file is validated after the editor exits.`,
	Example: `  # Open config in default editor
  defcheck config edit

  # Open with a specific editor
  EDITOR="code --wait" defcheck config edit

See Also: defcheck config init, defcheck config list`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfigCheck: "true"},
	RunE:        runConfigEdit,
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	values := make(map[string]any)
	for _, key := range config.Keys() {
		values[key], _ = config.Get(key)
	}

	out := cmd.OutOrStdout()
	if path := config.FileUsed(); path != "" {
		fmt.Fprintf(out, "# %s\n", path)
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(values); err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return errors.Wrap(enc.Close(), "encoding config")
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	val, ok := config.Get(key)
	if !ok {
		return errors.NewUserError(errors.Wrapf(errors.ErrNotFound, "config key %q", key), "Run: defcheck config list")
	}

	out := cmd.OutOrStdout()
	switch v := val.(type) {
	case []any:
		for _, item := range v {
			fmt.Fprintln(out, item)
		}
	case []string:
		for _, item := range v {
			fmt.Fprintln(out, item)
		}
	default:
		fmt.Fprintln(out, v)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := paths.ConfigFileName + ".yaml"
	if configInitGlobal {
		path = paths.ConfigFile()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", path)
	}

	if _, err := os.Stat(abs); err == nil && !configInitForce {
		return errors.NewUserError(errors.Newf("%s already exists", abs), "Use --force to overwrite it")
	}

	cfg := config.Default()
	if len(configInitDefinitions) > 0 {
		cfg.Definitions = configInitDefinitions
	}
	if len(configInitTypes) > 0 {
		cfg.Types = configInitTypes
	}
	if err := config.Write(abs, cfg); err != nil {
		return errors.NewUserError(err, "")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", abs)
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	path := config.FileUsed()
	if path == "" {
		path = paths.ConfigFile()
	}
	if _, err := os.Stat(path); err != nil {
		return errors.NewUserError(errors.Wrapf(errors.ErrNotFound, "config file %s", path), "Run: defcheck config init")
	}

	ctx := cmd.Context()
	streams := editor.Streams{In: cmd.InOrStdin(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
	if err := editor.Open(ctx, path, streams); err != nil {
		return errors.NewSystemError(err, "Set $EDITOR to an installed editor")
	}

	config.Init()
	if _, err := config.Load(path); err != nil {
		return errors.NewConfigError(err)
	}
	return nil
}
