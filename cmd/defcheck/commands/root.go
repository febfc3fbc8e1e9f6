// Package commands implements the CLI commands for defcheck.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	buildinfo "github.com/thoreinstein/defcheck/cmd"
	"github.com/thoreinstein/defcheck/internal/config"
	"github.com/thoreinstein/defcheck/internal/errors"
	"github.com/thoreinstein/defcheck/internal/logging"
)

// skipConfigCheck marks commands that run even when the config file is
// broken.
const skipConfigCheck = "defcheck/skip-config-check"

// Values of the persistent flags.
var (
	configFile string
	verbosity  int
	quiet      bool
	logFormat  string
	logFile    string
)

// loadedConfig is the effective configuration; configLoadErr holds any
// error from loading it.
var (
	loadedConfig  *config.Config
	configLoadErr error
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ./defcheck.yaml, then $XDG_CONFIG_HOME/defcheck/defcheck.yaml)")
	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&verbosity, "verbose", "v", "log more (-v info, -vv debug, -vvv trace)")
	flags.BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	flags.StringVar(&logFormat, "log-format", string(logging.FormatText), "format of logs on stderr: text, json")
	flags.StringVar(&logFile, "log-file", "", "also append JSON logs to this file")

	rootCmd.Version = buildinfo.Version
	rootCmd.SetVersionTemplate("defcheck version {{.Version}}\n")

	// Errors are printed by PrintError so exit codes and hints stay together.
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.NewUserError(err, "Run 'defcheck --help' for usage")
	})
}

func initConfig() {
	config.Init()
	loadedConfig, configLoadErr = config.Load(configFile)
}

var rootCmd = &cobra.Command{
	Use:   "defcheck",
	Short: "Static validator for dependency injection service definitions",
	Long: `defcheck checks service definitions without constructing anything.

It loads definition files (YAML or TOML), resolves %parameter% placeholders,
and verifies every definition against a type catalog: classes exist,
constructors and factory methods are callable, required arguments are
supplied, references point at compatible services, and method calls exist.
All problems are reported together.`,
	Example: `  # Validate definitions against a type catalog
  defcheck validate config/services.yaml --types types.yaml

  # Use the globs from defcheck.yaml and re-run on every change
  defcheck validate --watch

  # Show one definition and its validation outcome
  defcheck inspect mailer

  See Also: defcheck config, defcheck version`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfig(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging installs the logger selected by the persistent flags as the
// slog default and in the command context.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("cannot use --quiet and --verbose together"), "Pick one of -q or -v")
	}
	opts := &slog.HandlerOptions{Level: logLevel()}

	var handler slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatText:
		handler = logging.NewHandler(cmd.ErrOrStderr(), opts)
	case logging.FormatJSON:
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	default:
		return errors.NewUserError(errors.Newf("invalid log format %q", logFormat), "Use --log-format text or json")
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(errors.Wrap(err, "opening log file"), "")
		}
		handler = logging.NewMultiHandler(handler, slog.NewJSONHandler(f, opts))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))
	return nil
}

// logLevel derives the level from -q and -v. Without -v, DEFCHECK_DEBUG=1
// (or true) selects debug and DEFCHECK_DEBUG=2 selects trace.
func logLevel() slog.Level {
	if quiet {
		return slog.LevelError
	}
	v := verbosity
	if v == 0 {
		switch os.Getenv("DEFCHECK_DEBUG") {
		case "1", "true":
			v = 2
		case "2":
			v = 3
		}
	}
	return logging.LevelFromVerbosity(v)
}

// checkConfig surfaces config load errors for commands that need the config.
func checkConfig(cmd *cobra.Command) error {
	if cmd.Name() == "help" || cmd.Name() == "version" {
		return nil
	}
	if _, ok := cmd.Annotations[skipConfigCheck]; ok {
		return nil
	}
	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}
	if path := config.FileUsed(); path != "" {
		logging.FromContext(cmd.Context()).Debug("loaded config", "path", path)
	}
	return nil
}

// currentConfig returns the loaded configuration, or defaults when loading
// was skipped.
func currentConfig() *config.Config {
	if loadedConfig == nil {
		return config.Default()
	}
	return loadedConfig
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// PrintError writes err with its hints and suggestion to w. Validation
// failures print nothing: the report already describes them.
func PrintError(w io.Writer, err error) {
	if err == nil || errors.Is(err, errors.ErrValidationFailed) {
		return
	}

	red := color.New(color.FgRed, color.Bold)
	gray := color.New(color.FgHiBlack)

	fmt.Fprintf(w, "%s %v\n", red.Sprint("Error:"), err)
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "  %s\n", gray.Sprintf("hint: %s", hint))
	}
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
		fmt.Fprintf(w, "  %s\n", exitErr.Suggestion)
	}
}
