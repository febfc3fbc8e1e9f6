package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/defcheck/internal/errors"
	"github.com/thoreinstein/defcheck/internal/logging"
	"github.com/thoreinstein/defcheck/internal/watch"
)

var (
	validateFlags  engineFlags
	validateWatch  bool
	validateOutput string
)

func init() {
	validateFlags.register(validateCmd)
	validateCmd.Flags().BoolVarP(&validateWatch, "watch", "w", false,
		"re-validate whenever a definition or type file changes")
	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", "",
		"write the report to a file instead of stdout")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate service definitions",
	Long: `Validate service definition files against a type catalog.

Files may be paths or globs (doublestar syntax, e.g. config/**/*.yaml). With
no arguments the 'definitions' globs from defcheck.yaml are used. Later files
override definitions and parameters of earlier ones.

Every definition is checked and all problems are reported together.

Exit codes:
  0 - All definitions are valid
  1 - Validation errors, or invalid input
  2 - I/O or system error`,
	Example: `  # Validate two files
  defcheck validate services.yaml overrides.toml --types types.yaml

  # Machine-readable report
  defcheck validate 'config/**/*.yaml' --format json

  # Evaluate expression arguments too
  defcheck validate --evaluate-expressions

See Also: defcheck inspect, defcheck config`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	s, err := validateFlags.settings(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if !validateWatch {
		return validateOnce(ctx, cmd.OutOrStdout(), s, validateOutput)
	}
	return watchAndValidate(ctx, cmd, s)
}

func validateOnce(ctx context.Context, out io.Writer, s *settings, output string) error {
	p, err := loadProject(ctx, s)
	if err != nil {
		return err
	}

	list, err := p.validator(ctx, s).Validate(p.container.Definitions())
	if err != nil {
		return errors.NewUserError(errors.Wrap(err, "validation aborted"), "")
	}

	if err := writeReport(out, output, s.format, list, p.container.Len()); err != nil {
		return err
	}
	if output != "" {
		logging.FromContext(ctx).Info("report written", "path", output, "errors", list.Len())
	}
	return failed(list)
}

// watchAndValidate validates once, then again after every burst of changes
// until the context is canceled. Failures are reported, never returned.
func watchAndValidate(ctx context.Context, cmd *cobra.Command, s *settings) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	run := func(ctx context.Context) {
		if err := validateOnce(ctx, out, s, validateOutput); err != nil {
			PrintError(errOut, err)
		}
	}
	run(ctx)

	files, typeFiles, err := discover(s)
	if err != nil {
		return err
	}
	paths := append(files, typeFiles...)
	fmt.Fprintf(errOut, "Watching %d files for changes (Ctrl+C to stop)\n", len(paths))

	w := &watch.Watcher{Logger: logging.FromContext(ctx)}
	return w.Run(ctx, paths, func(ctx context.Context, changed []string) {
		fmt.Fprintf(out, "\n%d file(s) changed, validating again\n", len(changed))
		run(ctx)
	})
}
