package commands

import (
	"context"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/defcheck/internal/check"
	"github.com/thoreinstein/defcheck/internal/definition"
	"github.com/thoreinstein/defcheck/internal/definition/parser"
	"github.com/thoreinstein/defcheck/internal/errors"
	"github.com/thoreinstein/defcheck/internal/logging"
	"github.com/thoreinstein/defcheck/internal/typesys"
	"github.com/thoreinstein/defcheck/internal/validator"
	"github.com/thoreinstein/defcheck/pkg/fileutil"
)

// engineFlags are the validation flags shared by validate and inspect.
// Each one overrides the matching config key only when set.
type engineFlags struct {
	types          []string
	containerClass string
	evaluate       bool
	noSuggestions  bool
	format         string
}

func (f *engineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.types, "types", nil,
		"type catalog files or globs (overrides config 'types')")
	cmd.Flags().StringVar(&f.containerClass, "container-class", "",
		"class of the service container itself (overrides config 'container_class')")
	cmd.Flags().BoolVar(&f.evaluate, "evaluate-expressions", false,
		"evaluate expression arguments and check their result types")
	cmd.Flags().BoolVar(&f.noSuggestions, "no-suggestions", false,
		`disable "did you mean" hints`)
	cmd.Flags().StringVar(&f.format, "format", "",
		"report format: text, json, table (overrides config 'format')")
}

// settings is the effective configuration of one run.
type settings struct {
	definitions    []string
	types          []string
	containerClass string
	evaluate       bool
	suggestions    bool
	format         validator.Format
}

// settings merges the loaded config with the flags set on cmd. Non-empty
// definitions replace the configured globs.
func (f *engineFlags) settings(cmd *cobra.Command, definitions []string) (*settings, error) {
	cfg := currentConfig()
	s := &settings{
		definitions:    cfg.Definitions,
		types:          cfg.Types,
		containerClass: cfg.ContainerClass,
		evaluate:       cfg.EvaluateExpressions,
		suggestions:    cfg.Suggestions,
	}
	format := cfg.Format

	if len(definitions) > 0 {
		s.definitions = definitions
	}
	flags := cmd.Flags()
	if flags.Changed("types") {
		s.types = f.types
	}
	if flags.Changed("container-class") {
		if strings.TrimSpace(f.containerClass) == "" {
			return nil, errors.NewUserError(errors.New("--container-class must not be empty"), "")
		}
		s.containerClass = f.containerClass
	}
	if flags.Changed("evaluate-expressions") {
		s.evaluate = f.evaluate
	}
	if flags.Changed("no-suggestions") {
		s.suggestions = !f.noSuggestions
	}
	if flags.Changed("format") {
		format = f.format
	}

	parsed, err := validator.ParseFormat(format)
	if err != nil {
		return nil, errors.NewUserError(err, "Use --format text, json or table")
	}
	s.format = parsed
	return s, nil
}

// project is a loaded set of definitions and the types they refer to.
type project struct {
	container *definition.Container
	types     *typesys.Catalog
}

// discover expands the definition and type globs of s.
func discover(s *settings) (files, typeFiles []string, err error) {
	if len(s.definitions) == 0 {
		return nil, nil, errors.NewUserError(errors.ErrNoDefinitions,
			"Pass definition files or set 'definitions' in defcheck.yaml")
	}
	files, err = parser.Discover(s.definitions)
	if err != nil {
		return nil, nil, errors.NewUserError(err, "Check the definition paths")
	}
	if len(files) == 0 {
		return nil, nil, errors.NewUserError(
			errors.Wrapf(errors.ErrNoDefinitions, "nothing matches %s", strings.Join(s.definitions, ", ")),
			"Check the definition paths")
	}
	typeFiles, err = parser.Discover(s.types)
	if err != nil {
		return nil, nil, errors.NewUserError(err, "Check the type catalog paths")
	}
	return files, typeFiles, nil
}

func loadProject(ctx context.Context, s *settings) (*project, error) {
	logger := logging.FromContext(ctx)

	files, typeFiles, err := discover(s)
	if err != nil {
		return nil, err
	}
	logger.Debug("discovered files", "definitions", len(files), "types", len(typeFiles))

	container, err := parser.LoadFiles(ctx, files)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errors.NewUserError(err, "Fix the definition file and try again")
	}
	container.SetContainerClass(s.containerClass)

	if len(typeFiles) == 0 {
		logger.Warn("no type catalog given; every class will be reported missing")
	}
	types, err := typesys.LoadCatalog(typeFiles...)
	if err != nil {
		return nil, errors.NewUserError(err, "Fix the type catalog and try again")
	}

	return &project{container: container, types: types}, nil
}

func (p *project) validator(ctx context.Context, s *settings) *check.BatchValidator {
	return check.New(p.container, p.types,
		check.WithEvaluateExpressions(s.evaluate),
		check.WithSuggestions(s.suggestions),
		check.WithLogger(logging.FromContext(ctx)),
	)
}

// writeReport renders list to out, or atomically to path when set.
func writeReport(out io.Writer, path string, format validator.Format, list *validator.ErrorList, checked int) error {
	if path == "" {
		return validator.NewReporter(out, format).Report(list, checked)
	}

	noColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = noColor }()

	err := fileutil.AtomicWrite(path, 0o644, func(w io.Writer) error {
		return validator.NewReporter(w, format).Report(list, checked)
	})
	if err != nil {
		return errors.NewSystemError(errors.Wrapf(err, "writing report to %s", path), "Check that the output directory exists and is writable")
	}
	return nil
}

// failed turns a non-empty list into the error that makes the command exit 1.
func failed(list *validator.ErrorList) error {
	if list.Len() == 0 {
		return nil
	}
	return errors.NewExitError(errors.Mark(list.Err(), errors.ErrValidationFailed), errors.ExitUser)
}
