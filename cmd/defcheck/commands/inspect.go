package commands

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"github.com/thoreinstein/defcheck/internal/definition"
	"github.com/thoreinstein/defcheck/internal/errors"
	"github.com/thoreinstein/defcheck/internal/logging"
)

var (
	inspectFlags       engineFlags
	inspectDefinitions []string
	inspectInteractive bool
)

func init() {
	inspectFlags.register(inspectCmd)
	inspectCmd.Flags().StringSliceVarP(&inspectDefinitions, "definitions", "d", nil,
		"definition files or globs (overrides config 'definitions')")
	inspectCmd.Flags().BoolVarP(&inspectInteractive, "interactive", "i", false,
		"pick the service with a fuzzy finder")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [service-id]",
	Short: "Show a service definition and its validation outcome",
	Long: `Print one service definition as a tree, followed by the result of
validating just that definition.

Aliases are followed. Use --interactive to pick the service from a list.`,
	Example: `  # Inspect the mailer service
  defcheck inspect mailer -d config/services.yaml --types types.yaml

  # Browse services using the configured globs
  defcheck inspect --interactive

See Also: defcheck validate`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

// pickService chooses a service id interactively.
var pickService = func(c *definition.Container) (string, error) {
	if !logging.IsTTY(os.Stdin) {
		return "", errors.New("--interactive needs a terminal")
	}
	ids := c.IDs()
	if len(ids) == 0 {
		return "", errors.Wrap(errors.ErrNotFound, "no services to pick from")
	}

	idx, err := fuzzyfinder.Find(
		ids,
		func(i int) string { return ids[i] },
		fuzzyfinder.WithPromptString("service> "),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			def, _ := c.Lookup(ids[i])
			return renderDefinition(ids[i], def, c)
		}),
	)
	if err != nil {
		return "", err
	}
	return ids[idx], nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	s, err := inspectFlags.settings(cmd, inspectDefinitions)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	p, err := loadProject(ctx, s)
	if err != nil {
		return err
	}

	var id string
	switch {
	case len(args) == 1:
		id = args[0]
	case inspectInteractive:
		id, err = pickService(p.container)
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil
		}
		if err != nil {
			return errors.NewUserError(errors.Wrap(err, "picking service"), "")
		}
	default:
		return errors.NewUserError(errors.New("no service id given"), "Pass a service id or use --interactive")
	}

	def, ok := p.container.Lookup(id)
	if !ok {
		return errors.NewUserError(errors.Wrapf(errors.ErrNotFound, "service %q", id), "Run: defcheck inspect --interactive")
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, renderDefinition(id, def, p.container))
	fmt.Fprintln(out)

	list, err := p.validator(ctx, s).ValidateDefinitions([]string{id})
	if err != nil {
		return errors.NewUserError(errors.Wrap(err, "validation aborted"), "")
	}
	if err := writeReport(out, "", s.format, list, 1); err != nil {
		return err
	}
	return failed(list)
}

// renderDefinition draws def as a tree rooted at id.
func renderDefinition(id string, def *definition.Definition, c *definition.Container) string {
	root := treeprint.NewWithRoot(id)
	if target, ok := c.Aliases()[id]; ok {
		root.AddNode("alias of " + target)
	}
	if def != nil {
		addDefinition(root, def)
	}
	return root.String()
}

func addDefinition(tree treeprint.Tree, def *definition.Definition) {
	if def.Class != "" {
		tree.AddNode("class: " + def.Class)
	}
	if def.Abstract {
		tree.AddNode("abstract")
	}
	if def.Synthetic {
		tree.AddNode("synthetic")
	}

	switch f := def.Factory.(type) {
	case nil:
	case definition.InlineFactory:
		branch := tree.AddBranch("factory: inline::" + f.Method)
		if f.Definition != nil {
			addDefinition(branch, f.Definition)
		}
	default:
		tree.AddNode("factory: " + f.String())
	}

	if len(def.Arguments) > 0 {
		addArguments(tree.AddBranch(fmt.Sprintf("arguments (%d)", len(def.Arguments))), def.Arguments)
	}

	if len(def.Calls) > 0 {
		calls := tree.AddBranch("calls")
		for _, call := range def.Calls {
			if len(call.Arguments) == 0 {
				calls.AddNode(call.Method + "()")
				continue
			}
			addArguments(calls.AddBranch(call.Method+"()"), call.Arguments)
		}
	}
}

func addArguments(tree treeprint.Tree, args []definition.Argument) {
	for i, arg := range args {
		label := arg.Key
		if label == "" {
			label = strconv.Itoa(i)
		}
		if inline, ok := arg.Value.(*definition.Definition); ok && inline != nil {
			addDefinition(tree.AddBranch(label+": inline"), inline)
			continue
		}
		tree.AddNode(label + ": " + describe(arg.Value))
	}
}

// describe renders an argument value the way definition files spell it.
func describe(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case definition.Reference:
		return v.String()
	case definition.Expression:
		return "@=" + v.Source
	case string:
		return strconv.Quote(v)
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = describe(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		items := make([]string, len(keys))
		for i, k := range keys {
			items[i] = k + ": " + describe(v[k])
		}
		return "{" + strings.Join(items, ", ") + "}"
	case *definition.Definition:
		return "inline " + v.Class
	default:
		return fmt.Sprint(v)
	}
}
