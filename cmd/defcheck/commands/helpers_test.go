package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/thoreinstein/defcheck/internal/paths"
)

const typesYAML = `
types:
  Logger: { kind: interface }
  FileLogger: { implements: [Logger] }
  Mailer:
    constructor:
      params: [{ name: logger, type: Logger }]
    methods:
      setSender: { params: [{ name: sender, type: string }] }
`

const validServices = `
parameters:
  mailer.class: Mailer
services:
  logger: { class: FileLogger }
  app.logger: "@logger"
  mailer:
    class: "%mailer.class%"
    arguments: ["@app.logger"]
    calls:
      - [setSender, [noreply]]
`

const invalidServices = `
services:
  logger: { class: FileLoger }
  mailer: { class: Mailer }
`

// isolate runs the test in an empty working directory with an empty user
// config directory, and returns the working directory.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv(paths.ConfigDirEnv, t.TempDir())
	t.Setenv("NO_COLOR", "1")
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// resetCommand restores every flag of cmd and its subcommands to its
// default and gives them ctx, so state from one Execute does not leak into
// the next. Cobra only hands the root context to subcommands without one.
func resetCommand(ctx context.Context, cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	cmd.SetContext(ctx)
	for _, sub := range cmd.Commands() {
		resetCommand(ctx, sub)
	}
}

// execute runs the CLI with args and returns what it wrote to stdout and
// stderr.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetCommand(ctx, rootCmd)
	loadedConfig, configLoadErr = nil, nil

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err = rootCmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}
