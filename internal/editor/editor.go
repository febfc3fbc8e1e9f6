// Package editor launches the user's preferred text editor on a file.
package editor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/defcheck/internal/errors"
	"github.com/thoreinstein/defcheck/internal/logging"
)

// ErrNoEditor indicates that no editor command could be determined.
var ErrNoEditor = errors.New("no editor found")

// Streams are the terminal streams handed to the editor process.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Open runs the user's editor on path and waits for it to exit.
//
// The command comes from $DEFCHECK_EDITOR, $EDITOR or $VISUAL and may carry
// arguments ("code --wait"); otherwise nano or vi is used.
func Open(ctx context.Context, path string, streams Streams) error {
	argv, err := Command(os.Getenv, exec.LookPath)
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Debug("opening editor", "command", argv[0], "path", path)

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = streams.In
	cmd.Stdout = streams.Out
	cmd.Stderr = streams.Err

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", argv[0])
	}
	return nil
}

// Command returns the editor command line. getenv and lookPath are
// injected so the fallback chain can be tested.
// Fallback chain: $DEFCHECK_EDITOR → $EDITOR → $VISUAL → nano → vi.
func Command(getenv func(string) string, lookPath func(string) (string, error)) ([]string, error) {
	for _, key := range []string{"DEFCHECK_EDITOR", "EDITOR", "VISUAL"} {
		if fields := strings.Fields(getenv(key)); len(fields) > 0 {
			return fields, nil
		}
	}
	for _, name := range []string{"nano", "vi"} {
		if _, err := lookPath(name); err == nil {
			return []string{name}, nil
		}
	}
	return nil, errors.WithHint(ErrNoEditor, "set $EDITOR, e.g. EDITOR=vim")
}
