package parser

import (
	"context"
	"os"
	"runtime"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"github.com/thoreinstein/defcheck/internal/definition"
	"github.com/thoreinstein/defcheck/internal/errors"
	"github.com/thoreinstein/defcheck/pkg/fileutil"
)

// ReadFile reads and parses one definition file.
func ReadFile(path string) (*File, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return Parse(path, data)
}

// LoadFiles parses paths concurrently and merges them into a new container
// in the order given. Later files override parameters and definitions of
// earlier ones.
func LoadFiles(ctx context.Context, paths []string) (*definition.Container, error) {
	files := make([]*File, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := ReadFile(path)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := definition.NewContainer()
	for _, f := range files {
		f.Apply(c)
	}
	return c, nil
}

// Discover expands doublestar glob patterns into definition file paths.
//
// Matches of one pattern are sorted; patterns keep their order and a path
// matched twice is kept at its first position. Glob matches with an
// unsupported extension are skipped. A pattern without glob syntax must name
// an existing file.
func Discover(patterns []string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			out = append(out, path)
		}
	}

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Wrapf(doublestar.ErrBadPattern, "pattern %q", pattern)
		}

		if !hasMeta(pattern) {
			info, err := os.Stat(pattern)
			if err != nil {
				return nil, errors.Wrapf(err, "definition file %q", pattern)
			}
			if info.IsDir() {
				return nil, errors.Newf("definition path %q is a directory; use a glob such as %q", pattern, pattern+"/**/*.yaml")
			}
			add(pattern)
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Wrapf(err, "expanding %q", pattern)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if fileutil.FormatOf(m) != fileutil.FormatUnknown {
				add(m)
			}
		}
	}
	return out, nil
}

func hasMeta(pattern string) bool {
	for _, r := range pattern {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
