// Package fileutil reads definition and catalog files with a size limit and
// writes reports and configuration atomically.
package fileutil

import (
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/defcheck/internal/errors"
)

// AtomicWrite streams the output of write into path through a temp file in
// the same directory, renamed into place only when write succeeds. An
// interrupted or failed write leaves any existing file intact.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWrite(path string, perm os.FileMode, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".defcheck-atomic-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	tmpName := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			os.Remove(tmpName)
		}
	}()

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "setting file permissions")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}
	renamed = true
	return nil
}

// AtomicWriteFile writes data to path atomically.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	return AtomicWrite(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return errors.Wrap(err, "writing temp file")
	})
}

// AtomicWriteYAML writes v as YAML to path atomically with 0644 permissions.
func AtomicWriteYAML(path string, v any) error {
	return AtomicWrite(path, 0o644, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "marshaling YAML")
		}
		return errors.Wrap(enc.Close(), "flushing YAML")
	})
}
