package revert

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// EnterTempDir creates a fresh directory beneath loc (the OS default temp
// location if empty), changes into it, and registers both the restoration
// of the prior working directory and the new directory's recursive removal
// for when the scope exits (Fail). It returns the new directory's path; the
// controller's own notion of its working directory becomes "." relative to
// this directory for the remainder of the scope.
func (r *Reverter) EnterTempDir(loc, prefix, suffix string) (string, error) {
	if r.isSealed() {
		return "", ErrSealed
	}

	prev, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	dir, err := os.MkdirTemp(loc, tempPattern(prefix, suffix))
	if err != nil {
		return "", fmt.Errorf("creating temp directory: %w", err)
	}

	if err := os.Chdir(dir); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("entering temp directory %q: %w", dir, err)
	}

	r.AddFunc(func() error {
		if err := os.Chdir(prev); err != nil {
			return fmt.Errorf("restoring working directory %q: %w", prev, err)
		}
		return nil
	})
	r.AddFunc(func() error {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing temp directory %q: %w", dir, err)
		}
		return nil
	})

	return dir, nil
}

// WriteTempFile creates a named temporary file (not removed by the OS-level
// primitive itself), writes contents into it, and registers its removal on
// scope exit. It returns the file's path.
func (r *Reverter) WriteTempFile(contents []byte, dir, prefix, suffix string, mode os.FileMode) (string, error) {
	return r.WriteTempFileFunc(func(f *os.File) error {
		_, err := f.Write(contents)
		return err
	}, dir, prefix, suffix, mode)
}

// WriteTempFileFunc is WriteTempFile's callback form: write receives the
// open file handle and does its own writing, for content a caller streams
// rather than holds fully in memory.
func (r *Reverter) WriteTempFileFunc(write func(*os.File) error, dir, prefix, suffix string, mode os.FileMode) (string, error) {
	if r.isSealed() {
		return "", ErrSealed
	}

	f, err := os.CreateTemp(dir, tempPattern(prefix, suffix))
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()

	if mode != 0 {
		if err := f.Chmod(mode); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return "", fmt.Errorf("chmod temp file %q: %w", path, err)
		}
	}

	writeErr := write(f)
	closeErr := f.Close()
	if writeErr != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("writing temp file %q: %w", path, writeErr)
	}
	if closeErr != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("closing temp file %q: %w", path, closeErr)
	}

	r.RegisterForRemoval(path)
	return path, nil
}

// RegisterForRemoval registers path for unlink on scope exit. Removal is
// best-effort: a path already gone by exit time is not an error.
func (r *Reverter) RegisterForRemoval(path string) {
	r.AddFunc(func() error {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %q: %w", path, err)
		}
		return nil
	})
}

// RandomName generates a filename not currently present in dir (the current
// directory if empty), probing uuid-derived candidates until a free one is
// found. It creates nothing — callers use this for names they will create
// themselves later.
func (r *Reverter) RandomName(dir, prefix, suffix string) (string, error) {
	if r.isSealed() {
		return "", ErrSealed
	}

	base := dir
	if base == "" {
		base = "."
	}

	for {
		candidate := prefix + uuid.NewString() + suffix
		full := filepath.Join(base, candidate)
		if _, err := os.Stat(full); os.IsNotExist(err) {
			if dir == "" {
				return candidate, nil
			}
			return full, nil
		}
	}
}

func tempPattern(prefix, suffix string) string {
	if prefix == "" {
		prefix = "tmp"
	}
	return prefix + "*" + suffix
}
