// Package filestore keeps uploaded files on the local filesystem under a single root directory.
package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidName is returned for names that are empty, absolute, or escape the root.
var ErrInvalidName = errors.New("invalid file name")

// Store writes files beneath Dir. Names are slash-separated paths relative to Dir.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. The directory is not created; call EnsureDir.
func New(dir string) *Store {
	return &Store{dir: filepath.Clean(dir)}
}

// Dir returns the root directory.
func (s *Store) Dir() string { return s.dir }

// EnsureDir creates the root directory (and parents) when it does not exist.
// It reports whether the directory had to be created.
func (s *Store) EnsureDir() (bool, error) {
	info, err := os.Stat(s.dir)
	switch {
	case err == nil && info.IsDir():
		return false, nil
	case err == nil:
		return false, fmt.Errorf("uploads path %s is not a directory", s.dir)
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("stat uploads dir: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return false, fmt.Errorf("create uploads dir: %w", err)
	}
	return true, nil
}

// Put writes data to name, replacing any previous file. The write goes to a temporary
// file in the same directory and is renamed into place.
func (s *Store) Put(name string, data []byte) error {
	full, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		return errors.Join(fmt.Errorf("write temp file: %w", err), tmp.Close(), os.Remove(tmp.Name()))
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(fmt.Errorf("close temp file: %w", err), os.Remove(tmp.Name()))
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return errors.Join(fmt.Errorf("rename upload: %w", err), os.Remove(tmp.Name()))
	}
	return nil
}

// Remove deletes name. Missing files are not an error.
func (s *Store) Remove(name string) error {
	full, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

func (s *Store) resolve(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, `\`) {
		return "", ErrInvalidName
	}
	if !fs.ValidPath(name) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, filepath.FromSlash(name)), nil
}
