// Package store manages the on-disk directory of generated QR images. The
// directory is the only persistence in the system; nothing is cached in
// memory and there is no in-process locking. The create/create race is
// closed by the filesystem itself: Write opens with O_EXCL, so exactly one
// of two concurrent creators wins and the other observes ErrExists.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

var (
	// ErrExists is returned by Write when the artifact is already present.
	ErrExists = errors.New("artifact already exists")
	// ErrNotFound is returned by Remove when the artifact is absent.
	ErrNotFound = errors.New("artifact not found")
)

// Store is the sole accessor of the artifact directory.
type Store struct {
	root string
	log  *zap.Logger
}

// New returns a Store rooted at dir. Call EnsureRoot before first use.
func New(dir string, log *zap.Logger) *Store {
	return &Store{root: dir, log: log}
}

// EnsureRoot creates the root directory and its parents if missing.
// Idempotent; safe to call repeatedly.
func (s *Store) EnsureRoot() error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("create artifact directory %s: %w", s.root, err)
	}
	return nil
}

// Path returns the filesystem path an artifact would live at.
func (s *Store) Path(filename string) string {
	return filepath.Join(s.root, filename)
}

// Exists reports whether an artifact with the given filename is present.
func (s *Store) Exists(filename string) bool {
	info, err := os.Stat(s.Path(filename))
	return err == nil && !info.IsDir()
}

// List returns the filenames directly inside the root, in no guaranteed
// order. Subdirectories are skipped; callers filter out foreign entries.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read artifact directory %s: %w", s.root, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Write stores a new artifact. The open is exclusive: if the file already
// exists (including a concurrent create losing the race) Write returns
// ErrExists and leaves the existing bytes untouched. A failed write
// removes the partial file so an aborted create leaves no residue.
func (s *Store) Write(filename string, data []byte) error {
	path := s.Path(filename)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrExists
		}
		return fmt.Errorf("create artifact %s: %w", filename, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		s.cleanup(path)
		return fmt.Errorf("write artifact %s: %w", filename, err)
	}
	if err := f.Close(); err != nil {
		s.cleanup(path)
		return fmt.Errorf("close artifact %s: %w", filename, err)
	}
	return nil
}

// Remove deletes an artifact. ErrNotFound when it was already gone.
func (s *Store) Remove(filename string) error {
	err := os.Remove(s.Path(filename))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("remove artifact %s: %w", filename, err)
	}
	return nil
}

func (s *Store) cleanup(path string) {
	if err := os.Remove(path); err != nil {
		s.log.Error("could not remove partial artifact",
			zap.String("path", path), zap.Error(err))
	}
}
