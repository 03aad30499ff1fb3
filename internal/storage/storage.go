// Package storage is the blob store holding generated ticket files.
// Objects are addressed by slash-separated keys under a root directory of an
// afero filesystem, so tests can run against an in-memory filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys that are empty or escape the root.
var ErrInvalidKey = errors.New("invalid object key")

// Store reads and writes objects below a root directory.
type Store struct {
	fs   afero.Fs
	root string
}

// New returns a Store over fsys rooted at root.
func New(fsys afero.Fs, root string) *Store {
	return &Store{fs: fsys, root: root}
}

// NewOS returns a Store on the local disk rooted at dir, creating it if needed.
func NewOS(dir string) (*Store, error) {
	fsys := afero.NewOsFs()
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return New(fsys, dir), nil
}

// Put writes data under key, replacing any previous object. The write goes to
// a temporary file first so readers never see a partial ticket.
func (s *Store) Put(key string, data []byte) error {
	p, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	tmp := p + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	if err := s.fs.Rename(tmp, p); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("commit object: %w", err)
	}
	return nil
}

// Open returns a reader for the object under key. The caller closes it.
func (s *Store) Open(key string) (io.ReadCloser, error) {
	p, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open object: %w", err)
	}
	return f, nil
}

func (s *Store) resolve(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}
