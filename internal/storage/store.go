package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

var ErrInvalidPath = errors.New("invalid storage path")

// Store is a file storage backend keyed by slash-separated relative paths.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (int64, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// AferoStore implements Store on an afero filesystem.
type AferoStore struct {
	fs afero.Fs
}

// NewAferoStore wraps fs. Tests pass afero.NewMemMapFs().
func NewAferoStore(fs afero.Fs) *AferoStore {
	return &AferoStore{fs: fs}
}

// NewDiskStore stores files below dir on the local disk.
func NewDiskStore(dir string) (*AferoStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
	}
	return NewAferoStore(afero.NewBasePathFs(osFs, dir)), nil
}

// Save writes r to name, creating parent directories.
func (s *AferoStore) Save(_ context.Context, name string, r io.Reader) (int64, error) {
	p, err := clean(name)
	if err != nil {
		return 0, err
	}
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return 0, err
	}
	f, err := s.fs.Create(p)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.Copy(f, r)
}

// Open returns a reader for name. A missing file yields an error matching
// os.ErrNotExist.
func (s *AferoStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	p, err := clean(name)
	if err != nil {
		return nil, err
	}
	return s.fs.OpenFile(p, os.O_RDONLY, 0)
}

// Delete removes name.
func (s *AferoStore) Delete(_ context.Context, name string) error {
	p, err := clean(name)
	if err != nil {
		return err
	}
	return s.fs.Remove(p)
}

// clean rejects absolute paths and any path escaping the store root.
func clean(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") {
		return "", ErrInvalidPath
	}
	p := path.Clean(name)
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", ErrInvalidPath
	}
	return p, nil
}
