package content

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Entry is one name in a store directory listing.
type Entry struct {
	Name  string
	IsDir bool
}

// Store abstracts the hierarchical document store the resolver walks.
// Paths are slash-separated and relative to the store root.
type Store interface {
	// List returns the entries of dir in backend listing order. A missing
	// directory yields an empty listing, not an error.
	List(ctx context.Context, dir string) ([]Entry, error)
	// Read returns the bytes of one document. A missing file yields
	// fs.ErrNotExist.
	Read(ctx context.Context, filePath string) ([]byte, error)
}

// DirStore serves content from a local directory tree.
type DirStore struct {
	root string
}

func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

func (s *DirStore) List(ctx context.Context, dir string) ([]Entry, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, filepath.FromSlash(dir)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	results := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		results = append(results, Entry{Name: entry.Name(), IsDir: entry.IsDir()})
	}
	return results, nil
}

func (s *DirStore) Read(ctx context.Context, filePath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, filepath.FromSlash(filePath)))
}

var _ Store = (*DirStore)(nil)

func joinPath(parts ...string) string {
	return path.Join(parts...)
}
