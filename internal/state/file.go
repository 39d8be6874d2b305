package state

import (
	"os"
	"path/filepath"
)

// File persists each key as a JSON file in a directory, by default the
// user's config dir under bible-reader/.
type File struct {
	dir string
}

// DefaultDir returns the per-user state directory, creating it if needed.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "bible-reader")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// NewFile creates a file store rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Get retrieves a value by key.
func (f *File) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Put stores a value by key.
func (f *File) Put(key string, value []byte) error {
	return os.WriteFile(f.path(key), value, 0o644)
}

// Delete removes a value by key.
func (f *File) Delete(key string) error {
	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close is a no-op for file store.
func (f *File) Close() error {
	return nil
}
