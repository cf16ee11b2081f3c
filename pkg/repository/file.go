package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/oracle/pkg/interfaces"
)

// maxSlotSizeBytes bounds what is read back from disk. A full journal with
// 30 inline images stays well below it.
const maxSlotSizeBytes = 64 * 1024 * 1024

// File keeps the slot in a single local JSON file
type File struct {
	path string
}

var _ interfaces.Slot = (*File)(nil)

// NewFile creates a file slot. The parent directory is created on first Save.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the location of the slot file
func (f *File) Path() string {
	return f.path
}

func (f *File) Load(ctx context.Context) ([]byte, error) {
	info, err := os.Stat(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to stat slot file", goerr.V("path", f.path))
	}
	if info.Size() > maxSlotSizeBytes {
		return nil, goerr.New("slot file is too large",
			goerr.V("path", f.path),
			goerr.V("size", info.Size()),
			goerr.V("limit", maxSlotSizeBytes))
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read slot file", goerr.V("path", f.path))
	}
	return data, nil
}

func (f *File) Save(ctx context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return goerr.Wrap(err, "failed to create slot directory", goerr.V("path", f.path))
	}

	// Write to temp file first, then rename
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return goerr.Wrap(err, "failed to write slot file", goerr.V("path", tmp))
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return goerr.Wrap(err, "failed to commit slot file", goerr.V("path", f.path))
	}
	return nil
}

func (f *File) Clear(ctx context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return goerr.Wrap(err, "failed to remove slot file", goerr.V("path", f.path))
	}
	return nil
}
