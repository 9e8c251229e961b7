package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-ew/catalog"
	"github.com/cwbudde/algo-ew/spectrum"
)

// Dir reads spectra from a local directory tree.
type Dir struct {
	Root     string
	Template string
	Codec    Codec
}

// NewDir returns a directory provider with the default key template and
// FITS codec.
func NewDir(root string) *Dir {
	return &Dir{Root: root, Template: DefaultKeyTemplate, Codec: NewFITS()}
}

// Path returns the file path for id.
func (d *Dir) Path(id catalog.ID) string {
	return filepath.Join(d.Root, filepath.FromSlash(Key(d.Template, id)))
}

// Fetch reads and decodes the spectrum file for id.
func (d *Dir) Fetch(ctx context.Context, id catalog.ID) (*spectrum.Spectrum, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := d.Path(id)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("read spectrum: %w", err)
	}

	codec := d.Codec
	if codec == nil {
		codec = NewFITS()
	}

	return decode(codec, path, data)
}
