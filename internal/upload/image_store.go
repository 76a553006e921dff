// Package upload stores product images on disk. Stored names are
// timestamped to avoid collisions, mirroring how the upload form names
// files. The same store resolves image references for invoice
// rendering and static serving.
package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

var ErrUnsupportedType = errors.New("upload: unsupported image type")

// content type -> accepted. Only browser-common raster formats; the
// invoice renderer embeds these directly.
var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
}

type ImageStore struct {
	dir string
}

func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("uploads dir %s: %w", dir, err)
	}
	return &ImageStore{dir: dir}, nil
}

// Save persists the uploaded image and returns the stored name, which
// is what products and order items carry as their image reference.
func (s *ImageStore) Save(filename, contentType string, r io.Reader) (string, error) {
	if !allowedTypes[contentType] {
		return "", ErrUnsupportedType
	}
	name := fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(filename))
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return name, nil
}

// Open resolves a stored image reference. The reference is reduced to
// its base name so order snapshots can never escape the uploads dir.
func (s *ImageStore) Open(ref string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.dir, filepath.Base(ref)))
}

// Dir is the directory served under /uploads.
func (s *ImageStore) Dir() string { return s.dir }
