package invoice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// FSStore keeps artifacts in a single flat directory. A pending
// artifact is written to a temp file in the same directory and renamed
// into place on Commit, so readers never observe a partial file.
type FSStore struct {
	dir string
}

func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("invoice dir %s: %w", dir, err)
	}
	return &FSStore{dir: dir}, nil
}

func (s *FSStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	return f, nil
}

func (s *FSStore) Create(_ context.Context, key string) (PendingArtifact, error) {
	tmp, err := os.CreateTemp(s.dir, "."+key+".tmp-*")
	if err != nil {
		return nil, err
	}
	return &pendingFile{f: tmp, final: filepath.Join(s.dir, key)}, nil
}

type pendingFile struct {
	f     *os.File
	final string
}

func (p *pendingFile) Write(b []byte) (int, error) {
	return p.f.Write(b)
}

func (p *pendingFile) Commit() error {
	if err := p.f.Sync(); err != nil {
		_ = p.f.Close()
		_ = os.Remove(p.f.Name())
		return err
	}
	if err := p.f.Close(); err != nil {
		_ = os.Remove(p.f.Name())
		return err
	}
	return os.Rename(p.f.Name(), p.final)
}

func (p *pendingFile) Discard() error {
	_ = p.f.Close()
	return os.Remove(p.f.Name())
}

var _ ArtifactStore = (*FSStore)(nil)
