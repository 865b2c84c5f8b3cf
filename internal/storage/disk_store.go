package storage

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskStore keeps blobs on the local filesystem under a single root
// directory. Blob paths use forward slashes regardless of platform.
type DiskStore struct {
	root         string
	publicPrefix string
}

func NewDiskStore(root, publicPrefix string) *DiskStore {
	return &DiskStore{
		root:         root,
		publicPrefix: strings.TrimSuffix(publicPrefix, "/"),
	}
}

func (s *DiskStore) Put(ctx context.Context, path string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}

	f, err := os.Create(full)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return err
	}

	return f.Close()
}

func (s *DiskStore) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *DiskStore) Walk(ctx context.Context, prefix string, fn func(path string, modTime time.Time) error) error {
	base := filepath.Join(s.root, filepath.FromSlash(prefix))

	return filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}

		return fn(filepath.ToSlash(rel), info.ModTime())
	})
}

func (s *DiskStore) PublicPath(path string) string {
	return s.publicPrefix + "/" + strings.TrimPrefix(path, "/")
}

func (s *DiskStore) FromPublicPath(public string) (string, bool) {
	rest, ok := strings.CutPrefix(public, s.publicPrefix+"/")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}
