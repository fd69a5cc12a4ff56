package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// FilesystemBackend stores each object as a file under Root. The version
// token of an object lives in a hidden sidecar file next to it; files that
// have no sidecar are versioned by their content hash.
//
// The version check is atomic within one process only.
type FilesystemBackend struct {
	Root string
	mu   sync.Mutex
}

func NewFilesystemBackend(root string) (*FilesystemBackend, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", root, err)
	}
	return &FilesystemBackend{Root: root}, nil
}

func (b *FilesystemBackend) Name() string { return "filesystem" }

func (b *FilesystemBackend) paths(key string) (string, string, error) {
	if !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", "", fmt.Errorf("invalid object key %q", key)
	}
	p := filepath.Join(b.Root, filepath.FromSlash(key))
	sidecar := filepath.Join(filepath.Dir(p), "."+filepath.Base(p)+".version")
	return p, sidecar, nil
}

func (b *FilesystemBackend) GetObject(ctx context.Context, key string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.read(key)
}

func (b *FilesystemBackend) read(key string) (*Object, error) {
	p, sidecar, err := b.paths(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	version := contentHash(data)
	if v, err := os.ReadFile(sidecar); err == nil && len(v) > 0 {
		version = strings.TrimSpace(string(v))
	}
	return &Object{Key: key, Data: data, Version: version}, nil
}

func (b *FilesystemBackend) PutObject(ctx context.Context, key string, data []byte, expectedVersion string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	p, sidecar, err := b.paths(key)
	if err != nil {
		return "", err
	}

	if expectedVersion != "" {
		current, err := b.read(key)
		switch {
		case errors.Is(err, ErrNotFound):
			if expectedVersion != AbsentVersion {
				return "", ErrVersionMismatch
			}
		case err != nil:
			return "", err
		case current.Version != expectedVersion:
			return "", ErrVersionMismatch
		}
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create dir for %s: %w", key, err)
	}

	// The sidecar goes first and is restored if the data write fails, so
	// new content never shows under an old version.
	previous, prevErr := os.ReadFile(sidecar)
	version := uuid.NewString()
	if err := writeFileAtomic(sidecar, []byte(version)); err != nil {
		return "", err
	}
	if err := writeFileAtomic(p, data); err != nil {
		if prevErr == nil {
			_ = writeFileAtomic(sidecar, previous)
		} else {
			_ = os.Remove(sidecar)
		}
		return "", err
	}
	return version, nil
}

func (b *FilesystemBackend) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var keys []string
	err := filepath.WalkDir(b.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() && p != b.Root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.Root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", b.Root, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// writeFileAtomic writes to a temp file in the same directory and renames
// it over the destination.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
