package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// LocalStore serves plain paths and file:// URIs from a billy filesystem.
type LocalStore struct {
	fs billy.Filesystem
}

// NewLocalStore wraps fs. Paths are resolved to absolute paths before use.
func NewLocalStore(fs billy.Filesystem) *LocalStore {
	return &LocalStore{fs: fs}
}

// NewOSStore returns a LocalStore over the host filesystem.
func NewOSStore() *LocalStore {
	return NewLocalStore(osfs.New("/"))
}

func (s *LocalStore) Read(ctx context.Context, uri string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := LocalPath(uri)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", uri, err)
	}
	data, err := util.ReadFile(s.fs, p)
	if err != nil {
		return nil, localError("read", uri, err)
	}
	return data, nil
}

// Write replaces the file at uri by renaming a fully written sibling over it,
// so readers see either the old or the new document.
func (s *LocalStore) Write(ctx context.Context, uri string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := LocalPath(uri)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", uri, err)
	}
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return fmt.Errorf("mkdir for %q: %w", uri, err)
	}

	tmp := p + ".tmp-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	f, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return localError("create", uri, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(tmp)
		return localError("write", uri, err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return localError("close", uri, err)
	}
	if err := s.fs.Rename(tmp, p); err != nil {
		_ = s.fs.Remove(tmp)
		return localError("rename", uri, err)
	}
	return nil
}

func (s *LocalStore) Walk(ctx context.Context, root string, depth int, fn WalkFunc) error {
	rootPath, err := LocalPath(root)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", root, err)
	}

	err = util.Walk(s.fs, rootPath, func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return localError("walk", p, walkErr)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		p = filepath.ToSlash(p)
		if p == rootPath {
			if info.IsDir() {
				return nil
			}
			return fn(root)
		}

		rel := Relative(rootPath, p)
		if info.IsDir() {
			if depth >= 0 && DirDepth(rel)+1 > depth {
				return filepath.SkipDir
			}
			return nil
		}
		if depth >= 0 && DirDepth(rel) > depth {
			return nil
		}
		return fn(Join(root, rel))
	})
	return err
}

func localError(op, uri string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s %q: %w", op, uri, ErrNotFound)
	}
	return fmt.Errorf("%s %q: %w", op, uri, err)
}
