// Package local implements the pathio backend for the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/nuln/pathio"
)

// Auto-register the local backend.
func init() {
	pathio.RegisterBackend(pathio.Local, func(ctx context.Context, cfg pathio.BackendConfig) (pathio.Backend, error) {
		b := New()
		if cfg.Fs != nil {
			b = NewWithFs(cfg.Fs)
		}
		if cfg.Logger != nil {
			b.SetLogger(cfg.Logger)
		}
		return b, nil
	})
}

// Backend implements pathio.Backend against the local filesystem.
type Backend struct {
	fs  afero.Fs
	log *zap.Logger
}

// New creates a Backend on the real OS filesystem.
func New() *Backend {
	return &Backend{fs: afero.NewOsFs(), log: zap.NewNop()}
}

// NewWithFs creates a Backend backed by a custom afero.Fs.
// This is useful for testing with afero.MemMapFs.
func NewWithFs(fs afero.Fs) *Backend {
	return &Backend{fs: fs, log: zap.NewNop()}
}

// SetLogger replaces the backend's logger (zap.NewNop by default).
func (b *Backend) SetLogger(log *zap.Logger) {
	b.log = log
}

// Fs exposes the underlying afero filesystem for callers that stream
// file contents themselves (pathio's transfer routines do).
func (b *Backend) Fs() afero.Fs { return b.fs }

func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	return afero.Exists(b.fs, pathio.NormalizeLocal(path))
}

// List returns the contents of a directory. Non-recursive listings
// include immediate children only, with a trailing separator appended to
// directory names. Recursive listings return every file (not directory),
// relative to path unless opts.FullPath is set.
func (b *Backend) List(ctx context.Context, path string, opts pathio.ListOptions) ([]string, error) {
	path = pathio.NormalizeLocal(path)

	if opts.Recursive {
		var out []string
		err := afero.Walk(b.fs, path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			if opts.FullPath {
				out = append(out, p)
				return nil
			}
			rel, err := filepath.Rel(path, p)
			if err != nil {
				return err
			}
			if rel == "." {
				rel = filepath.Base(p)
			}
			out = append(out, filepath.ToSlash(rel))
			return nil
		})
		return out, err
	}

	entries, err := afero.ReadDir(b.fs, path)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if opts.FullPath {
			name = filepath.Join(path, name)
		}
		if entry.IsDir() {
			name += "/"
		}
		out = append(out, name)
	}
	return out, nil
}

// Copy copies a file, or recursively copies a directory tree. Directory
// copies are destructive-replace: an existing destination tree is removed
// first, never merged into.
func (b *Backend) Copy(ctx context.Context, from, to string, overwrite, includeSourceDir bool) error {
	from = pathio.NormalizeLocal(from)
	to = pathio.NormalizeLocal(to)

	srcInfo, err := b.fs.Stat(from)
	if err != nil {
		return fmt.Errorf("%w: %q", pathio.ErrNotFound, from)
	}

	if srcInfo.IsDir() {
		if includeSourceDir {
			to = filepath.Join(to, filepath.Base(from))
		}
		exists, err := afero.Exists(b.fs, to)
		if err != nil {
			return err
		}
		if exists && !overwrite {
			return fmt.Errorf("%w: overwrite disabled and %q exists", pathio.ErrExist, to)
		}
		if exists {
			// A plain file at the destination must go too, or copyDir's
			// MkdirAll fails.
			if err := b.fs.RemoveAll(to); err != nil {
				return err
			}
		}
		return b.copyDir(from, to)
	}

	exists, err := afero.Exists(b.fs, to)
	if err != nil {
		return err
	}
	if exists && !overwrite {
		return fmt.Errorf("%w: overwrite disabled and %q exists", pathio.ErrExist, to)
	}
	if isDir, _ := afero.IsDir(b.fs, to); isDir {
		to = filepath.Join(to, filepath.Base(from))
	}
	return b.copyFile(from, to)
}

func (b *Backend) copyFile(src, dst string) error {
	if err := b.fs.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return err
	}
	sf, err := b.fs.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = sf.Close() }()

	df, err := b.fs.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = df.Close() }()

	_, err = io.Copy(df, sf)
	return err
}

func (b *Backend) copyDir(src, dst string) error {
	if err := b.fs.MkdirAll(dst, 0750); err != nil {
		return err
	}
	entries, err := afero.ReadDir(b.fs, src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := b.copyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else {
			if err := b.copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}
	return nil
}

// Remove deletes a file or directory tree and returns the file count.
// With dryRun it reports the count without mutating anything. A failed
// single-file removal is logged and swallowed; directory removal
// failures propagate.
func (b *Backend) Remove(ctx context.Context, path string, dryRun bool) (int, error) {
	path = pathio.NormalizeLocal(path)

	files, err := b.List(ctx, path, pathio.ListOptions{Recursive: true})
	if err != nil {
		return 0, err
	}
	n := len(files)

	if dryRun {
		b.log.Info("dry run: would remove file(s)",
			zap.String("path", path), zap.Int("count", n))
		return n, nil
	}

	isDir, err := afero.IsDir(b.fs, path)
	if err != nil {
		return 0, err
	}
	if isDir {
		b.log.Info("removing directory",
			zap.String("path", path), zap.Int("count", n))
		if err := b.fs.RemoveAll(path); err != nil {
			return 0, err
		}
		return n, nil
	}

	b.log.Info("removing file", zap.String("path", path))
	if err := b.fs.Remove(path); err != nil {
		// Single-file deletion is best-effort.
		b.log.Warn("could not remove file", zap.String("path", path), zap.Error(err))
	}
	return n, nil
}

// Size returns a file's byte length, or the recursive sum of file sizes
// for a directory.
func (b *Backend) Size(ctx context.Context, path string) (int64, error) {
	path = pathio.NormalizeLocal(path)

	info, err := b.fs.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}

	var total int64
	err = afero.Walk(b.fs, path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}

var _ pathio.Backend = (*Backend)(nil)
