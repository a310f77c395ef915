package pathio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/nuln/pathio/codec"
)

// LoadOptions controls Load.
type LoadOptions struct {
	// Format names a registered codec. When empty the format is inferred
	// from the path's file extension.
	Format string
}

// SaveOptions controls Save. Use DefaultSaveOptions as the starting
// point; a nil *SaveOptions means exactly those defaults.
type SaveOptions struct {
	// Format names a registered codec, inferred from the extension when
	// empty.
	Format string
	// Overwrite replaces an existing destination; when false, Save fails
	// with ErrExist if path exists.
	Overwrite bool
	// ACL is the access-control setting for remote writes.
	ACL string
}

// DefaultSaveOptions returns the defaults: overwrite enabled, format
// inferred.
func DefaultSaveOptions() SaveOptions {
	return SaveOptions{Overwrite: true}
}

// Load reads the object at path and decodes it with the codec for its
// declared or inferred format. The result's dynamic type is
// codec-specific: []byte for raw, [][]string for csv, and so on.
func (f *FS) Load(ctx context.Context, path string, opts *LoadOptions) (any, error) {
	var o LoadOptions
	if opts != nil {
		o = *opts
	}

	c, format, err := f.resolveCodec(path, o.Format)
	if err != nil {
		return nil, err
	}

	var r io.ReadCloser
	if IsRemote(path) {
		remote, err := f.remoteEngine(ctx)
		if err != nil {
			return nil, err
		}
		exists, err := remote.Exists(ctx, path)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, path)
		}
		r, err = remote.Open(ctx, path)
		if err != nil {
			return nil, err
		}
	} else {
		local, err := f.localEngine(ctx)
		if err != nil {
			return nil, err
		}
		r, err = local.Fs().Open(NormalizeLocal(path))
		if err != nil {
			return nil, err
		}
	}
	defer func() { _ = r.Close() }()

	f.log.Debug("loading object", zap.String("path", path), zap.String("format", format))
	return c.Decode(r)
}

// Save encodes v with the codec for its declared or inferred format and
// writes it to path. Parent directories are created for local paths.
func (f *FS) Save(ctx context.Context, v any, path string, opts *SaveOptions) error {
	o := DefaultSaveOptions()
	if opts != nil {
		o = *opts
	}

	c, format, err := f.resolveCodec(path, o.Format)
	if err != nil {
		return err
	}

	if !o.Overwrite {
		exists, err := f.Exists(ctx, path)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: overwrite disabled and %q exists", ErrExist, path)
		}
	}

	var buf bytes.Buffer
	if err := c.Encode(&buf, v); err != nil {
		return err
	}

	f.log.Debug("saving object",
		zap.String("path", path), zap.String("format", format), zap.Int("bytes", buf.Len()))

	if IsRemote(path) {
		remote, err := f.remoteEngine(ctx)
		if err != nil {
			return err
		}
		return remote.Upload(ctx, NormalizeRemoteURL(path), &buf, o.ACL)
	}

	local, err := f.localEngine(ctx)
	if err != nil {
		return err
	}
	lfs := local.Fs()
	dst := NormalizeLocal(path)
	if err := lfs.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return err
	}
	w, err := lfs.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	_, err = io.Copy(w, &buf)
	return err
}

func (f *FS) resolveCodec(path, format string) (codec.Codec, string, error) {
	if format == "" {
		inferred, ok := codec.Infer(path)
		if !ok {
			return nil, "", fmt.Errorf(
				"%w: cannot infer format from %q; use a supported extension or declare the format",
				ErrUnsupportedFormat, path)
		}
		format = inferred
	}
	c, ok := codec.Lookup(format)
	if !ok {
		return nil, "", fmt.Errorf("%w: no codec registered for %q (formats: %v)",
			ErrUnsupportedFormat, format, codec.Formats())
	}
	return c, format, nil
}
