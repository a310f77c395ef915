package pathio

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// LocalEngine is what the dispatcher needs from the local backend beyond
// the shared primitive set.
type LocalEngine interface {
	Backend
	Copy(ctx context.Context, from, to string, overwrite, includeSourceDir bool) error
	Fs() afero.Fs
}

// RemoteEngine is what the dispatcher needs from the object-store
// backend beyond the shared primitive set.
type RemoteEngine interface {
	Backend
	IsDir(ctx context.Context, path string) (bool, error)
	Walk(ctx context.Context, path string) ([]string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Upload(ctx context.Context, path string, r io.Reader, acl string) error
	ServerCopy(ctx context.Context, from, to string, acl string) error
}

// FS is the unified facade over both backends. Every operation
// classifies its path(s) once and routes accordingly. Backends are
// constructed lazily on first use and reused; the remote client is safe
// for concurrent use by fan-out workers.
type FS struct {
	log *zap.Logger
	cfg BackendConfig

	mu     sync.Mutex
	local  LocalEngine
	remote RemoteEngine
}

// Option configures an FS.
type Option func(*FS)

// WithLogger sets the logger used by the dispatcher and handed to lazily
// constructed backends. The default is zap.NewNop().
func WithLogger(log *zap.Logger) Option {
	return func(f *FS) { f.log = log }
}

// WithConfig sets the backend passthrough options (credentials profile,
// endpoint, ACL, custom local filesystem).
func WithConfig(cfg BackendConfig) Option {
	return func(f *FS) { f.cfg = cfg }
}

// WithLocal injects an already-constructed local backend.
func WithLocal(b LocalEngine) Option {
	return func(f *FS) { f.local = b }
}

// WithRemote injects an already-constructed remote backend.
func WithRemote(b RemoteEngine) Option {
	return func(f *FS) { f.remote = b }
}

// New creates an FS. With no options it uses the real local filesystem
// and the default AWS credential chain for remote paths.
func New(opts ...Option) *FS {
	f := &FS{log: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FS) localEngine(ctx context.Context) (LocalEngine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.local != nil {
		return f.local, nil
	}
	cfg := f.cfg
	cfg.Logger = f.log
	b, err := openBackend(ctx, Local, cfg)
	if err != nil {
		return nil, err
	}
	eng, ok := b.(LocalEngine)
	if !ok {
		return nil, fmt.Errorf("pathio: registered local backend does not support copy")
	}
	f.local = eng
	return eng, nil
}

func (f *FS) remoteEngine(ctx context.Context) (RemoteEngine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.remote != nil {
		return f.remote, nil
	}
	cfg := f.cfg
	cfg.Logger = f.log
	b, err := openBackend(ctx, Remote, cfg)
	if err != nil {
		return nil, err
	}
	eng, ok := b.(RemoteEngine)
	if !ok {
		return nil, fmt.Errorf("pathio: registered remote backend does not support transfers")
	}
	f.remote = eng
	return eng, nil
}

func (f *FS) backendFor(ctx context.Context, path string) (Backend, error) {
	if IsRemote(path) {
		return f.remoteEngine(ctx)
	}
	return f.localEngine(ctx)
}

// Exists reports whether a file or directory exists at path.
func (f *FS) Exists(ctx context.Context, path string) (bool, error) {
	b, err := f.backendFor(ctx, path)
	if err != nil {
		return false, err
	}
	return b.Exists(ctx, path)
}

// Ls lists the contents of a local or remote directory. Listings are
// sorted by name.
func (f *FS) Ls(ctx context.Context, path string, opts ListOptions) ([]string, error) {
	b, err := f.backendFor(ctx, path)
	if err != nil {
		return nil, err
	}
	return b.List(ctx, path, opts)
}

// Rm deletes a file or directory and returns the number of files
// affected. With dryRun it reports the count without mutating anything.
func (f *FS) Rm(ctx context.Context, path string, dryRun bool) (int, error) {
	b, err := f.backendFor(ctx, path)
	if err != nil {
		return 0, err
	}
	return b.Remove(ctx, path, dryRun)
}

// Size returns the size of a file, or the recursive sum for a directory,
// in bytes.
func (f *FS) Size(ctx context.Context, path string) (int64, error) {
	b, err := f.backendFor(ctx, path)
	if err != nil {
		return 0, err
	}
	n, err := b.Size(ctx, path)
	if err != nil {
		return 0, err
	}
	f.log.Debug("computed size",
		zap.String("path", path),
		zap.Int64("bytes", n),
		zap.String("size", humanize.Bytes(uint64(n))))
	return n, nil
}

// Default is the FS used by the package-level functions.
var Default = New()

// Exists reports whether path exists, using the default FS.
func Exists(ctx context.Context, path string) (bool, error) {
	return Default.Exists(ctx, path)
}

// Ls lists path using the default FS.
func Ls(ctx context.Context, path string, opts ListOptions) ([]string, error) {
	return Default.Ls(ctx, path, opts)
}

// Rm removes path using the default FS.
func Rm(ctx context.Context, path string, dryRun bool) (int, error) {
	return Default.Rm(ctx, path, dryRun)
}

// Size returns the size of path using the default FS.
func Size(ctx context.Context, path string) (int64, error) {
	return Default.Size(ctx, path)
}

// Cp copies from -> to using the default FS.
func Cp(ctx context.Context, from, to string, opts *CopyOptions) error {
	return Default.Cp(ctx, from, to, opts)
}

// Load loads the object at path using the default FS.
func Load(ctx context.Context, path string, opts *LoadOptions) (any, error) {
	return Default.Load(ctx, path, opts)
}

// Save saves v to path using the default FS.
func Save(ctx context.Context, v any, path string, opts *SaveOptions) error {
	return Default.Save(ctx, v, path, opts)
}
