package pathio

import (
	"context"
	"fmt"
	"io"
	gopath "path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the worker-pool width for multi-file transfers.
const DefaultConcurrency = 100

// CopyOptions controls Cp. Use DefaultCopyOptions as the starting point;
// a nil *CopyOptions means exactly those defaults.
type CopyOptions struct {
	// Overwrite replaces an existing destination. When false, Cp fails
	// with ErrExist before any transfer begins if any planned
	// destination already exists.
	Overwrite bool
	// IncludeSourceDir appends the source directory's basename to the
	// destination when copying a directory, so the folder itself (not
	// just its contents) lands under the destination.
	IncludeSourceDir bool
	// Concurrency is the worker count for multi-file fan-out.
	Concurrency int
	// ACL is the access-control setting for remote writes, passed
	// through uninterpreted. Empty means the backend default.
	ACL string
}

// DefaultCopyOptions returns the defaults: overwrite enabled, source
// directory name included, DefaultConcurrency workers.
func DefaultCopyOptions() CopyOptions {
	return CopyOptions{
		Overwrite:        true,
		IncludeSourceDir: true,
		Concurrency:      DefaultConcurrency,
	}
}

// transferPair is one planned file transfer. Every pair's destination is
// computed before any transfer begins, so the overwrite check covers the
// whole set up front.
type transferPair struct {
	from string
	to   string
}

// Cp copies a file or directory of files between any combination of
// local and remote paths. Directory transfers fan out one task per file
// across a bounded worker pool and block until every task has finished;
// a failure partway through leaves whatever files already completed.
func (f *FS) Cp(ctx context.Context, from, to string, opts *CopyOptions) error {
	o := DefaultCopyOptions()
	if opts != nil {
		o = *opts
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}

	fromKind, toKind := Classify(from), Classify(to)

	if fromKind == Local && toKind == Local {
		local, err := f.localEngine(ctx)
		if err != nil {
			return err
		}
		return local.Copy(ctx, from, to, o.Overwrite, o.IncludeSourceDir)
	}

	remote, err := f.remoteEngine(ctx)
	if err != nil {
		return err
	}

	if fromKind == Remote {
		exists, err := remote.Exists(ctx, from)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %q", ErrNotFound, from)
		}

		if o.IncludeSourceDir {
			isDir, err := remote.IsDir(ctx, from)
			if err != nil {
				return err
			}
			if isDir {
				base := gopath.Base(NormalizeRemote(from))
				if toKind == Remote {
					to = joinRemote(to, base)
				} else {
					to = filepath.Join(NormalizeLocal(to), base)
				}
			}
		}

		if toKind == Remote {
			return f.cpRemoteToRemote(ctx, remote, from, to, o)
		}
		return f.cpRemoteToLocal(ctx, remote, from, to, o)
	}

	return f.cpLocalToRemote(ctx, remote, from, to, o)
}

// cpRemoteToRemote copies within the object store using server-side
// copies, one per file.
func (f *FS) cpRemoteToRemote(ctx context.Context, remote RemoteEngine, from, to string, o CopyOptions) error {
	from = NormalizeRemoteURL(from)
	to = NormalizeRemoteURL(to)

	files, err := remote.Walk(ctx, from)
	if err != nil {
		return err
	}

	plan := make([]transferPair, 0, len(files))
	for _, src := range files {
		rel := strings.TrimPrefix(src, from+"/")
		plan = append(plan, transferPair{from: src, to: joinRemote(to, rel)})
	}
	if len(plan) == 0 {
		// Single object: the walk sees no descendants.
		plan = append(plan, transferPair{from: from, to: to})
	}

	if !o.Overwrite {
		if err := f.checkPlan(ctx, plan, remote.Exists); err != nil {
			return err
		}
	}

	f.log.Debug("remote to remote copy",
		zap.String("from", from), zap.String("to", to), zap.Int("files", len(plan)))

	return f.fanout(ctx, o.Concurrency, plan, func(ctx context.Context, p transferPair) error {
		return remote.ServerCopy(ctx, p.from, p.to, o.ACL)
	})
}

// cpRemoteToLocal downloads a file or prefix, materializing the local
// destination tree first.
func (f *FS) cpRemoteToLocal(ctx context.Context, remote RemoteEngine, from, to string, o CopyOptions) error {
	local, err := f.localEngine(ctx)
	if err != nil {
		return err
	}
	lfs := local.Fs()

	from = NormalizeRemoteURL(from)
	to = NormalizeLocal(to)

	files, err := remote.Walk(ctx, from)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		// Single object.
		if !o.Overwrite {
			if err := f.checkPlan(ctx, []transferPair{{from, to}}, local.Exists); err != nil {
				return err
			}
		}
		if err := lfs.MkdirAll(filepath.Dir(to), 0750); err != nil {
			return err
		}
		return f.download(ctx, remote, from, to)
	}

	plan := make([]transferPair, 0, len(files))
	for _, src := range files {
		rel := strings.TrimPrefix(src, from+"/")
		plan = append(plan, transferPair{from: src, to: filepath.Join(to, filepath.FromSlash(rel))})
	}

	if !o.Overwrite {
		// The destination tree is replaced wholesale, so the root
		// counts as a planned destination too.
		exists, err := local.Exists(ctx, to)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: overwrite disabled and %q exists", ErrExist, to)
		}
		if err := f.checkPlan(ctx, plan, local.Exists); err != nil {
			return err
		}
	} else if ok, _ := afero.Exists(lfs, to); ok {
		// A plain file at the destination must go too, or MkdirAll
		// fails below.
		if err := lfs.RemoveAll(to); err != nil {
			return err
		}
	}

	// Materialize the destination root and every subdirectory implied by
	// remote pseudo-directories.
	if err := lfs.MkdirAll(to, 0750); err != nil {
		return err
	}
	for _, p := range plan {
		if err := lfs.MkdirAll(filepath.Dir(p.to), 0750); err != nil {
			return err
		}
	}

	f.log.Debug("remote to local copy",
		zap.String("from", from), zap.String("to", to), zap.Int("files", len(plan)))

	return f.fanout(ctx, o.Concurrency, plan, func(ctx context.Context, p transferPair) error {
		return f.download(ctx, remote, p.from, p.to)
	})
}

// cpLocalToRemote uploads a file or directory tree.
func (f *FS) cpLocalToRemote(ctx context.Context, remote RemoteEngine, from, to string, o CopyOptions) error {
	local, err := f.localEngine(ctx)
	if err != nil {
		return err
	}

	from = NormalizeLocal(from)
	exists, err := local.Exists(ctx, from)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, from)
	}

	isDir, err := afero.IsDir(local.Fs(), from)
	if err != nil {
		return err
	}

	if !isDir {
		to = NormalizeRemoteURL(to)
		if !o.Overwrite {
			if err := f.checkPlan(ctx, []transferPair{{from, to}}, remote.Exists); err != nil {
				return err
			}
		}
		return f.upload(ctx, local, remote, from, to, o.ACL)
	}

	if o.IncludeSourceDir {
		to = joinRemote(to, filepath.Base(from))
	}

	rels, err := local.List(ctx, from, ListOptions{Recursive: true})
	if err != nil {
		return err
	}
	plan := make([]transferPair, 0, len(rels))
	for _, rel := range rels {
		plan = append(plan, transferPair{
			from: filepath.Join(from, filepath.FromSlash(rel)),
			to:   joinRemote(to, rel),
		})
	}

	// Every planned destination key is checked, not just the top-level
	// prefix, keeping the policy uniform across transfer directions.
	if !o.Overwrite {
		if err := f.checkPlan(ctx, plan, remote.Exists); err != nil {
			return err
		}
	}

	f.log.Debug("local to remote copy",
		zap.String("from", from), zap.String("to", to), zap.Int("files", len(plan)))

	return f.fanout(ctx, o.Concurrency, plan, func(ctx context.Context, p transferPair) error {
		return f.upload(ctx, local, remote, p.from, p.to, o.ACL)
	})
}

func (f *FS) download(ctx context.Context, remote RemoteEngine, from, to string) error {
	local, err := f.localEngine(ctx)
	if err != nil {
		return err
	}
	rc, err := remote.Open(ctx, from)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	w, err := local.Fs().Create(to)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	_, err = io.Copy(w, rc)
	return err
}

func (f *FS) upload(ctx context.Context, local LocalEngine, remote RemoteEngine, from, to, acl string) error {
	r, err := local.Fs().Open(from)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()
	return remote.Upload(ctx, to, r, acl)
}

// checkPlan fails with ErrExist if any planned destination already
// exists. It runs strictly before any transfer is submitted.
func (f *FS) checkPlan(ctx context.Context, plan []transferPair, exists func(context.Context, string) (bool, error)) error {
	for _, p := range plan {
		ok, err := exists(ctx, p.to)
		if err != nil {
			return err
		}
		if ok {
			return fmt.Errorf("%w: overwrite disabled and %q exists", ErrExist, p.to)
		}
	}
	return nil
}

// fanout runs one task per planned file across a bounded worker pool and
// waits for all of them. The first failure cancels the remaining tasks
// and is returned wrapped in a *TransferError; files that already
// completed stay in place. Worker logging is demoted to warnings-and-up
// for the duration of the call only.
func (f *FS) fanout(ctx context.Context, width int, plan []transferPair, op func(context.Context, transferPair) error) error {
	quiet := f.log.WithOptions(zap.IncreaseLevel(zap.WarnLevel))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(width)
	for _, p := range plan {
		g.Go(func() error {
			if err := op(ctx, p); err != nil {
				quiet.Error("transfer failed",
					zap.String("from", p.from), zap.String("to", p.to), zap.Error(err))
				return &TransferError{From: p.from, To: p.to, Err: err}
			}
			return nil
		})
	}
	return g.Wait()
}
