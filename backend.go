package pathio

import "context"

// ListOptions controls how listings are rendered.
type ListOptions struct {
	// FullPath returns each entry with its full path (scheme included
	// for remote paths) instead of relative to the listed directory.
	FullPath bool
	// Recursive lists every file under the path. Directories themselves
	// are not included in recursive listings.
	Recursive bool
}

// Backend is the primitive operation set every storage backend provides.
// Single-path operations on FS classify the path and delegate to the
// matching Backend with no cross-backend logic.
type Backend interface {
	// Exists reports whether a file or directory exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the contents of a directory, or a one-element list if
	// path names a single file.
	List(ctx context.Context, path string, opts ListOptions) ([]string, error)

	// Remove deletes a file or directory tree and returns the number of
	// files affected. With dryRun it only reports the count, mutating
	// nothing.
	Remove(ctx context.Context, path string, dryRun bool) (int, error)

	// Size returns the size in bytes of a file, or the recursive sum of
	// file sizes for a directory.
	Size(ctx context.Context, path string) (int64, error)
}
