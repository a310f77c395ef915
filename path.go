package pathio

import (
	"fmt"
	"os"
	gopath "path"
	"path/filepath"
	"strings"
)

// Kind tags a path with the backend that owns it. Classification is a
// pure function of the string prefix: it is computed once per operation
// and passed down instead of re-checking prefixes at every layer.
type Kind int

const (
	// Local is any path without a recognized remote scheme, including
	// relative and ~-relative paths.
	Local Kind = iota
	// Remote is an object-store path of the form scheme://bucket/key...
	Remote
)

func (k Kind) String() string {
	if k == Remote {
		return "remote"
	}
	return "local"
}

// remoteSchemes are checked literally and case-sensitively.
var remoteSchemes = []string{"s3://", "s3n://"}

// Classify reports whether path denotes a local filesystem location or a
// remote object-store location.
func Classify(path string) Kind {
	for _, scheme := range remoteSchemes {
		if strings.HasPrefix(path, scheme) {
			return Remote
		}
	}
	return Local
}

// IsRemote is shorthand for Classify(path) == Remote.
func IsRemote(path string) bool { return Classify(path) == Remote }

// SplitRemote splits a remote path into its bucket and key. The key is
// empty for a bare bucket path. It fails with ErrInvalidPath if path does
// not carry a remote scheme.
func SplitRemote(path string) (bucket, key string, err error) {
	if !IsRemote(path) {
		return "", "", fmt.Errorf("%w: %q is not a remote path", ErrInvalidPath, path)
	}
	bucket, key, _ = strings.Cut(NormalizeRemote(path), "/")
	return bucket, key, nil
}

// NormalizeLocal expands a leading ~ to the user's home directory and
// collapses redundant separators and . / .. elements.
func NormalizeLocal(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + path[1:]
		}
	}
	return filepath.Clean(path)
}

// NormalizeRemote strips the scheme prefix and collapses redundant
// separators, returning the "bucket/key..." form backends operate on.
func NormalizeRemote(path string) string {
	for _, scheme := range remoteSchemes {
		path = strings.ReplaceAll(path, scheme, "")
	}
	return strings.TrimSuffix(gopath.Clean(path), "/")
}

// NormalizeRemoteURL is NormalizeRemote with the canonical scheme
// re-applied, so the result classifies the same as its input.
func NormalizeRemoteURL(path string) string {
	return remoteSchemes[0] + NormalizeRemote(path)
}

// joinRemote appends rel (a /-separated relative path) to a remote path.
func joinRemote(base, rel string) string {
	if rel == "" {
		return NormalizeRemoteURL(base)
	}
	return NormalizeRemoteURL(base) + "/" + strings.Trim(rel, "/")
}
