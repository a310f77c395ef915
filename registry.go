package pathio

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// BackendConfig carries the backend-specific passthrough options. None of
// the fields are interpreted by the dispatch layer itself.
type BackendConfig struct {
	// Profile selects a shared-config credentials profile (remote).
	Profile string
	// Region overrides the store region (remote).
	Region string
	// Endpoint points at a custom S3-compatible endpoint (remote).
	Endpoint string
	// AccessKey/SecretKey use static credentials (remote).
	AccessKey string
	SecretKey string
	// ACL is the default access-control setting for remote writes.
	ACL string
	// Fs substitutes the local filesystem (local), e.g. afero.NewMemMapFs
	// in tests.
	Fs afero.Fs
	// Logger is handed to the backend; nil means silent.
	Logger *zap.Logger
}

// BackendFactory creates a Backend from a BackendConfig.
type BackendFactory func(ctx context.Context, cfg BackendConfig) (Backend, error)

var (
	backendsMu       sync.RWMutex
	backendFactories = make(map[Kind]BackendFactory)
)

// RegisterBackend makes a storage backend available for a path kind.
// This is called from the driver package's init() function. It panics if
// called twice for the same kind.
func RegisterBackend(kind Kind, factory BackendFactory) {
	backendsMu.Lock()
	defer backendsMu.Unlock()

	if _, exists := backendFactories[kind]; exists {
		panic(fmt.Sprintf("pathio: backend for %q already registered", kind))
	}
	backendFactories[kind] = factory
}

func openBackend(ctx context.Context, kind Kind, cfg BackendConfig) (Backend, error) {
	backendsMu.RLock()
	factory, ok := backendFactories[kind]
	backendsMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("pathio: no %s backend registered (forgotten import?)", kind)
	}
	return factory(ctx, cfg)
}
