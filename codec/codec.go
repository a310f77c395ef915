// Package codec holds the format registry behind pathio's Load and Save.
//
// A codec is looked up by format name, inferred from the path's file
// extension when the caller gives no hint. Built-in codecs (raw, json,
// csv, gob) register themselves here; codecs that pull in their own
// dependency live in subpackages and register through a blank import:
//
//	import _ "github.com/nuln/pathio/codec/parquetcodec"
package codec

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Codec encodes and decodes one object format.
type Codec interface {
	// Decode reads one value from r. The dynamic type of the result is
	// codec-specific (e.g. []byte for raw, [][]string for csv).
	Decode(r io.Reader) (any, error)

	// Encode writes v to w. It fails if v's dynamic type is not one the
	// codec accepts.
	Encode(w io.Writer, v any) error
}

var (
	mu         sync.RWMutex
	codecs     = make(map[string]Codec)
	extensions = make(map[string]string)
)

// Register makes a codec available by the provided format name, mapping
// the given file extensions ("csv", not ".csv") to it for inference.
// It panics if the name is already taken.
func Register(name string, c Codec, exts ...string) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := codecs[name]; exists {
		panic(fmt.Sprintf("codec: %q already registered", name))
	}
	codecs[name] = c
	for _, ext := range exts {
		extensions[ext] = name
	}
}

// Lookup returns the codec registered under name.
func Lookup(name string) (Codec, bool) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := codecs[name]
	return c, ok
}

// Formats returns a sorted list of all registered format names.
func Formats() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Infer maps a path's file extension to a registered format name. The
// second result is false when the path has no extension or the extension
// is unknown.
func Infer(path string) (string, bool) {
	idx := strings.LastIndex(path, ".")
	if idx < 0 || idx == len(path)-1 {
		return "", false
	}
	mu.RLock()
	defer mu.RUnlock()
	name, ok := extensions[path[idx+1:]]
	return name, ok
}
