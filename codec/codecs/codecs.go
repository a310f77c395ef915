// Package codecs is a convenience package that registers every codec,
// including the ones with their own dependencies. Import it with a blank
// identifier:
//
//	import _ "github.com/nuln/pathio/codec/codecs"
package codecs

import (
	"github.com/nuln/pathio/codec"
	_ "github.com/nuln/pathio/codec/parquetcodec"
)

// Init ensures all codecs are registered. Registration happens by
// importing the package; Init exists for callers that want an explicit
// call site.
func Init() {}

// List returns the registered format names.
func List() []string {
	return codec.Formats()
}
