// Package pathio provides one small API over local-filesystem paths and
// S3-style object-store paths.
//
// A path starting with "s3://" or "s3n://" is remote; everything else is
// local. Every operation classifies its path(s) once and routes to the
// matching backend, so callers can move data between the two worlds with
// the same calls:
//
//	fs := pathio.New()
//	err := fs.Cp(ctx, "data/model", "s3://my-bucket/models", nil)
//	names, err := fs.Ls(ctx, "s3://my-bucket/models", pathio.ListOptions{Recursive: true})
//
// Structured values are loaded and saved through a format registry keyed
// by file extension (see the codec package). The parquet codec pulls in
// its own dependency and is registered by a blank import:
//
//	import _ "github.com/nuln/pathio/codec/codecs"
package pathio
