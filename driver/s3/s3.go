// Package s3 implements the pathio backend for S3-style object stores.
//
// An object store has no native directory entities: a "directory" is a
// key prefix with descendants under it, and listings surface
// pseudo-directories as common prefixes. All methods take full remote
// paths (s3://bucket/key...) and fail with pathio.ErrInvalidPath on
// anything else.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	gopath "path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/nuln/pathio"
)

// DefaultACL is the canned ACL applied to writes when none is given.
const DefaultACL = "bucket-owner-full-control"

// Auto-register the object-store backend.
func init() {
	pathio.RegisterBackend(pathio.Remote, func(ctx context.Context, cfg pathio.BackendConfig) (pathio.Backend, error) {
		b, err := New(ctx, Options{
			Profile:   cfg.Profile,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			ACL:       cfg.ACL,
		})
		if err != nil {
			return nil, err
		}
		if cfg.Logger != nil {
			b.SetLogger(cfg.Logger)
		}
		return b, nil
	})
}

// API is the subset of the S3 client surface the backend calls.
// *s3.Client satisfies it; tests inject an in-memory fake.
type API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Options configures construction of the remote backend. All fields are
// optional; the zero value uses the default AWS credential chain.
type Options struct {
	// Profile selects a profile from the shared AWS config files.
	Profile string
	// Region overrides the region from the environment/config files.
	Region string
	// Endpoint points the client at a custom S3-compatible endpoint
	// (e.g. MinIO) and switches to path-style addressing.
	Endpoint string
	// AccessKey/SecretKey use static credentials instead of the chain.
	AccessKey string
	SecretKey string
	// ACL is the default canned ACL for writes (DefaultACL when empty).
	ACL string
}

// Backend implements pathio.Backend against an object store.
type Backend struct {
	client API
	acl    types.ObjectCannedACL
	log    *zap.Logger
}

// New creates a Backend with a real S3 client built from opts.
func New(ctx context.Context, opts Options) (*Backend, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	if opts.Endpoint != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               opts.Endpoint,
					HostnameImmutable: true,
				}, nil
			},
		)
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.UsePathStyle = true
		}
	})
	return newBackend(client, opts.ACL), nil
}

// NewWithClient creates a Backend on an existing client. This is the
// test seam, and also lets callers share one client across libraries.
func NewWithClient(client API) *Backend {
	return newBackend(client, "")
}

func newBackend(client API, acl string) *Backend {
	if acl == "" {
		acl = DefaultACL
	}
	return &Backend{
		client: client,
		acl:    types.ObjectCannedACL(acl),
		log:    zap.NewNop(),
	}
}

// SetLogger replaces the backend's logger (zap.NewNop by default).
func (b *Backend) SetLogger(log *zap.Logger) {
	b.log = log
}

func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	bucket, key, err := pathio.SplitRemote(path)
	if err != nil {
		return false, err
	}
	if key != "" {
		if _, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}); err == nil {
			return true, nil
		}
	}
	out, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(childPrefix(key)),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		// A bucket that was never created holds nothing.
		if isNoSuchBucket(err) {
			return false, nil
		}
		return false, fmt.Errorf("list %s: %w", path, err)
	}
	return len(out.Contents) > 0, nil
}

// IsDir reports whether path names a pseudo-directory. A key whose
// exact-key listing contains only the key itself is a file; a key with
// any descendants is a directory; anything else does not exist.
func (b *Backend) IsDir(ctx context.Context, path string) (bool, error) {
	bucket, key, err := pathio.SplitRemote(path)
	if err != nil {
		return false, err
	}

	out, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(childPrefix(key)),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		if isNoSuchBucket(err) {
			return false, fmt.Errorf("%w: %q", pathio.ErrNotFound, path)
		}
		return false, fmt.Errorf("list %s: %w", path, err)
	}
	if len(out.Contents) > 0 {
		return true, nil
	}

	if key != "" {
		if _, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}); err == nil {
			return false, nil
		}
	}
	return false, fmt.Errorf("%w: %q", pathio.ErrNotFound, path)
}

// List returns the contents under a key/"directory", always sorted
// lexicographically (the store itself guarantees no order). A single
// file lists as just that file; a non-recursive directory listing
// separates immediate pseudo-directories (trailing separator appended)
// from immediate files.
func (b *Backend) List(ctx context.Context, path string, opts pathio.ListOptions) ([]string, error) {
	bucket, key, err := pathio.SplitRemote(path)
	if err != nil {
		return nil, err
	}

	isDir, err := b.IsDir(ctx, path)
	if err != nil {
		return nil, err
	}

	strip := pathio.NormalizeRemote(path)
	var files []string

	switch {
	case !isDir:
		files = []string{strip}
		strip = gopath.Dir(strip)
	case opts.Recursive:
		err := b.walkObjects(ctx, bucket, key, func(obj types.Object) {
			files = append(files, bucket+"/"+aws.ToString(obj.Key))
		})
		if err != nil {
			return nil, err
		}
	default:
		input := &s3.ListObjectsV2Input{
			Bucket:    aws.String(bucket),
			Prefix:    aws.String(childPrefix(key)),
			Delimiter: aws.String("/"),
		}
		for {
			out, err := b.client.ListObjectsV2(ctx, input)
			if err != nil {
				return nil, fmt.Errorf("list %s: %w", path, err)
			}
			for _, cp := range out.CommonPrefixes {
				files = append(files, bucket+"/"+aws.ToString(cp.Prefix))
			}
			for _, obj := range out.Contents {
				files = append(files, bucket+"/"+aws.ToString(obj.Key))
			}
			if !aws.ToBool(out.IsTruncated) {
				break
			}
			input.ContinuationToken = out.NextContinuationToken
		}
	}

	out := make([]string, 0, len(files))
	for _, f := range files {
		if opts.FullPath {
			out = append(out, "s3://"+f)
		} else {
			out = append(out, strings.TrimPrefix(f, strip+"/"))
		}
	}
	sort.Strings(out)
	return out, nil
}

// Walk returns the full remote path of every object under path, sorted.
// A single-object key yields an empty result, mirroring the store's view
// that a lone object has no descendants.
func (b *Backend) Walk(ctx context.Context, path string) ([]string, error) {
	bucket, key, err := pathio.SplitRemote(path)
	if err != nil {
		return nil, err
	}
	var files []string
	err = b.walkObjects(ctx, bucket, key, func(obj types.Object) {
		files = append(files, "s3://"+bucket+"/"+aws.ToString(obj.Key))
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Remove deletes a key, or every descendant key of a pseudo-directory,
// returning the file count. With dryRun it only reports the count.
func (b *Backend) Remove(ctx context.Context, path string, dryRun bool) (int, error) {
	files, err := b.List(ctx, path, pathio.ListOptions{Recursive: true, FullPath: true})
	if err != nil {
		return 0, err
	}
	n := len(files)

	if dryRun {
		b.log.Info("dry run: would remove file(s)",
			zap.String("path", path), zap.Int("count", n))
		return n, nil
	}

	b.log.Info("removing file(s)", zap.String("path", path), zap.Int("count", n))
	for _, f := range files {
		bucket, key, err := pathio.SplitRemote(f)
		if err != nil {
			return n, err
		}
		if _, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		}); err != nil {
			return n, fmt.Errorf("delete %s: %w", f, err)
		}
	}
	return n, nil
}

// Size returns an object's size from its metadata, or the sum over every
// descendant object for a pseudo-directory. The store keeps no recursive
// aggregate, so directories are always walked.
func (b *Backend) Size(ctx context.Context, path string) (int64, error) {
	bucket, key, err := pathio.SplitRemote(path)
	if err != nil {
		return 0, err
	}

	isDir, err := b.IsDir(ctx, path)
	if err != nil {
		return 0, err
	}

	if !isDir {
		head, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return 0, fmt.Errorf("head %s: %w", path, err)
		}
		return aws.ToInt64(head.ContentLength), nil
	}

	var total int64
	err = b.walkObjects(ctx, bucket, key, func(obj types.Object) {
		total += aws.ToInt64(obj.Size)
	})
	return total, err
}

// Open returns a reader over an object's content.
func (b *Backend) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	bucket, key, err := pathio.SplitRemote(path)
	if err != nil {
		return nil, err
	}
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", path, err)
	}
	return out.Body, nil
}

// Upload writes r to path. acl overrides the backend's default canned
// ACL when non-empty.
func (b *Backend) Upload(ctx context.Context, path string, r io.Reader, acl string) error {
	bucket, key, err := pathio.SplitRemote(path)
	if err != nil {
		return err
	}
	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   r,
		ACL:    b.cannedACL(acl),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", path, err)
	}
	b.log.Debug("put object", zap.String("path", path))
	return nil
}

// ServerCopy copies one object to another without the bytes leaving the
// store.
func (b *Backend) ServerCopy(ctx context.Context, from, to string, acl string) error {
	srcBucket, srcKey, err := pathio.SplitRemote(from)
	if err != nil {
		return err
	}
	dstBucket, dstKey, err := pathio.SplitRemote(to)
	if err != nil {
		return err
	}
	_, err = b.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(srcBucket + "/" + srcKey),
		ACL:        b.cannedACL(acl),
	})
	if err != nil {
		return fmt.Errorf("copy %s -> %s: %w", from, to, err)
	}
	b.log.Debug("copy object", zap.String("from", from), zap.String("to", to))
	return nil
}

func (b *Backend) cannedACL(acl string) types.ObjectCannedACL {
	if acl == "" {
		return b.acl
	}
	return types.ObjectCannedACL(acl)
}

// walkObjects visits every object under key's child prefix, following
// pagination.
func (b *Backend) walkObjects(ctx context.Context, bucket, key string, fn func(types.Object)) error {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(childPrefix(key)),
	}
	for {
		out, err := b.client.ListObjectsV2(ctx, input)
		if err != nil {
			return fmt.Errorf("list s3://%s/%s: %w", bucket, key, err)
		}
		for _, obj := range out.Contents {
			fn(obj)
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		input.ContinuationToken = out.NextContinuationToken
	}
	return nil
}

// isNoSuchBucket reports whether err is the store's missing-bucket
// error.
func isNoSuchBucket(err error) bool {
	var nsb *types.NoSuchBucket
	return errors.As(err, &nsb)
}

// childPrefix is the listing prefix that matches descendants of key but
// not the key object itself.
func childPrefix(key string) string {
	if key == "" {
		return ""
	}
	return key + "/"
}

var _ pathio.Backend = (*Backend)(nil)
