// Package pathiotest provides test doubles and fixtures shared by the
// pathio test suites: an in-memory fake of the object-store API subset
// the s3 driver calls, and the canonical sample file tree.
package pathiotest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3sdk "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/spf13/afero"
)

// SampleFiles is the two-file tree used across the test suites.
var SampleFiles = map[string]string{
	"foo/bar.txt":       "This is test file bar",
	"foo/fizz/buzz.txt": "This is test file buzz",
}

// SeedLocal writes SampleFiles under root on fs.
func SeedLocal(t *testing.T, fs afero.Fs, root string) {
	t.Helper()
	for name, content := range SampleFiles {
		path := root + "/" + name
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatalf("seed %s: %v", path, err)
		}
	}
}

// SeedBucket writes SampleFiles into a FakeS3 bucket.
func SeedBucket(t *testing.T, f *FakeS3, bucket string) {
	t.Helper()
	for name, content := range SampleFiles {
		f.PutString(bucket, name, content)
	}
}

// FakeS3 is an in-memory object store implementing the API subset the
// s3 driver calls. It is safe for concurrent use.
type FakeS3 struct {
	mu       sync.Mutex
	buckets  map[string]map[string][]byte
	failKeys map[string]bool
}

// NewFakeS3 creates a FakeS3 with the given buckets pre-created.
func NewFakeS3(buckets ...string) *FakeS3 {
	f := &FakeS3{buckets: make(map[string]map[string][]byte)}
	for _, b := range buckets {
		f.buckets[b] = make(map[string][]byte)
	}
	return f
}

// PutString stores content under bucket/key directly.
func (f *FakeS3) PutString(bucket, key, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.buckets[bucket] == nil {
		f.buckets[bucket] = make(map[string][]byte)
	}
	f.buckets[bucket][key] = []byte(content)
}

// FailKey makes every subsequent write (PutObject, CopyObject) to
// bucket/key fail, for exercising partial-failure paths.
func (f *FakeS3) FailKey(bucket, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys == nil {
		f.failKeys = make(map[string]bool)
	}
	f.failKeys[bucket+"/"+key] = true
}

// Keys returns the sorted keys currently stored in bucket.
func (f *FakeS3) Keys(bucket string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.buckets[bucket]))
	for k := range f.buckets[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// noSuchBucket mirrors the store's typed missing-bucket error so
// errors.As-based handling sees the same shape as against the real API.
func noSuchBucket(bucket string) error {
	return &types.NoSuchBucket{Message: aws.String("bucket " + bucket + " does not exist")}
}

func (f *FakeS3) object(bucket, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.buckets[bucket]
	if !ok {
		return nil, false
	}
	data, ok := b[key]
	return data, ok
}

func (f *FakeS3) HeadObject(ctx context.Context, params *s3sdk.HeadObjectInput, optFns ...func(*s3sdk.Options)) (*s3sdk.HeadObjectOutput, error) {
	data, ok := f.object(aws.ToString(params.Bucket), aws.ToString(params.Key))
	if !ok {
		return nil, fmt.Errorf("NotFound: s3://%s/%s", aws.ToString(params.Bucket), aws.ToString(params.Key))
	}
	return &s3sdk.HeadObjectOutput{ContentLength: aws.Int64(int64(len(data)))}, nil
}

func (f *FakeS3) GetObject(ctx context.Context, params *s3sdk.GetObjectInput, optFns ...func(*s3sdk.Options)) (*s3sdk.GetObjectOutput, error) {
	data, ok := f.object(aws.ToString(params.Bucket), aws.ToString(params.Key))
	if !ok {
		return nil, fmt.Errorf("NoSuchKey: s3://%s/%s", aws.ToString(params.Bucket), aws.ToString(params.Key))
	}
	return &s3sdk.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func (f *FakeS3) PutObject(ctx context.Context, params *s3sdk.PutObjectInput, optFns ...func(*s3sdk.Options)) (*s3sdk.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	bucket, key := aws.ToString(params.Bucket), aws.ToString(params.Key)
	if f.failKeys[bucket+"/"+key] {
		return nil, fmt.Errorf("InternalError: put s3://%s/%s", bucket, key)
	}
	if _, ok := f.buckets[bucket]; !ok {
		return nil, noSuchBucket(bucket)
	}
	f.buckets[bucket][key] = data
	return &s3sdk.PutObjectOutput{}, nil
}

func (f *FakeS3) CopyObject(ctx context.Context, params *s3sdk.CopyObjectInput, optFns ...func(*s3sdk.Options)) (*s3sdk.CopyObjectOutput, error) {
	srcBucket, srcKey, ok := strings.Cut(aws.ToString(params.CopySource), "/")
	if !ok {
		return nil, fmt.Errorf("InvalidArgument: copy source %q", aws.ToString(params.CopySource))
	}
	data, found := f.object(srcBucket, srcKey)
	if !found {
		return nil, fmt.Errorf("NoSuchKey: s3://%s/%s", srcBucket, srcKey)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	dstBucket, dstKey := aws.ToString(params.Bucket), aws.ToString(params.Key)
	if f.failKeys[dstBucket+"/"+dstKey] {
		return nil, fmt.Errorf("InternalError: copy to s3://%s/%s", dstBucket, dstKey)
	}
	if _, ok := f.buckets[dstBucket]; !ok {
		return nil, noSuchBucket(dstBucket)
	}
	f.buckets[dstBucket][dstKey] = append([]byte(nil), data...)
	return &s3sdk.CopyObjectOutput{}, nil
}

func (f *FakeS3) DeleteObject(ctx context.Context, params *s3sdk.DeleteObjectInput, optFns ...func(*s3sdk.Options)) (*s3sdk.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bucket := aws.ToString(params.Bucket)
	if _, ok := f.buckets[bucket]; !ok {
		return nil, noSuchBucket(bucket)
	}
	delete(f.buckets[bucket], aws.ToString(params.Key))
	return &s3sdk.DeleteObjectOutput{}, nil
}

func (f *FakeS3) ListObjectsV2(ctx context.Context, params *s3sdk.ListObjectsV2Input, optFns ...func(*s3sdk.Options)) (*s3sdk.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket := aws.ToString(params.Bucket)
	objects, ok := f.buckets[bucket]
	if !ok {
		return nil, noSuchBucket(bucket)
	}

	prefix := aws.ToString(params.Prefix)
	delimiter := aws.ToString(params.Delimiter)

	keys := make([]string, 0, len(objects))
	for k := range objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &s3sdk.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	seenPrefixes := make(map[string]bool)
	for _, k := range keys {
		if delimiter != "" {
			rest := strings.TrimPrefix(k, prefix)
			if idx := strings.Index(rest, delimiter); idx >= 0 {
				cp := prefix + rest[:idx+1]
				if !seenPrefixes[cp] {
					seenPrefixes[cp] = true
					out.CommonPrefixes = append(out.CommonPrefixes, types.CommonPrefix{
						Prefix: aws.String(cp),
					})
				}
				continue
			}
		}
		out.Contents = append(out.Contents, types.Object{
			Key:  aws.String(k),
			Size: aws.Int64(int64(len(objects[k]))),
		})
	}

	if max := aws.ToInt32(params.MaxKeys); max > 0 && int32(len(out.Contents)) > max {
		out.Contents = out.Contents[:max]
	}
	return out, nil
}
