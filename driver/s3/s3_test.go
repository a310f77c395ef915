package s3_test

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/nuln/pathio"
	"github.com/nuln/pathio/driver/s3"
	"github.com/nuln/pathio/pathiotest"
)

const bucket = "test-bucket"

func newTestBackend(t *testing.T) (*s3.Backend, *pathiotest.FakeS3) {
	t.Helper()
	fake := pathiotest.NewFakeS3(bucket)
	pathiotest.SeedBucket(t, fake, bucket)
	return s3.NewWithClient(fake), fake
}

func TestExists(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	for path, want := range map[string]bool{
		"s3://test-bucket/foo/bar.txt": true,
		"s3://test-bucket/foo":         true, // prefix with descendants
		"s3://test-bucket/foo/fizz":    true,
		"s3://test-bucket/nope":        false,
		"s3://test-bucket":             true, // non-empty bucket
	} {
		got, err := b.Exists(ctx, path)
		if err != nil {
			t.Fatalf("Exists(%q): %v", path, err)
		}
		if got != want {
			t.Errorf("Exists(%q) = %v, want %v", path, got, want)
		}
	}

	if _, err := b.Exists(ctx, "/local/path"); !errors.Is(err, pathio.ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath, got %v", err)
	}
}

func TestExistsMissingBucket(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	got, err := b.Exists(ctx, "s3://no-such-bucket/foo/bar.txt")
	if err != nil {
		t.Fatalf("Exists on missing bucket: %v", err)
	}
	if got {
		t.Error("missing bucket should not exist")
	}

	if _, err := b.IsDir(ctx, "s3://no-such-bucket/foo"); !errors.Is(err, pathio.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestIsDir(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	isDir, err := b.IsDir(ctx, "s3://test-bucket/foo")
	if err != nil {
		t.Fatalf("IsDir(foo): %v", err)
	}
	if !isDir {
		t.Error("foo should be a directory")
	}

	isDir, err = b.IsDir(ctx, "s3://test-bucket/foo/bar.txt")
	if err != nil {
		t.Fatalf("IsDir(bar.txt): %v", err)
	}
	if isDir {
		t.Error("bar.txt should be a file")
	}

	if _, err := b.IsDir(ctx, "s3://test-bucket/missing"); !errors.Is(err, pathio.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := b.IsDir(ctx, "not-remote"); !errors.Is(err, pathio.ErrInvalidPath) {
		t.Errorf("expected ErrInvalidPath, got %v", err)
	}
}

func TestList(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	// One file and one pseudo-directory, sorted.
	got, err := b.List(ctx, "s3://test-bucket/foo", pathio.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if want := []string{"bar.txt", "fizz/"}; !reflect.DeepEqual(got, want) {
		t.Errorf("List = %v, want %v", got, want)
	}

	got, err = b.List(ctx, "s3://test-bucket/foo", pathio.ListOptions{Recursive: true})
	if err != nil {
		t.Fatalf("List recursive: %v", err)
	}
	if want := []string{"bar.txt", "fizz/buzz.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("List recursive = %v, want %v", got, want)
	}

	got, err = b.List(ctx, "s3://test-bucket/foo", pathio.ListOptions{Recursive: true, FullPath: true})
	if err != nil {
		t.Fatalf("List recursive full: %v", err)
	}
	want := []string{
		"s3://test-bucket/foo/bar.txt",
		"s3://test-bucket/foo/fizz/buzz.txt",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List recursive full = %v, want %v", got, want)
	}

	// A single file lists as just that file.
	got, err = b.List(ctx, "s3://test-bucket/foo/bar.txt", pathio.ListOptions{})
	if err != nil {
		t.Fatalf("List file: %v", err)
	}
	if want := []string{"bar.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("List file = %v, want %v", got, want)
	}

	if _, err := b.List(ctx, "s3://test-bucket/missing", pathio.ListOptions{}); !errors.Is(err, pathio.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSize(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	n, err := b.Size(ctx, "s3://test-bucket/foo/bar.txt")
	if err != nil {
		t.Fatalf("Size file: %v", err)
	}
	if n != 21 {
		t.Errorf("file size = %d, want 21", n)
	}

	n, err = b.Size(ctx, "s3://test-bucket/foo")
	if err != nil {
		t.Fatalf("Size dir: %v", err)
	}
	if n != 43 {
		t.Errorf("dir size = %d, want 43", n)
	}
}

func TestRemoveDryRun(t *testing.T) {
	b, fake := newTestBackend(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		n, err := b.Remove(ctx, "s3://test-bucket/foo", true)
		if err != nil {
			t.Fatalf("Remove dry run: %v", err)
		}
		if n != 2 {
			t.Errorf("dry run count = %d, want 2", n)
		}
	}
	if got := len(fake.Keys(bucket)); got != 2 {
		t.Errorf("keys after dry run = %d, want 2", got)
	}
}

func TestRemove(t *testing.T) {
	b, fake := newTestBackend(t)
	ctx := context.Background()

	n, err := b.Remove(ctx, "s3://test-bucket/foo", false)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
	if got := len(fake.Keys(bucket)); got != 0 {
		t.Errorf("keys after remove = %d, want 0", got)
	}
}

func TestUploadOpenServerCopy(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	if err := b.Upload(ctx, "s3://test-bucket/up/new.txt", strings.NewReader("fresh"), ""); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := b.ServerCopy(ctx, "s3://test-bucket/up/new.txt", "s3://test-bucket/up/copy.txt", ""); err != nil {
		t.Fatalf("ServerCopy: %v", err)
	}

	rc, err := b.Open(ctx, "s3://test-bucket/up/copy.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "fresh" {
		t.Errorf("content = %q, want %q", data, "fresh")
	}
}

func TestWalk(t *testing.T) {
	b, _ := newTestBackend(t)
	ctx := context.Background()

	files, err := b.Walk(ctx, "s3://test-bucket/foo")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []string{
		"s3://test-bucket/foo/bar.txt",
		"s3://test-bucket/foo/fizz/buzz.txt",
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("Walk = %v, want %v", files, want)
	}

	// A lone object has no descendants.
	files, err = b.Walk(ctx, "s3://test-bucket/foo/bar.txt")
	if err != nil {
		t.Fatalf("Walk file: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("Walk file = %v, want empty", files)
	}
}
