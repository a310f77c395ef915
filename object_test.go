package pathio_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuln/pathio"
)

func TestSaveLoadRaw(t *testing.T) {
	f, _, _ := newTestFS(t)
	ctx := context.Background()

	require.NoError(t, f.Save(ctx, "hello there", "data/note.txt", nil))

	got, err := f.Load(ctx, "data/note.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello there"), got)
}

func TestSaveLoadJSON(t *testing.T) {
	f, _, _ := newTestFS(t)
	ctx := context.Background()

	doc := map[string]any{"name": "job-1", "retries": float64(3)}
	require.NoError(t, f.Save(ctx, doc, "data/job.json", nil))

	got, err := f.Load(ctx, "data/job.json", nil)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestSaveLoadCSV(t *testing.T) {
	f, _, _ := newTestFS(t)
	ctx := context.Background()

	records := [][]string{{"id", "name"}, {"1", "alpha"}, {"2", "beta"}}
	require.NoError(t, f.Save(ctx, records, "data/rows.csv", nil))

	got, err := f.Load(ctx, "data/rows.csv", nil)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestSaveLoadGob(t *testing.T) {
	f, _, _ := newTestFS(t)
	ctx := context.Background()

	require.NoError(t, f.Save(ctx, "opaque state", "data/state.gob", nil))

	got, err := f.Load(ctx, "data/state.gob", nil)
	require.NoError(t, err)
	assert.Equal(t, "opaque state", got)
}

func TestSaveLoadRemote(t *testing.T) {
	f, _, fake := newTestFS(t)
	ctx := context.Background()

	doc := map[string]any{"bucket": "test-bucket"}
	require.NoError(t, f.Save(ctx, doc, "s3://test-bucket/meta/info.json", nil))
	assert.Contains(t, fake.Keys("test-bucket"), "meta/info.json")

	got, err := f.Load(ctx, "s3://test-bucket/meta/info.json", nil)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestSaveNoOverwrite(t *testing.T) {
	f, _, _ := newTestFS(t)
	ctx := context.Background()

	err := f.Save(ctx, "new content", "src/foo/bar.txt", &pathio.SaveOptions{Overwrite: false})
	require.ErrorIs(t, err, pathio.ErrExist)

	// Original content survives.
	got, err := f.Load(ctx, "src/foo/bar.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("This is test file bar"), got)
}

func TestSaveExplicitFormat(t *testing.T) {
	f, _, _ := newTestFS(t)
	ctx := context.Background()

	// Extension says nothing; the declared format wins.
	require.NoError(t, f.Save(ctx, "raw bytes", "data/blob.bin", &pathio.SaveOptions{
		Format:    "raw",
		Overwrite: true,
	}))

	got, err := f.Load(ctx, "data/blob.bin", &pathio.LoadOptions{Format: "raw"})
	require.NoError(t, err)
	assert.Equal(t, []byte("raw bytes"), got)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	f, _, _ := newTestFS(t)
	ctx := context.Background()

	_, err := f.Load(ctx, "data/blob.bin", nil)
	require.ErrorIs(t, err, pathio.ErrUnsupportedFormat)

	_, err = f.Load(ctx, "data/note.txt", &pathio.LoadOptions{Format: "nope"})
	require.ErrorIs(t, err, pathio.ErrUnsupportedFormat)
}

func TestLoadMissingRemote(t *testing.T) {
	f, _, _ := newTestFS(t)
	ctx := context.Background()

	_, err := f.Load(ctx, "s3://test-bucket/missing.json", nil)
	require.ErrorIs(t, err, pathio.ErrNotFound)
}
