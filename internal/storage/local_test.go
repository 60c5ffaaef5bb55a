package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/zarr-catalog-etl/internal/storage"
)

func newMemStore(t *testing.T, files ...string) *storage.LocalStore {
	t.Helper()
	fs := memfs.New()
	for _, f := range files {
		require.NoError(t, util.WriteFile(fs, f, []byte("{}"), 0o644))
	}
	return storage.NewLocalStore(fs)
}

func TestLocalStore_WriteRead(t *testing.T) {
	ctx := context.Background()
	s := newMemStore(t)

	require.NoError(t, s.Write(ctx, "/catalogs/cat.json", []byte(`{"a":1}`)))
	data, err := s.Read(ctx, "/catalogs/cat.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))

	// Overwrite replaces the whole document.
	require.NoError(t, s.Write(ctx, "file:///catalogs/cat.json", []byte(`{"b":2}`)))
	data, err = s.Read(ctx, "/catalogs/cat.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":2}`, string(data))
}

func TestLocalStore_WriteLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	fs := memfs.New()
	s := storage.NewLocalStore(fs)

	require.NoError(t, s.Write(ctx, "/out/a.csv", []byte("x\n")))
	require.NoError(t, s.Write(ctx, "/out/a.csv", []byte("y\n")))

	entries, err := fs.ReadDir("/out")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.csv", entries[0].Name())
}

func TestLocalStore_ReadMissing(t *testing.T) {
	s := newMemStore(t)
	_, err := s.Read(context.Background(), "/nope.json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestLocalStore_Walk(t *testing.T) {
	s := newMemStore(t,
		"/data/root/a/.zmetadata",
		"/data/root/a/b/.zmetadata",
		"/data/root/a/b/c/.zmetadata",
		"/data/root/top.txt",
	)

	collect := func(depth int) []string {
		var got []string
		err := s.Walk(context.Background(), "/data/root", depth, func(uri string) error {
			got = append(got, uri)
			return nil
		})
		require.NoError(t, err)
		return got
	}

	assert.ElementsMatch(t, []string{
		"/data/root/top.txt",
		"/data/root/a/.zmetadata",
		"/data/root/a/b/.zmetadata",
	}, collect(2))

	assert.ElementsMatch(t, []string{"/data/root/top.txt"}, collect(0))

	assert.Len(t, collect(-1), 4)
}

func TestLocalStore_WalkKeepsRootForm(t *testing.T) {
	s := newMemStore(t, "/data/root/n/s.zarr/.zmetadata")

	var got []string
	err := s.Walk(context.Background(), "file:///data/root/", 2, func(uri string) error {
		got = append(got, uri)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"file:///data/root/n/s.zarr/.zmetadata"}, got)
}

func TestLocalStore_WalkMissingRoot(t *testing.T) {
	s := newMemStore(t)
	err := s.Walk(context.Background(), "/missing", 1, func(string) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestLocalStore_WalkStopsOnCallbackError(t *testing.T) {
	s := newMemStore(t, "/d/a", "/d/b")
	stop := errors.New("stop")

	calls := 0
	err := s.Walk(context.Background(), "/d", 1, func(string) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}
