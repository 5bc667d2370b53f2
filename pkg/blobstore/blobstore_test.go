package blobstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blobs.db")
	s, err := Open(path, "frames", Options{NoSync: true})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestPutGet(t *testing.T) {
	s, _ := openTemp(t)
	require.NoError(t, s.Put("b", []byte{2}))
	require.NoError(t, s.Put("a", []byte{1, 1}))
	require.NoError(t, s.Put("b", []byte{3}))

	v, err := s.Get("b")
	require.NoError(t, err)
	require.Equal(t, []byte{3}, v)

	keys, err := s.Keys()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, keys)

	_, err = s.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete("a"))
	_, err = s.Get("a")
	require.ErrorIs(t, err, ErrNotFound)

	require.Error(t, s.Put("", []byte{1}))
}

func TestReopen(t *testing.T) {
	s, path := openTemp(t)
	require.NoError(t, s.Put("k", []byte("persisted")))
	require.NoError(t, s.Close())

	again, err := Open(path, "frames", Options{ReadOnly: true})
	require.NoError(t, err)
	defer again.Close()
	v, err := again.Get("k")
	require.NoError(t, err)
	require.Equal(t, "persisted", string(v))

	other, err := Open(filepath.Join(t.TempDir(), "x.db"), "", Options{})
	require.Error(t, err)
	require.Nil(t, other)
}
