package storage

import (
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newMemStore() *Store {
	return New(afero.NewMemMapFs(), "/blobs")
}

func readKey(t *testing.T, s *Store, key string) string {
	t.Helper()
	rc, err := s.Open(key)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestPutOpenOverwrite(t *testing.T) {
	s := newMemStore()
	key := "tickets/abc/ticket_T1.txt"

	require.NoError(t, s.Put(key, []byte("first")))
	require.Equal(t, "first", readKey(t, s, key))

	require.NoError(t, s.Put(key, []byte("second")))
	require.Equal(t, "second", readKey(t, s, key))
}

func TestOpenMissing(t *testing.T) {
	s := newMemStore()
	_, err := s.Open("tickets/none/ticket_x.txt")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInvalidKeys(t *testing.T) {
	s := newMemStore()
	for _, key := range []string{"", "/etc/passwd", "../outside.txt", "tickets/../../x", "."} {
		require.ErrorIs(t, s.Put(key, []byte("x")), ErrInvalidKey, key)
	}
}
