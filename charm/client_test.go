package charm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSetGetDelete(t *testing.T) {
	c := NewTestClient(t)

	require.NoError(t, c.Set([]byte("backups/a"), []byte("one")))
	require.NoError(t, c.Set([]byte("backups/b"), []byte("two")))
	require.NoError(t, c.Set([]byte("other"), []byte("three")))

	got, err := c.Get([]byte("backups/a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)

	keys, err := c.KeysWithPrefix([]byte("backups/"))
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	require.NoError(t, c.Delete([]byte("backups/a")))
	_, err = c.Get([]byte("backups/a"))
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Sync())
	require.NoError(t, c.Reset())
	all, err := c.Keys()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestWithHost(t *testing.T) {
	assert.Equal(t, DefaultCharmHost, WithHost("").Host)
	assert.Equal(t, "charm.example.com", WithHost("charm.example.com").Host)
	assert.True(t, WithHost("").AutoSync)

	id, err := NewTestClient(t).ID()
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
