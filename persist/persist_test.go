package persist

import (
	"testing"

	"github.com/shiroyk/cookiejar"
	"github.com/shiroyk/cookiejar/persist/bolt"
	"github.com/shiroyk/cookiejar/persist/file"
	"github.com/shiroyk/cookiejar/persist/memory"
	"github.com/shiroyk/cookiejar/persist/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		driver string
		want   cookiejar.Persistor
	}{
		{"", (*bolt.Persistor)(nil)},
		{Bolt, (*bolt.Persistor)(nil)},
		{"SQLite", (*sqlite.Persistor)(nil)},
		{File, (*file.Persistor)(nil)},
		{Memory, (*memory.Persistor)(nil)},
	}
	for _, tc := range testCases {
		p, err := Open(Options{Driver: tc.driver, Path: t.TempDir(), ExpireCleanInterval: -1})
		require.NoError(t, err, tc.driver)
		assert.IsType(t, tc.want, p, tc.driver)
		assert.False(t, p.IsNull())
		assert.NoError(t, Close(p))
	}
}

func TestOpenUnknown(t *testing.T) {
	t.Parallel()
	_, err := Open(Options{Driver: "leveldb", Path: t.TempDir()})
	assert.ErrorContains(t, err, "leveldb")
}
