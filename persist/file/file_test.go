package file

import (
	"path/filepath"
	"testing"

	"github.com/shiroyk/cookiejar"
	"github.com/shiroyk/cookiejar/persist/persisttest"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistor(t *testing.T) {
	t.Parallel()
	p, err := New(afero.NewMemMapFs(), "/cookies/cookies.json")
	require.NoError(t, err)

	persisttest.Run(t, p)
}

func TestPersistorOsFs(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	p, err := Open(Options{Path: dir})
	require.NoError(t, err)
	require.NoError(t, p.SaveAll([]*cookiejar.Cookie{persisttest.Cookie("a", "1", "example.com")}))

	ok, err := afero.Exists(afero.NewOsFs(), filepath.Join(dir, DefaultName))
	require.NoError(t, err)
	assert.True(t, ok)

	p, err = Open(Options{Path: dir})
	require.NoError(t, err)
	assert.Len(t, persisttest.Load(t, p), 1)
}

func TestPersistorCorrupted(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "cookies.json", []byte("{"), 0o600))
	p, err := New(fs, "cookies.json")
	require.NoError(t, err)

	_, err = p.LoadAll()
	assert.Error(t, err)
	assert.Error(t, p.SaveAll([]*cookiejar.Cookie{persisttest.Cookie("a", "1", "example.com")}))

	data, err := afero.ReadFile(fs, "cookies.json")
	require.NoError(t, err)
	assert.Equal(t, "{", string(data))
}

func TestPersistorReadOnly(t *testing.T) {
	t.Parallel()
	base := afero.NewMemMapFs()
	p, err := New(base, "/data/cookies.json")
	require.NoError(t, err)
	require.NoError(t, p.SaveAll([]*cookiejar.Cookie{persisttest.Cookie("a", "1", "example.com")}))

	ro, err := New(afero.NewReadOnlyFs(base), "/data/cookies.json")
	require.NoError(t, err)
	assert.Error(t, ro.SaveAll([]*cookiejar.Cookie{persisttest.Cookie("b", "1", "example.com")}))
	assert.Len(t, persisttest.Load(t, ro), 1)
}

func TestNewRequiresFs(t *testing.T) {
	t.Parallel()
	_, err := New(nil, "")
	assert.Error(t, err)
	assert.True(t, (*Persistor)(nil).IsNull())
}
