// Package persisttest the behaviour every cookiejar.Persistor must share.
package persisttest

import (
	"sort"
	"testing"
	"time"

	"github.com/shiroyk/cookiejar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run runs the persistor tests against p, p must be empty.
func Run(t *testing.T, p cookiejar.Persistor) {
	t.Helper()
	require.False(t, p.IsNull())

	t.Run("Empty", func(t *testing.T) { testEmpty(t, p) })
	t.Run("SaveAndLoad", func(t *testing.T) { testSaveAndLoad(t, p) })
	t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, p) })
	t.Run("Remove", func(t *testing.T) { testRemove(t, p) })
	t.Run("Clear", func(t *testing.T) { testClear(t, p) })
}

// Cookie returns a persistent cookie valid for one hour.
func Cookie(name, value, domain string) *cookiejar.Cookie {
	return &cookiejar.Cookie{
		Name:       name,
		Value:      value,
		Domain:     domain,
		Path:       "/",
		ExpiresAt:  time.Now().Add(time.Hour).UnixMilli(),
		Persistent: true,
	}
}

// Load returns the stored cookies sorted by Key.
func Load(t *testing.T, p cookiejar.Persistor) []cookiejar.Cookie {
	t.Helper()
	cookies, err := p.LoadAll()
	require.NoError(t, err)
	r := make([]cookiejar.Cookie, 0, len(cookies))
	for _, c := range cookies {
		r = append(r, *c)
	}
	sort.Slice(r, func(i, j int) bool { return r[i].Key().String() < r[j].Key().String() })
	return r
}

func testEmpty(t *testing.T, p cookiejar.Persistor) {
	cookies, err := p.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, cookies)
	assert.NoError(t, p.SaveAll(nil))
	assert.NoError(t, p.RemoveAll(nil))
}

func testSaveAndLoad(t *testing.T, p cookiejar.Persistor) {
	defer func() { require.NoError(t, p.Clear()) }()

	a := Cookie("a", "1", "example.com")
	b := &cookiejar.Cookie{
		Name:      "b",
		Value:     "2=3",
		Domain:    "www.example.com",
		Path:      "/api",
		ExpiresAt: cookiejar.MaxExpiresAt,
		Secure:    true,
		HttpOnly:  true,
		HostOnly:  true,
	}
	require.NoError(t, p.SaveAll([]*cookiejar.Cookie{a, nil, b}))
	assert.Equal(t, []cookiejar.Cookie{*a, *b}, Load(t, p))
}

func testOverwrite(t *testing.T, p cookiejar.Persistor) {
	defer func() { require.NoError(t, p.Clear()) }()

	require.NoError(t, p.SaveAll([]*cookiejar.Cookie{Cookie("a", "1", "example.com")}))
	updated := Cookie("a", "2", "example.com")
	require.NoError(t, p.SaveAll([]*cookiejar.Cookie{updated}))

	cookies := Load(t, p)
	require.Len(t, cookies, 1)
	assert.Equal(t, "2", cookies[0].Value)

	other := Cookie("a", "3", "example.com")
	other.Path = "/x"
	require.NoError(t, p.SaveAll([]*cookiejar.Cookie{other}))
	assert.Len(t, Load(t, p), 2)
}

func testRemove(t *testing.T, p cookiejar.Persistor) {
	defer func() { require.NoError(t, p.Clear()) }()

	a, b := Cookie("a", "1", "example.com"), Cookie("b", "1", "example.com")
	require.NoError(t, p.SaveAll([]*cookiejar.Cookie{a, b}))
	require.NoError(t, p.RemoveAll([]*cookiejar.Cookie{a, Cookie("absent", "", "example.org")}))
	assert.Equal(t, []cookiejar.Cookie{*b}, Load(t, p))
}

func testClear(t *testing.T, p cookiejar.Persistor) {
	require.NoError(t, p.SaveAll([]*cookiejar.Cookie{Cookie("a", "1", "example.com")}))
	require.NoError(t, p.Clear())
	assert.Empty(t, Load(t, p))
	assert.NoError(t, p.Clear())
}
