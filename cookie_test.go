package cookiejar

import (
	"math"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieKey(t *testing.T) {
	t.Parallel()
	c := &Cookie{Name: "sid", Domain: "example.com", Path: "/a"}
	assert.Equal(t, Key{Name: "sid", Domain: "example.com", Path: "/a"}, c.Key())
	assert.Equal(t, "example.com/a|sid", c.Key().String())
}

func TestCookieExpired(t *testing.T) {
	t.Parallel()
	now := time.UnixMilli(1_000_000)
	assert.True(t, (&Cookie{ExpiresAt: 999_999}).Expired(now))
	assert.False(t, (&Cookie{ExpiresAt: 1_000_000}).Expired(now))
	assert.False(t, (&Cookie{ExpiresAt: MaxExpiresAt}).Expired(now))
}

func TestCookieMatches(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		cookie Cookie
		url    string
		want   bool
	}{
		{Cookie{Domain: "example.com", Path: "/"}, "https://example.com", true},
		{Cookie{Domain: "example.com", Path: "/"}, "https://a.b.example.com/x", true},
		{Cookie{Domain: "example.com", Path: "/"}, "https://badexample.com/", false},
		{Cookie{Domain: "example.com", Path: "/", HostOnly: true}, "https://www.example.com/", false},
		{Cookie{Domain: "example.com", Path: "/", HostOnly: true}, "https://EXAMPLE.com/", true},
		{Cookie{Domain: "example.com", Path: "/docs"}, "https://example.com/docs", true},
		{Cookie{Domain: "example.com", Path: "/docs"}, "https://example.com/docs/web", true},
		{Cookie{Domain: "example.com", Path: "/docs/"}, "https://example.com/docs/web", true},
		{Cookie{Domain: "example.com", Path: "/docs"}, "https://example.com/docsets", false},
		{Cookie{Domain: "example.com", Path: "/docs"}, "https://example.com/", false},
		{Cookie{Domain: "example.com", Path: "/", Secure: true}, "http://example.com/", false},
		{Cookie{Domain: "example.com", Path: "/", Secure: true}, "https://example.com/", true},
		{Cookie{Domain: "0.0.1", Path: "/"}, "http://127.0.0.1/", false},
	}
	for _, tc := range testCases {
		u, err := url.Parse(tc.url)
		require.NoError(t, err)
		assert.Equal(t, tc.want, tc.cookie.Matches(u), "%s %s%s", tc.url, tc.cookie.Domain, tc.cookie.Path)
	}
	assert.False(t, (&Cookie{Domain: "example.com"}).Matches(nil))
}

func TestFromHTTP(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	u, _ := url.Parse("https://www.example.com/api/users")

	c, ok := FromHTTP(u, &http.Cookie{Name: "a", Value: "1"}, now)
	require.True(t, ok)
	assert.Equal(t, "www.example.com", c.Domain)
	assert.True(t, c.HostOnly)
	assert.Equal(t, "/api", c.Path)
	assert.Equal(t, MaxExpiresAt, c.ExpiresAt)
	assert.False(t, c.Persistent)

	c, ok = FromHTTP(u, &http.Cookie{Name: "b", Domain: ".Example.com", Path: "/", MaxAge: 60, Secure: true}, now)
	require.True(t, ok)
	assert.Equal(t, "example.com", c.Domain)
	assert.False(t, c.HostOnly)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, now.UnixMilli()+60_000, c.ExpiresAt)
	assert.True(t, c.Persistent)
	assert.True(t, c.Secure)

	expires := now.Add(time.Hour)
	c, ok = FromHTTP(u, &http.Cookie{Name: "c", Expires: expires}, now)
	require.True(t, ok)
	assert.Equal(t, expires.UnixMilli(), c.ExpiresAt)
	assert.True(t, c.Persistent)

	c, ok = FromHTTP(u, &http.Cookie{Name: "d", MaxAge: -1}, now)
	require.True(t, ok)
	assert.Equal(t, int64(math.MinInt64), c.ExpiresAt)
	assert.True(t, c.Expired(now))

	c, ok = FromHTTP(u, &http.Cookie{Name: "e", MaxAge: math.MaxInt}, now)
	require.True(t, ok)
	assert.Equal(t, MaxExpiresAt, c.ExpiresAt)

	c, ok = FromHTTP(u, &http.Cookie{Name: "f", Expires: time.Date(20000, 1, 1, 0, 0, 0, 0, time.UTC)}, now)
	require.True(t, ok)
	assert.Equal(t, MaxExpiresAt, c.ExpiresAt)
}

func TestFromHTTPRejects(t *testing.T) {
	t.Parallel()
	now := time.Now()
	u, _ := url.Parse("https://www.example.com/")

	for _, hc := range []*http.Cookie{
		nil,
		{Value: "no name"},
		{Name: "foreign", Domain: "example.org"},
		{Name: "sub", Domain: "api.www.example.com"},
		{Name: "suffix", Domain: "com"},
	} {
		_, ok := FromHTTP(u, hc, now)
		assert.False(t, ok, "%v", hc)
	}
	_, ok := FromHTTP(nil, &http.Cookie{Name: "a"}, now)
	assert.False(t, ok)
}

func TestFromHTTPPublicSuffixHost(t *testing.T) {
	t.Parallel()
	u, _ := url.Parse("https://github.io/")
	c, ok := FromHTTP(u, &http.Cookie{Name: "a", Domain: "github.io"}, time.Now())
	require.True(t, ok)
	assert.True(t, c.HostOnly)
	assert.Equal(t, "github.io", c.Domain)
}

func TestDefaultPath(t *testing.T) {
	t.Parallel()
	for raw, want := range map[string]string{
		"https://example.com":         "/",
		"https://example.com/":        "/",
		"https://example.com/a":       "/",
		"https://example.com/a/b":     "/a",
		"https://example.com/a/b/":    "/a/b",
		"https://example.com/a/b?c=/": "/a",
	} {
		u, _ := url.Parse(raw)
		assert.Equal(t, want, defaultPath(u), raw)
	}
}

func TestCookieString(t *testing.T) {
	t.Parallel()
	c := &Cookie{Name: "sid", Value: "42", Domain: "example.com", Path: "/", ExpiresAt: MaxExpiresAt, HttpOnly: true}
	assert.Equal(t, "sid=42; Path=/; Domain=example.com; HttpOnly", c.String())

	c.HostOnly = true
	assert.Equal(t, "sid=42; Path=/; HttpOnly", c.String())

	hc := c.HTTP()
	assert.Equal(t, "sid=42", hc.String())
}
