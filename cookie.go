package cookiejar

import (
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// MaxExpiresAt is the expiry of a cookie without an explicit lifetime,
// 9999-12-31T23:59:59.999Z in milliseconds since epoch.
const MaxExpiresAt int64 = 253402300799999

// Key identifies a cookie inside the cache and the persistor.
type Key struct {
	Name, Domain, Path string
}

// String returns the storage key used by the persistors.
func (k Key) String() string {
	return k.Domain + k.Path + "|" + k.Name
}

// Cookie is an immutable cookie value held by the jar.
// Updating a cookie means replacing it by its Key.
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	// Domain without a leading dot, lower case.
	Domain string `json:"domain"`
	Path   string `json:"path"`
	// ExpiresAt milliseconds since epoch.
	ExpiresAt int64 `json:"expires_at"`
	// Persistent reports whether the cookie had an explicit Expires or Max-Age.
	Persistent bool `json:"persistent"`
	Secure     bool `json:"secure,omitempty"`
	HttpOnly   bool `json:"http_only,omitempty"`
	HostOnly   bool `json:"host_only,omitempty"`
}

// Key returns the cookie identity (name, domain, path).
func (c *Cookie) Key() Key {
	return Key{Name: c.Name, Domain: c.Domain, Path: c.Path}
}

// Expired reports whether the cookie expired before now.
func (c *Cookie) Expired(now time.Time) bool {
	return c.ExpiresAt < now.UnixMilli()
}

// Matches reports whether the cookie should be sent with a request to u.
func (c *Cookie) Matches(u *url.URL) bool {
	if u == nil {
		return false
	}
	host := canonicalHost(u.Hostname())
	domain := canonicalHost(c.Domain)

	var domainMatch bool
	if c.HostOnly {
		domainMatch = host == domain
	} else {
		domainMatch = domainMatches(host, domain)
	}
	if !domainMatch {
		return false
	}

	if !pathMatches(u, c.Path) {
		return false
	}

	return !c.Secure || u.Scheme == "https"
}

// HTTP returns the cookie as it is sent in a Cookie request header.
func (c *Cookie) HTTP() *http.Cookie {
	return &http.Cookie{Name: c.Name, Value: c.Value}
}

// String returns the Set-Cookie serialization of the cookie.
func (c *Cookie) String() string {
	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	}
	if !c.HostOnly {
		hc.Domain = c.Domain
	}
	if c.Persistent && c.ExpiresAt != MaxExpiresAt && c.ExpiresAt > 0 {
		hc.Expires = time.UnixMilli(c.ExpiresAt)
	}
	return hc.String()
}

// FromHTTP converts a cookie received in a response from u.
// It reports false if the cookie must be rejected: it has no name, its
// domain does not match the host, or its domain is a public suffix.
func FromHTTP(u *url.URL, hc *http.Cookie, now time.Time) (*Cookie, bool) {
	if u == nil || hc == nil || hc.Name == "" {
		return nil, false
	}
	host := canonicalHost(u.Hostname())
	if host == "" {
		return nil, false
	}

	c := &Cookie{
		Name:      hc.Name,
		Value:     hc.Value,
		Secure:    hc.Secure,
		HttpOnly:  hc.HttpOnly,
		ExpiresAt: MaxExpiresAt,
	}

	switch {
	case hc.MaxAge < 0:
		c.ExpiresAt, c.Persistent = math.MinInt64, true
	case hc.MaxAge > 0:
		c.ExpiresAt, c.Persistent = MaxExpiresAt, true
		if ms := now.UnixMilli(); int64(hc.MaxAge) <= (MaxExpiresAt-ms)/1000 {
			c.ExpiresAt = ms + int64(hc.MaxAge)*1000
		}
	case !hc.Expires.IsZero():
		c.ExpiresAt, c.Persistent = min(hc.Expires.UnixMilli(), MaxExpiresAt), true
	}

	if hc.Domain == "" {
		c.Domain, c.HostOnly = host, true
	} else {
		domain := canonicalHost(hc.Domain)
		if !domainMatches(host, domain) {
			return nil, false
		}
		if ps, _ := publicsuffix.PublicSuffix(domain); ps == domain {
			if domain != host {
				return nil, false
			}
			c.HostOnly = true
		}
		c.Domain = domain
	}

	if strings.HasPrefix(hc.Path, "/") {
		c.Path = hc.Path
	} else {
		c.Path = defaultPath(u)
	}

	return c, true
}

func canonicalHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(host)), ".")
}

// domainMatches RFC 6265 section 5.1.3.
func domainMatches(host, domain string) bool {
	if host == domain {
		return true
	}
	return domain != "" &&
		strings.HasSuffix(host, domain) &&
		host[len(host)-len(domain)-1] == '.' &&
		net.ParseIP(host) == nil
}

// pathMatches RFC 6265 section 5.1.4.
func pathMatches(u *url.URL, cookiePath string) bool {
	if cookiePath == "" {
		cookiePath = "/"
	}
	urlPath := u.EscapedPath()
	if urlPath == "" {
		urlPath = "/"
	}
	if urlPath == cookiePath {
		return true
	}
	if strings.HasPrefix(urlPath, cookiePath) {
		return strings.HasSuffix(cookiePath, "/") || urlPath[len(cookiePath)] == '/'
	}
	return false
}

// defaultPath RFC 6265 section 5.1.4.
func defaultPath(u *url.URL) string {
	p := u.EscapedPath()
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}
