// Package cookiejar a persistent cookie jar for http.Client.
//
// The Jar keeps an in-memory Cache in sync with a durable Persistor,
// protects the identity cookies from being overwritten by responses of
// hosts other than the login hosts, and replicates the identity cookies
// across the sibling domains of the same organization.
package cookiejar

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
)

// Options the Jar options
type Options struct {
	// Policy the response cookie rules, DefaultPolicy if zero.
	Policy *Policy
	// Now the clock used for expiry, time.Now if nil.
	Now func() time.Time
}

// Jar implements http.CookieJar backed by a Cache and a Persistor.
// All methods are safe for concurrent use, at most one of them runs at a
// time against the cache and persistor pair.
type Jar struct {
	mu        sync.Mutex
	cache     Cache
	persistor Persistor
	policy    Policy
	now       func() time.Time
}

// New returns a new Jar and loads the persisted cookies into the cache.
// A nil or unusable cache or persistor does not fail, the Jar reports
// it through IsNull and all operations become no-ops.
func New(cache Cache, persistor Persistor, opt Options) *Jar {
	j := &Jar{
		cache:     cache,
		persistor: persistor,
		policy:    DefaultPolicy(),
		now:       time.Now,
	}
	if opt.Policy != nil {
		j.policy = Policy{
			IdentityCookies:  slices.Clone(opt.Policy.IdentityCookies),
			LoginHosts:       slices.Clone(opt.Policy.LoginHosts),
			LoginURLPatterns: slices.Clone(opt.Policy.LoginURLPatterns),
			SiblingDomains:   slices.Clone(opt.Policy.SiblingDomains),
			SkipSession:      opt.Policy.SkipSession,
		}
	}
	if opt.Now != nil {
		j.now = opt.Now
	}

	if j.isNull() {
		slog.Warn("cookie jar created without a usable cache or persistor")
		return j
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.syncFromPersistor()

	return j
}

// Policy returns a copy of the jar policy.
func (j *Jar) Policy() Policy {
	p := j.policy
	p.IdentityCookies = slices.Clone(p.IdentityCookies)
	p.LoginHosts = slices.Clone(p.LoginHosts)
	p.LoginURLPatterns = slices.Clone(p.LoginURLPatterns)
	p.SiblingDomains = slices.Clone(p.SiblingDomains)
	return p
}

// LoadForRequest returns the unexpired cookies matching u.
// The persisted cookies are merged into the cache first, the expired
// cookies are removed from both the cache and the persistor.
// The order of the returned cookies is unspecified.
func (j *Jar) LoadForRequest(u *url.URL) []*Cookie {
	if j.isNull() {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.syncFromPersistor()

	now := j.now()
	var expired, valid []*Cookie
	j.cache.Range(func(c *Cookie) bool {
		if c.Expired(now) {
			expired = append(expired, c)
		} else if c.Matches(u) {
			valid = append(valid, c)
		}
		return true
	})

	if len(expired) > 0 {
		j.cache.RemoveAll(expired)
		if err := j.persistor.RemoveAll(expired); err != nil {
			slog.Error("failed to remove expired cookies", "count", len(expired), "error", err)
		}
	}

	return valid
}

// SaveFromResponse stores the cookies received in a response from u.
// The identity cookies are dropped unless u is a login url, the
// remaining identity cookies are replicated to the sibling domains.
func (j *Jar) SaveFromResponse(u *url.URL, cookies []*Cookie) {
	if j.isNull() {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	cookies = slices.DeleteFunc(slices.Clone(cookies), func(c *Cookie) bool { return c == nil })
	cookies = j.policy.replicate(j.policy.filterLogin(u, cookies))
	if len(cookies) == 0 {
		return
	}

	j.cache.AddAll(cookies)

	if j.policy.SkipSession {
		cookies = persistentOnly(cookies)
	}
	if len(cookies) == 0 {
		return
	}
	if err := j.persistor.SaveAll(cookies); err != nil {
		slog.Error("failed to save cookies", "url", redact(u), "count", len(cookies), "error", err)
	}
}

// ClearSession drops the cookies which exist only in memory,
// the persisted cookies are reloaded into the cache.
func (j *Jar) ClearSession() {
	if j.isNull() {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.cache.Clear()
	j.syncFromPersistor()
}

// Clear removes all cookies from the cache and the persistor.
func (j *Jar) Clear() error {
	if j.isNull() {
		return ErrNullPersistor
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.cache.Clear()
	return j.persistor.Clear()
}

// IsNull reports whether the jar has no usable cache or persistor.
func (j *Jar) IsNull() bool {
	return j == nil || j.isNull()
}

func (j *Jar) isNull() bool {
	return isNil(j.cache) || j.cache.IsNull() || isNil(j.persistor) || j.persistor.IsNull()
}

// SetCookies implements http.CookieJar.
// Cookies rejected by FromHTTP are ignored.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	now := j.now()
	converted := make([]*Cookie, 0, len(cookies))
	for _, hc := range cookies {
		if c, ok := FromHTTP(u, hc, now); ok {
			converted = append(converted, c)
		} else if hc != nil {
			slog.Debug("rejected cookie", "name", hc.Name, "domain", hc.Domain, "host", u.Hostname())
		}
	}
	j.SaveFromResponse(u, converted)
}

// Cookies implements http.CookieJar.
// The cookies with longer paths are listed first.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	cookies := j.LoadForRequest(u)
	if len(cookies) == 0 {
		return nil
	}
	sort.SliceStable(cookies, func(i, k int) bool {
		if len(cookies[i].Path) != len(cookies[k].Path) {
			return len(cookies[i].Path) > len(cookies[k].Path)
		}
		if cookies[i].Name != cookies[k].Name {
			return cookies[i].Name < cookies[k].Name
		}
		return cookies[i].Domain < cookies[k].Domain
	})
	hcs := make([]*http.Cookie, len(cookies))
	for i, c := range cookies {
		hcs[i] = c.HTTP()
	}
	return hcs
}

// syncFromPersistor merges the persisted cookies into the cache,
// the cookies only in the cache are kept. Caller must hold j.mu.
func (j *Jar) syncFromPersistor() {
	cookies, err := j.persistor.LoadAll()
	if err != nil {
		slog.Error("failed to load cookies", "error", err)
		return
	}
	if len(cookies) > 0 {
		j.cache.AddAll(cookies)
	}
}

// redact strips the query of u before logging.
func redact(u *url.URL) string {
	if u == nil {
		return ""
	}
	s := u.Scheme + "://" + u.Host + u.EscapedPath()
	return strings.TrimPrefix(s, "://")
}
