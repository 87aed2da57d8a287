package cookiejar

import (
	"net/url"
	"strings"
)

// Policy the rules applied to the cookies received in a response.
type Policy struct {
	// IdentityCookies the cookie names only the login hosts may set,
	// they are replicated to every sibling domain.
	IdentityCookies []string `yaml:"identity-cookies" json:"identity_cookies"`
	// LoginHosts the exact hosts trusted to set the identity cookies.
	LoginHosts []string `yaml:"login-hosts" json:"login_hosts"`
	// LoginURLPatterns the url substrings trusted to set the identity cookies.
	LoginURLPatterns []string `yaml:"login-url-patterns" json:"login_url_patterns"`
	// SiblingDomains the domains of the same organization.
	SiblingDomains []string `yaml:"sibling-domains" json:"sibling_domains"`
	// SkipSession do not persist the cookies without an explicit lifetime.
	SkipSession bool `yaml:"skip-session" json:"skip_session"`
}

// DefaultPolicy returns the default Policy.
func DefaultPolicy() Policy {
	return Policy{
		IdentityCookies:  []string{"XXT_TICKET", "XXT_ID", "_XSID_", "_SSO_STATE_TICKET"},
		LoginHosts:       []string{"login.xxt.cn", "login.hbjxt.cn", "login.lexue.cn", "ai.xxt.cn"},
		LoginURLPatterns: []string{"rest.xxt.cn/login"},
		SiblingDomains:   []string{"xxt.cn", "hbjxt.cn", "lexue.cn", "xinzx.cn"},
	}
}

// IsIdentity reports whether name is an identity cookie name.
func (p *Policy) IsIdentity(name string) bool {
	if name == "" {
		return false
	}
	for _, identity := range p.IdentityCookies {
		if identity == name {
			return true
		}
	}
	return false
}

// IsLoginURL reports whether u is trusted to set the identity cookies.
func (p *Policy) IsLoginURL(u *url.URL) bool {
	if u == nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range p.LoginHosts {
		if host != "" && strings.EqualFold(h, host) {
			return true
		}
	}
	raw := u.String()
	for _, pattern := range p.LoginURLPatterns {
		if pattern != "" && strings.Contains(raw, pattern) {
			return true
		}
	}
	return false
}

// filterLogin drops the identity cookies unless u is a login url.
func (p *Policy) filterLogin(u *url.URL, cookies []*Cookie) []*Cookie {
	if p.IsLoginURL(u) {
		return cookies
	}
	filtered := make([]*Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c == nil || p.IsIdentity(c.Name) {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

// replicate appends a copy of each identity cookie for every sibling
// domain the cookie domain does not already end with.
func (p *Policy) replicate(cookies []*Cookie) []*Cookie {
	replicated := make([]*Cookie, 0, len(cookies))
	replicated = append(replicated, cookies...)
	for _, c := range cookies {
		if c == nil || !p.IsIdentity(c.Name) {
			continue
		}
		for _, domain := range p.SiblingDomains {
			if domain == "" || strings.HasSuffix(c.Domain, domain) {
				continue
			}
			replicated = append(replicated, siblingCopy(c, domain))
		}
	}
	return replicated
}

// siblingCopy only carries the name, value and path of c.
func siblingCopy(c *Cookie, domain string) *Cookie {
	path := c.Path
	if path == "" {
		path = "/"
	}
	return &Cookie{
		Name:      c.Name,
		Value:     c.Value,
		Domain:    domain,
		Path:      path,
		ExpiresAt: MaxExpiresAt,
	}
}

func persistentOnly(cookies []*Cookie) []*Cookie {
	persistent := make([]*Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c.Persistent {
			persistent = append(persistent, c)
		}
	}
	return persistent
}
