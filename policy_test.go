package cookiejar

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyIsIdentity(t *testing.T) {
	t.Parallel()
	p := DefaultPolicy()
	for _, name := range []string{"XXT_TICKET", "XXT_ID", "_XSID_", "_SSO_STATE_TICKET"} {
		assert.True(t, p.IsIdentity(name), name)
	}
	assert.False(t, p.IsIdentity("xxt_ticket"))
	assert.False(t, p.IsIdentity(""))
}

func TestPolicyIsLoginURL(t *testing.T) {
	t.Parallel()
	p := DefaultPolicy()
	for raw, want := range map[string]bool{
		"https://login.xxt.cn/":              true,
		"https://LOGIN.hbjxt.cn:8443/sso":    true,
		"http://login.lexue.cn":              true,
		"https://ai.xxt.cn/chat":             true,
		"https://rest.xxt.cn/login/ticket":   true,
		"https://www.xxt.cn/":                false,
		"https://xxt.cn/login":               false,
		"https://evil.com/?login.xxt.cn":     false,
		"https://evil.com/rest.xxt.cn/login": true,
	} {
		u, _ := url.Parse(raw)
		assert.Equal(t, want, p.IsLoginURL(u), raw)
	}
	assert.False(t, p.IsLoginURL(nil))
}

func TestPolicyFilterLogin(t *testing.T) {
	t.Parallel()
	p := DefaultPolicy()
	cookies := []*Cookie{{Name: "XXT_TICKET"}, {Name: "lang"}, nil}

	u, _ := url.Parse("https://www.xxt.cn/")
	filtered := p.filterLogin(u, cookies)
	assert.Len(t, filtered, 1)
	assert.Equal(t, "lang", filtered[0].Name)

	u, _ = url.Parse("https://login.xxt.cn/")
	assert.Len(t, p.filterLogin(u, cookies), 3)
}

func TestPolicyReplicate(t *testing.T) {
	t.Parallel()
	p := DefaultPolicy()

	replicated := p.replicate([]*Cookie{
		{Name: "XXT_ID", Value: "v", Domain: "hbjxt.cn", Path: "", ExpiresAt: 10, Persistent: true, Secure: true},
		{Name: "lang", Domain: "hbjxt.cn"},
	})
	assert.Len(t, replicated, 5)

	var domains []string
	for _, c := range replicated[2:] {
		domains = append(domains, c.Domain)
		assert.Equal(t, "XXT_ID", c.Name)
		assert.Equal(t, "v", c.Value)
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, MaxExpiresAt, c.ExpiresAt)
		assert.False(t, c.Secure)
	}
	assert.Equal(t, []string{"xxt.cn", "lexue.cn", "xinzx.cn"}, domains)
}

func TestPersistentOnly(t *testing.T) {
	t.Parallel()
	cookies := persistentOnly([]*Cookie{{Name: "a", Persistent: true}, {Name: "b"}})
	assert.Len(t, cookies, 1)
	assert.Equal(t, "a", cookies[0].Name)
}
