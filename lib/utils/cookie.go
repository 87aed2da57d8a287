package utils

import (
	"net/http"
	"strings"
)

// ParseSetCookie parses the Set-Cookie header lines and return a slice http.Cookie.
// The malformed lines are skipped.
func ParseSetCookie(lines ...string) []*http.Cookie {
	header := http.Header{}
	for _, line := range lines {
		for _, l := range strings.Split(line, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				header.Add("Set-Cookie", l)
			}
		}
	}
	res := http.Response{Header: header}
	return res.Cookies()
}

// CookieToString returns the Cookie header value of the slice http.Cookie.
func CookieToString(cookies []*http.Cookie) string {
	switch len(cookies) {
	case 0:
		return ""
	case 1:
		return cookies[0].String()
	}

	var b strings.Builder
	b.WriteString(cookies[0].String())
	for _, cookie := range cookies[1:] {
		b.WriteString("; ")
		b.WriteString(cookie.String())
	}
	return b.String()
}
