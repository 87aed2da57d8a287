package v1

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/shiroyk/cookiejar"
	"github.com/shiroyk/cookiejar/lib/utils"
)

const maxBodySize = 1 << 20

// available rejects the requests when the jar is unusable.
func available(jar *cookiejar.Jar) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return handleFunc(func(w http.ResponseWriter, r *http.Request) error {
			if jar.IsNull() {
				return JSON(w, http.StatusServiceUnavailable, msg{"cookie jar is not available"})
			}
			next.ServeHTTP(w, r)
			return nil
		})
	}
}

// requestURL parses the url query parameter, it must be absolute.
func requestURL(r *http.Request) (*url.URL, error) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		return nil, fmt.Errorf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("url %q is not absolute", raw)
	}
	return u, nil
}

// loadCookies GET /v1/cookies?url= returns the cookies sent to the url.
func loadCookies(jar *cookiejar.Jar) handleFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		u, err := requestURL(r)
		if err != nil {
			return JSON(w, http.StatusBadRequest, msg{err.Error()})
		}
		cookies := jar.LoadForRequest(u)
		if cookies == nil {
			cookies = []*cookiejar.Cookie{}
		}
		return JSON(w, http.StatusOK, cookies)
	}
}

// saveCookies POST /v1/cookies?url= stores the Set-Cookie lines of the body
// as a response from the url.
func saveCookies(jar *cookiejar.Jar) handleFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		u, err := requestURL(r)
		if err != nil {
			return JSON(w, http.StatusBadRequest, msg{err.Error()})
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			return err
		}
		cookies := utils.ParseSetCookie(string(body))
		if len(cookies) == 0 {
			return JSON(w, http.StatusBadRequest, msg{"no valid Set-Cookie line"})
		}
		jar.SetCookies(u, cookies)
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
}

// clearCookies DELETE /v1/cookies removes every cookie.
func clearCookies(jar *cookiejar.Jar) handleFunc {
	return func(w http.ResponseWriter, _ *http.Request) error {
		if err := jar.Clear(); err != nil {
			return err
		}
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
}

// clearSession POST /v1/session/clear drops the cookies not persisted.
func clearSession(jar *cookiejar.Jar) handleFunc {
	return func(w http.ResponseWriter, _ *http.Request) error {
		jar.ClearSession()
		w.WriteHeader(http.StatusNoContent)
		return nil
	}
}

// policy GET /v1/policy returns the jar policy.
func policy(jar *cookiejar.Jar) handleFunc {
	return func(w http.ResponseWriter, _ *http.Request) error {
		return JSON(w, http.StatusOK, jar.Policy())
	}
}
