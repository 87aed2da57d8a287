package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shiroyk/cookiejar"
	"github.com/shiroyk/cookiejar/persist/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "secret"

func newServer(t *testing.T) (*httptest.Server, *memory.Persistor) {
	t.Helper()
	persistor := memory.New()
	jar := cookiejar.New(cookiejar.NewSetCache(), persistor, cookiejar.Options{})
	srv := httptest.NewServer(Routes(jar, secret, time.Minute, false))
	t.Cleanup(srv.Close)
	return srv, persistor
}

func do(t *testing.T, method, target, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, target, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+secret)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func TestAuth(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t)

	res, err := http.Get(srv.URL + "/ping")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	assert.Equal(t, http.StatusNoContent, do(t, http.MethodGet, srv.URL+"/ping", "").StatusCode)
}

func TestCookies(t *testing.T) {
	t.Parallel()
	srv, persistor := newServer(t)
	target := url.QueryEscape("https://www.example.com/app/")

	res := do(t, http.MethodPost, srv.URL+"/v1/cookies?url="+target, "lang=zh; Path=/; Max-Age=3600\nsid=1")
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, 2, persistor.Len())

	res = do(t, http.MethodGet, srv.URL+"/v1/cookies?url="+target, "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	var cookies []cookiejar.Cookie
	require.NoError(t, json.NewDecoder(res.Body).Decode(&cookies))
	assert.Len(t, cookies, 2)

	res = do(t, http.MethodDelete, srv.URL+"/v1/cookies", "")
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, 0, persistor.Len())

	res = do(t, http.MethodGet, srv.URL+"/v1/cookies?url="+target, "")
	cookies = nil
	require.NoError(t, json.NewDecoder(res.Body).Decode(&cookies))
	assert.Empty(t, cookies)
}

func TestBadRequest(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t)

	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodGet, srv.URL+"/v1/cookies", "").StatusCode)
	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodGet, srv.URL+"/v1/cookies?url=/relative", "").StatusCode)
	assert.Equal(t, http.StatusBadRequest,
		do(t, http.MethodPost, srv.URL+"/v1/cookies?url="+url.QueryEscape("https://example.com"), "").StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, http.MethodGet, srv.URL+"/v2", "").StatusCode)
}

func TestSessionAndPolicy(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t)

	assert.Equal(t, http.StatusNoContent, do(t, http.MethodPost, srv.URL+"/v1/session/clear", "").StatusCode)

	res := do(t, http.MethodGet, srv.URL+"/v1/policy", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	var p cookiejar.Policy
	require.NoError(t, json.NewDecoder(res.Body).Decode(&p))
	assert.Equal(t, cookiejar.DefaultPolicy(), p)
}

func TestUnavailable(t *testing.T) {
	t.Parallel()
	jar := cookiejar.New(nil, nil, cookiejar.Options{})
	srv := httptest.NewServer(Routes(jar, "", 0, false))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/v1/policy")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}
