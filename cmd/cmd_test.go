package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func TestCookiesCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("COOKIEJAR_DRIVER", "file")
	t.Setenv("COOKIEJAR_PATH", dir)
	configFile := filepath.Join(dir, "config.yml")

	out := execute(t, "--config", configFile, "set", "https://www.example.com/", "lang=zh; Path=/; Max-Age=3600")
	assert.Contains(t, out, "lang=zh")

	out = execute(t, "--config", configFile, "cookies", "https://www.example.com/")
	assert.Contains(t, out, "lang=zh")

	execute(t, "--config", configFile, "clear")
	out = execute(t, "--config", configFile, "cookies", "https://www.example.com/")
	assert.NotContains(t, out, "lang=zh")
}

func TestGetCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sid", Value: "42", Path: "/", MaxAge: 60})
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()
	t.Setenv("COOKIEJAR_DRIVER", "memory")
	out := execute(t, "--config", filepath.Join(dir, "config.yml"), "get", srv.URL)
	assert.True(t, strings.Contains(out, "200 OK"), out)
	assert.Contains(t, out, "sid=42")
}

func TestConfigGen(t *testing.T) {
	file := filepath.Join(t.TempDir(), "gen", "config.yml")
	out := execute(t, "--config", file, "config", "--gen", file)
	assert.Contains(t, out, "configuration written")
}
