package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroOr(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 1, ZeroOr(0, 1))
	assert.Equal(t, 2, ZeroOr(2, 1))
}

func TestEmptyOr(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{1}, EmptyOr([]int{}, []int{1}))
	assert.Equal(t, []int{2}, EmptyOr([]int{2}, []int{1}))
}

func TestExpandPath(t *testing.T) {
	t.Parallel()
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	path, err := ExpandPath("~/.config/cookiejar")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/cookiejar"), path)

	path, err = ExpandPath("/tmp/cookiejar")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cookiejar", path)
}

func TestReadYaml(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(file, []byte("hosts: [a, b]\n"), 0o600))

	type config struct {
		Name  string   `yaml:"name"`
		Hosts []string `yaml:"hosts"`
	}
	c := config{Name: "default", Hosts: []string{"c"}}
	require.NoError(t, ReadYaml(file, &c))
	assert.Equal(t, "default", c.Name)
	assert.Equal(t, []string{"a", "b"}, c.Hosts)
}
