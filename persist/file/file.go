// Package file the JSON file cookie persistor
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/shiroyk/cookiejar"
	"github.com/spf13/afero"
)

// DefaultName the default file name
const DefaultName = "cookies.json"

// Options the file persistor options
type Options struct {
	// Path the directory of the cookie file
	Path string `yaml:"path"`
}

// Persistor is an implementation of cookiejar.Persistor that stores
// cookies in a JSON file. Every write replaces the file atomically.
type Persistor struct {
	mu   sync.Mutex
	fs   afero.Fs
	name string
}

// New returns a new Persistor that will store cookies in the file name of fs.
func New(fs afero.Fs, name string) (*Persistor, error) {
	if fs == nil {
		return nil, errors.New("file system is required")
	}
	if name == "" {
		name = DefaultName
	}
	if dir := filepath.Dir(name); dir != "." {
		if ok, _ := afero.DirExists(fs, dir); !ok {
			if err := fs.MkdirAll(dir, 0o700); err != nil {
				return nil, err
			}
		}
	}
	return &Persistor{fs: fs, name: name}, nil
}

// Open returns a new Persistor that will store cookies in the os file system.
func Open(opt Options) (*Persistor, error) {
	return New(afero.NewOsFs(), filepath.Join(opt.Path, DefaultName))
}

// LoadAll returns all stored cookies, an empty slice if the file does not exist.
func (p *Persistor) LoadAll() ([]*cookiejar.Cookie, error) {
	if p.IsNull() {
		return nil, cookiejar.ErrNullPersistor
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	entries, err := p.read()
	if err != nil {
		return nil, err
	}
	return cookiejar.MapValues(entries), nil
}

// SaveAll inserts or overwrites the cookies.
func (p *Persistor) SaveAll(cookies []*cookiejar.Cookie) error {
	return p.update(func(entries map[string]*cookiejar.Cookie) {
		for _, c := range cookies {
			if c != nil {
				entries[c.Key().String()] = c
			}
		}
	})
}

// RemoveAll deletes the cookies.
func (p *Persistor) RemoveAll(cookies []*cookiejar.Cookie) error {
	return p.update(func(entries map[string]*cookiejar.Cookie) {
		for _, key := range cookiejar.Keys(cookies) {
			delete(entries, key)
		}
	})
}

// Clear deletes the file.
func (p *Persistor) Clear() error {
	if p.IsNull() {
		return cookiejar.ErrNullPersistor
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fs.Remove(p.name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return nil
}

// IsNull reports whether the persistor is unusable.
func (p *Persistor) IsNull() bool {
	return p == nil || p.fs == nil
}

func (p *Persistor) update(fn func(entries map[string]*cookiejar.Cookie)) error {
	if p.IsNull() {
		return cookiejar.ErrNullPersistor
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	entries, err := p.read()
	if err != nil {
		return err
	}
	fn(entries)
	return p.write(entries)
}

func (p *Persistor) read() (map[string]*cookiejar.Cookie, error) {
	entries := make(map[string]*cookiejar.Cookie)
	data, err := afero.ReadFile(p.fs, p.name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entries, nil
		}
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}
	if len(data) == 0 {
		return entries, nil
	}
	var cookies []*cookiejar.Cookie
	if err = json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("failed to decode cookies %s: %w", p.name, err)
	}
	for _, c := range cookies {
		if c != nil {
			entries[c.Key().String()] = c
		}
	}
	return entries, nil
}

// write replaces the file with a temporary file, the previous file is
// left intact if any step fails.
func (p *Persistor) write(entries map[string]*cookiejar.Cookie) error {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	cookies := make([]*cookiejar.Cookie, len(keys))
	for i, key := range keys {
		cookies[i] = entries[key]
	}

	data, err := json.MarshalIndent(cookies, "", "\t")
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}
	tmp := p.name + ".tmp"
	if err = afero.WriteFile(p.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cookies: %w", err)
	}
	if err = p.fs.Rename(tmp, p.name); err != nil {
		_ = p.fs.Remove(tmp)
		return fmt.Errorf("failed to write cookies: %w", err)
	}
	return nil
}
