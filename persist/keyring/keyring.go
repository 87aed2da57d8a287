// Package keyring the OS keyring cookie persistor, all cookies are stored
// as one JSON secret so identity cookies never touch the plain file system.
package keyring

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/shiroyk/cookiejar"
	"github.com/zalando/go-keyring"
)

const (
	// DefaultService the default keyring service name
	DefaultService = "cookiejar"
	// DefaultUser the default keyring user name
	DefaultUser = "cookies"
)

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
)

// Options the keyring persistor options
type Options struct {
	Service string `yaml:"service"`
	User    string `yaml:"user"`
}

// Persistor is an implementation of cookiejar.Persistor that stores cookies in the OS keyring.
type Persistor struct {
	mu            sync.Mutex
	service, user string
}

// New returns a new Persistor that will store cookies in the OS keyring.
func New(opt Options) *Persistor {
	p := &Persistor{service: opt.Service, user: opt.User}
	if p.service == "" {
		p.service = DefaultService
	}
	if p.user == "" {
		p.user = DefaultUser
	}
	return p
}

// LoadAll returns all stored cookies, an empty slice if no secret is stored.
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

// Clear deletes the secret.
func (p *Persistor) Clear() error {
	if p.IsNull() {
		return cookiejar.ErrNullPersistor
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := keyringDelete(p.service, p.user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return nil
}

// IsNull reports whether the persistor is unusable.
func (p *Persistor) IsNull() bool {
	return p == nil || p.service == ""
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

	cookies := cookiejar.MapValues(entries)
	if len(cookies) == 0 {
		if err = keyringDelete(p.service, p.user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to write cookies: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(cookies)
	if err != nil {
		return fmt.Errorf("failed to encode cookies: %w", err)
	}
	if err = keyringSet(p.service, p.user, string(data)); err != nil {
		return fmt.Errorf("failed to write cookies: %w", err)
	}
	return nil
}

func (p *Persistor) read() (map[string]*cookiejar.Cookie, error) {
	entries := make(map[string]*cookiejar.Cookie)
	secret, err := keyringGet(p.service, p.user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return entries, nil
		}
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}
	var cookies []*cookiejar.Cookie
	if err = json.Unmarshal([]byte(secret), &cookies); err != nil {
		return nil, fmt.Errorf("failed to decode cookies: %w", err)
	}
	for _, c := range cookies {
		if c != nil {
			entries[c.Key().String()] = c
		}
	}
	return entries, nil
}
