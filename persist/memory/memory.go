// Package memory the in-memory cookie persistor
package memory

import (
	"sync"

	"github.com/shiroyk/cookiejar"
)

// Persistor is an implementation of cookiejar.Persistor that stores cookies in in-memory.
// It does not survive the process, use it for tests and ephemeral clients.
type Persistor struct {
	mu      sync.Mutex
	entries map[string]cookiejar.Cookie
}

// LoadAll returns all stored cookies.
func (p *Persistor) LoadAll() ([]*cookiejar.Cookie, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.entries == nil {
		return nil, cookiejar.ErrNullPersistor
	}
	cookies := make([]*cookiejar.Cookie, 0, len(p.entries))
	for _, c := range p.entries {
		c := c
		cookies = append(cookies, &c)
	}
	return cookies, nil
}

// SaveAll inserts or overwrites the cookies.
func (p *Persistor) SaveAll(cookies []*cookiejar.Cookie) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.entries == nil {
		return cookiejar.ErrNullPersistor
	}
	for _, c := range cookies {
		if c != nil {
			p.entries[c.Key().String()] = *c
		}
	}
	return nil
}

// RemoveAll deletes the cookies.
func (p *Persistor) RemoveAll(cookies []*cookiejar.Cookie) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.entries == nil {
		return cookiejar.ErrNullPersistor
	}
	for _, key := range cookiejar.Keys(cookies) {
		delete(p.entries, key)
	}
	return nil
}

// Clear deletes all cookies.
func (p *Persistor) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.entries == nil {
		return cookiejar.ErrNullPersistor
	}
	p.entries = make(map[string]cookiejar.Cookie)
	return nil
}

// IsNull reports whether the persistor is unusable.
func (p *Persistor) IsNull() bool {
	if p == nil {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entries == nil
}

// Len returns the number of stored cookies.
func (p *Persistor) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// New returns a new Persistor that will store cookies in in-memory.
func New() *Persistor {
	return &Persistor{entries: make(map[string]cookiejar.Cookie)}
}
