package cookiejar

import "sync"

// A Cache is the in-memory working set of cookies used for every
// request and response. Implementations must be safe for concurrent use.
type Cache interface {
	// AddAll inserts the cookies, overwriting the entries with the same Key.
	AddAll(cookies []*Cookie)
	// Range calls f for each cookie in a snapshot of the cache until f returns false.
	Range(f func(c *Cookie) bool)
	// RemoveAll removes the cookies with the same Key, absent cookies are ignored.
	RemoveAll(cookies []*Cookie)
	// Clear removes all cookies.
	Clear()
	// Len returns the number of cookies.
	Len() int
	// IsNull reports whether the cache is unusable.
	IsNull() bool
}

// setCache is an implementation of Cache that stores cookies in a map keyed by Key.
type setCache struct {
	sync.Mutex
	items map[Key]*Cookie
}

// AddAll inserts the cookies, the last cookie wins for a duplicate Key.
func (c *setCache) AddAll(cookies []*Cookie) {
	c.Lock()
	defer c.Unlock()
	for _, cookie := range cookies {
		if cookie == nil {
			continue
		}
		c.items[cookie.Key()] = cookie
	}
}

// Range calls f for each cookie.
func (c *setCache) Range(f func(c *Cookie) bool) {
	c.Lock()
	snapshot := MapValues(c.items)
	c.Unlock()

	for _, cookie := range snapshot {
		if !f(cookie) {
			return
		}
	}
}

// RemoveAll removes the cookies by Key.
func (c *setCache) RemoveAll(cookies []*Cookie) {
	c.Lock()
	defer c.Unlock()
	for _, cookie := range cookies {
		if cookie == nil {
			continue
		}
		delete(c.items, cookie.Key())
	}
}

// Clear removes all cookies.
func (c *setCache) Clear() {
	c.Lock()
	defer c.Unlock()
	c.items = make(map[Key]*Cookie)
}

// Len returns the number of cookies.
func (c *setCache) Len() int {
	c.Lock()
	defer c.Unlock()
	return len(c.items)
}

// IsNull reports whether the cache is unusable.
func (c *setCache) IsNull() bool {
	return c == nil || c.items == nil
}

// NewSetCache returns a new Cache that stores cookies in in-memory.
func NewSetCache() Cache {
	return &setCache{items: make(map[Key]*Cookie)}
}
