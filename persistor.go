package cookiejar

import "errors"

// ErrNullPersistor is returned by a Persistor that is closed or was never opened.
var ErrNullPersistor = errors.New("cookie persistor is not available")

// A Persistor is the durable store mirroring the cache.
// Implementations must be safe for concurrent use by multiple goroutines.
type Persistor interface {
	// LoadAll returns every stored cookie, an empty slice if nothing is stored.
	LoadAll() ([]*Cookie, error)
	// SaveAll inserts or overwrites the cookies by Key.
	// A failed SaveAll must leave the previously stored cookies intact.
	SaveAll(cookies []*Cookie) error
	// RemoveAll deletes the cookies by Key, absent cookies are ignored.
	RemoveAll(cookies []*Cookie) error
	// Clear deletes all cookies.
	Clear() error
	// IsNull reports whether the persistor is unusable.
	IsNull() bool
}
