package bolt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shiroyk/cookiejar"
	"github.com/shiroyk/cookiejar/lib/utils"
)

// Options the bolt persistor options
type Options struct {
	// Path the database directory
	Path string `yaml:"path"`
	// ExpireCleanInterval the interval of removing expired cookies in background,
	// defaults to 10 minutes, a negative interval disables it
	ExpireCleanInterval time.Duration `yaml:"expire-clean-interval"`
}

// Persistor is an implementation of cookiejar.Persistor that stores cookies in bolt.DB.
type Persistor struct {
	db *DB
}

// LoadAll returns all stored cookies, the undecodable entries are skipped.
func (p *Persistor) LoadAll() ([]*cookiejar.Cookie, error) {
	if p.IsNull() {
		return nil, cookiejar.ErrNullPersistor
	}
	cookies := make([]*cookiejar.Cookie, 0)
	err := p.db.ForEach(func(key, value []byte) error {
		c := new(cookiejar.Cookie)
		if err := json.Unmarshal(value, c); err != nil {
			slog.Warn("skip undecodable cookie", "key", string(key), "error", err)
			return nil
		}
		cookies = append(cookies, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load cookies: %w", err)
	}
	return cookies, nil
}

// SaveAll inserts or overwrites the cookies in one transaction.
func (p *Persistor) SaveAll(cookies []*cookiejar.Cookie) error {
	if p.IsNull() {
		return cookiejar.ErrNullPersistor
	}
	items := make([]Item, 0, len(cookies))
	for _, c := range cookies {
		if c == nil {
			continue
		}
		value, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to encode cookie %s: %w", c.Name, err)
		}
		items = append(items, Item{
			Key:      []byte(c.Key().String()),
			Value:    value,
			Deadline: deadline(c),
		})
	}
	if err := p.db.PutBatch(items); err != nil {
		return fmt.Errorf("failed to save cookies: %w", err)
	}
	return nil
}

// RemoveAll deletes the cookies.
func (p *Persistor) RemoveAll(cookies []*cookiejar.Cookie) error {
	if p.IsNull() {
		return cookiejar.ErrNullPersistor
	}
	keys := cookiejar.Keys(cookies)
	if len(keys) == 0 {
		return nil
	}
	batch := make([][]byte, len(keys))
	for i, key := range keys {
		batch[i] = []byte(key)
	}
	if err := p.db.DeleteBatch(batch); err != nil {
		return fmt.Errorf("failed to remove cookies: %w", err)
	}
	return nil
}

// Clear deletes all cookies.
func (p *Persistor) Clear() error {
	if p.IsNull() {
		return cookiejar.ErrNullPersistor
	}
	return p.db.Clear()
}

// IsNull reports whether the persistor is unusable.
func (p *Persistor) IsNull() bool {
	return p == nil || p.db == nil
}

// Close closes the database.
func (p *Persistor) Close() error {
	if p.IsNull() {
		return cookiejar.ErrNullPersistor
	}
	return p.db.Close()
}

// deadline the expire bucket deadline of c, 0 for the cookies without a lifetime.
func deadline(c *cookiejar.Cookie) int64 {
	switch {
	case c.ExpiresAt >= cookiejar.MaxExpiresAt:
		return 0
	case c.ExpiresAt < 1:
		return 1
	default:
		return c.ExpiresAt
	}
}

// New returns a new Persistor that will store cookies in bolt.DB.
func New(opt Options) (*Persistor, error) {
	db, err := NewDB(opt.Path, "cookie.db", utils.ZeroOr(opt.ExpireCleanInterval, defaultInterval))
	if err != nil {
		return nil, err
	}
	return &Persistor{db: db}, nil
}
