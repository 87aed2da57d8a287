// Package sqlite the SQLite cookie persistor
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/shiroyk/cookiejar"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS cookies (
	key TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	value TEXT NOT NULL,
	domain TEXT NOT NULL,
	path TEXT NOT NULL,
	expires_at INTEGER NOT NULL,
	persistent INTEGER NOT NULL,
	secure INTEGER NOT NULL,
	http_only INTEGER NOT NULL,
	host_only INTEGER NOT NULL
)`

// Options the sqlite persistor options
type Options struct {
	// Path the database directory, the file is named cookie.sqlite
	Path string `yaml:"path"`
}

// Persistor is an implementation of cookiejar.Persistor that stores cookies in SQLite.
type Persistor struct {
	db         *sql.DB
	writeMutex sync.Mutex
}

// LoadAll returns all stored cookies.
func (p *Persistor) LoadAll() ([]*cookiejar.Cookie, error) {
	if p.IsNull() {
		return nil, cookiejar.ErrNullPersistor
	}
	rows, err := p.db.Query(`SELECT name, value, domain, path, expires_at, persistent, secure, http_only, host_only FROM cookies`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cookies: %w", err)
	}
	defer rows.Close()

	cookies := make([]*cookiejar.Cookie, 0)
	for rows.Next() {
		c := new(cookiejar.Cookie)
		if err = rows.Scan(&c.Name, &c.Value, &c.Domain, &c.Path, &c.ExpiresAt,
			&c.Persistent, &c.Secure, &c.HttpOnly, &c.HostOnly); err != nil {
			return nil, fmt.Errorf("failed to scan cookie row: %w", err)
		}
		cookies = append(cookies, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cookie rows: %w", err)
	}
	return cookies, nil
}

// SaveAll inserts or overwrites the cookies in one transaction.
func (p *Persistor) SaveAll(cookies []*cookiejar.Cookie) error {
	if p.IsNull() {
		return cookiejar.ErrNullPersistor
	}
	return p.tx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT OR REPLACE INTO cookies
			(key, name, value, domain, path, expires_at, persistent, secure, http_only, host_only)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, c := range cookies {
			if c == nil {
				continue
			}
			if _, err = stmt.Exec(c.Key().String(), c.Name, c.Value, c.Domain, c.Path, c.ExpiresAt,
				c.Persistent, c.Secure, c.HttpOnly, c.HostOnly); err != nil {
				return fmt.Errorf("failed to save cookie %s: %w", c.Name, err)
			}
		}
		return nil
	})
}

// RemoveAll deletes the cookies in one transaction.
func (p *Persistor) RemoveAll(cookies []*cookiejar.Cookie) error {
	if p.IsNull() {
		return cookiejar.ErrNullPersistor
	}
	keys := cookiejar.Keys(cookies)
	if len(keys) == 0 {
		return nil
	}
	return p.tx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`DELETE FROM cookies WHERE key = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, key := range keys {
			if _, err = stmt.Exec(key); err != nil {
				return fmt.Errorf("failed to remove cookie %s: %w", key, err)
			}
		}
		return nil
	})
}

// Clear deletes all cookies.
func (p *Persistor) Clear() error {
	if p.IsNull() {
		return cookiejar.ErrNullPersistor
	}
	p.writeMutex.Lock()
	defer p.writeMutex.Unlock()
	if _, err := p.db.Exec(`DELETE FROM cookies`); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return nil
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

func (p *Persistor) tx(fn func(tx *sql.Tx) error) (err error) {
	p.writeMutex.Lock()
	defer p.writeMutex.Unlock()

	tx, err := p.db.Begin()
	if err != nil {
		return err
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// New returns a new Persistor that will store cookies in SQLite.
func New(opt Options) (*Persistor, error) {
	path := opt.Path
	if path == "" {
		path = "cookies"
	}
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", filepath.Join(path, "cookie.sqlite"))
	if err != nil {
		return nil, fmt.Errorf("cannot open cookie database: %w", err)
	}
	for _, stmt := range []string{schema, "PRAGMA journal_mode=WAL"} {
		if _, err = db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("cannot initialize cookie database: %w", err)
		}
	}
	return &Persistor{db: db}, nil
}
