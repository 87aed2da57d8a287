// Package persist opens the cookie persistor selected by the configuration.
package persist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shiroyk/cookiejar"
	"github.com/shiroyk/cookiejar/lib/utils"
	"github.com/shiroyk/cookiejar/persist/bolt"
	"github.com/shiroyk/cookiejar/persist/file"
	"github.com/shiroyk/cookiejar/persist/keyring"
	"github.com/shiroyk/cookiejar/persist/memory"
	"github.com/shiroyk/cookiejar/persist/redis"
	"github.com/shiroyk/cookiejar/persist/sqlite"
)

const (
	// Bolt stores cookies in a bbolt database
	Bolt = "bolt"
	// SQLite stores cookies in a SQLite database
	SQLite = "sqlite"
	// Redis stores cookies in a Redis hash
	Redis = "redis"
	// File stores cookies in a JSON file
	File = "file"
	// Keyring stores cookies in the OS keyring
	Keyring = "keyring"
	// Memory keeps cookies in the process memory
	Memory = "memory"

	// DefaultPath the default persistor directory
	DefaultPath = "~/.config/cookiejar"
)

// Options the persistor configuration
type Options struct {
	// Driver one of bolt, sqlite, redis, file, keyring, memory
	Driver string `yaml:"driver" env:"COOKIEJAR_DRIVER"`
	// Path the directory of the local databases and files
	Path string `yaml:"path" env:"COOKIEJAR_PATH"`
	// ExpireCleanInterval the bolt background expire interval
	ExpireCleanInterval time.Duration `yaml:"expire-clean-interval" env:"COOKIEJAR_EXPIRE_CLEAN_INTERVAL"`
	// Redis the redis connection
	Redis redis.Options `yaml:"redis"`
	// Keyring the keyring entry
	Keyring keyring.Options `yaml:"keyring"`
}

// Open returns the persistor selected by opt.Driver, bolt if empty.
func Open(opt Options) (cookiejar.Persistor, error) {
	path, err := utils.ExpandPath(utils.ZeroOr(opt.Path, DefaultPath))
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(utils.ZeroOr(opt.Driver, Bolt)) {
	case Bolt:
		return bolt.New(bolt.Options{Path: path, ExpireCleanInterval: opt.ExpireCleanInterval})
	case SQLite:
		return sqlite.New(sqlite.Options{Path: path})
	case Redis:
		return redis.Open(opt.Redis)
	case File:
		return file.Open(file.Options{Path: path})
	case Keyring:
		return keyring.New(opt.Keyring), nil
	case Memory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown cookie persistor driver %q", opt.Driver)
	}
}

// Close closes the persistor if it holds resources.
func Close(p cookiejar.Persistor) error {
	if c, ok := p.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
