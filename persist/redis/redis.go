// Package redis provides a Redis-based implementation of cookiejar.Persistor,
// all cookies of a jar are stored in a single hash.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shiroyk/cookiejar"
)

const (
	// DefaultKey the default hash key
	DefaultKey = "cookiejar:cookies"
	// DefaultTimeout the default timeout of each command
	DefaultTimeout = 3 * time.Second
)

// Options the redis persistor options
type Options struct {
	// Addr the redis address host:port
	Addr     string `yaml:"addr" env:"COOKIEJAR_REDIS_ADDR"`
	Password string `yaml:"password" env:"COOKIEJAR_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"COOKIEJAR_REDIS_DB"`
	// Key the hash key storing the cookies
	Key string `yaml:"key" env:"COOKIEJAR_REDIS_KEY"`
	// Timeout the timeout of each command
	Timeout time.Duration `yaml:"timeout" env:"COOKIEJAR_REDIS_TIMEOUT"`
}

// Config contains configuration options for the Redis persistor
type Config struct {
	// Client is the Redis client instance
	Client *redis.Client
	// Key is the hash key, default: "cookiejar:cookies"
	Key string
	// Timeout bounds each command, default: 3s
	Timeout time.Duration
}

// Persistor implements cookiejar.Persistor using Redis
type Persistor struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

// New creates a new Redis-based persistor.
func New(config Config) (*Persistor, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if config.Key == "" {
		config.Key = DefaultKey
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &Persistor{
		client:  config.Client,
		key:     config.Key,
		timeout: config.Timeout,
	}, nil
}

// Open connects to the redis server described by opt.
func Open(opt Options) (*Persistor, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opt.Addr,
		Password: opt.Password,
		DB:       opt.DB,
	})
	p, err := New(Config{Client: client, Key: opt.Key, Timeout: opt.Timeout})
	if err != nil {
		return nil, err
	}
	ctx, cancel := p.context()
	defer cancel()
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect redis %s: %w", opt.Addr, err)
	}
	return p, nil
}

// LoadAll returns all stored cookies, the undecodable fields are skipped.
func (p *Persistor) LoadAll() ([]*cookiejar.Cookie, error) {
	if p.IsNull() {
		return nil, cookiejar.ErrNullPersistor
	}
	ctx, cancel := p.context()
	defer cancel()

	fields, err := p.client.HGetAll(ctx, p.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load cookies %s: %w", p.key, err)
	}
	cookies := make([]*cookiejar.Cookie, 0, len(fields))
	for field, value := range fields {
		c := new(cookiejar.Cookie)
		if err = json.Unmarshal([]byte(value), c); err != nil {
			slog.Warn("skip undecodable cookie", "key", field, "error", err)
			continue
		}
		cookies = append(cookies, c)
	}
	return cookies, nil
}

// SaveAll inserts or overwrites the cookies with a single HSET.
func (p *Persistor) SaveAll(cookies []*cookiejar.Cookie) error {
	if p.IsNull() {
		return cookiejar.ErrNullPersistor
	}
	values := make([]any, 0, len(cookies)*2)
	for _, c := range cookies {
		if c == nil {
			continue
		}
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal cookie %s: %w", c.Name, err)
		}
		values = append(values, c.Key().String(), data)
	}
	if len(values) == 0 {
		return nil
	}

	ctx, cancel := p.context()
	defer cancel()
	if err := p.client.HSet(ctx, p.key, values...).Err(); err != nil {
		return fmt.Errorf("failed to save cookies %s: %w", p.key, err)
	}
	return nil
}

// RemoveAll deletes the cookies with a single HDEL.
func (p *Persistor) RemoveAll(cookies []*cookiejar.Cookie) error {
	if p.IsNull() {
		return cookiejar.ErrNullPersistor
	}
	keys := cookiejar.Keys(cookies)
	if len(keys) == 0 {
		return nil
	}

	ctx, cancel := p.context()
	defer cancel()
	if err := p.client.HDel(ctx, p.key, keys...).Err(); err != nil {
		return fmt.Errorf("failed to remove cookies %s: %w", p.key, err)
	}
	return nil
}

// Clear deletes the hash.
func (p *Persistor) Clear() error {
	if p.IsNull() {
		return cookiejar.ErrNullPersistor
	}
	ctx, cancel := p.context()
	defer cancel()
	if err := p.client.Del(ctx, p.key).Err(); err != nil {
		return fmt.Errorf("failed to clear cookies %s: %w", p.key, err)
	}
	return nil
}

// IsNull reports whether the persistor is unusable.
func (p *Persistor) IsNull() bool {
	return p == nil || p.client == nil
}

// Close closes the Redis client.
func (p *Persistor) Close() error {
	if p.IsNull() {
		return cookiejar.ErrNullPersistor
	}
	return p.client.Close()
}

func (p *Persistor) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), p.timeout)
}
