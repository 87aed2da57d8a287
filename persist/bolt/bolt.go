// Package bolt the bbolt cookie persistor
package bolt

import (
	"encoding/binary"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	defaultBatchSize = 100000
	// DefaultPath the default database directory
	DefaultPath     = "cookies"
	defaultInterval = 10 * time.Minute
	fillPercent     = 0.9
)

var (
	expireBucketName = []byte("expire")
	// ErrClosed the database is closed
	ErrClosed = errors.New("bolt database is closed")
)

// Item a key value pair written in batch, Deadline is the
// milliseconds since epoch after which the key is removed, 0 keeps it.
type Item struct {
	Key, Value []byte
	Deadline   int64
}

// DB a bbolt.DB instance
type DB struct {
	bucketName []byte
	db         *bbolt.DB
	interval   time.Duration
	closedC    chan struct{}
}

// NewDB creates a new DB instance
// if interval is not above 0, will not clear expired keys
func NewDB(path, name string, interval time.Duration) (*DB, error) {
	if path == "" {
		path = DefaultPath
	}
	err := os.MkdirAll(path, 0700)
	if err != nil {
		return nil, err
	}
	db, err := bbolt.Open(filepath.Join(path, name), 0600, &bbolt.Options{
		Timeout:         1 * time.Second,
		InitialMmapSize: 1024,
	})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err = tx.CreateBucketIfNotExists([]byte(name)); err != nil {
			return err
		}
		if _, err = tx.CreateBucketIfNotExists(expireBucketName); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	c := &DB{
		bucketName: []byte(name),
		interval:   interval,
		db:         db,
		closedC:    make(chan struct{}),
	}
	go c.expire()
	return c, nil
}

// PutBatch writes all items in a single transaction.
func (db *DB) PutBatch(items []Item) error {
	return db.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(db.bucketName)
		expireBucket := tx.Bucket(expireBucketName)
		for _, item := range items {
			if err := bucket.Put(item.Key, item.Value); err != nil {
				return err
			}
			if item.Deadline > 0 {
				ddl := make([]byte, 8)
				binary.BigEndian.PutUint64(ddl, uint64(item.Deadline))
				if err := expireBucket.Put(item.Key, ddl); err != nil {
					return err
				}
			} else if err := expireBucket.Delete(item.Key); err != nil {
				return err
			}
		}
		return nil
	})
}

// ForEach calls fn for each key value pair of the bucket.
func (db *DB) ForEach(fn func(key, value []byte) error) error {
	return db.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(db.bucketName).ForEach(fn)
	})
}

// DeleteBatch delete data in batch.
func (db *DB) DeleteBatch(keys [][]byte) error {
	batchLoopNum := len(keys) / defaultBatchSize
	if len(keys)%defaultBatchSize > 0 {
		batchLoopNum++
	}

	for batchIdx := 0; batchIdx < batchLoopNum; batchIdx++ {
		offset := batchIdx * defaultBatchSize
		tx, err := db.db.Begin(true)
		if err != nil {
			return err
		}
		bucket := tx.Bucket(db.bucketName)
		bucket.FillPercent = fillPercent
		expireBucket := tx.Bucket(expireBucketName)
		for itemIdx := offset; itemIdx < offset+defaultBatchSize; itemIdx++ {
			if itemIdx >= len(keys) {
				break
			}
			key := keys[itemIdx]
			if err = bucket.Delete(key); err != nil {
				_ = tx.Rollback()
				return err
			}
			if err = expireBucket.Delete(key); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		if err = tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// Clear deletes every key of the bucket.
func (db *DB) Clear() error {
	return db.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{db.bucketName, expireBucketName} {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the database.
func (db *DB) Close() error {
	select {
	case <-db.closedC:
		return ErrClosed
	default:
	}
	close(db.closedC)
	if err := db.db.Sync(); err != nil {
		return err
	}
	return db.db.Close()
}

// expire timing scan the expired keys and delete them.
func (db *DB) expire() {
	if db.interval <= 0 {
		return
	}
	ticker := time.NewTicker(db.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := db.deleteExpired(time.Now()); err != nil {
				slog.Error("error cleaning expired cookies", "error", err)
			}
		case <-db.closedC:
			return
		}
	}
}

func (db *DB) deleteExpired(now time.Time) error {
	var deletedKeys [][]byte
	err := db.db.View(func(tx *bbolt.Tx) error {
		ms := now.UnixMilli()
		return tx.Bucket(expireBucketName).ForEach(func(key, ddl []byte) error {
			if len(ddl) == 8 && ms > int64(binary.BigEndian.Uint64(ddl)) {
				deletedKeys = append(deletedKeys, append([]byte(nil), key...))
			}
			return nil
		})
	})
	if err != nil {
		return err
	}
	return db.DeleteBatch(deletedKeys)
}
