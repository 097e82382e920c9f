package boltdb

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	bolt "go.etcd.io/bbolt"

	"github.com/starkedge/mempool/storage"
)

// Factory creates a boltdb storage
func Factory(config map[string]interface{}, logger hclog.Logger) (storage.Storage, error) {
	path, ok := config["path"]
	if !ok {
		return nil, errors.New("path not found")
	}

	pathStr, ok := path.(string)
	if !ok {
		return nil, errors.New("path is not a string")
	}

	if err := os.MkdirAll(pathStr, 0755); err != nil {
		return nil, err
	}

	return NewBoltDBStorage(filepath.Join(pathStr, "db"), logger)
}

// NewBoltDBStorage creates the new storage reference with boltdb
func NewBoltDBStorage(path string, logger hclog.Logger) (storage.Storage, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	kv := &boltDBKV{db: db}

	return storage.NewKeyValueStorage(logger.Named("boltdb"), kv), nil
}

// boltDBKV is the boltdb implementation of the kv storage
type boltDBKV struct {
	db *bolt.DB
}

var bucket = []byte{'b'}

func (l *boltDBKV) ReplaceAll(prefix []byte, pairs []storage.Pair) error {
	return l.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}

		// keys can not be deleted while the cursor walks them
		var stale [][]byte

		c := b.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			stale = append(stale, append([]byte(nil), k...))
		}

		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}

		for _, pair := range pairs {
			if err := b.Put(pair.Key, pair.Value); err != nil {
				return err
			}
		}

		return nil
	})
}

func (l *boltDBKV) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	return l.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}

		c := b.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			// k and v are only valid for the lifetime of the tx
			if err := fn(append([]byte(nil), k...), append([]byte(nil), v...)); err != nil {
				return err
			}
		}

		return nil
	})
}

func (l *boltDBKV) Close() error {
	return l.db.Close()
}
