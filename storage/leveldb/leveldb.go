package leveldb

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/starkedge/mempool/storage"
)

// Factory creates a leveldb storage
func Factory(config map[string]interface{}, logger hclog.Logger) (storage.Storage, error) {
	path, ok := config["path"]
	if !ok {
		return nil, errors.New("path not found")
	}

	pathStr, ok := path.(string)
	if !ok {
		return nil, errors.New("path is not a string")
	}

	return NewLevelDBStorage(pathStr, logger)
}

// NewLevelDBStorage creates the new storage reference with leveldb
func NewLevelDBStorage(path string, logger hclog.Logger) (storage.Storage, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", path, err)
	}

	kv := &levelDBKV{db: db}

	return storage.NewKeyValueStorage(logger.Named("leveldb"), kv), nil
}

// levelDBKV is the leveldb implementation of the kv storage
type levelDBKV struct {
	db *leveldb.DB
}

func (l *levelDBKV) ReplaceAll(prefix []byte, pairs []storage.Pair) error {
	batch := new(leveldb.Batch)

	iter := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	for iter.Next() {
		batch.Delete(append([]byte(nil), iter.Key()...))
	}

	iter.Release()

	if err := iter.Error(); err != nil {
		return err
	}

	for _, pair := range pairs {
		batch.Put(pair.Key, pair.Value)
	}

	return l.db.Write(batch, nil)
}

func (l *levelDBKV) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	iter := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	for iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}

	return iter.Error()
}

func (l *levelDBKV) Close() error {
	return l.db.Close()
}
