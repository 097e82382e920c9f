package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/starkedge/mempool/helper/hex"
	"github.com/starkedge/mempool/storage"
)

// Factory creates an in memory storage, the config is ignored
func Factory(_ map[string]interface{}, logger hclog.Logger) (storage.Storage, error) {
	return NewMemoryStorage(logger)
}

// NewMemoryStorage creates the new storage reference with inmemory
func NewMemoryStorage(logger hclog.Logger) (storage.Storage, error) {
	db := &memoryKV{db: map[string][]byte{}}

	return storage.NewKeyValueStorage(logger.Named("memory"), db), nil
}

// memoryKV is an in memory implementation of the kv storage
type memoryKV struct {
	lock sync.RWMutex
	db   map[string][]byte
}

func (m *memoryKV) ReplaceAll(prefix []byte, pairs []storage.Pair) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	hexPrefix := hex.EncodeToHex(prefix)
	for k := range m.db {
		if strings.HasPrefix(k, hexPrefix) {
			delete(m.db, k)
		}
	}

	for _, pair := range pairs {
		m.db[hex.EncodeToHex(pair.Key)] = append([]byte(nil), pair.Value...)
	}

	return nil
}

func (m *memoryKV) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	m.lock.RLock()

	hexPrefix := hex.EncodeToHex(prefix)
	keys := make([]string, 0, len(m.db))

	for k := range m.db {
		if strings.HasPrefix(k, hexPrefix) {
			keys = append(keys, k)
		}
	}

	// hex of equal length keys sorts like the raw bytes
	sort.Strings(keys)

	values := make([][]byte, len(keys))
	for i, k := range keys {
		values[i] = m.db[k]
	}

	m.lock.RUnlock()

	for i, k := range keys {
		if err := fn(hex.MustDecodeHex(k), values[i]); err != nil {
			return err
		}
	}

	return nil
}

func (m *memoryKV) Close() error {
	return nil
}
