package txpool

import (
	"github.com/starkedge/mempool/types"
)

// Lookup map used to find transactions present in the pool.
// It is the only index owning entries by hash, every other
// structure of the pool references the same *Entry.
// Guarded by the pool mutex.
type lookupMap struct {
	all map[types.Hash]*Entry
}

func newLookupMap() lookupMap {
	return lookupMap{all: make(map[types.Hash]*Entry)}
}

// add inserts the given entry into the map. Returns false
// if it already exists.
func (m *lookupMap) add(entry *Entry) bool {
	if _, exists := m.all[entry.Hash()]; exists {
		return false
	}

	m.all[entry.Hash()] = entry

	return true
}

// remove removes the given entries from the map.
func (m *lookupMap) remove(entries ...*Entry) {
	for _, entry := range entries {
		delete(m.all, entry.Hash())
	}
}

// get returns the entry associated with the given hash.
func (m *lookupMap) get(hash types.Hash) (*Entry, bool) {
	entry, ok := m.all[hash]

	return entry, ok
}

func (m *lookupMap) length() int {
	return len(m.all)
}
