package txpool

import (
	"github.com/starkedge/mempool/types"
)

// accountState describes where an account stands in the readiness cycle
type accountState int

const (
	noEntries   accountState = iota // nothing queued
	pendingOnly                     // queued entries, none executable yet
	hasReady                        // exactly one entry in the ready queue
)

func (s accountState) String() string {
	switch s {
	case noEntries:
		return "no-entries"
	case pendingOnly:
		return "pending-only"
	case hasReady:
		return "has-ready"
	}

	return "unknown"
}

// Thin wrapper around the accounts known to the pool.
// Guarded by the pool mutex.
type accountsMap struct {
	accounts map[types.Address]*account

	maxEnqueuedLimit uint64
}

func newAccountsMap(maxEnqueued uint64) accountsMap {
	return accountsMap{
		accounts:         make(map[types.Address]*account),
		maxEnqueuedLimit: maxEnqueued,
	}
}

// initOnce creates an account with the given nonce if it does not exist yet
func (m *accountsMap) initOnce(addr types.Address, nonce uint64) *account {
	if a, ok := m.accounts[addr]; ok {
		return a
	}

	a := &account{
		nonceToTx:   make(map[uint64]*Entry),
		nextNonce:   nonce,
		maxEnqueued: m.maxEnqueuedLimit,
	}
	m.accounts[addr] = a

	return a
}

// get returns the account associated with the given address, or nil
func (m *accountsMap) get(addr types.Address) *account {
	return m.accounts[addr]
}

func (m *accountsMap) exists(addr types.Address) bool {
	_, ok := m.accounts[addr]

	return ok
}

// dropIfIdle forgets the account once it holds nothing and has nothing in flight
func (m *accountsMap) dropIfIdle(addr types.Address) {
	if a, ok := m.accounts[addr]; ok && a.idle() {
		delete(m.accounts, addr)
	}
}

func (m *accountsMap) length() int {
	return len(m.accounts)
}

// account is the nonce chain of a single sender. At most one entry
// per nonce is held, and only the entry at nextNonce may be ready.
type account struct {
	nonceToTx map[uint64]*Entry

	// nextNonce is the expected nonce: the committed state nonce,
	// advanced past nonces that were reserved or included
	nextNonce uint64

	// ready is the entry currently in the ready queue, if any
	ready *Entry

	// number of entries reserved by the block producer and
	// not yet included or released
	inflight uint64

	maxEnqueued uint64
}

func (a *account) getNonce() uint64 {
	return a.nextNonce
}

func (a *account) state() accountState {
	switch {
	case a.ready != nil:
		return hasReady
	case len(a.nonceToTx) > 0:
		return pendingOnly
	default:
		return noEntries
	}
}

func (a *account) get(nonce uint64) *Entry {
	return a.nonceToTx[nonce]
}

func (a *account) length() uint64 {
	return uint64(len(a.nonceToTx))
}

func (a *account) full() bool {
	return a.length() >= a.maxEnqueued
}

func (a *account) idle() bool {
	return len(a.nonceToTx) == 0 && a.inflight == 0
}

// enqueue stores the entry at its nonce. The slot must be free
func (a *account) enqueue(entry *Entry) {
	a.nonceToTx[entry.Nonce()] = entry
}

// remove takes the entry out of the chain.
// Returns true if it was the ready entry
func (a *account) remove(entry *Entry) bool {
	if cur, ok := a.nonceToTx[entry.Nonce()]; !ok || cur != entry {
		return false
	}

	delete(a.nonceToTx, entry.Nonce())

	if a.ready == entry {
		a.ready = nil

		return true
	}

	return false
}

// promote marks the entry at the expected nonce as ready.
// Returns the newly ready entry, or nil if nothing changed
func (a *account) promote() *Entry {
	if a.ready != nil {
		return nil
	}

	entry, ok := a.nonceToTx[a.nextNonce]
	if !ok {
		return nil
	}

	a.ready = entry

	return entry
}

// demote clears the ready mark. Returns the previously ready entry
func (a *account) demote() *Entry {
	entry := a.ready
	a.ready = nil

	return entry
}

// advance moves the expected nonce past a consumed nonce.
// Returns the entries that became stale
func (a *account) advance(consumed uint64) []*Entry {
	if consumed+1 <= a.nextNonce {
		return nil
	}

	return a.reset(consumed + 1)
}

// reset aligns the chain to a new expected nonce, dropping every
// entry below it. Returns the dropped entries
func (a *account) reset(nonce uint64) []*Entry {
	var stale []*Entry

	for n, entry := range a.nonceToTx {
		if n < nonce {
			stale = append(stale, entry)
			delete(a.nonceToTx, n)

			if a.ready == entry {
				a.ready = nil
			}
		}
	}

	if a.ready != nil && a.ready.Nonce() != nonce {
		a.ready = nil
	}

	a.nextNonce = nonce

	return stale
}

// rollback lowers the expected nonce after reserved entries were
// handed back. Returns the ready entry that lost its status, if any
func (a *account) rollback(nonce uint64) *Entry {
	if nonce >= a.nextNonce {
		return nil
	}

	a.nextNonce = nonce

	return a.demote()
}

// firstMissingFrom returns the lowest nonce at or above start
// that has no entry
func (a *account) firstMissingFrom(start uint64) uint64 {
	n := start
	for {
		if _, ok := a.nonceToTx[n]; !ok {
			return n
		}

		n++
	}
}
