package txpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/holiman/uint256"

	"github.com/starkedge/mempool/types"
)

/* MOCK */

var defaultBalance = uint256.NewInt(1_000_000_000_000)

type mockStore struct {
	lock     sync.Mutex
	nonces   map[types.Address]uint64
	balances map[types.Address]*uint256.Int

	// number of upcoming calls that fail
	failures int64
	calls    int64
}

func newMockStore() *mockStore {
	return &mockStore{
		nonces:   make(map[types.Address]uint64),
		balances: make(map[types.Address]*uint256.Int),
	}
}

func (m *mockStore) setNonce(addr types.Address, nonce uint64) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.nonces[addr] = nonce
}

func (m *mockStore) setBalance(addr types.Address, balance uint64) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.balances[addr] = uint256.NewInt(balance)
}

// nonce reads the committed nonce without counting a call
func (m *mockStore) nonce(addr types.Address) uint64 {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.nonces[addr]
}

func (m *mockStore) failNext(n int64) {
	atomic.StoreInt64(&m.failures, n)
}

func (m *mockStore) GetNonce(_ context.Context, addr types.Address) (uint64, error) {
	atomic.AddInt64(&m.calls, 1)

	if atomic.AddInt64(&m.failures, -1) >= 0 {
		return 0, errors.New("unable to fetch account state")
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	return m.nonces[addr], nil
}

func (m *mockStore) GetBalance(_ context.Context, addr types.Address) (*uint256.Int, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if balance, ok := m.balances[addr]; ok {
		return new(uint256.Int).Set(balance), nil
	}

	return new(uint256.Int).Set(defaultBalance), nil
}

type mockValidator struct {
	validateFn func(tx *types.Transaction, snapshot StateSnapshot) error
}

func (m *mockValidator) Validate(_ context.Context, tx *types.Transaction, snapshot StateSnapshot) error {
	if m.validateFn == nil {
		return nil
	}

	return m.validateFn(tx, snapshot)
}
