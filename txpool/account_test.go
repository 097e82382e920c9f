package txpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(nonce, fee, seq uint64) *Entry {
	return &Entry{Tx: newTx(addr1, nonce, fee).ComputeHash(), Seq: seq}
}

func TestAccount_PromoteOnlyExpected(t *testing.T) {
	t.Parallel()

	accounts := newAccountsMap(10)
	acc := accounts.initOnce(addr1, 1)

	// initOnce does not reset an existing account
	assert.Same(t, acc, accounts.initOnce(addr1, 5))
	assert.Equal(t, noEntries, acc.state())

	e2 := newEntry(2, 10, 1)
	acc.enqueue(e2)

	assert.Nil(t, acc.promote())
	assert.Equal(t, pendingOnly, acc.state())

	e1 := newEntry(1, 10, 2)
	acc.enqueue(e1)

	assert.Same(t, e1, acc.promote())
	assert.Nil(t, acc.promote(), "one ready entry at a time")
	assert.Equal(t, hasReady, acc.state())
}

func TestAccount_AdvanceAndReset(t *testing.T) {
	t.Parallel()

	accounts := newAccountsMap(10)
	acc := accounts.initOnce(addr1, 0)

	entries := []*Entry{newEntry(0, 10, 1), newEntry(1, 10, 2), newEntry(2, 10, 3)}
	for _, entry := range entries {
		acc.enqueue(entry)
	}

	require.Same(t, entries[0], acc.promote())

	// reserving nonce 0 detaches it first
	assert.True(t, acc.remove(entries[0]))
	assert.Empty(t, acc.advance(0))
	assert.Equal(t, uint64(1), acc.getNonce())
	assert.Same(t, entries[1], acc.promote())

	// a consumed nonce below the expected one changes nothing
	assert.Empty(t, acc.advance(0))
	assert.Same(t, entries[1], acc.ready)

	stale := acc.reset(3)
	assert.ElementsMatch(t, []*Entry{entries[1], entries[2]}, stale)
	assert.Nil(t, acc.ready)
	assert.Equal(t, uint64(3), acc.getNonce())
	assert.True(t, acc.idle())

	accounts.dropIfIdle(addr1)
	assert.False(t, accounts.exists(addr1))
}

func TestAccount_Rollback(t *testing.T) {
	t.Parallel()

	accounts := newAccountsMap(10)
	acc := accounts.initOnce(addr1, 3)

	e3 := newEntry(3, 10, 1)
	acc.enqueue(e3)
	require.Same(t, e3, acc.promote())

	assert.Nil(t, acc.rollback(5), "rollback never moves forward")

	assert.Same(t, e3, acc.rollback(1))
	assert.Equal(t, uint64(1), acc.getNonce())
	assert.Equal(t, pendingOnly, acc.state())

	// in flight entries keep the account alive
	acc.remove(e3)
	acc.inflight = 1
	accounts.dropIfIdle(addr1)
	assert.True(t, accounts.exists(addr1))
}

func TestAccount_FirstMissing(t *testing.T) {
	t.Parallel()

	accounts := newAccountsMap(10)
	acc := accounts.initOnce(addr1, 0)

	assert.Equal(t, uint64(0), acc.firstMissingFrom(0))

	for _, nonce := range []uint64{0, 1, 2, 4} {
		acc.enqueue(newEntry(nonce, 10, nonce+1))
	}

	assert.Equal(t, uint64(3), acc.firstMissingFrom(0))
	assert.Equal(t, uint64(5), acc.firstMissingFrom(4))
}

func TestAccount_Full(t *testing.T) {
	t.Parallel()

	accounts := newAccountsMap(2)
	acc := accounts.initOnce(addr1, 0)

	acc.enqueue(newEntry(0, 10, 1))
	assert.False(t, acc.full())

	acc.enqueue(newEntry(1, 10, 2))
	assert.True(t, acc.full())
}
