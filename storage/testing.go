package storage

import (
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starkedge/mempool/types"
)

type PlaceholderStorage func(t *testing.T) (Storage, func())

var (
	addr1 = types.StringToAddress("1")
	addr2 = types.StringToAddress("2")
)

// TestStorage tests a set of tests on a storage
func TestStorage(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	t.Run("testEmptyCheckpoint", func(t *testing.T) {
		testEmptyCheckpoint(t, m)
	})
	t.Run("testCheckpointRoundTrip", func(t *testing.T) {
		testCheckpointRoundTrip(t, m)
	})
	t.Run("testCheckpointReplaces", func(t *testing.T) {
		testCheckpointReplaces(t, m)
	})
	t.Run("testCheckpointOrder", func(t *testing.T) {
		testCheckpointOrder(t, m)
	})
}

func newRecord(seq uint64, sender types.Address, nonce uint64) *TxRecord {
	tx := &types.Transaction{
		Type:      types.InvokeTx,
		Version:   1,
		Sender:    sender,
		Nonce:     nonce,
		Fee:       uint256.NewInt(1000 + seq),
		Calldata:  [][]byte{{0x1}, {0x2, 0x3}},
		Signature: [][]byte{{0xa}, {0xb}},
	}

	return &TxRecord{
		Seq:       seq,
		ArrivedAt: time.Unix(1700000000, int64(seq)).UnixNano(),
		Tx:        tx.ComputeHash(),
	}
}

func testEmptyCheckpoint(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	records, err := s.ReadCheckpoint()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func testCheckpointRoundTrip(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	written := []*TxRecord{
		newRecord(1, addr1, 0),
		newRecord(2, addr1, 1),
		newRecord(3, addr2, 7),
	}

	require.NoError(t, s.WriteCheckpoint(written))

	read, err := s.ReadCheckpoint()
	require.NoError(t, err)
	require.Len(t, read, len(written))

	for i, rec := range read {
		assert.Equal(t, written[i].Seq, rec.Seq)
		assert.Equal(t, written[i].ArrivedAt, rec.ArrivedAt)
		assert.Equal(t, written[i].Tx.Hash, rec.Tx.Hash)
		assert.Equal(t, written[i].Tx.Sender, rec.Tx.Sender)
		assert.Equal(t, written[i].Tx.Nonce, rec.Tx.Nonce)
		assert.True(t, written[i].Tx.Fee.Eq(rec.Tx.Fee))
		assert.Equal(t, written[i].Tx.Calldata, rec.Tx.Calldata)
	}
}

func testCheckpointReplaces(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	require.NoError(t, s.WriteCheckpoint([]*TxRecord{
		newRecord(1, addr1, 0),
		newRecord(2, addr1, 1),
		newRecord(3, addr1, 2),
	}))

	require.NoError(t, s.WriteCheckpoint([]*TxRecord{
		newRecord(5, addr2, 0),
	}))

	read, err := s.ReadCheckpoint()
	require.NoError(t, err)
	require.Len(t, read, 1)
	assert.Equal(t, uint64(5), read[0].Seq)
	assert.Equal(t, addr2, read[0].Tx.Sender)

	// an empty checkpoint clears the previous one
	require.NoError(t, s.WriteCheckpoint(nil))

	read, err = s.ReadCheckpoint()
	require.NoError(t, err)
	assert.Empty(t, read)
}

func testCheckpointOrder(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	// written out of order, and with seq values that differ in the high bytes
	require.NoError(t, s.WriteCheckpoint([]*TxRecord{
		newRecord(1<<40, addr1, 2),
		newRecord(300, addr1, 1),
		newRecord(2, addr1, 0),
	}))

	read, err := s.ReadCheckpoint()
	require.NoError(t, err)
	require.Len(t, read, 3)

	assert.Equal(t, uint64(2), read[0].Seq)
	assert.Equal(t, uint64(300), read[1].Seq)
	assert.Equal(t, uint64(1<<40), read[2].Seq)
}
