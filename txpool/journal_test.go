package txpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starkedge/mempool/types"
)

func TestJournal(t *testing.T) {
	t.Parallel()

	j, err := newJournal(2)
	require.NoError(t, err)

	hash1, hash2, hash3 := types.StringToHash("0x1"), types.StringToHash("0x2"), types.StringToHash("0x3")

	status, ok := j.txStatus(hash1)
	assert.False(t, ok)
	assert.Equal(t, TxUnknown, status)

	j.log(TxIncluded, hash1, hash2)

	status, ok = j.txStatus(hash1)
	assert.True(t, ok)
	assert.Equal(t, TxIncluded, status)

	// hash1 was just read, the least recently used record goes
	j.log(TxEvicted, hash3)

	_, ok = j.txStatus(hash2)
	assert.False(t, ok)

	_, ok = j.txStatus(hash1)
	assert.True(t, ok)

	status, _ = j.txStatus(hash3)
	assert.Equal(t, TxEvicted, status)

	j.reset(hash3)

	_, ok = j.txStatus(hash3)
	assert.False(t, ok)
}

func TestTxStatus_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ready", TxReady.String())
	assert.Equal(t, "dropped", TxDropped.String())
}
