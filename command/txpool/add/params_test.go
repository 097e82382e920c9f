package add

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starkedge/mempool/helper/hex"
	"github.com/starkedge/mempool/types"
)

func TestAddParams_Fields(t *testing.T) {
	t.Parallel()

	p := &addParams{
		typeRaw:      "invoke",
		version:      1,
		senderRaw:    "0x1234",
		nonce:        3,
		feeRaw:       "0x64",
		calldataRaw:  []string{"0x1", "0x2"},
		signatureRaw: []string{"0xa", "0xb"},
	}

	require.NoError(t, p.init())

	assert.Equal(t, types.InvokeTx, p.tx.Type)
	assert.Equal(t, types.StringToAddress("0x1234"), p.tx.Sender)
	assert.Equal(t, uint64(3), p.tx.Nonce)
	assert.Equal(t, uint64(100), p.tx.Fee.Uint64())
	assert.Len(t, p.tx.Calldata, 2)
	assert.Len(t, p.tx.Signature, 2)
	assert.NotEqual(t, types.ZeroHash, p.tx.Hash)

	// the request decodes back to the same transaction
	decoded := &types.Transaction{}
	require.NoError(t, decoded.UnmarshalRLP(p.constructAddRequest().Raw))
	assert.Equal(t, p.tx.Hash, decoded.Hash)
}

func TestAddParams_Raw(t *testing.T) {
	t.Parallel()

	tx := &types.Transaction{
		Type:      types.DeclareTx,
		Version:   2,
		Sender:    types.StringToAddress("0x1"),
		Fee:       uint256.NewInt(0),
		ClassHash: types.StringToHash("0xc1a55"),
	}
	tx.ComputeHash()

	p := &addParams{rawTx: hex.EncodeToHex(tx.MarshalRLP())}
	require.NoError(t, p.init())

	assert.Equal(t, tx.Hash, p.tx.Hash)
	assert.Equal(t, types.DeclareTx, p.tx.Type)
}

func TestAddParams_Invalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		params *addParams
	}{
		{"no sender", &addParams{typeRaw: "INVOKE"}},
		{"bad type", &addParams{typeRaw: "TRANSFER", senderRaw: "0x1"}},
		{"bad sender", &addParams{typeRaw: "INVOKE", senderRaw: "0xzz"}},
		{"bad fee", &addParams{typeRaw: "INVOKE", senderRaw: "0x1", feeRaw: "lots"}},
		{"bad calldata", &addParams{typeRaw: "INVOKE", senderRaw: "0x1", calldataRaw: []string{"0xq"}}},
		{"bad class hash", &addParams{typeRaw: "DECLARE", senderRaw: "0x1", classHashRaw: "0xq"}},
		{"bad raw", &addParams{rawTx: "0xc101"}},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			assert.Error(t, c.params.init())
		})
	}
}
