package types

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInvoke(nonce uint64, fee uint64) *Transaction {
	return &Transaction{
		Type:      InvokeTx,
		Version:   1,
		Sender:    StringToAddress("0x1234"),
		Nonce:     nonce,
		Fee:       uint256.NewInt(fee),
		Calldata:  [][]byte{{0x01}, {0x02, 0x03}},
		Signature: [][]byte{{0xaa}, {0xbb}},
	}
}

func TestTransaction_RLPRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		tx   *Transaction
	}{
		{
			"invoke",
			newInvoke(7, 1000),
		},
		{
			"declare",
			&Transaction{
				Type:              DeclareTx,
				Version:           2,
				Sender:            StringToAddress("0xabc"),
				Nonce:             1,
				Fee:               uint256.NewInt(5),
				Signature:         [][]byte{{0x01}},
				ClassHash:         StringToHash("0x01"),
				CompiledClassHash: StringToHash("0x02"),
			},
		},
		{
			"deploy account",
			&Transaction{
				Type:                DeployAccountTx,
				Version:             1,
				Sender:              StringToAddress("0xdef"),
				Fee:                 new(uint256.Int).Lsh(uint256.NewInt(1), 200),
				Calldata:            [][]byte{{0x09}},
				Signature:           [][]byte{{0x01}},
				ClassHash:           StringToHash("0x03"),
				ContractAddressSalt: StringToHash("0x04"),
			},
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			c.tx.ComputeHash()

			decoded := new(Transaction)
			require.NoError(t, decoded.UnmarshalRLP(c.tx.MarshalRLP()))

			assert.Equal(t, c.tx.Hash, decoded.Hash)
			assert.Equal(t, c.tx.Type, decoded.Type)
			assert.Equal(t, c.tx.Sender, decoded.Sender)
			assert.Equal(t, c.tx.Nonce, decoded.Nonce)
			assert.True(t, c.tx.Fee.Eq(decoded.Fee))
			assert.Equal(t, c.tx.Calldata, decoded.Calldata)
			assert.Equal(t, c.tx.Signature, decoded.Signature)
			assert.Equal(t, c.tx.ClassHash, decoded.ClassHash)
			assert.Equal(t, c.tx.CompiledClassHash, decoded.CompiledClassHash)
			assert.Equal(t, c.tx.ContractAddressSalt, decoded.ContractAddressSalt)
			assert.Equal(t, c.tx.Size(), decoded.Size())
		})
	}
}

func TestTransaction_HashDependsOnContent(t *testing.T) {
	t.Parallel()

	a := newInvoke(1, 10).ComputeHash()
	b := newInvoke(1, 10).ComputeHash()
	c := newInvoke(1, 11).ComputeHash()

	assert.Equal(t, a.Hash, b.Hash)
	assert.NotEqual(t, a.Hash, c.Hash)
	assert.NotEqual(t, ZeroHash, a.Hash)
}

func TestTransaction_UnmarshalInvalid(t *testing.T) {
	t.Parallel()

	t.Run("not a list", func(t *testing.T) {
		t.Parallel()

		assert.Error(t, new(Transaction).UnmarshalRLP([]byte{0x05}))
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()

		tx := newInvoke(1, 1)
		tx.Type = TxType(9)

		assert.Error(t, new(Transaction).UnmarshalRLP(tx.MarshalRLP()))
	})

	t.Run("truncated", func(t *testing.T) {
		t.Parallel()

		raw := newInvoke(1, 1).MarshalRLP()

		assert.Error(t, new(Transaction).UnmarshalRLP(raw[:len(raw)-3]))
	})
}

func TestTransaction_Copy(t *testing.T) {
	t.Parallel()

	tx := newInvoke(3, 30).ComputeHash()
	cpy := tx.Copy()

	assert.Equal(t, tx.MarshalRLP(), cpy.MarshalRLP())

	cpy.Fee.SetUint64(1)
	cpy.Calldata[0][0] = 0xff

	assert.Equal(t, uint64(30), tx.Fee.Uint64())
	assert.Equal(t, byte(0x01), tx.Calldata[0][0])
}

func TestAddress_Felt(t *testing.T) {
	t.Parallel()

	assert.True(t, StringToAddress("0x1").IsFelt())
	assert.True(t, StringToAddress("0x800000000000011000000000000000000000000000000000000000000000000").IsFelt())
	assert.False(t, StringToAddress("0x800000000000011000000000000000000000000000000000000000000000001").IsFelt())

	var addr Address
	require.NoError(t, addr.UnmarshalText([]byte("0x0abc")))
	assert.Equal(t, "0xabc", addr.String())
}

func TestTxType_Parse(t *testing.T) {
	t.Parallel()

	for _, tt := range []TxType{InvokeTx, DeclareTx, DeployAccountTx, L1HandlerTx} {
		parsed, err := ParseTxType(tt.String())
		require.NoError(t, err)
		assert.Equal(t, tt, parsed)
	}

	_, err := ParseTxType("LEGACY")
	assert.Error(t, err)
}
