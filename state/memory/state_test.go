package memory

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starkedge/mempool/state"
	"github.com/starkedge/mempool/txpool"
	"github.com/starkedge/mempool/types"
)

var (
	addr1      = types.StringToAddress("0x1")
	addr2      = types.StringToAddress("0x2")
	classHash1 = types.StringToHash("0xc1")
	classHash2 = types.StringToHash("0xc2")
)

func newTx(typ types.TxType, sender types.Address, nonce, fee uint64) *types.Transaction {
	return &types.Transaction{
		Type:      typ,
		Sender:    sender,
		Nonce:     nonce,
		Fee:       uint256.NewInt(fee),
		ClassHash: classHash1,
	}
}

func TestState_Genesis(t *testing.T) {
	t.Parallel()

	s := NewStateWithGenesis([]GenesisAccount{
		{Address: addr1, Balance: uint256.NewInt(100), ClassHash: classHash1},
	})

	nonce, err := s.GetNonce(context.Background(), addr1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), nonce)

	balance, err := s.GetBalance(context.Background(), addr1)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), balance.Uint64())

	assert.True(t, s.IsDeclared(classHash1))
	assert.False(t, s.IsDeclared(classHash2))

	acc, ok := s.GetAccount(addr1)
	require.True(t, ok)
	assert.True(t, acc.Deployed)

	// unknown accounts read as empty
	balance, err = s.GetBalance(context.Background(), addr2)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestState_Apply(t *testing.T) {
	t.Parallel()

	s := NewStateWithGenesis([]GenesisAccount{
		{Address: addr1, Balance: uint256.NewInt(100), ClassHash: classHash1},
	})

	require.NoError(t, s.Apply(newTx(types.InvokeTx, addr1, 0, 30)))

	acc, _ := s.GetAccount(addr1)
	assert.Equal(t, uint64(1), acc.Nonce)
	assert.Equal(t, uint64(70), acc.Balance.Uint64())

	cases := []struct {
		name string
		tx   *types.Transaction
		err  error
	}{
		{"nonce too low", newTx(types.InvokeTx, addr1, 0, 1), state.ErrInvalidNonce},
		{"nonce gap", newTx(types.InvokeTx, addr1, 5, 1), state.ErrInvalidNonce},
		{"fee above balance", newTx(types.InvokeTx, addr1, 1, 71), state.ErrNotEnoughBalance},
		{"undeployed sender", newTx(types.InvokeTx, addr2, 0, 0), state.ErrAccountNotDeployed},
		{"redeclare", newTx(types.DeclareTx, addr1, 1, 1), state.ErrClassAlreadyDeclared},
		{"redeploy", newTx(types.DeployAccountTx, addr1, 1, 1), state.ErrAccountAlreadyDeployed},
	}

	for _, c := range cases {
		assert.ErrorIs(t, s.Apply(c.tx), c.err, c.name)
	}

	// failed transactions leave the account untouched
	acc, _ = s.GetAccount(addr1)
	assert.Equal(t, uint64(1), acc.Nonce)
	assert.Equal(t, uint64(70), acc.Balance.Uint64())
}

func TestState_DeployAndInvoke(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.DeclareClass(classHash1)
	s.SetBalance(addr2, uint256.NewInt(10))

	deploy := newTx(types.DeployAccountTx, addr2, 0, 1)
	require.NoError(t, s.Apply(deploy))

	acc, ok := s.GetAccount(addr2)
	require.True(t, ok)
	assert.True(t, acc.Deployed)
	assert.Equal(t, classHash1, acc.ClassHash)

	require.NoError(t, s.Apply(newTx(types.InvokeTx, addr2, 1, 1)))
	assert.Equal(t, map[types.Address]uint64{addr2: 2}, s.Nonces())

	declare := newTx(types.DeclareTx, addr2, 2, 1)
	declare.ClassHash = classHash2
	require.NoError(t, s.Apply(declare))
	assert.True(t, s.IsDeclared(classHash2))
}

func TestValidator(t *testing.T) {
	t.Parallel()

	s := NewStateWithGenesis([]GenesisAccount{
		{Address: addr1, Balance: uint256.NewInt(100), ClassHash: classHash1},
	})
	v := NewValidator(s)

	undeclared := newTx(types.DeployAccountTx, addr2, 0, 1)
	undeclared.ClassHash = classHash2

	newClass := newTx(types.DeclareTx, addr1, 0, 1)
	newClass.ClassHash = classHash2

	cases := []struct {
		name string
		tx   *types.Transaction
		err  error
	}{
		{"invoke", newTx(types.InvokeTx, addr1, 0, 1), nil},
		{"declare new class", newClass, nil},
		{"redeclare", newTx(types.DeclareTx, addr1, 0, 1), state.ErrClassAlreadyDeclared},
		{"deploy new account", newTx(types.DeployAccountTx, addr2, 0, 1), nil},
		{"redeploy", newTx(types.DeployAccountTx, addr1, 0, 1), state.ErrAccountAlreadyDeployed},
		{"deploy undeclared class", undeclared, state.ErrClassNotDeclared},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			err := v.Validate(context.Background(), c.tx, txpool.StateSnapshot{})
			if c.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, c.err)
			}
		})
	}
}
