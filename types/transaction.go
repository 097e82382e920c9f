package types

import (
	"fmt"
	"sync/atomic"

	"github.com/holiman/uint256"

	"github.com/starkedge/mempool/helper/keccak"
)

type TxType byte

// List of supported transaction types
const (
	InvokeTx TxType = iota
	DeclareTx
	DeployAccountTx
	L1HandlerTx
)

func txTypeFromByte(b byte) (TxType, error) {
	tt := TxType(b)

	switch tt {
	case InvokeTx, DeclareTx, DeployAccountTx, L1HandlerTx:
		return tt, nil
	default:
		return tt, fmt.Errorf("unknown transaction type: %d", b)
	}
}

// String returns string representation of the transaction type.
func (t TxType) String() (s string) {
	switch t {
	case InvokeTx:
		return "INVOKE"
	case DeclareTx:
		return "DECLARE"
	case DeployAccountTx:
		return "DEPLOY_ACCOUNT"
	case L1HandlerTx:
		return "L1_HANDLER"
	}

	return
}

// ParseTxType maps the rpc name of a transaction type back to it
func ParseTxType(s string) (TxType, error) {
	for _, tt := range []TxType{InvokeTx, DeclareTx, DeployAccountTx, L1HandlerTx} {
		if tt.String() == s {
			return tt, nil
		}
	}

	return 0, fmt.Errorf("unknown transaction type: %s", s)
}

// Transaction is a Starknet account transaction.
// For deploy account transactions Sender holds the counterfactual address
// of the account being deployed.
type Transaction struct {
	Type    TxType
	Version uint64
	Sender  Address
	Nonce   uint64

	// Fee is the maximum fee the sender is willing to pay
	Fee *uint256.Int

	Calldata  [][]byte
	Signature [][]byte

	ClassHash           Hash
	CompiledClassHash   Hash
	ContractAddressSalt Hash

	Hash Hash

	// Cache
	size atomic.Pointer[uint64]
}

// ComputeHash computes the hash of the transaction
func (t *Transaction) ComputeHash() *Transaction {
	t.Hash = BytesToHash(keccak.Keccak256Fn(nil, t.MarshalRLPTo))

	return t
}

// Size returns the length of the transaction encoding
func (t *Transaction) Size() uint64 {
	if size := t.size.Load(); size != nil {
		return *size
	}

	size := uint64(len(t.MarshalRLP()))
	t.size.Store(&size)

	return size
}

// FeeOrZero never returns nil
func (t *Transaction) FeeOrZero() *uint256.Int {
	if t.Fee == nil {
		return new(uint256.Int)
	}

	return t.Fee
}

func (t *Transaction) Copy() *Transaction {
	if t == nil {
		return nil
	}

	tt := &Transaction{
		Type:                t.Type,
		Version:             t.Version,
		Sender:              t.Sender,
		Nonce:               t.Nonce,
		Calldata:            copyFelts(t.Calldata),
		Signature:           copyFelts(t.Signature),
		ClassHash:           t.ClassHash,
		CompiledClassHash:   t.CompiledClassHash,
		ContractAddressSalt: t.ContractAddressSalt,
		Hash:                t.Hash,
	}

	if t.Fee != nil {
		tt.Fee = new(uint256.Int).Set(t.Fee)
	}

	return tt
}

func copyFelts(in [][]byte) [][]byte {
	if in == nil {
		return nil
	}

	out := make([][]byte, len(in))
	for i, b := range in {
		out[i] = append([]byte(nil), b...)
	}

	return out
}
