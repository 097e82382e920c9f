package state

import (
	"context"
	"errors"

	"github.com/holiman/uint256"

	"github.com/starkedge/mempool/types"
)

var (
	ErrClassAlreadyDeclared   = errors.New("class already declared")
	ErrClassNotDeclared       = errors.New("class not declared")
	ErrAccountAlreadyDeployed = errors.New("account already deployed")
	ErrAccountNotDeployed     = errors.New("account not deployed")
	ErrInvalidNonce           = errors.New("invalid nonce")
	ErrNotEnoughBalance       = errors.New("not enough balance to pay the fee")
)

// Reader is the committed state transactions are admitted against
type Reader interface {
	GetNonce(ctx context.Context, addr types.Address) (uint64, error)
	GetBalance(ctx context.Context, addr types.Address) (*uint256.Int, error)
}

// Executor applies a transaction on top of the committed state
type Executor interface {
	Apply(tx *types.Transaction) error
}
