package jsonrpc

import (
	"context"
	"fmt"

	"github.com/starkedge/mempool/state"
	"github.com/starkedge/mempool/txpool"
	"github.com/starkedge/mempool/types"
)

// Validator checks declare and deploy account transactions against the node
type Validator struct {
	client *Client
}

func NewValidator(client *Client) *Validator {
	return &Validator{client: client}
}

func (v *Validator) Validate(ctx context.Context, tx *types.Transaction, _ txpool.StateSnapshot) error {
	switch tx.Type {
	case types.DeclareTx:
		declared, err := v.client.IsDeclared(ctx, tx.ClassHash)
		if err != nil {
			return err
		}

		if declared {
			return fmt.Errorf("%w: %s", state.ErrClassAlreadyDeclared, tx.ClassHash)
		}

	case types.DeployAccountTx:
		if _, deployed, err := v.client.ClassHashAt(ctx, tx.Sender); err != nil {
			return err
		} else if deployed {
			return fmt.Errorf("%w: %s", state.ErrAccountAlreadyDeployed, tx.Sender)
		}

		declared, err := v.client.IsDeclared(ctx, tx.ClassHash)
		if err != nil {
			return err
		}

		if !declared {
			return fmt.Errorf("%w: %s", state.ErrClassNotDeclared, tx.ClassHash)
		}
	}

	return nil
}
