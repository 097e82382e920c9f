package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"
	"github.com/umbracle/ethgo/jsonrpc"
	"github.com/umbracle/ethgo/jsonrpc/codec"

	"github.com/starkedge/mempool/helper/hex"
	"github.com/starkedge/mempool/state"
	"github.com/starkedge/mempool/txpool"
	"github.com/starkedge/mempool/types"
)

const (
	// starknet rpc error codes
	codeContractNotFound  = 20
	codeClassHashNotFound = 28

	// BlockPending reads state including the pending block
	BlockPending = "pending"
	// BlockLatest reads state as of the last accepted block
	BlockLatest = "latest"
)

var (
	// DefaultFeeToken is the STRK fee token contract
	DefaultFeeToken = types.StringToAddress("0x04718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d")

	// balanceOfSelector is sn_keccak("balanceOf")
	balanceOfSelector = types.StringToHash("0x2e4263afad30923c891518314c3c95dbe830a16874e8abc5777a9a20b54c76e")
)

var _ state.Reader = (*Client)(nil)

type functionCall struct {
	ContractAddress    string   `json:"contract_address"`
	EntryPointSelector string   `json:"entry_point_selector"`
	Calldata           []string `json:"calldata"`
}

// Client reads committed state from a Starknet node
type Client struct {
	logger   hclog.Logger
	client   *jsonrpc.Client
	feeToken types.Address
	blockID  string
}

// NewClient dials the node at endpoint. Balances are read from feeToken
func NewClient(logger hclog.Logger, endpoint string, feeToken types.Address) (*Client, error) {
	client, err := jsonrpc.NewClient(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create jsonrpc client for %s: %w", endpoint, err)
	}

	return &Client{
		logger:   logger.Named("state-rpc"),
		client:   client,
		feeToken: feeToken,
		blockID:  BlockPending,
	}, nil
}

// GetNonce returns the nonce of the account, zero if it is not deployed
func (c *Client) GetNonce(ctx context.Context, addr types.Address) (uint64, error) {
	var out string
	if err := c.call(ctx, "starknet_getNonce", &out, c.blockID, addr.String()); err != nil {
		if isCode(err, codeContractNotFound) {
			return 0, nil
		}

		return 0, err
	}

	nonce, err := hex.DecodeUint64(out)
	if err != nil {
		return 0, fmt.Errorf("invalid nonce %q: %w", out, err)
	}

	return nonce, nil
}

// GetBalance returns the fee token balance of the account
func (c *Client) GetBalance(ctx context.Context, addr types.Address) (*uint256.Int, error) {
	req := &functionCall{
		ContractAddress:    c.feeToken.String(),
		EntryPointSelector: hex.EncodeToFelt(balanceOfSelector.Bytes()),
		Calldata:           []string{addr.String()},
	}

	var out []string
	if err := c.call(ctx, "starknet_call", &out, req, c.blockID); err != nil {
		return nil, err
	}

	// u256 is returned as two felts, low then high
	if len(out) != 2 {
		return nil, fmt.Errorf("unexpected balanceOf result length %d", len(out))
	}

	low, err := decodeFelt(out[0])
	if err != nil {
		return nil, err
	}

	high, err := decodeFelt(out[1])
	if err != nil {
		return nil, err
	}

	balance := new(uint256.Int).Lsh(high, 128)

	return balance.Or(balance, low), nil
}

// ClassHashAt returns the class of the contract deployed at addr
func (c *Client) ClassHashAt(ctx context.Context, addr types.Address) (types.Hash, bool, error) {
	var out string
	if err := c.call(ctx, "starknet_getClassHashAt", &out, c.blockID, addr.String()); err != nil {
		if isCode(err, codeContractNotFound) {
			return types.ZeroHash, false, nil
		}

		return types.ZeroHash, false, err
	}

	return types.StringToHash(out), true, nil
}

// IsDeclared reports whether the class has been declared
func (c *Client) IsDeclared(ctx context.Context, classHash types.Hash) (bool, error) {
	// only the presence of the class matters
	var out json.RawMessage
	if err := c.call(ctx, "starknet_getClass", &out, c.blockID, hex.EncodeToFelt(classHash.Bytes())); err != nil {
		if isCode(err, codeClassHashNotFound) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// call runs the request until ctx is done. Transport failures are reported
// as unavailable state so the pool can retry them
func (c *Client) call(ctx context.Context, method string, out interface{}, params ...interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- c.client.Call(method, out, params...)
	}()

	select {
	case err := <-errCh:
		if err == nil {
			return nil
		}

		var rpcErr *codec.ErrorObject
		if errors.As(err, &rpcErr) {
			return err
		}

		c.logger.Debug("state query failed", "method", method, "err", err)

		return fmt.Errorf("%w: %s: %w", txpool.ErrStateQueryUnavailable, method, err)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isCode(err error, code int) bool {
	var rpcErr *codec.ErrorObject

	return errors.As(err, &rpcErr) && rpcErr.Code == code
}

func decodeFelt(s string) (*uint256.Int, error) {
	buf, err := hex.DecodeHex(s)
	if err != nil {
		return nil, fmt.Errorf("invalid felt %q: %w", s, err)
	}

	if len(buf) > 32 {
		return nil, fmt.Errorf("invalid felt %q: too long", s)
	}

	return new(uint256.Int).SetBytes(buf), nil
}
