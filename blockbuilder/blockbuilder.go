package blockbuilder

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"

	"github.com/starkedge/mempool/state"
	"github.com/starkedge/mempool/txpool"
	"github.com/starkedge/mempool/types"
)

const (
	DefaultBlockTime     = 2 * time.Second
	DefaultMaxBlockTxs   = 512
	DefaultMaxBlockBytes = 1024 * 1024
)

// Config sets the pace and the size of the built blocks
type Config struct {
	BlockTime     time.Duration
	MaxBlockTxs   uint64
	MaxBlockBytes uint64
}

func DefaultConfig() *Config {
	return &Config{
		BlockTime:     DefaultBlockTime,
		MaxBlockTxs:   DefaultMaxBlockTxs,
		MaxBlockBytes: DefaultMaxBlockBytes,
	}
}

// pool is the block producer surface of the txpool
type pool interface {
	WaitReady(ctx context.Context) error
	ReserveBatch(maxCount, maxBytes uint64) []*txpool.Entry
	ReleaseBatch(ctx context.Context, entries []*txpool.Entry) error
	RemoveIncluded(hashes []types.Hash) int
	ResetWithNonces(nonces map[types.Address]uint64)
}

// Block is the summary of a built block
type Block struct {
	Number   uint64
	Included []types.Hash
	Released int
}

// BlockBuilder seals ready transactions into blocks, one at a time
type BlockBuilder struct {
	logger hclog.Logger
	config *Config

	txpool   pool
	executor state.Executor
	state    state.Reader

	number atomic.Uint64
}

func NewBlockBuilder(
	logger hclog.Logger,
	config *Config,
	txpool pool,
	executor state.Executor,
	reader state.Reader,
) *BlockBuilder {
	if config == nil {
		config = DefaultConfig()
	}

	return &BlockBuilder{
		logger:   logger.Named("blockbuilder"),
		config:   config,
		txpool:   txpool,
		executor: executor,
		state:    reader,
	}
}

// Number returns the number of the last built block
func (b *BlockBuilder) Number() uint64 {
	return b.number.Load()
}

// Run builds blocks until ctx is canceled. Every block waits for ready
// transactions, but not longer than the block time
func (b *BlockBuilder) Run(ctx context.Context) error {
	b.logger.Info("started", "block time", b.config.BlockTime, "max txs", b.config.MaxBlockTxs)

	for {
		waitCtx, cancel := context.WithTimeout(ctx, b.config.BlockTime)
		err := b.txpool.WaitReady(waitCtx)

		cancel()

		switch {
		case ctx.Err() != nil:
			b.logger.Info("stopped", "block", b.Number())

			return nil
		case errors.Is(err, txpool.ErrTxPoolClosed):
			return err
		case err != nil:
			// idle block time
			continue
		}

		if _, err := b.BuildBlock(ctx); err != nil {
			b.logger.Error("failed to build block", "number", b.Number(), "err", err)
		}
	}
}

// BuildBlock reserves one batch and executes it. Executed transactions are
// removed from the pool, the rest is handed back. Transactions of a sender
// following a failed one are handed back too, their nonce is not reachable
// anymore in this block
func (b *BlockBuilder) BuildBlock(ctx context.Context) (*Block, error) {
	batch := b.txpool.ReserveBatch(b.config.MaxBlockTxs, b.config.MaxBlockBytes)
	if len(batch) == 0 {
		return nil, nil
	}

	var (
		included []types.Hash
		failed   []*txpool.Entry
		blocked  = make(map[types.Address]struct{})
		touched  = make(map[types.Address]struct{})
	)

	for _, entry := range batch {
		if _, ok := blocked[entry.Sender()]; ok {
			failed = append(failed, entry)

			continue
		}

		if err := b.executor.Apply(entry.Tx); err != nil {
			b.logger.Debug("failed to apply tx", "hash", entry.Hash(), "sender", entry.Sender(), "err", err)

			blocked[entry.Sender()] = struct{}{}
			failed = append(failed, entry)

			continue
		}

		included = append(included, entry.Hash())
		touched[entry.Sender()] = struct{}{}
	}

	block := &Block{
		Number:   b.number.Add(1),
		Included: included,
		Released: len(failed),
	}

	b.txpool.RemoveIncluded(included)

	if nonces := b.committedNonces(ctx, touched); len(nonces) > 0 {
		b.txpool.ResetWithNonces(nonces)
	}

	var err error
	if len(failed) > 0 {
		err = b.txpool.ReleaseBatch(ctx, failed)
	}

	b.logger.Info("block built",
		"number", block.Number,
		"included", len(included),
		"released", len(failed),
	)

	metrics.SetGauge([]string{"blockbuilder", "block_number"}, float32(block.Number))
	metrics.IncrCounter([]string{"blockbuilder", "included_tx"}, float32(len(included)))

	return block, err
}

// committedNonces reads the nonces of the senders touched by a block
func (b *BlockBuilder) committedNonces(ctx context.Context, senders map[types.Address]struct{}) map[types.Address]uint64 {
	if b.state == nil {
		return nil
	}

	nonces := make(map[types.Address]uint64, len(senders))

	for addr := range senders {
		nonce, err := b.state.GetNonce(ctx, addr)
		if err != nil {
			b.logger.Warn("failed to read committed nonce", "sender", addr, "err", err)

			continue
		}

		nonces[addr] = nonce
	}

	return nonces
}
