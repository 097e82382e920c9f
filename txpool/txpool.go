package txpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-hclog"
	"github.com/holiman/uint256"
	"github.com/sethvargo/go-retry"

	"github.com/starkedge/mempool/types"
)

const (
	txMaxSize = 128 * 1024 // 128Kb

	pruningCooldown = 5000 * time.Millisecond

	// txPoolMetrics is a prefix used for txpool-related metrics
	txPoolMetrics = "txpool"
)

const (
	DefaultPriceBump          uint64 = 10 // percent
	DefaultMaxNonceGap        uint64 = 4
	DefaultMaxAccountEnqueued uint64 = 64
	DefaultMaxTxs             uint64 = 4096
	DefaultMaxBytes           uint64 = 64 * 1024 * 1024
	DefaultTxTTL                     = 3 * time.Hour
	DefaultPruneInterval             = time.Minute
	DefaultCheckpointInterval        = 30 * time.Second
	DefaultStateQueryRetries  uint64 = 3
	DefaultStateQueryBackoff         = 50 * time.Millisecond
)

// admission errors
var (
	ErrInvalidFormat         = errors.New("invalid transaction format")
	ErrAlreadyKnown          = errors.New("already known")
	ErrUnderpriced           = errors.New("replacement transaction underpriced")
	ErrNonceTooLow           = errors.New("nonce too low")
	ErrNonceGapTooLarge      = errors.New("nonce gap too large")
	ErrFeeTooLow             = errors.New("fee below pool minimum")
	ErrPoolFull              = errors.New("txpool is full")
	ErrValidationFailed      = errors.New("validation failed")
	ErrStateQueryUnavailable = errors.New("state query unavailable")
)

// error details
var (
	ErrInsufficientFunds       = errors.New("insufficient funds for max fee")
	ErrMaxEnqueuedLimitReached = errors.New("maximum number of enqueued transactions reached")
	ErrL1HandlerNotAllowed     = errors.New("l1 handler transactions cannot be submitted")
	ErrOversizedData           = errors.New("oversized data")
	ErrMissingSignature        = errors.New("missing signature")
	ErrMissingFee              = errors.New("missing max fee")
	ErrZeroSender              = errors.New("zero sender address")
	ErrNotFelt                 = errors.New("value is not a field element")
	ErrMissingClassHash        = errors.New("missing class hash")
	ErrTxPoolClosed            = errors.New("txpool is closed")
)

// IsRetryable reports whether a rejection is transient and the
// same transaction may be submitted again later
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStateQueryUnavailable) || errors.Is(err, ErrPoolFull)
}

// rejection counters, first match wins
var rejectionMetrics = []struct {
	err error
	key string
}{
	{ErrInvalidFormat, "invalid_format_tx"},
	{ErrAlreadyKnown, "already_known_tx"},
	{ErrUnderpriced, "underpriced_tx"},
	{ErrNonceTooLow, "nonce_too_low_tx"},
	{ErrNonceGapTooLarge, "nonce_gap_tx"},
	{ErrFeeTooLow, "fee_too_low_tx"},
	{ErrPoolFull, "pool_full_tx"},
	{ErrValidationFailed, "validation_failed_tx"},
	{ErrStateQueryUnavailable, "state_unavailable_tx"},
}

func incrRejected(err error) {
	for _, r := range rejectionMetrics {
		if errors.Is(err, r.err) {
			metrics.IncrCounter([]string{txPoolMetrics, r.key}, 1)

			return
		}
	}
}

// store interface defines State helper methods the TxPool should have access to
type store interface {
	GetNonce(ctx context.Context, addr types.Address) (uint64, error)
	GetBalance(ctx context.Context, addr types.Address) (*uint256.Int, error)
}

// Validator checks a transaction against committed state.
// Errors wrapping ErrStateQueryUnavailable are treated as retryable,
// anything else rejects the transaction
type Validator interface {
	Validate(ctx context.Context, tx *types.Transaction, snapshot StateSnapshot) error
}

type Config struct {
	PriceLimit         uint64
	PriceBump          uint64
	MaxTxs             uint64
	MaxBytes           uint64
	MaxAccountEnqueued uint64
	MaxNonceGap        uint64
	TxTTL              time.Duration
	PruneInterval      time.Duration
	CheckpointInterval time.Duration
	StateQueryRetries  uint64
	StateQueryBackoff  time.Duration
	JournalSize        int
}

// DefaultConfig returns the pool policy defaults
func DefaultConfig() *Config {
	return &Config{
		PriceLimit:         0,
		PriceBump:          DefaultPriceBump,
		MaxTxs:             DefaultMaxTxs,
		MaxBytes:           DefaultMaxBytes,
		MaxAccountEnqueued: DefaultMaxAccountEnqueued,
		MaxNonceGap:        DefaultMaxNonceGap,
		TxTTL:              DefaultTxTTL,
		PruneInterval:      DefaultPruneInterval,
		CheckpointInterval: DefaultCheckpointInterval,
		StateQueryRetries:  DefaultStateQueryRetries,
		StateQueryBackoff:  DefaultStateQueryBackoff,
		JournalSize:        defaultJournalSize,
	}
}

// TxPool is a module that handles pending transactions.
// All transactions are handled within their respective accounts,
// where at most the entry carrying the expected nonce is ready.
//
// Every structure below mu is a view over the same entries: the lookup
// map owns them, the accounts chain them by nonce, the ready queue
// orders the executable ones and the eviction index orders all of them.
// Each mutation updates all views inside one critical section.
type TxPool struct {
	logger    hclog.Logger
	store     store
	validator Validator

	checkpointer Checkpointer

	mu sync.RWMutex

	// lookup map keeping track of all
	// transactions present in the pool
	index lookupMap

	// map of all accounts registered by the pool
	accounts accountsMap

	// entries ready for execution, by priority
	ready *pricedQueue

	// every queued entry, by priority. The tail is evicted first
	all *pricedQueue

	// entries handed to the block producer
	reserved map[types.Hash]*Entry

	// gauge for measuring pool capacity
	gauge slotGauge

	// last assigned arrival sequence number
	seq uint64

	priceLimit  uint64
	priceBump   uint64
	maxNonceGap uint64
	ttl         time.Duration

	pruneInterval      time.Duration
	checkpointInterval time.Duration
	stateQueryRetries  uint64
	stateQueryBackoff  time.Duration

	notifier     *notifier
	eventManager *eventManager
	journal      *journal

	pruneCh    chan struct{}
	shutdownCh chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup

	now func() time.Time
}

// NewTxPool returns a new pool for processing incoming transactions.
func NewTxPool(
	logger hclog.Logger,
	store store,
	validator Validator,
	config *Config,
) (*TxPool, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if config.MaxTxs == 0 || config.MaxBytes == 0 {
		return nil, errors.New("pool capacity must be greater than zero")
	}

	if config.MaxAccountEnqueued == 0 {
		return nil, errors.New("max account enqueued must be greater than zero")
	}

	journal, err := newJournal(config.JournalSize)
	if err != nil {
		return nil, err
	}

	pool := &TxPool{
		logger:    logger.Named("txpool"),
		store:     store,
		validator: validator,
		index:     newLookupMap(),
		accounts:  newAccountsMap(config.MaxAccountEnqueued),
		ready:     newPricedQueue(),
		all:       newPricedQueue(),
		reserved:  make(map[types.Hash]*Entry),
		gauge: slotGauge{
			maxCount: config.MaxTxs,
			maxBytes: config.MaxBytes,
		},
		priceLimit:         config.PriceLimit,
		priceBump:          config.PriceBump,
		maxNonceGap:        config.MaxNonceGap,
		ttl:                config.TxTTL,
		pruneInterval:      config.PruneInterval,
		checkpointInterval: config.CheckpointInterval,
		stateQueryRetries:  config.StateQueryRetries,
		stateQueryBackoff:  config.StateQueryBackoff,
		notifier:           newNotifier(),
		journal:            journal,
		pruneCh:            make(chan struct{}, 1),
		shutdownCh:         make(chan struct{}),
		now:                time.Now,
	}

	if pool.stateQueryBackoff <= 0 {
		pool.stateQueryBackoff = DefaultStateQueryBackoff
	}

	// Attach the event manager
	pool.eventManager = newEventManager(pool.logger)

	return pool, nil
}

// SetCheckpointer attaches the persistence backend. Must be called before Start
func (p *TxPool) SetCheckpointer(c Checkpointer) {
	p.checkpointer = c
}

// Start runs the pool's background handlers.
func (p *TxPool) Start() {
	// set default value of txpool gauges
	p.mu.RLock()
	p.updateGaugesLocked()
	p.mu.RUnlock()

	p.wg.Add(1)

	//	run the handler for staleness and high gauge level pruning
	go func() {
		defer p.wg.Done()

		var tickCh <-chan time.Time

		if p.ttl > 0 && p.pruneInterval > 0 {
			ticker := time.NewTicker(p.pruneInterval)
			defer ticker.Stop()

			tickCh = ticker.C
		}

		for {
			select {
			case <-p.shutdownCh:
				return
			case <-tickCh:
				p.pruneExpired()
			case <-p.pruneCh:
				p.pruneExpired()

				//	handler is in cooldown to avoid successive calls
				//	which could be just no-ops
				select {
				case <-p.shutdownCh:
					return
				case <-time.After(pruningCooldown):
				}
			}
		}
	}()

	if p.checkpointer != nil && p.checkpointInterval > 0 {
		p.wg.Add(1)

		go func() {
			defer p.wg.Done()

			ticker := time.NewTicker(p.checkpointInterval)
			defer ticker.Stop()

			for {
				select {
				case <-p.shutdownCh:
					return
				case <-ticker.C:
					if err := p.Checkpoint(); err != nil {
						p.logger.Error("failed to write checkpoint", "err", err)
					}
				}
			}
		}()
	}
}

// Close shuts down the pool's background handlers and
// writes a last checkpoint if persistence is enabled.
func (p *TxPool) Close() {
	p.closeOnce.Do(func() {
		close(p.shutdownCh)
		p.wg.Wait()

		if p.checkpointer != nil {
			if err := p.Checkpoint(); err != nil {
				p.logger.Error("failed to write checkpoint on close", "err", err)
			}
		}

		p.eventManager.Close()
	})
}

// signalPruning asks the pruning handler to run, without blocking
func (p *TxPool) signalPruning() {
	select {
	case p.pruneCh <- struct{}{}:
	default: //	pruning handler is active or in cooldown
	}
}

// AddTx adds a new transaction to the pool (sent from json-RPC/gRPC endpoints).
// The hash is computed from the transaction content.
func (p *TxPool) AddTx(ctx context.Context, tx *types.Transaction) error {
	if tx == nil {
		return fmt.Errorf("%w: nil transaction", ErrInvalidFormat)
	}

	tx.ComputeHash()

	if err := p.addTx(ctx, local, tx, nil); err != nil {
		if !errors.Is(err, ErrAlreadyKnown) {
			p.logger.Error("failed to add tx", "hash", tx.Hash, "err", err)
		}

		return err
	}

	return nil
}

// AddGossipTx decodes and adds a transaction propagated by a peer.
// Known transactions are silently ignored.
func (p *TxPool) AddGossipTx(ctx context.Context, raw []byte) error {
	tx := new(types.Transaction)
	if err := tx.UnmarshalRLP(raw); err != nil {
		incrRejected(ErrInvalidFormat)

		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	if err := p.addTx(ctx, gossip, tx, nil); err != nil {
		if errors.Is(err, ErrAlreadyKnown) {
			return nil
		}

		if p.logger.IsDebug() {
			p.logger.Debug("rejected gossip tx", "hash", tx.Hash, "err", err)
		}

		return err
	}

	return nil
}

// addTx runs the admission pipeline. prior carries the arrival data of an
// entry being re-admitted (released or restored), nil for new arrivals.
//
// Cheap gates run under the read lock, state and validation queries run
// unlocked, and every gate that may have changed meanwhile is checked
// again under the write lock right before committing.
func (p *TxPool) addTx(ctx context.Context, origin txOrigin, tx *types.Transaction, prior *Entry) error {
	if p.logger.IsDebug() {
		p.logger.Debug("add tx",
			"origin", origin.String(),
			"hash", tx.Hash.String(),
			"sender", tx.Sender.String(),
			"nonce", tx.Nonce,
		)
	}

	if err := p.validateFormat(tx); err != nil {
		incrRejected(err)

		return err
	}

	p.mu.RLock()
	err := p.precheckLocked(tx)
	p.mu.RUnlock()

	if err != nil {
		incrRejected(err)

		return err
	}

	snapshot, err := p.queryState(ctx, tx.Sender)
	if err != nil {
		incrRejected(err)

		return err
	}

	p.mu.RLock()
	err = p.checkNonceLocked(tx, snapshot.Nonce)
	p.mu.RUnlock()

	if err != nil {
		if errors.Is(err, ErrNonceTooLow) {
			// successors follow the committed nonce, not the rejected one
			p.syncAccountNonce(tx.Sender, snapshot.Nonce)
		}

		incrRejected(err)

		return err
	}

	if err := p.validateState(ctx, tx, snapshot); err != nil {
		incrRejected(err)

		return err
	}

	if tx.FeeOrZero().Lt(uint256.NewInt(p.priceLimit)) {
		incrRejected(ErrFeeTooLow)

		return ErrFeeTooLow
	}

	changes := newPoolChanges()

	p.mu.Lock()
	err = p.commitLocked(origin, tx, snapshot, prior, changes)

	if err != nil {
		// a reset inside commit may have emptied the account
		p.accounts.dropIfIdle(tx.Sender)
	}

	p.mu.Unlock()

	p.publish(changes)

	if err != nil {
		incrRejected(err)

		return err
	}

	metrics.IncrCounter([]string{txPoolMetrics, "added_tx"}, 1)

	if p.gauge.highPressure() {
		p.signalPruning()
	}

	return nil
}

// validateFormat checks the transaction is well formed.
// It needs no state and no lock
func (p *TxPool) validateFormat(tx *types.Transaction) error {
	switch tx.Type {
	case types.InvokeTx:
	case types.DeclareTx:
		if tx.ClassHash == types.ZeroHash || tx.CompiledClassHash == types.ZeroHash {
			return fmt.Errorf("%w: %w", ErrInvalidFormat, ErrMissingClassHash)
		}
	case types.DeployAccountTx:
		if tx.ClassHash == types.ZeroHash {
			return fmt.Errorf("%w: %w", ErrInvalidFormat, ErrMissingClassHash)
		}
	case types.L1HandlerTx:
		return fmt.Errorf("%w: %w", ErrInvalidFormat, ErrL1HandlerNotAllowed)
	default:
		return fmt.Errorf("%w: unknown type %d", ErrInvalidFormat, tx.Type)
	}

	if tx.Sender == types.ZeroAddress {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, ErrZeroSender)
	}

	if !tx.Sender.IsFelt() || !tx.ClassHash.IsFelt() ||
		!tx.CompiledClassHash.IsFelt() || !tx.ContractAddressSalt.IsFelt() {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, ErrNotFelt)
	}

	if tx.Fee == nil {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, ErrMissingFee)
	}

	if len(tx.Signature) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, ErrMissingSignature)
	}

	for _, felts := range [][][]byte{tx.Calldata, tx.Signature} {
		for _, felt := range felts {
			if len(felt) > types.HashLength {
				return fmt.Errorf("%w: %w", ErrInvalidFormat, ErrNotFelt)
			}
		}
	}

	if tx.Size() > txMaxSize {
		return fmt.Errorf("%w: %w", ErrInvalidFormat, ErrOversizedData)
	}

	return nil
}

// precheckLocked rejects duplicates and underpriced replacements
// before any state is queried
func (p *TxPool) precheckLocked(tx *types.Transaction) error {
	if p.isKnownLocked(tx.Hash) {
		return ErrAlreadyKnown
	}

	if acc := p.accounts.get(tx.Sender); acc != nil {
		if old := acc.get(tx.Nonce); old != nil && !p.bumped(old, tx) {
			return ErrUnderpriced
		}
	}

	return nil
}

func (p *TxPool) isKnownLocked(hash types.Hash) bool {
	if _, ok := p.index.get(hash); ok {
		return true
	}

	_, ok := p.reserved[hash]

	return ok
}

// bumped reports whether tx pays enough to replace old: strictly more
// than priceBump percent above the old fee
func (p *TxPool) bumped(old *Entry, tx *types.Transaction) bool {
	oldFee := old.Fee()
	newFee := tx.FeeOrZero()

	if !newFee.Gt(oldFee) {
		return false
	}

	// newFee * 100 > oldFee * (100 + bump), computed without overflow
	threshold, overflow := new(uint256.Int).MulOverflow(oldFee, uint256.NewInt(100+p.priceBump))
	if overflow {
		return false
	}

	scaled, overflow := new(uint256.Int).MulOverflow(newFee, uint256.NewInt(100))
	if overflow {
		return true
	}

	return scaled.Gt(threshold)
}

// checkNonceLocked applies the nonce rules against the larger of the
// committed nonce and the tracked expected nonce
func (p *TxPool) checkNonceLocked(tx *types.Transaction, stateNonce uint64) error {
	acc := p.accounts.get(tx.Sender)

	expected := stateNonce
	if acc != nil && acc.getNonce() > expected {
		expected = acc.getNonce()
	}

	if tx.Nonce < expected {
		return ErrNonceTooLow
	}

	if acc == nil {
		if tx.Nonce > expected+p.maxNonceGap {
			return ErrNonceGapTooLarge
		}

		return nil
	}

	if acc.get(tx.Nonce) != nil {
		// replacement, the slot is already held
		return nil
	}

	if tx.Nonce > acc.firstMissingFrom(expected)+p.maxNonceGap {
		return ErrNonceGapTooLarge
	}

	if acc.full() {
		return fmt.Errorf("%w: %w", ErrNonceGapTooLarge, ErrMaxEnqueuedLimitReached)
	}

	return nil
}

// queryState reads the committed nonce and balance of the account,
// retrying transient failures with exponential backoff
func (p *TxPool) queryState(ctx context.Context, addr types.Address) (StateSnapshot, error) {
	var snapshot StateSnapshot

	backoff := retry.WithMaxRetries(p.stateQueryRetries, retry.NewExponential(p.stateQueryBackoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		nonce, err := p.store.GetNonce(ctx, addr)
		if err != nil {
			return retry.RetryableError(err)
		}

		balance, err := p.store.GetBalance(ctx, addr)
		if err != nil {
			return retry.RetryableError(err)
		}

		snapshot = StateSnapshot{
			Nonce:   nonce,
			Balance: balance,
		}

		return nil
	})
	if err != nil {
		return snapshot, fmt.Errorf("%w: %v", ErrStateQueryUnavailable, err)
	}

	if snapshot.Balance == nil {
		snapshot.Balance = new(uint256.Int)
	}

	return snapshot, nil
}

// validateState checks the fee is covered and runs the external validator
func (p *TxPool) validateState(ctx context.Context, tx *types.Transaction, snapshot StateSnapshot) error {
	if snapshot.Balance.Lt(tx.FeeOrZero()) {
		return fmt.Errorf("%w: %w", ErrValidationFailed, ErrInsufficientFunds)
	}

	if p.validator == nil {
		return nil
	}

	if err := p.validator.Validate(ctx, tx, snapshot); err != nil {
		if errors.Is(err, ErrStateQueryUnavailable) {
			return err
		}

		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	return nil
}

// commitLocked re-checks the gates that depend on pool contents and
// inserts the entry into every index
func (p *TxPool) commitLocked(
	origin txOrigin,
	tx *types.Transaction,
	snapshot StateSnapshot,
	prior *Entry,
	changes *poolChanges,
) error {
	if p.isKnownLocked(tx.Hash) {
		return ErrAlreadyKnown
	}

	acc := p.accounts.get(tx.Sender)

	// committed state moved past what the account tracked
	if acc != nil && snapshot.Nonce > acc.getNonce() {
		p.resetAccountLocked(acc, snapshot.Nonce, changes)
	}

	expected := snapshot.Nonce
	if acc != nil {
		expected = acc.getNonce()
	}

	if tx.Nonce < expected {
		return ErrNonceTooLow
	}

	var old *Entry

	if acc != nil {
		old = acc.get(tx.Nonce)
	}

	if old != nil {
		if !p.bumped(old, tx) {
			return ErrUnderpriced
		}
	} else {
		firstMissing := expected
		if acc != nil {
			firstMissing = acc.firstMissingFrom(expected)
		}

		if tx.Nonce > firstMissing+p.maxNonceGap {
			return ErrNonceGapTooLarge
		}

		if acc != nil && acc.full() {
			return fmt.Errorf("%w: %w", ErrNonceGapTooLarge, ErrMaxEnqueuedLimitReached)
		}
	}

	entry := &Entry{
		Tx:        tx,
		Seq:       p.seq + 1,
		ArrivedAt: p.now(),
		origin:    origin,
		validated: snapshot,
	}

	if prior != nil {
		entry.Seq = prior.Seq
		entry.ArrivedAt = prior.ArrivedAt
	}

	victims, err := p.makeRoom(entry, old)
	if err != nil {
		return err
	}

	for _, victim := range victims {
		p.evictLocked(victim, tx.Sender, changes)
	}

	if entry.Seq > p.seq {
		p.seq = entry.Seq
	}

	if old != nil {
		p.removeEntryLocked(old)
		p.journal.log(TxReplaced, old.Hash())
		changes.event(EventReplaced, old.Hash())
		metrics.IncrCounter([]string{txPoolMetrics, "replaced_tx"}, 1)
	}

	acc = p.accounts.initOnce(tx.Sender, expected)

	p.index.add(entry)
	acc.enqueue(entry)
	p.all.push(entry)
	p.gauge.increase(entry.Size())

	p.journal.reset(entry.Hash())
	changes.event(EventAdded, entry.Hash())

	p.promoteLocked(acc, changes)
	p.updateGaugesLocked()

	if p.logger.IsDebug() {
		p.logger.Debug("enqueued tx",
			"hash", entry.Hash().String(),
			"seq", entry.Seq,
			"account_state", acc.state().String(),
		)
	}

	return nil
}

// promoteLocked moves the entry at the expected nonce, if any,
// into the ready queue
func (p *TxPool) promoteLocked(acc *account, changes *poolChanges) {
	if entry := acc.promote(); entry != nil {
		p.ready.push(entry)
		changes.promote(entry.Hash())
	}
}

// removeEntryLocked detaches the entry from every index.
// It never promotes and never drops the account
func (p *TxPool) removeEntryLocked(entry *Entry) {
	if acc := p.accounts.get(entry.Sender()); acc != nil {
		if wasReady := acc.remove(entry); wasReady {
			p.ready.remove(entry)
		}
	}

	p.index.remove(entry)
	p.all.remove(entry)
	p.gauge.decrease(entry.Size())
}

// resetAccountLocked aligns the account with a new expected nonce,
// pruning entries below it and promoting the next one
func (p *TxPool) resetAccountLocked(acc *account, nonce uint64, changes *poolChanges) {
	prevReady := acc.ready
	stale := acc.reset(nonce)

	if prevReady != nil && acc.ready == nil {
		p.ready.remove(prevReady)
	}

	p.dropStaleLocked(stale, changes)
	p.promoteLocked(acc, changes)
}

// advanceLocked moves the account past a consumed nonce
func (p *TxPool) advanceLocked(acc *account, consumed uint64, changes *poolChanges) {
	prevReady := acc.ready
	stale := acc.advance(consumed)

	if prevReady != nil && acc.ready == nil {
		p.ready.remove(prevReady)
	}

	p.dropStaleLocked(stale, changes)
	p.promoteLocked(acc, changes)
}

// dropStaleLocked clears entries already detached from their account
func (p *TxPool) dropStaleLocked(stale []*Entry, changes *poolChanges) {
	if len(stale) == 0 {
		return
	}

	for _, entry := range stale {
		p.index.remove(entry)
		p.all.remove(entry)
		p.gauge.decrease(entry.Size())

		p.journal.log(TxPruned, entry.Hash())
		changes.event(EventPruned, entry.Hash())
	}

	metrics.IncrCounter([]string{txPoolMetrics, "pruned_tx"}, float32(len(stale)))
}

// syncAccountNonce moves a tracked account forward to a committed nonce
// read during admission
func (p *TxPool) syncAccountNonce(addr types.Address, nonce uint64) {
	changes := newPoolChanges()

	p.mu.Lock()

	if acc := p.accounts.get(addr); acc != nil && nonce > acc.getNonce() {
		p.resetAccountLocked(acc, nonce, changes)
		p.accounts.dropIfIdle(addr)
		p.updateGaugesLocked()
	}

	p.mu.Unlock()

	p.publish(changes)
}

// ResetWithNonces aligns tracked accounts with newly committed nonces,
// e.g. after a block was imported. Entries whose nonce was consumed are
// pruned and the next expected ones promoted.
func (p *TxPool) ResetWithNonces(nonces map[types.Address]uint64) {
	changes := newPoolChanges()

	p.mu.Lock()

	for addr, nonce := range nonces {
		acc := p.accounts.get(addr)
		if acc == nil || nonce <= acc.getNonce() {
			continue
		}

		p.resetAccountLocked(acc, nonce, changes)
		p.accounts.dropIfIdle(addr)
	}

	p.updateGaugesLocked()
	p.mu.Unlock()

	p.publish(changes)
}

// GetTx returns a queued or reserved transaction by hash
func (p *TxPool) GetTx(hash types.Hash) (*types.Transaction, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if entry, ok := p.index.get(hash); ok {
		return entry.Tx, true
	}

	if entry, ok := p.reserved[hash]; ok {
		return entry.Tx, true
	}

	return nil, false
}

// TxStatus returns the status of a transaction, live or recently gone
func (p *TxPool) TxStatus(hash types.Hash) TxStatus {
	p.mu.RLock()

	if entry, ok := p.index.get(hash); ok {
		acc := p.accounts.get(entry.Sender())
		isReady := acc != nil && acc.ready == entry
		p.mu.RUnlock()

		if isReady {
			return TxReady
		}

		return TxPending
	}

	if _, ok := p.reserved[hash]; ok {
		p.mu.RUnlock()

		return TxReserved
	}

	p.mu.RUnlock()

	status, _ := p.journal.txStatus(hash)

	return status
}

// GetNonce returns the next nonce expected from the account, or
// false if the pool does not track it
func (p *TxPool) GetNonce(addr types.Address) (uint64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	acc := p.accounts.get(addr)
	if acc == nil {
		return 0, false
	}

	return acc.getNonce(), true
}

// updateGaugesLocked refreshes the pool gauges
func (p *TxPool) updateGaugesLocked() {
	count, bytes := p.gauge.read()

	metrics.SetGauge([]string{txPoolMetrics, "pending_transactions"}, float32(count))
	metrics.SetGauge([]string{txPoolMetrics, "pool_bytes"}, float32(bytes))
	metrics.SetGauge([]string{txPoolMetrics, "ready_transactions"}, float32(p.ready.length()))
	metrics.SetGauge([]string{txPoolMetrics, "reserved_transactions"}, float32(len(p.reserved)))
}

// poolChanges collects what a critical section did,
// so that subscribers are notified once the lock is released
type poolChanges struct {
	events   []*Event
	promoted int
}

func newPoolChanges() *poolChanges {
	return &poolChanges{}
}

func (c *poolChanges) event(eventType EventType, hash types.Hash) {
	c.events = append(c.events, &Event{Type: eventType, TxHash: hash})
}

func (c *poolChanges) promote(hash types.Hash) {
	c.promoted++
	c.event(EventPromoted, hash)
}

// publish fans the collected changes out. Must be called without the lock
func (p *TxPool) publish(c *poolChanges) {
	for _, e := range c.events {
		p.eventManager.signalEvent(e.Type, e.TxHash)
	}

	if c.promoted > 0 {
		p.notifier.signal()
	}
}
