package txpool

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/starkedge/mempool/types"
)

const defaultJournalSize = 8192

// TxStatus indicates the status of a transaction known to the TxPool
type TxStatus int8

const (
	TxUnknown  TxStatus = iota // never seen, or forgotten
	TxPending                  // queued, waiting for a lower nonce
	TxReady                    // queued and executable
	TxReserved                 // handed to the block producer
	TxIncluded                 // included in a block
	TxReplaced                 // replaced by a higher fee transaction
	TxEvicted                  // evicted to make room
	TxExpired                  // dropped after its time to live
	TxPruned                   // its nonce was consumed by another transaction
	TxDropped                  // failed re-admission or restore
)

var (
	// txStatusToString is a mapping from TxStatus to text status
	txStatusToString = map[TxStatus]string{
		TxUnknown:  "unknown",
		TxPending:  "pending",
		TxReady:    "ready",
		TxReserved: "reserved",
		TxIncluded: "included",
		TxReplaced: "replaced",
		TxEvicted:  "evicted",
		TxExpired:  "expired",
		TxPruned:   "pruned",
		TxDropped:  "dropped",
	}
)

// String returns text status from status code
func (s TxStatus) String() string {
	return txStatusToString[s]
}

// journal remembers the final status of transactions that left the pool.
// Old records are forgotten first
type journal struct {
	cache *lru.Cache
}

func newJournal(size int) (*journal, error) {
	if size <= 0 {
		size = defaultJournalSize
	}

	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}

	return &journal{cache: cache}, nil
}

// log records the status of the tx
func (j *journal) log(status TxStatus, txHashes ...types.Hash) {
	for _, txHash := range txHashes {
		j.cache.Add(txHash, status)
	}
}

// reset removes the status of the tx, it is alive again
func (j *journal) reset(txHash types.Hash) {
	j.cache.Remove(txHash)
}

// txStatus returns the Tx status recorded in the journal
func (j *journal) txStatus(txHash types.Hash) (TxStatus, bool) {
	raw, ok := j.cache.Get(txHash)
	if !ok {
		return TxUnknown, false
	}

	status, ok := raw.(TxStatus)
	if !ok {
		return TxUnknown, false
	}

	return status, true
}
