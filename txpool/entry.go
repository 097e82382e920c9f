package txpool

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/starkedge/mempool/types"
)

// indicates origin of a transaction
type txOrigin int

const (
	local    txOrigin = iota // json-RPC/gRPC endpoints
	gossip                   // peer propagation
	released                 // handed back by the block producer
	restored                 // checkpoint replay on startup
)

func (o txOrigin) String() (s string) {
	switch o {
	case local:
		s = "local"
	case gossip:
		s = "gossip"
	case released:
		s = "released"
	case restored:
		s = "restored"
	}

	return
}

// StateSnapshot is the committed account state a transaction
// was admitted against
type StateSnapshot struct {
	Nonce   uint64
	Balance *uint256.Int
}

// Entry is a transaction admitted to the pool. Entries are never
// mutated once admitted, a replacement removes one and inserts another.
type Entry struct {
	Tx *types.Transaction

	// Seq is the arrival sequence number, unique within the pool.
	// Ties in fee are served in Seq order
	Seq uint64

	ArrivedAt time.Time

	origin    txOrigin
	validated StateSnapshot
}

func (e *Entry) Hash() types.Hash {
	return e.Tx.Hash
}

func (e *Entry) Sender() types.Address {
	return e.Tx.Sender
}

func (e *Entry) Nonce() uint64 {
	return e.Tx.Nonce
}

func (e *Entry) Fee() *uint256.Int {
	return e.Tx.FeeOrZero()
}

func (e *Entry) Size() uint64 {
	return e.Tx.Size()
}

// higherPriority reports whether a is served before b:
// fee descending, then arrival ascending
func higherPriority(a, b *Entry) bool {
	if c := a.Fee().Cmp(b.Fee()); c != 0 {
		return c > 0
	}

	return a.Seq < b.Seq
}
