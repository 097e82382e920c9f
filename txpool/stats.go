package txpool

import (
	"github.com/starkedge/mempool/types"
)

// Stats is a point in time view of the pool
type Stats struct {
	Count    uint64 `json:"count"`
	Bytes    uint64 `json:"bytes"`
	Ready    uint64 `json:"ready"`
	Reserved uint64 `json:"reserved"`
	Accounts uint64 `json:"accounts"`

	MaxTxs   uint64 `json:"max_txs"`
	MaxBytes uint64 `json:"max_bytes"`

	// PerAccount is the number of queued entries of each account
	PerAccount map[types.Address]uint64 `json:"per_account"`
}

// PoolStats returns the current pool occupancy
func (p *TxPool) PoolStats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	count, bytes := p.gauge.read()

	stats := Stats{
		Count:      count,
		Bytes:      bytes,
		Ready:      uint64(p.ready.length()),
		Reserved:   uint64(len(p.reserved)),
		Accounts:   uint64(p.accounts.length()),
		MaxTxs:     p.gauge.maxCount,
		MaxBytes:   p.gauge.maxBytes,
		PerAccount: make(map[types.Address]uint64, p.accounts.length()),
	}

	for addr, acc := range p.accounts.accounts {
		stats.PerAccount[addr] = acc.length()
	}

	return stats
}

// Length returns the number of queued entries
func (p *TxPool) Length() uint64 {
	count, _ := p.gauge.read()

	return count
}
