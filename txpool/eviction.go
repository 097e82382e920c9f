package txpool

import (
	"github.com/armon/go-metrics"

	"github.com/starkedge/mempool/types"
)

// makeRoom returns the entries that must be evicted for the candidate
// to fit. freed is an entry the candidate replaces, it is never picked
// and its capacity counts as available. Victims are taken from the lowest
// priority end, skipping entries of the candidate's own account, and every
// one of them must rank strictly below the candidate, otherwise nothing is
// evicted and ErrPoolFull is returned.
func (p *TxPool) makeRoom(candidate, freed *Entry) ([]*Entry, error) {
	size := candidate.Size()
	if size > p.gauge.maxBytes {
		return nil, ErrPoolFull
	}

	var freedCount, freedBytes uint64

	if freed != nil {
		freedCount, freedBytes = 1, freed.Size()
	}

	if p.gauge.fits(size, freedCount, freedBytes) {
		return nil, nil
	}

	var (
		victims   []*Entry
		outranked bool
	)

	p.all.descend(func(entry *Entry) bool {
		// evicting a predecessor would strand the candidate behind a gap
		if entry == freed || entry.Sender() == candidate.Sender() {
			return true
		}

		if !higherPriority(candidate, entry) {
			outranked = true

			return false
		}

		victims = append(victims, entry)
		freedCount++
		freedBytes += entry.Size()

		return !p.gauge.fits(size, freedCount, freedBytes)
	})

	if outranked || !p.gauge.fits(size, freedCount, freedBytes) {
		return nil, ErrPoolFull
	}

	return victims, nil
}

// evictLocked removes a victim. The account of keep is never dropped,
// since the caller is about to insert into it
func (p *TxPool) evictLocked(victim *Entry, keep types.Address, changes *poolChanges) {
	p.removeEntryLocked(victim)

	if victim.Sender() != keep {
		p.accounts.dropIfIdle(victim.Sender())
	}

	p.journal.log(TxEvicted, victim.Hash())
	changes.event(EventEvicted, victim.Hash())

	metrics.IncrCounter([]string{txPoolMetrics, "evicted_tx"}, 1)

	if p.logger.IsDebug() {
		p.logger.Debug("evicted tx", "hash", victim.Hash().String(), "seq", victim.Seq)
	}
}

// pruneExpired drops entries that stayed longer than the pool TTL.
// Successors are not promoted, the expired nonce was never consumed
func (p *TxPool) pruneExpired() int {
	if p.ttl <= 0 {
		return 0
	}

	changes := newPoolChanges()
	now := p.now()

	p.mu.Lock()

	var expired []*Entry

	p.all.ascend(func(entry *Entry) bool {
		if now.Sub(entry.ArrivedAt) > p.ttl {
			expired = append(expired, entry)
		}

		return true
	})

	for _, entry := range expired {
		p.removeEntryLocked(entry)
		p.accounts.dropIfIdle(entry.Sender())

		p.journal.log(TxExpired, entry.Hash())
		changes.event(EventExpired, entry.Hash())
	}

	if len(expired) > 0 {
		p.updateGaugesLocked()
	}

	p.mu.Unlock()

	p.publish(changes)

	if len(expired) > 0 {
		metrics.IncrCounter([]string{txPoolMetrics, "expired_tx"}, float32(len(expired)))
		p.logger.Info("pruned expired transactions", "count", len(expired))
	}

	return len(expired)
}
