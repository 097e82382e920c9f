package txpool

import (
	"context"
	"fmt"
	"sort"

	"github.com/armon/go-metrics"
	"github.com/hashicorp/go-multierror"

	"github.com/starkedge/mempool/types"
)

// Peek returns the highest priority ready entry without reserving it
func (p *TxPool) Peek() *Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.ready.peek()
}

// ReserveBatch atomically takes up to maxCount of the best ready entries
// whose total size stays within maxBytes (zero means no byte limit).
// Entries that do not fit the remaining budget are skipped and stay ready.
// A reserved entry advances its account, so the next nonce of the same
// sender can join the batch.
func (p *TxPool) ReserveBatch(maxCount, maxBytes uint64) []*Entry {
	if maxCount == 0 {
		return nil
	}

	changes := newPoolChanges()

	p.mu.Lock()

	var (
		batch   []*Entry
		skipped []*Entry
		size    uint64
	)

	for uint64(len(batch)) < maxCount {
		entry := p.ready.pop()
		if entry == nil {
			break
		}

		if maxBytes > 0 && size+entry.Size() > maxBytes {
			skipped = append(skipped, entry)

			continue
		}

		p.reserveLocked(entry, changes)

		batch = append(batch, entry)
		size += entry.Size()
	}

	for _, entry := range skipped {
		p.ready.push(entry)
	}

	if len(batch) > 0 {
		p.updateGaugesLocked()
	}

	p.mu.Unlock()

	p.publish(changes)

	if len(batch) > 0 {
		metrics.IncrCounter([]string{txPoolMetrics, "reserved_tx"}, float32(len(batch)))
	}

	return batch
}

// reserveLocked moves a ready entry, already popped from the ready
// queue, into the reserved set
func (p *TxPool) reserveLocked(entry *Entry, changes *poolChanges) {
	acc := p.accounts.get(entry.Sender())

	acc.remove(entry)
	p.index.remove(entry)
	p.all.remove(entry)
	p.gauge.decrease(entry.Size())

	p.reserved[entry.Hash()] = entry
	acc.inflight++

	changes.event(EventReserved, entry.Hash())

	p.advanceLocked(acc, entry.Nonce(), changes)
}

// WaitReady blocks until at least one entry is ready or ctx is done.
// It re-checks the ready queue after every wake up, so spurious
// wake ups are harmless
func (p *TxPool) WaitReady(ctx context.Context) error {
	for {
		_, wakeCh := p.notifier.wait()

		p.mu.RLock()
		readyLen := p.ready.length()
		p.mu.RUnlock()

		if readyLen > 0 {
			return nil
		}

		select {
		case <-wakeCh:
		case <-ctx.Done():
			return ctx.Err()
		case <-p.shutdownCh:
			return ErrTxPoolClosed
		}
	}
}

// NextReady waits for a ready entry and reserves it
func (p *TxPool) NextReady(ctx context.Context) (*Entry, error) {
	for {
		_, wakeCh := p.notifier.wait()

		if batch := p.ReserveBatch(1, 0); len(batch) == 1 {
			return batch[0], nil
		}

		select {
		case <-wakeCh:
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-p.shutdownCh:
			return nil, ErrTxPoolClosed
		}
	}
}

// ReleaseBatch hands back reserved entries of a block that was not built.
// Their accounts roll back to the lowest released nonce and every entry is
// admitted again, keeping its arrival sequence. Entries that fail admission
// are dropped and reported in the returned error. An entry whose nonce
// was consumed meanwhile moves its account up to the committed nonce.
func (p *TxPool) ReleaseBatch(ctx context.Context, entries []*Entry) error {
	changes := newPoolChanges()
	readmit := make([]*Entry, 0, len(entries))

	p.mu.Lock()

	for _, entry := range entries {
		if _, ok := p.reserved[entry.Hash()]; !ok {
			// unknown, or already included
			continue
		}

		delete(p.reserved, entry.Hash())

		if acc := p.accounts.get(entry.Sender()); acc != nil {
			acc.inflight--

			if demoted := acc.rollback(entry.Nonce()); demoted != nil {
				p.ready.remove(demoted)
				changes.event(EventDemoted, demoted.Hash())
			}
		}

		changes.event(EventReleased, entry.Hash())

		readmit = append(readmit, entry)
	}

	p.updateGaugesLocked()
	p.mu.Unlock()

	p.publish(changes)

	// lower nonces first, so every entry finds its predecessor
	sort.SliceStable(readmit, func(i, j int) bool {
		if readmit[i].Nonce() != readmit[j].Nonce() {
			return readmit[i].Nonce() < readmit[j].Nonce()
		}

		return readmit[i].Seq < readmit[j].Seq
	})

	var result *multierror.Error

	for _, entry := range readmit {
		if err := p.addTx(ctx, released, entry.Tx, entry); err != nil {
			p.journal.log(TxDropped, entry.Hash())
			p.eventManager.signalEvent(EventDropped, entry.Hash())

			result = multierror.Append(result, fmt.Errorf("%s: %w", entry.Hash(), err))
		}
	}

	p.mu.Lock()
	for _, entry := range readmit {
		p.accounts.dropIfIdle(entry.Sender())
	}
	p.mu.Unlock()

	return result.ErrorOrNil()
}

// RemoveIncluded clears transactions included in a block, whether they
// were reserved or are still queued. Accounts advance past the included
// nonces and promote their next entry. Unknown hashes are ignored.
// Returns the number of removed entries
func (p *TxPool) RemoveIncluded(hashes []types.Hash) int {
	changes := newPoolChanges()
	touched := make(map[types.Address]struct{})
	removed := 0

	p.mu.Lock()

	for _, hash := range hashes {
		var entry *Entry

		if reserved, ok := p.reserved[hash]; ok {
			entry = reserved
			delete(p.reserved, hash)

			if acc := p.accounts.get(entry.Sender()); acc != nil {
				acc.inflight--
				p.advanceLocked(acc, entry.Nonce(), changes)
			}
		} else if queued, ok := p.index.get(hash); ok {
			entry = queued
			p.removeEntryLocked(entry)

			if acc := p.accounts.get(entry.Sender()); acc != nil {
				p.advanceLocked(acc, entry.Nonce(), changes)
			}
		} else {
			continue
		}

		p.journal.log(TxIncluded, hash)
		changes.event(EventIncluded, hash)

		touched[entry.Sender()] = struct{}{}
		removed++
	}

	for addr := range touched {
		p.accounts.dropIfIdle(addr)
	}

	p.updateGaugesLocked()
	p.mu.Unlock()

	p.publish(changes)

	if removed > 0 {
		metrics.IncrCounter([]string{txPoolMetrics, "included_tx"}, float32(removed))
	}

	return removed
}
