package txpool

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/starkedge/mempool/storage"
)

// Checkpointer persists the pool contents between restarts
type Checkpointer interface {
	WriteCheckpoint(records []*storage.TxRecord) error
	ReadCheckpoint() ([]*storage.TxRecord, error)
}

// Checkpoint writes every queued and reserved entry. Reserved entries are
// written as well, on restart they are queued again and included ones are
// rejected by the nonce check.
func (p *TxPool) Checkpoint() error {
	if p.checkpointer == nil {
		return errors.New("no checkpoint backend configured")
	}

	p.mu.RLock()

	records := make([]*storage.TxRecord, 0, p.index.length()+len(p.reserved))

	for _, entry := range p.index.all {
		records = append(records, toRecord(entry))
	}

	for _, entry := range p.reserved {
		records = append(records, toRecord(entry))
	}

	p.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].Seq < records[j].Seq
	})

	if err := p.checkpointer.WriteCheckpoint(records); err != nil {
		return err
	}

	if p.logger.IsDebug() {
		p.logger.Debug("checkpoint written", "records", len(records))
	}

	return nil
}

// Restore replays the last checkpoint through the admission pipeline, in
// arrival order and keeping arrival data. Transactions that no longer pass
// admission are dropped. Returns the number of restored entries.
func (p *TxPool) Restore(ctx context.Context) (int, error) {
	if p.checkpointer == nil {
		return 0, errors.New("no checkpoint backend configured")
	}

	records, err := p.checkpointer.ReadCheckpoint()
	if err != nil {
		return 0, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Seq < records[j].Seq
	})

	// new arrivals must sort after everything restored
	p.mu.Lock()
	for _, record := range records {
		if record.Seq > p.seq {
			p.seq = record.Seq
		}
	}
	p.mu.Unlock()

	restoredCount := 0

	for _, record := range records {
		if record.Tx == nil {
			continue
		}

		if err := ctx.Err(); err != nil {
			return restoredCount, err
		}

		prior := &Entry{
			Seq:       record.Seq,
			ArrivedAt: time.Unix(0, record.ArrivedAt),
		}

		if err := p.addTx(ctx, restored, record.Tx, prior); err != nil {
			p.journal.log(TxDropped, record.Tx.Hash)

			if p.logger.IsDebug() {
				p.logger.Debug("dropped checkpoint record", "hash", record.Tx.Hash.String(), "err", err)
			}

			continue
		}

		restoredCount++
	}

	p.logger.Info("restored transactions from checkpoint",
		"restored", restoredCount,
		"dropped", len(records)-restoredCount,
	)

	return restoredCount, nil
}

func toRecord(entry *Entry) *storage.TxRecord {
	return &storage.TxRecord{
		Seq:       entry.Seq,
		ArrivedAt: entry.ArrivedAt.UnixNano(),
		Tx:        entry.Tx,
	}
}
