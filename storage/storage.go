package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/umbracle/fastrlp"

	"github.com/starkedge/mempool/types"
)

// prefix

var (
	// CHECKPOINT is the prefix for checkpointed pool records
	CHECKPOINT = []byte("c")
)

// TxRecord is a pool entry as persisted in a checkpoint
type TxRecord struct {
	Seq       uint64
	ArrivedAt int64 // unix nanoseconds
	Tx        *types.Transaction
}

// Storage persists pool checkpoints
type Storage interface {
	WriteCheckpoint(records []*TxRecord) error
	ReadCheckpoint() ([]*TxRecord, error)
	Close() error
}

// Factory is a factory method to create a checkpoint storage
type Factory func(config map[string]interface{}, logger hclog.Logger) (Storage, error)

// Pair is a single key value write
type Pair struct {
	Key   []byte
	Value []byte
}

// KV is a key value storage interface
type KV interface {
	// ReplaceAll atomically drops every key under prefix and writes pairs
	ReplaceAll(prefix []byte, pairs []Pair) error

	// Iterate calls fn for every key under prefix, in key order
	Iterate(prefix []byte, fn func(key, value []byte) error) error

	Close() error
}

// KeyValueStorage is a generic storage for kv databases
type KeyValueStorage struct {
	logger hclog.Logger
	db     KV
}

func NewKeyValueStorage(logger hclog.Logger, db KV) Storage {
	return &KeyValueStorage{logger: logger, db: db}
}

// WriteCheckpoint replaces the previous checkpoint with records
func (s *KeyValueStorage) WriteCheckpoint(records []*TxRecord) error {
	pairs := make([]Pair, 0, len(records))

	for _, record := range records {
		pairs = append(pairs, Pair{
			Key:   recordKey(record.Seq),
			Value: record.MarshalRLPTo(nil),
		})
	}

	if err := s.db.ReplaceAll(CHECKPOINT, pairs); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}

	s.logger.Debug("wrote checkpoint", "records", len(records))

	return nil
}

// ReadCheckpoint returns the records of the last checkpoint, by sequence number
func (s *KeyValueStorage) ReadCheckpoint() ([]*TxRecord, error) {
	var records []*TxRecord

	err := s.db.Iterate(CHECKPOINT, func(key, value []byte) error {
		record := new(TxRecord)
		if err := record.UnmarshalRLP(value); err != nil {
			return fmt.Errorf("corrupted checkpoint record %x: %w", key, err)
		}

		records = append(records, record)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Close closes the underlying database
func (s *KeyValueStorage) Close() error {
	return s.db.Close()
}

// recordKey is the prefix followed by the big endian sequence number,
// so that keys iterate in arrival order
func recordKey(seq uint64) []byte {
	key := make([]byte, len(CHECKPOINT)+8)
	copy(key, CHECKPOINT)
	binary.BigEndian.PutUint64(key[len(CHECKPOINT):], seq)

	return key
}

func (r *TxRecord) MarshalRLPTo(dst []byte) []byte {
	return types.MarshalRLPTo(r.MarshalRLPWith, dst)
}

func (r *TxRecord) MarshalRLPWith(arena *fastrlp.Arena) *fastrlp.Value {
	vv := arena.NewArray()

	vv.Set(arena.NewUint(r.Seq))
	vv.Set(arena.NewUint(uint64(r.ArrivedAt)))
	vv.Set(r.Tx.MarshalRLPWith(arena))

	return vv
}

func (r *TxRecord) UnmarshalRLP(input []byte) error {
	return types.UnmarshalRlp(r.UnmarshalRLPFrom, input)
}

func (r *TxRecord) UnmarshalRLPFrom(p *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if len(elems) != 3 {
		return fmt.Errorf("incorrect number of elements to decode record, expected 3 but found %d", len(elems))
	}

	if r.Seq, err = elems[0].GetUint64(); err != nil {
		return err
	}

	arrivedAt, err := elems[1].GetUint64()
	if err != nil {
		return err
	}

	r.ArrivedAt = int64(arrivedAt)

	r.Tx = new(types.Transaction)

	return r.Tx.UnmarshalRLPFrom(p, elems[2])
}
