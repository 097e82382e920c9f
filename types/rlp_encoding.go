package types

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/umbracle/fastrlp"
)

const txFieldsCount = 10

type RLPMarshaler interface {
	MarshalRLPTo(dst []byte) []byte
}

type RLPUnmarshaler interface {
	UnmarshalRLP(input []byte) error
}

type marshalRLPFunc func(ar *fastrlp.Arena) *fastrlp.Value

type unmarshalRLPFunc func(p *fastrlp.Parser, v *fastrlp.Value) error

func MarshalRLPTo(obj marshalRLPFunc, dst []byte) []byte {
	ar := fastrlp.DefaultArenaPool.Get()
	dst = obj(ar).MarshalTo(dst)
	fastrlp.DefaultArenaPool.Put(ar)

	return dst
}

func UnmarshalRlp(obj unmarshalRLPFunc, input []byte) error {
	pr := fastrlp.DefaultParserPool.Get()
	defer fastrlp.DefaultParserPool.Put(pr)

	v, err := pr.Parse(input)
	if err != nil {
		return err
	}

	return obj(pr, v)
}

func (t *Transaction) MarshalRLP() []byte {
	return t.MarshalRLPTo(nil)
}

func (t *Transaction) MarshalRLPTo(dst []byte) []byte {
	return MarshalRLPTo(t.MarshalRLPWith, dst)
}

// MarshalRLPWith encodes the transaction content. The hash is not part of the
// encoding since it is derived from it
func (t *Transaction) MarshalRLPWith(arena *fastrlp.Arena) *fastrlp.Value {
	vv := arena.NewArray()

	vv.Set(arena.NewUint(uint64(t.Type)))
	vv.Set(arena.NewUint(t.Version))
	vv.Set(arena.NewCopyBytes(t.Sender.Bytes()))
	vv.Set(arena.NewUint(t.Nonce))
	vv.Set(arena.NewCopyBytes(t.FeeOrZero().Bytes()))
	vv.Set(marshalFelts(arena, t.Calldata))
	vv.Set(marshalFelts(arena, t.Signature))
	vv.Set(arena.NewCopyBytes(t.ClassHash.Bytes()))
	vv.Set(arena.NewCopyBytes(t.CompiledClassHash.Bytes()))
	vv.Set(arena.NewCopyBytes(t.ContractAddressSalt.Bytes()))

	return vv
}

func marshalFelts(arena *fastrlp.Arena, felts [][]byte) *fastrlp.Value {
	if len(felts) == 0 {
		return arena.NewNullArray()
	}

	vv := arena.NewArray()
	for _, f := range felts {
		vv.Set(arena.NewCopyBytes(f))
	}

	return vv
}

// UnmarshalRLP decodes the transaction and computes its hash
func (t *Transaction) UnmarshalRLP(input []byte) error {
	return UnmarshalRlp(t.UnmarshalRLPFrom, input)
}

func (t *Transaction) UnmarshalRLPFrom(p *fastrlp.Parser, v *fastrlp.Value) error {
	elems, err := v.GetElems()
	if err != nil {
		return err
	}

	if len(elems) != txFieldsCount {
		return fmt.Errorf("incorrect number of elements to decode transaction, expected %d but found %d",
			txFieldsCount, len(elems))
	}

	// type
	rawType, err := elems[0].GetUint64()
	if err != nil {
		return err
	}

	if rawType > 0xff {
		return fmt.Errorf("unknown transaction type: %d", rawType)
	}

	if t.Type, err = txTypeFromByte(byte(rawType)); err != nil {
		return err
	}

	// version
	if t.Version, err = elems[1].GetUint64(); err != nil {
		return err
	}

	// sender
	if err = elems[2].GetHash(t.Sender[:]); err != nil {
		return err
	}

	// nonce
	if t.Nonce, err = elems[3].GetUint64(); err != nil {
		return err
	}

	// fee
	fee, err := elems[4].GetBytes(nil)
	if err != nil {
		return err
	}

	if len(fee) > 32 {
		return fmt.Errorf("fee overflows 256 bits")
	}

	t.Fee = new(uint256.Int).SetBytes(fee)

	// calldata
	if t.Calldata, err = unmarshalFelts(elems[5]); err != nil {
		return err
	}

	// signature
	if t.Signature, err = unmarshalFelts(elems[6]); err != nil {
		return err
	}

	if err = elems[7].GetHash(t.ClassHash[:]); err != nil {
		return err
	}

	if err = elems[8].GetHash(t.CompiledClassHash[:]); err != nil {
		return err
	}

	if err = elems[9].GetHash(t.ContractAddressSalt[:]); err != nil {
		return err
	}

	t.ComputeHash()

	return nil
}

func unmarshalFelts(v *fastrlp.Value) ([][]byte, error) {
	elems, err := v.GetElems()
	if err != nil {
		return nil, err
	}

	if len(elems) == 0 {
		return nil, nil
	}

	felts := make([][]byte, len(elems))

	for i, elem := range elems {
		if felts[i], err = elem.GetBytes(nil); err != nil {
			return nil, err
		}
	}

	return felts, nil
}
