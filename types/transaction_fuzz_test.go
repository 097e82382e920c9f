package types

import (
	"testing"

	"github.com/holiman/uint256"
	go_fuzz_utils "github.com/trailofbits/go-fuzz-utils"
)

func FuzzTransactionUnmarshalRLP(f *testing.F) {
	f.Add(newInvoke(1, 1).MarshalRLP())
	f.Add([]byte{0xc0})

	f.Fuzz(func(t *testing.T, input []byte) {
		tx := new(Transaction)
		if err := tx.UnmarshalRLP(input); err != nil {
			return
		}

		// anything that decodes must encode back to an equivalent transaction
		again := new(Transaction)
		if err := again.UnmarshalRLP(tx.MarshalRLP()); err != nil {
			t.Fatalf("re-decode failed: %v", err)
		}

		if again.Hash != tx.Hash {
			t.Fatal("hash mismatch after round trip")
		}
	})
}

func FuzzTransactionEncoding(f *testing.F) {
	f.Add([]byte("seed input for the fuzzer"))

	f.Fuzz(func(t *testing.T, input []byte) {
		tp, err := go_fuzz_utils.NewTypeProvider(input)
		if err != nil {
			return
		}

		err = tp.SetParamsSliceBounds(1, 1024)
		if err != nil {
			return
		}

		nonce, err := tp.GetUint64()
		if err != nil {
			return
		}

		fee, err := tp.GetUint64()
		if err != nil {
			return
		}

		sender, err := tp.GetNBytes(AddressLength)
		if err != nil {
			return
		}

		calldata, err := tp.GetBytes()
		if err != nil {
			return
		}

		tx := &Transaction{
			Type:      InvokeTx,
			Sender:    BytesToAddress(sender),
			Nonce:     nonce,
			Fee:       uint256.NewInt(fee),
			Calldata:  [][]byte{calldata},
			Signature: [][]byte{{0x01}},
		}
		tx.ComputeHash()

		decoded := new(Transaction)
		if err := decoded.UnmarshalRLP(tx.MarshalRLP()); err != nil {
			t.Fatal(err)
		}

		if decoded.Hash != tx.Hash || decoded.Nonce != nonce || decoded.Fee.Uint64() != fee {
			t.Fatal("round trip mismatch")
		}
	})
}
