package types

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"github.com/starkedge/mempool/helper/hex"
)

const (
	HashLength    = 32
	AddressLength = 32
)

var (
	ZeroAddress = Address{}
	ZeroHash    = Hash{}

	// feltPrime is the Starknet field modulus 2^251 + 17*2^192 + 1
	feltPrime = uint256.MustFromHex("0x800000000000011000000000000000000000000000000000000000000000001")
)

// Hash is a 32 byte field element, used for transaction and class hashes
type Hash [HashLength]byte

// Address is a contract address, also a field element
type Address [AddressLength]byte

func BytesToHash(b []byte) Hash {
	var h Hash

	size := len(b)
	min := min(size, HashLength)

	copy(h[HashLength-min:], b[len(b)-min:])

	return h
}

func BytesToAddress(b []byte) Address {
	var a Address

	size := len(b)
	min := min(size, AddressLength)

	copy(a[AddressLength-min:], b[len(b)-min:])

	return a
}

func StringToHash(str string) Hash {
	return BytesToHash(stringToBytes(str))
}

func StringToAddress(str string) Address {
	return BytesToAddress(stringToBytes(str))
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) String() string {
	return hex.EncodeToHex(h[:])
}

// IsFelt reports whether the value is a canonical field element
func (h Hash) IsFelt() bool {
	return isFelt(h)
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(input []byte) error {
	buf, err := hex.DecodeHex(string(input))
	if err != nil {
		return err
	}

	if len(buf) > HashLength {
		return fmt.Errorf("hash too long: %d bytes", len(buf))
	}

	*h = BytesToHash(buf)

	return nil
}

func (a Address) Bytes() []byte {
	return a[:]
}

// String returns the short felt form of the address
func (a Address) String() string {
	return hex.EncodeToFelt(a[:])
}

// IsFelt reports whether the value is a canonical field element
func (a Address) IsFelt() bool {
	return isFelt(a)
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(input []byte) error {
	buf, err := hex.DecodeHex(string(input))
	if err != nil {
		return err
	}

	if len(buf) > AddressLength {
		return fmt.Errorf("address too long: %d bytes", len(buf))
	}

	*a = BytesToAddress(buf)

	return nil
}

func isFelt(b [32]byte) bool {
	v := new(uint256.Int).SetBytes32(b[:])

	return v.Lt(feltPrime)
}

func stringToBytes(str string) []byte {
	str = strings.TrimPrefix(str, "0x")
	if len(str)%2 == 1 {
		str = "0" + str
	}

	b, _ := hex.DecodeHex(str)

	return b
}

func min(i, j int) int {
	if i < j {
		return i
	}

	return j
}
