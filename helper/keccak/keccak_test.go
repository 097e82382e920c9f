package keccak

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/umbracle/fastrlp"
)

func TestKeccak256_KnownVector(t *testing.T) {
	t.Parallel()

	// keccak256("")
	expected := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"

	assert.Equal(t, expected, hex.EncodeToString(Keccak256(nil, nil)))
}

func TestKeccak256Rlp_MatchesRawHash(t *testing.T) {
	t.Parallel()

	ar := &fastrlp.Arena{}
	v := ar.NewArray()
	v.Set(ar.NewUint(7))
	v.Set(ar.NewBytes([]byte("calldata")))

	raw := v.MarshalTo(nil)

	assert.Equal(t, Keccak256(nil, raw), Keccak256Rlp(nil, v))
}
