package hex

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDecodeUint64 verifies that uint64 values
// are properly decoded from hex
func TestDecodeUint64(t *testing.T) {
	t.Parallel()

	uint64Array := []uint64{
		0,
		1,
		11,
		67312,
		80604,
		^uint64(0), // max uint64
	}

	for _, value := range uint64Array {
		decodedValue, err := DecodeUint64(fmt.Sprintf("0x%x", value))
		assert.NoError(t, err)

		assert.Equal(t, value, decodedValue)
		assert.Equal(t, fmt.Sprintf("0x%x", value), EncodeUint64(value))
	}
}

func TestEncodeToFelt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in       []byte
		expected string
	}{
		{nil, "0x0"},
		{[]byte{0, 0, 0}, "0x0"},
		{[]byte{0, 0x0a, 0xbc}, "0xabc"},
		{[]byte{0x12, 0x34}, "0x1234"},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, EncodeToFelt(c.in))
	}
}

func TestDecodeHex_OddLength(t *testing.T) {
	t.Parallel()

	buf, err := DecodeHex("0xabc")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0xbc}, buf)

	_, err = DecodeHex("0xzz")
	assert.Error(t, err)
}
