package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUint256(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw      string
		expected uint64
		err      bool
	}{
		{"1000", 1000, false},
		{"0x3e8", 1000, false},
		{"0x00003e8", 1000, false},
		{"0x0", 0, false},
		{"0x", 0, false},
		{"ten", 0, true},
		{"0xzz", 0, true},
	}

	for _, c := range cases {
		c := c

		t.Run(c.raw, func(t *testing.T) {
			t.Parallel()

			v, err := ParseUint256(c.raw)
			if c.err {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, c.expected, v.Uint64())
		})
	}
}

func TestResolveAddr(t *testing.T) {
	t.Parallel()

	addr, err := ResolveAddr(":9632")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9632", addr.String())

	_, err = ResolveAddr("not an address")
	assert.Error(t, err)
}
